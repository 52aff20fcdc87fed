package transport_test

import (
	"bytes"
	"log"
	"math/rand"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gonum.org/v1/gonum/mat"

	"q.log/transport/model"
	"q.log/transport/reference"
	"q.log/transport/transport"
)

// SolveSuite exercises North-West Corner + MODI end to end.
type SolveSuite struct {
	suite.Suite
}

func TestSolveSuite(t *testing.T) {
	suite.Run(t, new(SolveSuite))
}

func (s *SolveSuite) problem(cost []float64, supply, demand []float64) *model.Problem {
	p, err := model.NewProblem(mat.NewDense(len(supply), len(demand), cost), supply, demand)
	require.NoError(s.T(), err)
	return p
}

func (s *SolveSuite) scenarioA() *model.Problem {
	return s.problem([]float64{
		8, 6, 10,
		9, 12, 13,
		14, 9, 16,
	}, []float64{20, 30, 25}, []float64{10, 25, 40})
}

func (s *SolveSuite) scenarioB() *model.Problem {
	return s.problem([]float64{
		20, 30, 10,
		30, 40, 25,
		35, 15, 20,
	}, []float64{100, 300, 100}, []float64{150, 125, 225})
}

// checkSolution asserts feasibility, non-increasing cost, a complete basis,
// the optimality certificate of res and agreement with gonum's LP simplex.
func (s *SolveSuite) checkSolution(p *model.Problem, res *transport.Result, msgAndArgs ...any) {
	t := s.T()
	require.NoError(t, model.CheckFeasible(p, res.Allocation, 1e-9), msgAndArgs...)
	require.LessOrEqual(t, res.Cost, res.InitialCost+1e-9, msgAndArgs...)
	require.Len(t, res.Basis, p.NumRows+p.NumCols-1, msgAndArgs...)
	require.NoError(t, transport.CheckOptimality(p.Cost(), res.U, res.V, 1e-9), msgAndArgs...)
	require.InDelta(t, model.TotalCost(p.Cost(), res.Allocation), res.Cost, 1e-9, msgAndArgs...)
	for k := 1; k < len(res.Trace); k++ {
		require.LessOrEqual(t, res.Trace[k], res.Trace[k-1], msgAndArgs...)
	}

	opt, _, err := reference.Solve(p)
	require.NoError(t, err, msgAndArgs...)
	require.InDelta(t, opt, res.Cost, 1e-6*max(1, opt), msgAndArgs...)
}

// TestScenarioA checks the golden optimum of the 3x3 example and compares it
// with gonum's LP simplex.
func (s *SolveSuite) TestScenarioA() {
	p := s.scenarioA()
	res, err := transport.Solve(p, transport.DefaultOptions())
	require.NoError(s.T(), err)
	s.checkSolution(p, res)

	require.Equal(s.T(), 915.0, res.InitialCost)
	require.Equal(s.T(), 775.0, res.Cost)
	require.Equal(s.T(), 3, res.Iterations)
	require.Equal(s.T(), []float64{915, 825, 795, 775}, res.Trace)
	require.True(s.T(), mat.Equal(mat.NewDense(3, 3, []float64{
		0, 0, 20,
		10, 0, 20,
		0, 25, 0,
	}), res.Allocation))
	// the second step empties (0,1) and (2,2) at once; (2,2) stays basic
	require.True(s.T(), res.Degenerate)
	require.Equal(s.T(), []transport.Cell{{Row: 0, Col: 2}, {Row: 1, Col: 0}, {Row: 1, Col: 2}, {Row: 2, Col: 1}, {Row: 2, Col: 2}}, res.Basis)

	opt, _, err := reference.Solve(p)
	require.NoError(s.T(), err)
	require.InDelta(s.T(), opt, res.Cost, 1e-6)
}

// TestScenarioB checks the North-West allocation, the improvement and the
// reference optimum of the second example.
func (s *SolveSuite) TestScenarioB() {
	p := s.scenarioB()
	res, err := transport.Solve(p, transport.DefaultOptions())
	require.NoError(s.T(), err)
	s.checkSolution(p, res)

	require.True(s.T(), mat.Equal(mat.NewDense(3, 3, []float64{
		100, 0, 0,
		50, 125, 125,
		0, 0, 100,
	}), res.Initial))
	require.NoError(s.T(), model.CheckFeasible(p, res.Initial, 0))
	require.Equal(s.T(), 13625.0, res.InitialCost)

	require.Equal(s.T(), 11125.0, res.Cost)
	require.Equal(s.T(), 2, res.Iterations)
	require.True(s.T(), mat.Equal(mat.NewDense(3, 3, []float64{
		0, 0, 100,
		150, 25, 125,
		0, 100, 0,
	}), res.Allocation))
	require.False(s.T(), res.Degenerate)
	require.Equal(s.T(), []transport.Cell{{Row: 0, Col: 2}, {Row: 1, Col: 0}, {Row: 1, Col: 1}, {Row: 1, Col: 2}, {Row: 2, Col: 1}}, res.Basis)

	opt, _, err := reference.Solve(p)
	require.NoError(s.T(), err)
	require.InDelta(s.T(), opt, res.Cost, 1e-6)
}

// TestSingleCell verifies the trivial 1x1 problem needs no improvement.
func (s *SolveSuite) TestSingleCell() {
	p := s.problem([]float64{7}, []float64{42}, []float64{42})
	res, err := transport.Solve(p, transport.DefaultOptions())
	require.NoError(s.T(), err)

	require.Equal(s.T(), 0, res.Iterations)
	require.Equal(s.T(), 42.0, res.Allocation.At(0, 0))
	require.Equal(s.T(), 294.0, res.Cost)
	require.False(s.T(), res.Degenerate)
}

// TestSingleRow covers a 1xn problem, where every cell with demand is basic.
func (s *SolveSuite) TestSingleRow() {
	p := s.problem([]float64{3, 1, 2}, []float64{9}, []float64{4, 0, 5})
	res, err := transport.Solve(p, transport.DefaultOptions())
	require.NoError(s.T(), err)
	s.checkSolution(p, res)
	require.Equal(s.T(), 0, res.Iterations)
	require.Equal(s.T(), 22.0, res.Cost)
}

// TestIdempotent re-optimizes the optimal allocations of both scenarios.
// Scenario A's has only four positive cells, so Optimize has to rebuild the
// zero cell of its basis.
func (s *SolveSuite) TestIdempotent() {
	for name, p := range map[string]*model.Problem{"A": s.scenarioA(), "B": s.scenarioB()} {
		first, err := transport.Solve(p, transport.DefaultOptions())
		require.NoError(s.T(), err, name)

		again, err := transport.Optimize(p.Cost(), first.Allocation, transport.DefaultOptions())
		require.NoError(s.T(), err, name)
		require.Equal(s.T(), 0, again.Iterations, name)
		require.True(s.T(), mat.Equal(first.Allocation, again.Allocation), name)
		require.Equal(s.T(), first.Cost, again.Cost, name)
		require.Equal(s.T(), first.Degenerate, again.Degenerate, name)
	}
}

// TestTieBreak uses a problem whose first pricing has two cells at -4. The
// row-major first one, (0,1), must enter, which fixes the final allocation
// among the two optimal ones.
func (s *SolveSuite) TestTieBreak() {
	p := s.problem([]float64{
		9, 8, 6,
		5, 8, 6,
	}, []float64{10, 30}, []float64{20, 10, 10})

	for range 3 {
		res, err := transport.Solve(p, transport.DefaultOptions())
		require.NoError(s.T(), err)
		require.Equal(s.T(), 1, res.Iterations)
		require.Equal(s.T(), 240.0, res.Cost)
		require.True(s.T(), mat.Equal(mat.NewDense(2, 3, []float64{
			0, 10, 0,
			20, 0, 10,
		}), res.Allocation))
	}
}

// TestDegenerateStart starts from a North-West tie. The zero cell kept in
// the basis links both rows, so (1,0) is priced and enters.
func (s *SolveSuite) TestDegenerateStart() {
	p := s.problem([]float64{
		10, 1,
		1, 10,
	}, []float64{10, 20}, []float64{10, 20})

	res, err := transport.Solve(p, transport.DefaultOptions())
	require.NoError(s.T(), err)
	s.checkSolution(p, res)
	require.Equal(s.T(), 300.0, res.InitialCost)
	require.Equal(s.T(), 1, res.Iterations)
	require.Equal(s.T(), 120.0, res.Cost)
	require.True(s.T(), mat.Equal(mat.NewDense(2, 2, []float64{
		0, 10,
		10, 10,
	}), res.Allocation))
	require.False(s.T(), res.Degenerate)
}

// TestOptimizeDegenerateAllocation hands Optimize the same split allocation
// directly; it completes the basis itself.
func (s *SolveSuite) TestOptimizeDegenerateAllocation() {
	cost := mat.NewDense(2, 2, []float64{10, 1, 1, 10})
	res, err := transport.Optimize(cost, mat.NewDense(2, 2, []float64{10, 0, 0, 20}), transport.DefaultOptions())
	require.NoError(s.T(), err)
	require.Equal(s.T(), 120.0, res.Cost)
	require.Equal(s.T(), []transport.Cell{{Row: 0, Col: 1}, {Row: 1, Col: 0}, {Row: 1, Col: 1}}, res.Basis)
	require.NoError(s.T(), transport.CheckOptimality(cost, res.U, res.V, 1e-9))
}

// TestOptimizeLeavesInputUntouched ensures Optimize works on a copy.
func (s *SolveSuite) TestOptimizeLeavesInputUntouched() {
	p := s.scenarioB()
	x := transport.NorthWestCorner(p, transport.DefaultEpsilon)
	before := mat.DenseCopyOf(x)

	_, err := transport.Optimize(p.Cost(), x, transport.DefaultOptions())
	require.NoError(s.T(), err)
	require.True(s.T(), mat.Equal(before, x))
}

// TestBuildInitialSolution checks the raw-input entry point.
func (s *SolveSuite) TestBuildInitialSolution() {
	supply := []float64{20, 30, 25}
	demand := []float64{10, 25, 40}
	x, err := transport.BuildInitialSolution(mat.NewDense(3, 3, nil), supply, demand)
	require.NoError(s.T(), err)
	require.True(s.T(), mat.Equal(mat.NewDense(3, 3, []float64{
		10, 10, 0,
		0, 15, 15,
		0, 0, 25,
	}), x))
	require.Equal(s.T(), []float64{20, 30, 25}, supply)
	require.Equal(s.T(), []float64{10, 25, 40}, demand)

	_, err = transport.BuildInitialSolution(mat.NewDense(3, 3, nil), supply, []float64{10, 25, 41})
	require.True(s.T(), errors.Is(err, model.ErrImbalance), "got %v", err)
}

// TestRandomProblems checks feasibility, non-increasing cost, the optimality
// certificate and the LP optimum on random instances. Demands drawn from the
// remaining total often tie with a supply, which makes the basis degenerate.
func (s *SolveSuite) TestRandomProblems() {
	r := rand.New(rand.NewSource(7))
	for trial := range 200 {
		m, n := 2+r.Intn(4), 2+r.Intn(4)
		cost := make([]float64, m*n)
		for k := range cost {
			cost[k] = float64(1 + r.Intn(50))
		}
		supply := make([]float64, m)
		total := 0.0
		for i := range supply {
			supply[i] = float64(1 + r.Intn(100))
			total += supply[i]
		}
		demand := make([]float64, n)
		left := total
		for j := range n - 1 {
			demand[j] = float64(r.Intn(int(left/2) + 1))
			left -= demand[j]
		}
		demand[n-1] = left

		p := s.problem(cost, supply, demand)
		res, err := transport.Solve(p, transport.DefaultOptions())
		require.NoError(s.T(), err, "trial %d", trial)
		s.checkSolution(p, res, "trial %d", trial)

		again, err := transport.Optimize(p.Cost(), res.Allocation, transport.DefaultOptions())
		require.NoError(s.T(), err, "trial %d", trial)
		require.Equal(s.T(), res.Cost, again.Cost, "trial %d", trial)
	}
}

// TestConcurrentSolves runs independent problems in parallel.
func (s *SolveSuite) TestConcurrentSolves() {
	problems := []*model.Problem{s.scenarioA(), s.scenarioB(), s.scenarioA(), s.scenarioB()}
	want := []float64{775, 11125, 775, 11125}

	got := make([]float64, len(problems))
	errs := make([]error, len(problems))
	var wg sync.WaitGroup
	for k, p := range problems {
		wg.Add(1)
		go func(k int, p *model.Problem) {
			defer wg.Done()
			res, err := transport.Solve(p, transport.DefaultOptions())
			if err != nil {
				errs[k] = err
				return
			}
			got[k] = res.Cost
		}(k, p)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(s.T(), err)
	}
	require.Equal(s.T(), want, got)
}

// TestVerboseLogging checks that every iteration is logged.
func (s *SolveSuite) TestVerboseLogging() {
	var buf bytes.Buffer
	opts := transport.DefaultOptions()
	opts.Verbose = true
	opts.Logger = log.New(&buf, "", 0)

	_, err := transport.Solve(s.scenarioB(), opts)
	require.NoError(s.T(), err)
	require.Contains(s.T(), buf.String(), "iteration 1: enter (2, 1) reduced cost -20")
	require.Contains(s.T(), buf.String(), "theta 100, leave (2, 2), cost 11625")
	require.Contains(s.T(), buf.String(), "iteration 2: enter (0, 2) reduced cost -5")
}

// TestIterationCap checks that a too small cap is reported.
func (s *SolveSuite) TestIterationCap() {
	opts := transport.DefaultOptions()
	opts.MaxIterations = 1
	_, err := transport.Solve(s.scenarioA(), opts)
	require.True(s.T(), errors.Is(err, transport.ErrNotConverged), "got %v", err)

	opts.MaxIterations = 3
	res, err := transport.Solve(s.scenarioA(), opts)
	require.NoError(s.T(), err)
	require.Equal(s.T(), 3, res.Iterations)
}

// TestOptimizeErrors covers the input checks of Optimize.
func (s *SolveSuite) TestOptimizeErrors() {
	cost := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	opts := transport.DefaultOptions()

	_, err := transport.Optimize(cost, mat.NewDense(2, 3, nil), opts)
	require.True(s.T(), errors.Is(err, model.ErrShape), "got %v", err)

	_, err = transport.Optimize(cost, mat.NewDense(2, 2, []float64{5, -1, 0, 6}), opts)
	require.True(s.T(), errors.Is(err, model.ErrNegative), "got %v", err)

	_, err = transport.Optimize(cost, mat.NewDense(2, 2, []float64{5, 5, 5, 5}), opts)
	require.True(s.T(), errors.Is(err, transport.ErrBasisInconsistent), "got %v", err)

	// four positive cells, within m+n-1, but they close a loop
	res, err := transport.Optimize(
		mat.NewDense(2, 3, []float64{1, 2, 9, 3, 1, 9}),
		mat.NewDense(2, 3, []float64{5, 5, 0, 5, 5, 0}),
		opts,
	)
	require.True(s.T(), errors.Is(err, transport.ErrBasisInconsistent), "got %v", err)
	require.Nil(s.T(), res)
}

// TestCheckOptimality rejects the North-West allocation of scenario B.
func (s *SolveSuite) TestCheckOptimality() {
	p := s.scenarioB()
	x := transport.NorthWestCorner(p, transport.DefaultEpsilon)

	opts := transport.DefaultOptions()
	opts.MaxIterations = 1
	res, err := transport.Optimize(p.Cost(), x, opts)
	require.Error(s.T(), err)
	require.Nil(s.T(), res)

	u := []transport.Potential{{Value: 0, Known: true}, {Value: 10, Known: true}, {Value: 5, Known: true}}
	v := []transport.Potential{{Value: 20, Known: true}, {Value: 30, Known: true}, {Value: 15, Known: true}}
	err = transport.CheckOptimality(p.Cost(), u, v, 1e-9)
	require.True(s.T(), errors.Is(err, transport.ErrNotOptimal), "got %v", err)
	require.Contains(s.T(), err.Error(), "(0, 2)")

	err = transport.CheckOptimality(p.Cost(), u[:2], v, 1e-9)
	require.Error(s.T(), err)

	// an unknown potential leaves cells unpriced, so nothing is certified
	v[1].Known = false
	err = transport.CheckOptimality(p.Cost(), u, v, 1e-9)
	require.True(s.T(), errors.Is(err, transport.ErrNotOptimal), "got %v", err)
	require.Contains(s.T(), err.Error(), "column 1")
}
