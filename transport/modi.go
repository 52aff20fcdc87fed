package transport

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"q.log/transport/model"
)

// Result is the outcome of Optimize or Solve.
type Result struct {
	//Allocation is the optimal shipment matrix
	Allocation *mat.Dense

	//Cost is the total cost of Allocation
	Cost float64

	//Iterations counts the loop adjustments that were applied
	Iterations int

	//Trace holds the total cost before the first and after every adjustment
	Trace []float64

	//U and V are the final row and column potentials
	U, V []Potential

	//Basis lists the m+n-1 basic cells in row-major order
	Basis []Cell

	//Degenerate is set when some cell of Basis holds no flow
	Degenerate bool

	//Initial and InitialCost describe the North-West Corner allocation.
	//Only Solve fills them.
	Initial     *mat.Dense
	InitialCost float64
}

// Optimize improves a basic feasible allocation with the modified
// distribution method until no non-basic cell has a negative reduced cost.
//
// The cells above Epsilon are basic. Zero cells are added to them in
// row-major order until the basis spans every row and column. Then each
// iteration:
//  1. Derive the row and column potentials from the basic cells.
//  2. Pick the non-basic cell with the most negative reduced cost (first in
//     row-major order on ties) or stop if there is none.
//  3. Find the closed loop through that cell and the basic cells.
//  4. Move the smallest donor allocation around the loop; one emptied donor
//     leaves the basis.
//
// A loop among the cells above Epsilon is ErrBasisInconsistent. allocation
// is copied, never modified. On error no allocation is returned.
func Optimize(cost, allocation mat.Matrix, opts Options) (*Result, error) {
	m, n := cost.Dims()
	if r, c := allocation.Dims(); r != m || c != n {
		return nil, errors.Wrapf(model.ErrShape, "allocation is %dx%d, cost is %dx%d", r, c, m, n)
	}
	if err := model.CheckNonNegative(allocation); err != nil {
		return nil, err
	}
	return optimize(mat.DenseCopyOf(cost), mat.DenseCopyOf(allocation), newBasis(m, n), opts)
}

// optimize runs the improvement loop on x in place. b holds the cells known
// to be basic and is completed first.
func optimize(C, x *mat.Dense, b *basis, opts Options) (*Result, error) {
	opts.normalize()
	eps := opts.Epsilon

	m, n := C.Dims()
	if basic := countBasic(x, eps); basic > m+n-1 {
		return nil, errors.Wrapf(ErrBasisInconsistent, "%d basic cells, at most %d allowed", basic, m+n-1)
	}
	if err := completeBasis(x, b, eps); err != nil {
		return nil, err
	}

	maxIter := opts.MaxIterations
	if maxIter == 0 {
		maxIter = DefaultMaxIterations(m, n)
	}

	trace := []float64{model.TotalCost(C, x)}
	for iter := 0; ; iter++ {
		u, v := computePotentials(C, b)
		enter, delta, ok := enteringCell(C, b, u, v)
		if !ok || delta >= -eps {
			cells := b.cells()
			return &Result{
				Allocation: x,
				Cost:       trace[len(trace)-1],
				Iterations: iter,
				Trace:      trace,
				U:          u,
				V:          v,
				Basis:      cells,
				Degenerate: holdsZero(x, cells, eps),
			}, nil
		}
		if iter == maxIter {
			return nil, errors.Wrapf(ErrNotConverged, "still improving after %d iterations", maxIter)
		}

		cycle, err := findCycle(b, enter)
		if err != nil {
			return nil, err
		}
		theta := cycle.Theta(x)
		leaving := cycle.shift(x, b, theta, eps)
		trace = append(trace, model.TotalCost(C, x))

		if opts.Verbose {
			opts.Logger.Printf("iteration %d: enter (%d, %d) reduced cost %g, loop of %d cells, theta %g, leave (%d, %d), cost %g",
				iter+1, enter.Row, enter.Col, delta, len(cycle.Cells)-1, theta, leaving.Row, leaving.Col, trace[len(trace)-1])
		}
	}
}

// Solve runs the North-West Corner rule followed by Optimize and checks the
// final allocation against p's supplies and demands.
func Solve(p *model.Problem, opts Options) (*Result, error) {
	opts.normalize()

	initial, b := northWest(p, opts.Epsilon)
	cost := p.Cost()
	res, err := optimize(cost, mat.DenseCopyOf(initial), b, opts)
	if err != nil {
		return nil, err
	}

	tol := opts.Epsilon * float64(p.NumRows+p.NumCols)
	if err = model.CheckFeasible(p, res.Allocation, tol); err != nil {
		return nil, errors.Wrap(err, "transport: optimized allocation")
	}

	res.Initial = initial
	res.InitialCost = model.TotalCost(cost, initial)
	return res, nil
}

func countBasic(x *mat.Dense, eps float64) int {
	m, n := x.Dims()
	count := 0
	for i := range m {
		for j := range n {
			if x.At(i, j) > eps {
				count++
			}
		}
	}
	return count
}

func holdsZero(x *mat.Dense, cells []Cell, eps float64) bool {
	for _, c := range cells {
		if x.At(c.Row, c.Col) <= eps {
			return true
		}
	}
	return false
}
