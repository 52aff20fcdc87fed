package model

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultTolerance is the relative tolerance used by NewProblem for the
// balance check.
const DefaultTolerance = 1e-9

var (
	// ErrShape is returned when the cost matrix does not match the supply and
	// demand vectors, or an allocation does not match the cost matrix.
	ErrShape = errors.New("model: shape mismatch")

	// ErrNegative is returned for negative or non-finite costs, supplies,
	// demands or allocation entries.
	ErrNegative = errors.New("model: negative or non-finite value")

	// ErrImbalance is returned when total supply differs from total demand.
	ErrImbalance = errors.New("model: total supply differs from total demand")

	// ErrInfeasible is returned when an allocation violates a row or column sum.
	ErrInfeasible = errors.New("model: allocation violates supply or demand")
)

// Problem is a balanced transportation problem.
type Problem struct {
	//cost per unit shipped from source i to sink j
	cost *mat.Dense

	//supply of every source
	supply []float64

	//demand of every sink
	demand []float64

	NumRows int
	NumCols int
}

// NewProblem validates and copies its arguments. cost must be
// len(supply) x len(demand), every entry must be finite and non-negative and
// total supply must equal total demand.
func NewProblem(cost mat.Matrix, supply, demand []float64) (*Problem, error) {
	if cost == nil || len(supply) == 0 || len(demand) == 0 {
		return nil, errors.Wrap(ErrShape, "empty problem")
	}
	r, c := cost.Dims()
	if r != len(supply) || c != len(demand) {
		return nil, errors.Wrapf(ErrShape, "cost is %dx%d, supply has %d entries, demand has %d",
			r, c, len(supply), len(demand))
	}

	for i := range r {
		for j := range c {
			if !nonNegative(cost.At(i, j)) {
				return nil, errors.Wrapf(ErrNegative, "cost[%d][%d] = %v", i, j, cost.At(i, j))
			}
		}
	}
	for i, v := range supply {
		if !nonNegative(v) {
			return nil, errors.Wrapf(ErrNegative, "supply[%d] = %v", i, v)
		}
	}
	for j, v := range demand {
		if !nonNegative(v) {
			return nil, errors.Wrapf(ErrNegative, "demand[%d] = %v", j, v)
		}
	}

	totalSupply, totalDemand := floats.Sum(supply), floats.Sum(demand)
	if !approxEqual(totalSupply, totalDemand, DefaultTolerance) {
		return nil, errors.Wrapf(ErrImbalance, "supply %v, demand %v", totalSupply, totalDemand)
	}

	return &Problem{
		cost:    mat.DenseCopyOf(cost),
		supply:  append([]float64(nil), supply...),
		demand:  append([]float64(nil), demand...),
		NumRows: r,
		NumCols: c,
	}, nil
}

// Cost returns a copy of the cost matrix.
func (p *Problem) Cost() *mat.Dense {
	return mat.DenseCopyOf(p.cost)
}

// CostAt returns the unit cost of cell (i, j).
func (p *Problem) CostAt(i, j int) float64 {
	return p.cost.At(i, j)
}

// Supply returns a copy of the supply vector.
func (p *Problem) Supply() []float64 {
	return append([]float64(nil), p.supply...)
}

// Demand returns a copy of the demand vector.
func (p *Problem) Demand() []float64 {
	return append([]float64(nil), p.demand...)
}

// Total is the amount shipped by any feasible allocation.
func (p *Problem) Total() float64 {
	return floats.Sum(p.supply)
}

// TotalCost returns sum(cost[i][j] * allocation[i][j]). Both matrices must
// have the same dimensions; TotalCost panics otherwise, as mat.Dense.MulElem
// does. AllocationCost is the checked variant.
func TotalCost(cost, allocation mat.Matrix) float64 {
	var prod mat.Dense
	prod.MulElem(cost, allocation)
	return mat.Sum(&prod)
}

// AllocationCost is TotalCost with the dimensions checked first.
func AllocationCost(cost, allocation mat.Matrix) (float64, error) {
	r, c := cost.Dims()
	if ar, ac := allocation.Dims(); ar != r || ac != c {
		return 0, errors.Wrapf(ErrShape, "allocation is %dx%d, cost is %dx%d", ar, ac, r, c)
	}
	return TotalCost(cost, allocation), nil
}

// CheckFeasible reports whether allocation is a feasible shipment plan for p:
// same shape as the cost matrix, non-negative entries, row sums equal to the
// supplies and column sums equal to the demands within tol (relative to the
// problem total).
func CheckFeasible(p *Problem, allocation mat.Matrix, tol float64) error {
	r, c := allocation.Dims()
	if r != p.NumRows || c != p.NumCols {
		return errors.Wrapf(ErrShape, "allocation is %dx%d, problem is %dx%d", r, c, p.NumRows, p.NumCols)
	}
	if err := CheckNonNegative(allocation); err != nil {
		return err
	}

	x := mat.DenseCopyOf(allocation)
	scale := math.Max(1, p.Total())
	for i := range r {
		got := mat.Sum(x.RowView(i))
		if math.Abs(got-p.supply[i]) > tol*scale {
			return errors.Wrapf(ErrInfeasible, "row %d ships %v, supply is %v", i, got, p.supply[i])
		}
	}
	for j := range c {
		got := mat.Sum(x.ColView(j))
		if math.Abs(got-p.demand[j]) > tol*scale {
			return errors.Wrapf(ErrInfeasible, "column %d receives %v, demand is %v", j, got, p.demand[j])
		}
	}
	return nil
}

// CheckNonNegative returns ErrNegative for the first negative or non-finite
// entry of a in row-major order.
func CheckNonNegative(a mat.Matrix) error {
	r, c := a.Dims()
	for i := range r {
		for j := range c {
			if !nonNegative(a.At(i, j)) {
				return errors.Wrapf(ErrNegative, "allocation[%d][%d] = %v", i, j, a.At(i, j))
			}
		}
	}
	return nil
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
