package transport

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"q.log/transport/model"
)

// NorthWestCorner builds an initial basic feasible allocation for p by
// filling cells from the top-left corner. Remaining supply or demand <= eps
// counts as exhausted. Costs are not consulted and p is not modified.
func NorthWestCorner(p *model.Problem, eps float64) *mat.Dense {
	x, _ := northWest(p, eps)
	return x
}

// northWest also returns the basis of the allocation: every visited cell,
// plus a zero cell to the right of each tie so the staircase stays connected.
func northWest(p *model.Problem, eps float64) (*mat.Dense, *basis) {
	supply, demand := p.Supply(), p.Demand()
	x := mat.NewDense(p.NumRows, p.NumCols, nil)
	b := newBasis(p.NumRows, p.NumCols)

	i, j := 0, 0
	for i < p.NumRows && j < p.NumCols {
		q := math.Min(supply[i], demand[j])
		x.Set(i, j, q)
		b.add(Cell{Row: i, Col: j})
		supply[i] -= q
		demand[j] -= q

		// on a tie both cursors move so no row or column is visited twice
		rowDone := supply[i] <= eps
		colDone := demand[j] <= eps
		if rowDone && colDone && i+1 < p.NumRows && j+1 < p.NumCols {
			b.add(Cell{Row: i, Col: j + 1})
		}
		if rowDone {
			i++
		}
		if colDone {
			j++
		}
	}

	return x, b
}

// BuildInitialSolution validates the raw problem data and returns its
// North-West Corner allocation. The supply and demand slices are not modified.
func BuildInitialSolution(cost mat.Matrix, supply, demand []float64) (*mat.Dense, error) {
	p, err := model.NewProblem(cost, supply, demand)
	if err != nil {
		return nil, err
	}
	return NorthWestCorner(p, DefaultEpsilon), nil
}
