// Package reference solves transportation problems as general linear
// programs with gonum's simplex implementation. It is independent of the
// transport package and serves as a cross-check for it.
package reference

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
	"q.log/transport/model"
)

// Solve returns the optimal total cost of p and an optimal allocation.
//
// The problem is posed in standard form: minimize cᵀx subject to Ax = b,
// x >= 0, with x the row-major flattening of the allocation. One demand row
// is dropped because a balanced problem's constraints have rank m+n-1 and
// the simplex needs A with full row rank.
func Solve(p *model.Problem) (float64, *mat.Dense, error) {
	c, A, b := StandardForm(p)
	opt, x, err := lp.Simplex(c, A, b, 0, nil)
	if err != nil {
		return 0, nil, errors.Wrap(err, "reference: simplex")
	}
	return opt, mat.NewDense(p.NumRows, p.NumCols, x), nil
}

// StandardForm returns the cost vector, constraint matrix and right-hand side
// of p with the last demand constraint removed.
func StandardForm(p *model.Problem) (c []float64, A *mat.Dense, b []float64) {
	m, n := p.NumRows, p.NumCols
	supply, demand := p.Supply(), p.Demand()

	c = make([]float64, m*n)
	for i := range m {
		for j := range n {
			c[i*n+j] = p.CostAt(i, j)
		}
	}

	rows := m + n - 1
	A = mat.NewDense(rows, m*n, nil)
	b = make([]float64, rows)
	for i := range m {
		for j := range n {
			A.Set(i, i*n+j, 1)
		}
		b[i] = supply[i]
	}
	for j := range n - 1 {
		for i := range m {
			A.Set(m+j, i*n+j, 1)
		}
		b[m+j] = demand[j]
	}

	return c, A, b
}
