package transport

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Potential is the dual value of one row or column. Known is false when the
// basis does not reach that row or column.
type Potential struct {
	Value float64
	Known bool
}

// computePotentials solves u[i] + v[j] = cost[i][j] over the cells of b
// with u[0] = 0. Every pass over the basic cells fixes the potentials it can
// derive; passes repeat until one adds nothing.
func computePotentials(cost *mat.Dense, b *basis) (u, v []Potential) {
	u = make([]Potential, b.rows)
	v = make([]Potential, b.cols)
	u[0] = Potential{Value: 0, Known: true}

	cells := b.cells()
	for updated := true; updated; {
		updated = false
		for _, c := range cells {
			i, j := c.Row, c.Col
			switch {
			case u[i].Known && !v[j].Known:
				v[j] = Potential{Value: cost.At(i, j) - u[i].Value, Known: true}
				updated = true
			case v[j].Known && !u[i].Known:
				u[i] = Potential{Value: cost.At(i, j) - v[j].Value, Known: true}
				updated = true
			}
		}
	}

	return u, v
}

// enteringCell scans the cells outside b in row-major order and returns the
// one with the smallest reduced cost. Ties keep the first cell found. Cells
// whose row or column potential is unknown are skipped; ok is false when no
// cell qualifies.
func enteringCell(cost *mat.Dense, b *basis, u, v []Potential) (cell Cell, delta float64, ok bool) {
	for i := range b.rows {
		if !u[i].Known {
			continue
		}
		for j := range b.cols {
			if !v[j].Known || b.has(Cell{Row: i, Col: j}) {
				continue
			}
			d := cost.At(i, j) - u[i].Value - v[j].Value
			if !ok || d < delta {
				cell, delta, ok = Cell{Row: i, Col: j}, d, true
			}
		}
	}
	return cell, delta, ok
}

// CheckOptimality verifies the optimality certificate of x: every potential
// is known and cost - u - v >= -eps on every cell. An unknown potential or
// the first violating cell in row-major order is reported with ErrNotOptimal.
func CheckOptimality(cost mat.Matrix, u, v []Potential, eps float64) error {
	m, n := cost.Dims()
	if len(u) != m || len(v) != n {
		return errors.Errorf("transport: %d row and %d column potentials for a %dx%d problem", len(u), len(v), m, n)
	}
	for i, p := range u {
		if !p.Known {
			return errors.Wrapf(ErrNotOptimal, "potential of row %d is unknown", i)
		}
	}
	for j, p := range v {
		if !p.Known {
			return errors.Wrapf(ErrNotOptimal, "potential of column %d is unknown", j)
		}
	}
	for i := range m {
		for j := range n {
			if d := cost.At(i, j) - u[i].Value - v[j].Value; d < -eps {
				return errors.Wrapf(ErrNotOptimal, "reduced cost of (%d, %d) is %v", i, j, d)
			}
		}
	}
	return nil
}
