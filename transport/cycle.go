package transport

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Cell addresses one entry of the allocation matrix.
type Cell struct {
	Row, Col int
}

// Cycle is a closed loop of cells that starts and ends at the entering cell.
// Consecutive cells alternately share a row and a column. Cells at even
// positions receive flow, cells at odd positions give it up.
type Cycle struct {
	Cells []Cell
}

// visitation state of a cell during the loop search
const (
	white = iota // not visited
	gray         // on the current path
	black        // explored, leads nowhere
)

type frame struct {
	cell     Cell
	alongRow bool // direction of the next move
	next     int  // next row or column index to try
}

// findCycle returns the loop created by adding the non-basic cell enter to
// the cells of b. The search is depth-first over an explicit stack: the
// first move stays in enter's row, moves then alternate between column and
// row, and the loop closes on a column move back to enter.
func findCycle(b *basis, enter Cell) (Cycle, error) {
	m, n := b.rows, b.cols
	state := make([]uint8, m*n)
	state[enter.Row*n+enter.Col] = gray

	stack := []frame{{cell: enter, alongRow: true}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		limit := m
		if top.alongRow {
			limit = n
		}

		pushed := false
		for top.next < limit {
			k := top.next
			top.next++

			cand := Cell{Row: k, Col: top.cell.Col}
			if top.alongRow {
				cand = Cell{Row: top.cell.Row, Col: k}
			}
			if cand == top.cell {
				continue
			}
			if cand == enter {
				if !top.alongRow {
					return closeCycle(stack, enter), nil
				}
				continue
			}
			if !b.has(cand) || state[cand.Row*n+cand.Col] != white {
				continue
			}

			state[cand.Row*n+cand.Col] = gray
			stack = append(stack, frame{cell: cand, alongRow: !top.alongRow})
			pushed = true
			break
		}

		if !pushed {
			state[top.cell.Row*n+top.cell.Col] = black
			stack = stack[:len(stack)-1]
		}
	}

	return Cycle{}, errors.Wrapf(ErrBasisInconsistent, "no closed loop through cell (%d, %d)", enter.Row, enter.Col)
}

func closeCycle(stack []frame, enter Cell) Cycle {
	cells := make([]Cell, 0, len(stack)+1)
	for _, f := range stack {
		cells = append(cells, f.cell)
	}
	return Cycle{Cells: append(cells, enter)}
}

// Theta returns the largest amount that can be moved around the loop: the
// smallest allocation among the donor cells.
func (c Cycle) Theta(x mat.Matrix) float64 {
	theta := x.At(c.Cells[1].Row, c.Cells[1].Col)
	for k := 3; k < len(c.Cells)-1; k += 2 {
		theta = min(theta, x.At(c.Cells[k].Row, c.Cells[k].Col))
	}
	return theta
}

// shift moves theta units around the loop and pivots b: the entering cell
// joins it and the first donor emptied by the move leaves it. Other emptied
// donors stay basic at zero. The closing repeat of the entering cell is
// skipped. Entries left at or below eps are set to zero.
func (c Cycle) shift(x *mat.Dense, b *basis, theta, eps float64) (leaving Cell) {
	left := false
	for k, cell := range c.Cells[:len(c.Cells)-1] {
		v := x.At(cell.Row, cell.Col)
		if k%2 == 0 {
			v += theta
		} else {
			v -= theta
		}
		if v <= eps {
			v = 0
			if k%2 == 1 && !left {
				leaving, left = cell, true
			}
		}
		x.Set(cell.Row, cell.Col, v)
	}

	b.remove(leaving)
	b.add(c.Cells[0])
	return leaving
}
