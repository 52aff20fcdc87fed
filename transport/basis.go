package transport

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/mat"
)

// basis is the set of basic cells of an allocation. A complete basis holds
// m+n-1 cells forming a spanning tree over the rows and columns; cells in it
// may carry a zero allocation.
type basis struct {
	rows, cols int
	in         []bool
	size       int
}

func newBasis(m, n int) *basis {
	return &basis{rows: m, cols: n, in: make([]bool, m*n)}
}

func (b *basis) has(c Cell) bool {
	return b.in[c.Row*b.cols+c.Col]
}

func (b *basis) add(c Cell) {
	if !b.has(c) {
		b.in[c.Row*b.cols+c.Col] = true
		b.size++
	}
}

func (b *basis) remove(c Cell) {
	if b.has(c) {
		b.in[c.Row*b.cols+c.Col] = false
		b.size--
	}
}

// cells lists the basic cells in row-major order.
func (b *basis) cells() []Cell {
	cells := make([]Cell, 0, b.size)
	for i := range b.rows {
		for j := range b.cols {
			if c := (Cell{Row: i, Col: j}); b.has(c) {
				cells = append(cells, c)
			}
		}
	}
	return cells
}

// completeBasis adds every cell of x above eps to b and then, scanning in
// row-major order, zero cells that join two unconnected parts until b spans
// all rows and columns. Rows are graph nodes 0..m-1 and columns m..m+n-1.
// A loop among the cells already in b or above eps is ErrBasisInconsistent.
func completeBasis(x *mat.Dense, b *basis, eps float64) error {
	m, n := x.Dims()
	g := simple.NewUndirectedGraph()
	for id := range m + n {
		g.AddNode(simple.Node(id))
	}
	link := func(c Cell) bool {
		row, col := simple.Node(c.Row), simple.Node(m+c.Col)
		if topo.PathExistsIn(g, row, col) {
			return false
		}
		g.SetEdge(simple.Edge{F: row, T: col})
		return true
	}

	for i := range m {
		for j := range n {
			c := Cell{Row: i, Col: j}
			if !b.has(c) && x.At(i, j) <= eps {
				continue
			}
			if !link(c) {
				return errors.Wrapf(ErrBasisInconsistent, "basic cell (%d, %d) closes a loop", i, j)
			}
			b.add(c)
		}
	}

	for i := range m {
		for j := range n {
			if b.size == m+n-1 {
				return nil
			}
			if c := (Cell{Row: i, Col: j}); !b.has(c) && link(c) {
				b.add(c)
			}
		}
	}
	return nil
}
