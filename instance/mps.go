package instance

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/lukpank/go-glpk/glpk"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"q.log/transport/model"
)

// MPS files use equality rows S<i> for supplies and D<j> for demands and one
// column X<i>_<j> per cell with coefficient 1 in its supply and demand row.
const (
	supplyPrefix = "S"
	demandPrefix = "D"
)

// readMPS constructs a problem from an MPS file in the convention above.
// Rows are matched by name prefix; their order in the file gives the row and
// column order of the problem.
func readMPS(filename string) (*model.Problem, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	lp := glpk.New()
	defer lp.Delete()
	if err := lp.ReadMPS(glpk.MPS_FILE, nil, filename); err != nil {
		return nil, errors.Wrapf(err, "instance: read %s", filename)
	}

	var supply, demand []float64
	colRow := make(map[int32]int, lp.NumCols())
	colCol := make(map[int32]int, lp.NumCols())
	for r := 1; r <= lp.NumRows(); r++ {
		name := lp.RowName(r)
		var target map[int32]int
		var index int
		switch {
		case strings.HasPrefix(name, supplyPrefix):
			target, index = colRow, len(supply)
			supply = append(supply, lp.RowLB(r))
		case strings.HasPrefix(name, demandPrefix):
			target, index = colCol, len(demand)
			demand = append(demand, lp.RowLB(r))
		default:
			return nil, errors.Wrapf(ErrFormat, "row %q is neither a supply nor a demand", name)
		}
		if lp.RowLB(r) != lp.RowUB(r) {
			return nil, errors.Wrapf(ErrFormat, "row %q is not an equality", name)
		}

		idxs, vals := lp.MatRow(r)
		for k, c := range idxs {
			if c == 0 {
				continue
			}
			if vals[k] != 1 {
				return nil, errors.Wrapf(ErrFormat, "row %q: coefficient %v of column %q", name, vals[k], lp.ColName(int(c)))
			}
			if _, dup := target[c]; dup {
				return nil, errors.Wrapf(ErrFormat, "column %q appears in two rows of the same kind", lp.ColName(int(c)))
			}
			target[c] = index
		}
	}
	if len(supply) == 0 || len(demand) == 0 {
		return nil, errors.Wrap(ErrFormat, "no supply or no demand rows")
	}

	m, n := len(supply), len(demand)
	cost := mat.NewDense(m, n, nil)
	seen := make([]bool, m*n)
	for c := 1; c <= lp.NumCols(); c++ {
		i, okRow := colRow[int32(c)]
		j, okCol := colCol[int32(c)]
		if !okRow || !okCol {
			return nil, errors.Wrapf(ErrFormat, "column %q is not a route between a supply and a demand", lp.ColName(c))
		}
		if seen[i*n+j] {
			return nil, errors.Wrapf(ErrFormat, "route (%d, %d) appears twice", i, j)
		}
		seen[i*n+j] = true
		cost.Set(i, j, lp.ObjCoef(c))
	}
	for k, ok := range seen {
		if !ok {
			return nil, errors.Wrapf(ErrFormat, "route (%d, %d) is missing", k/n, k%n)
		}
	}

	return model.NewProblem(cost, supply, demand)
}

// WriteMPS stores p as an MPS file that readMPS accepts.
func WriteMPS(p *model.Problem, filename string) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	lp := buildLP(p)
	defer lp.Delete()
	if err := lp.WriteMPS(glpk.MPS_FILE, nil, filename); err != nil {
		return errors.Wrapf(err, "instance: write %s", filename)
	}
	return nil
}

// buildLP poses p as a GLPK minimization problem.
func buildLP(p *model.Problem) *glpk.Prob {
	m, n := p.NumRows, p.NumCols
	lp := glpk.New()
	lp.SetProbName("transport")
	lp.SetObjName("COST")
	lp.SetObjDir(glpk.MIN)

	supply, demand := p.Supply(), p.Demand()
	lp.AddRows(m + n)
	for i := range m {
		lp.SetRowName(i+1, fmt.Sprintf("%s%d", supplyPrefix, i))
		lp.SetRowBnds(i+1, glpk.FX, supply[i], supply[i])
	}
	for j := range n {
		lp.SetRowName(m+j+1, fmt.Sprintf("%s%d", demandPrefix, j))
		lp.SetRowBnds(m+j+1, glpk.FX, demand[j], demand[j])
	}

	lp.AddCols(m * n)
	for i := range m {
		for j := range n {
			col := i*n + j + 1
			lp.SetColName(col, fmt.Sprintf("X%d_%d", i, j))
			lp.SetColBnds(col, glpk.LO, 0, 0)
			lp.SetObjCoef(col, p.CostAt(i, j))
			// index 0 of ind and val is ignored by GLPK
			lp.SetMatCol(col, []int32{0, int32(i + 1), int32(m + j + 1)}, []float64{0, 1, 1})
		}
	}

	return lp
}
