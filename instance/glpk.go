package instance

import (
	"runtime"

	"github.com/lukpank/go-glpk/glpk"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"q.log/transport/model"
)

// SolveGLPK solves p with GLPK's simplex and returns the optimal total cost
// and allocation.
func SolveGLPK(p *model.Problem) (float64, *mat.Dense, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	lp := buildLP(p)
	defer lp.Delete()

	smcp := glpk.NewSmcp()
	smcp.SetMsgLev(glpk.MSG_ERR)
	if err := lp.Simplex(smcp); err != nil {
		return 0, nil, errors.Wrap(err, "instance: glpk simplex")
	}
	if lp.Status() != glpk.OPT {
		return 0, nil, errors.Errorf("instance: glpk finished with status %v", lp.Status())
	}

	x := mat.NewDense(p.NumRows, p.NumCols, nil)
	for i := range p.NumRows {
		for j := range p.NumCols {
			x.Set(i, j, lp.ColPrim(i*p.NumCols+j+1))
		}
	}
	return lp.ObjVal(), x, nil
}
