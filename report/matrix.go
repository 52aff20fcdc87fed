// Package report renders solver output: matrices as text and the total cost
// per MODI iteration as HTML or PNG charts.
package report

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/mat"
)

// PrintMatrix writes name = m in gonum's squeezed matrix format followed by
// the dimensions.
func PrintMatrix(w io.Writer, name string, m mat.Matrix) {
	prefix := fmt.Sprintf("%*s", len(name)+3, "")
	f := mat.Formatted(m, mat.Prefix(prefix), mat.Squeeze())
	fmt.Fprintf(w, "%s = %v\n", name, f)
	r, c := m.Dims()
	fmt.Fprintln(w, r, c)
}

// PrintVector writes name = [v0 v1 ...].
func PrintVector(w io.Writer, name string, v []float64) {
	PrintMatrix(w, name, mat.NewDense(1, len(v), v))
}
