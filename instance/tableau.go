package instance

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"q.log/transport/model"
)

// ParseTableau reads a problem in tableau form:
//
//	# comment
//	m n
//	c11 c12 ... c1n s1
//	...
//	cm1 cm2 ... cmn sm
//	d1 d2 ... dn
//
// Blank lines and text after '#' are ignored.
func ParseTableau(rd io.Reader) (*model.Problem, error) {
	lines, err := dataLines(rd)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, errors.Wrap(ErrFormat, "empty input")
	}

	dims, err := parseFloats(lines[0])
	if err != nil {
		return nil, err
	}
	if len(dims.values) != 2 {
		return nil, errors.Wrapf(ErrFormat, "line %d: want \"m n\"", dims.line)
	}
	m, n := int(dims.values[0]), int(dims.values[1])
	if float64(m) != dims.values[0] || float64(n) != dims.values[1] || m < 1 || n < 1 {
		return nil, errors.Wrapf(ErrFormat, "line %d: invalid dimensions", dims.line)
	}
	if len(lines) != m+2 {
		return nil, errors.Wrapf(ErrFormat, "want %d data lines after the dimensions, got %d", m+1, len(lines)-1)
	}

	cost := mat.NewDense(m, n, nil)
	supply := make([]float64, m)
	for i := range m {
		row, err := parseFloats(lines[i+1])
		if err != nil {
			return nil, err
		}
		if len(row.values) != n+1 {
			return nil, errors.Wrapf(ErrFormat, "line %d: want %d costs and a supply", row.line, n)
		}
		cost.SetRow(i, row.values[:n])
		supply[i] = row.values[n]
	}

	last, err := parseFloats(lines[m+1])
	if err != nil {
		return nil, err
	}
	if len(last.values) != n {
		return nil, errors.Wrapf(ErrFormat, "line %d: want %d demands", last.line, n)
	}

	return model.NewProblem(cost, supply, last.values)
}

// WriteTableau writes p in the form accepted by ParseTableau.
func WriteTableau(w io.Writer, p *model.Problem) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d\n", p.NumRows, p.NumCols)
	supply := p.Supply()
	for i := range p.NumRows {
		for j := range p.NumCols {
			fmt.Fprintf(bw, "%s ", formatFloat(p.CostAt(i, j)))
		}
		fmt.Fprintln(bw, formatFloat(supply[i]))
	}
	demand := p.Demand()
	for j, d := range demand {
		if j > 0 {
			bw.WriteByte(' ')
		}
		bw.WriteString(formatFloat(d))
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

type numberLine struct {
	line   int
	text   string
	values []float64
}

func dataLines(rd io.Reader) ([]numberLine, error) {
	var lines []numberLine
	sc := bufio.NewScanner(rd)
	for no := 1; sc.Scan(); no++ {
		text := sc.Text()
		if k := strings.IndexByte(text, '#'); k >= 0 {
			text = text[:k]
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, numberLine{line: no, text: text})
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "instance: read")
	}
	return lines, nil
}

func parseFloats(l numberLine) (numberLine, error) {
	fields := strings.Fields(l.text)
	l.values = make([]float64, len(fields))
	for k, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return l, errors.Wrapf(ErrFormat, "line %d: %q is not a number", l.line, f)
		}
		l.values[k] = v
	}
	return l, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
