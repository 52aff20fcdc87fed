package report

import (
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrEmptyTrace is returned when there is nothing to chart.
var ErrEmptyTrace = errors.New("report: empty cost trace")

// WriteConvergenceHTML renders trace (total cost before the first and after
// every iteration) as an interactive line chart.
func WriteConvergenceHTML(w io.Writer, trace []float64) error {
	if len(trace) == 0 {
		return ErrEmptyTrace
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "MODI convergence",
			Subtitle: "total shipping cost per iteration",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "iteration",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  "cost",
			Scale: opts.Bool(true),
		}),
	)

	xs := make([]string, len(trace))
	items := make([]opts.LineData, len(trace))
	for k, c := range trace {
		xs[k] = strconv.Itoa(k)
		items[k] = opts.LineData{Value: c}
	}
	line.SetXAxis(xs).AddSeries("total cost", items)

	return errors.Wrap(line.Render(w), "report: render html")
}

// SaveConvergencePNG draws trace with gonum/plot and saves it to path. The
// image format follows the file extension.
func SaveConvergencePNG(path string, trace []float64) error {
	if len(trace) == 0 {
		return ErrEmptyTrace
	}

	p := plot.New()
	p.Title.Text = "MODI convergence"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "total cost"

	pts := make(plotter.XYs, len(trace))
	for k, c := range trace {
		pts[k].X = float64(k)
		pts[k].Y = c
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return errors.Wrap(err, "report: plot")
	}
	p.Add(plotter.NewGrid(), line, points)

	return errors.Wrap(p.Save(6*vg.Inch, 4*vg.Inch, path), "report: save plot")
}
