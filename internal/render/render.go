// Package render builds the comparison charts shown to the therapist.
// Charts are rendered server-side with go-echarts into a standalone
// HTML page: one line chart per axis with the reference and patient
// trajectories aligned sample-by-sample, plus a 3D view of both paths.
package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/umarshaikh/physiosync/internal/engine"
)

var axisNames = [engine.NumAxes]string{"X", "Y", "Z"}

// ComparisonPage assembles the full comparison page for an analyzed
// session. The per-axis charts plot both trajectories along the
// alignment path so time-shifted segments line up visually.
func ComparisonPage(title string, reference, patient engine.Trajectory, path []engine.PathPair) *components.Page {
	page := components.NewPage()
	page.PageTitle = title

	for axis := 0; axis < engine.NumAxes; axis++ {
		page.AddCharts(axisChart(axis, reference, patient, path))
	}
	page.AddCharts(pathChart(reference, patient))

	return page
}

// WriteComparison renders the comparison page to w.
func WriteComparison(w io.Writer, title string, reference, patient engine.Trajectory, path []engine.PathPair) error {
	return ComparisonPage(title, reference, patient, path).Render(w)
}

// axisChart plots one axis of both trajectories over the aligned steps.
func axisChart(axis int, reference, patient engine.Trajectory, path []engine.PathPair) *charts.Line {
	steps := make([]int, len(path))
	refData := make([]opts.LineData, len(path))
	patData := make([]opts.LineData, len(path))

	for k, pair := range path {
		steps[k] = k
		refData[k] = opts.LineData{Value: reference[pair.I].Axis(axis)}
		patData[k] = opts.LineData{Value: patient[pair.J].Axis(axis)}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "320px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s axis", axisNames[axis]),
			Subtitle: fmt.Sprintf("%d aligned steps", len(path)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "aligned step"}),
		charts.WithYAxisOpts(opts.YAxis{Name: fmt.Sprintf("%s (m)", axisNames[axis])}),
	)

	line.SetXAxis(steps).
		AddSeries("reference", refData,
			charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}),
		).
		AddSeries("patient", patData)

	return line
}

// pathChart plots both trajectories in 3D.
func pathChart(reference, patient engine.Trajectory) *charts.Line3D {
	line3d := charts.NewLine3D()
	line3d.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Wrist path"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "X (m)", Show: opts.Bool(true)}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "Y (m)", Show: opts.Bool(true)}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "Z (m)", Show: opts.Bool(true)}),
	)

	line3d.AddSeries("reference", points3D(reference))
	line3d.AddSeries("patient", points3D(patient))

	return line3d
}

func points3D(traj engine.Trajectory) []opts.Chart3DData {
	data := make([]opts.Chart3DData, len(traj))
	for i, p := range traj {
		data[i] = opts.Chart3DData{Value: []interface{}{p.X, p.Y, p.Z}}
	}
	return data
}
