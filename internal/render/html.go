package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/intercept/internal/fsutil"
	"github.com/banshee-data/intercept/internal/sim"
)

func lineData(tr sim.Trajectory) []opts.LineData {
	data := make([]opts.LineData, len(tr))
	for i, p := range tr {
		data[i] = opts.LineData{Value: []interface{}{p.X, p.Y}}
	}
	return data
}

func hexColor(c interface{ RGBA() (r, g, b, a uint32) }) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

// TrajectoryChart builds an interactive go-echarts line chart of both
// trajectories in the x/altitude plane.
func TrajectoryChart(res *sim.Result, o Options) *charts.Line {
	b := TrajectoryBounds(o.Padding, res.Target, res.Interceptor)

	subtitle := fmt.Sprintf("run=%s seed=%d state=%s ticks=%d", res.RunID, res.Seed, res.State, res.Ticks)
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: o.Title, Width: "1400px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: o.Title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "X (m)", NameLocation: "middle", NameGap: 25, Min: b.XMin, Max: b.XMax}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Altitude (m)", NameLocation: "middle", NameGap: 40, Min: b.YMin, Max: b.YMax}),
	)

	line.AddSeries("Target", lineData(res.Target),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(targetColor)}))
	line.AddSeries("Interceptor", lineData(res.Interceptor),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(interceptorColor)}))

	if c := res.Collision; c != nil {
		markerColor := hexColor(targetColor)
		if sim.ClassifyApproach(c.AngleDeg, o.MinApproachDeg) == sim.VerdictQualified {
			markerColor = hexColor(interceptorColor)
		}
		name := fmt.Sprintf("Collision @ tick %d (%.2f°)", c.Tick, c.AngleDeg)
		line.AddSeries(name, lineData(sim.Trajectory{c.Point}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: markerColor}))
	}
	return line
}

// HTML renders the trajectory chart as a standalone HTML page to w.
func HTML(w io.Writer, res *sim.Result, o Options) error {
	if err := TrajectoryChart(res, o).Render(w); err != nil {
		return fmt.Errorf("render html chart: %w", err)
	}
	return nil
}

// SaveHTML writes the HTML chart to path on fsys, creating parent directories.
func SaveHTML(fsys fsutil.FileSystem, path string, res *sim.Result, o Options) error {
	return fsutil.WriteTo(fsys, path, func(w io.Writer) error { return HTML(w, res, o) })
}
