// Package render draws finished simulation results. It only reads a
// sim.Result; rendering failures never affect the simulation outcome.
package render

import (
	"fmt"
	"image/color"
	"io"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/intercept/internal/fsutil"
	"github.com/banshee-data/intercept/internal/guidance"
	"github.com/banshee-data/intercept/internal/sim"
)

var (
	targetColor      = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	interceptorColor = color.RGBA{R: 44, G: 160, B: 44, A: 255}
)

// Options controls chart size and labelling.
type Options struct {
	Title          string
	Width          vg.Length
	Height         vg.Length
	MinApproachDeg float64 // threshold used to pick the collision marker
	Padding        float64 // fraction of the data range added on each side
}

// DefaultOptions returns a 14x9 inch chart with 5% padding.
func DefaultOptions() Options {
	return Options{
		Title:          "Interceptor Pursuit Simulation",
		Width:          14 * vg.Inch,
		Height:         9 * vg.Inch,
		MinApproachDeg: guidance.DefaultMinApproachDeg,
		Padding:        0.05,
	}
}

// Bounds is a rectangular axis range.
type Bounds struct {
	XMin, XMax float64
	YMin, YMax float64
}

// TrajectoryBounds returns the extents of all given trajectories, widened by
// pad times the data range on each side. A flat axis is widened by one metre
// either way so the chart never collapses.
func TrajectoryBounds(pad float64, trs ...sim.Trajectory) Bounds {
	var xs, ys []float64
	for _, tr := range trs {
		xs = append(xs, tr.Xs()...)
		ys = append(ys, tr.Ys()...)
	}
	if len(xs) == 0 {
		return Bounds{XMin: -1, XMax: 1, YMin: -1, YMax: 1}
	}
	b := Bounds{
		XMin: floats.Min(xs), XMax: floats.Max(xs),
		YMin: floats.Min(ys), YMax: floats.Max(ys),
	}
	b.XMin, b.XMax = widen(b.XMin, b.XMax, pad)
	b.YMin, b.YMax = widen(b.YMin, b.YMax, pad)
	return b
}

func widen(lo, hi, pad float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		return lo - 1, hi + 1
	}
	return lo - span*pad, hi + span*pad
}

func toXYs(tr sim.Trajectory) plotter.XYs {
	pts := make(plotter.XYs, len(tr))
	for i, p := range tr {
		pts[i].X = p.X
		pts[i].Y = p.Y
	}
	return pts
}

func addTrack(p *plot.Plot, label string, pts plotter.XYs, c color.Color) error {
	line, scatter, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("%s track: %w", label, err)
	}
	line.Color = c
	line.Width = vg.Points(2)
	scatter.Color = c
	scatter.Shape = draw.CircleGlyph{}
	scatter.Radius = vg.Points(2)
	p.Add(line, scatter)
	p.Legend.Add(label, line)
	return nil
}

// collisionMarker returns a glyph at the collision point: a green triangle
// when the approach qualifies, a red cross otherwise.
func collisionMarker(c *sim.Collision, minDeg float64) (*plotter.Scatter, string, error) {
	s, err := plotter.NewScatter(plotter.XYs{{X: c.Point.X, Y: c.Point.Y}})
	if err != nil {
		return nil, "", err
	}
	s.Radius = vg.Points(9)
	label := fmt.Sprintf("Collision @ tick %d (%.2f°)", c.Tick, c.AngleDeg)
	if sim.ClassifyApproach(c.AngleDeg, minDeg) == sim.VerdictQualified {
		s.Shape = draw.TriangleGlyph{}
		s.Color = interceptorColor
	} else {
		s.Shape = draw.CrossGlyph{}
		s.Color = targetColor
	}
	return s, label, nil
}

// TrajectoryPlot draws both trajectories in the x/altitude plane with the
// collision marker, if any. Axis bounds follow the data.
func TrajectoryPlot(res *sim.Result, o Options) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = o.Title
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Altitude (m)"
	p.Add(plotter.NewGrid())

	if err := addTrack(p, "Target (evading)", toXYs(res.Target), targetColor); err != nil {
		return nil, err
	}
	if err := addTrack(p, "Interceptor (pursuing)", toXYs(res.Interceptor), interceptorColor); err != nil {
		return nil, err
	}
	if res.Collision != nil {
		m, label, err := collisionMarker(res.Collision, o.MinApproachDeg)
		if err != nil {
			return nil, fmt.Errorf("collision marker: %w", err)
		}
		p.Add(m)
		p.Legend.Add(label, m)
	}

	b := TrajectoryBounds(o.Padding, res.Target, res.Interceptor)
	p.X.Min, p.X.Max = b.XMin, b.XMax
	p.Y.Min, p.Y.Max = b.YMin, b.YMax

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// AltitudePlot draws altitude against tick for both entities.
func AltitudePlot(res *sim.Result, o Options) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = o.Title + " - Altitude"
	p.X.Label.Text = "Time step"
	p.Y.Label.Text = "Height (m)"
	p.Add(plotter.NewGrid())

	series := []struct {
		label string
		tr    sim.Trajectory
		c     color.Color
	}{
		{"Target", res.Target, targetColor},
		{"Interceptor", res.Interceptor, interceptorColor},
	}
	for _, s := range series {
		pts := make(plotter.XYs, len(s.tr))
		for i, pos := range s.tr {
			pts[i].X = float64(i)
			pts[i].Y = pos.Y
		}
		if err := addTrack(p, s.label, pts, s.c); err != nil {
			return nil, err
		}
	}
	if c := res.Collision; c != nil {
		m, label, err := collisionMarker(c, o.MinApproachDeg)
		if err != nil {
			return nil, fmt.Errorf("collision marker: %w", err)
		}
		m.XYs[0].X = float64(c.Tick)
		p.Add(m)
		p.Legend.Add(label, m)
	}
	p.Legend.Top = true
	return p, nil
}

// WritePNG encodes p as a PNG to w.
func WritePNG(w io.Writer, p *plot.Plot, o Options) error {
	wt, err := p.WriterTo(o.Width, o.Height, "png")
	if err != nil {
		return fmt.Errorf("create png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// SavePNG writes p to path on fsys, creating parent directories as needed.
func SavePNG(fsys fsutil.FileSystem, path string, p *plot.Plot, o Options) error {
	if err := fsutil.WriteTo(fsys, path, func(w io.Writer) error { return WritePNG(w, p, o) }); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}

// AltitudePath derives the altitude chart path from the trajectory chart
// path: "out/run.png" becomes "out/run_altitude.png".
func AltitudePath(path string) string {
	ext := filepath.Ext(path)
	return path[:len(path)-len(ext)] + "_altitude" + ext
}
