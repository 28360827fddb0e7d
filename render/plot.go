package render

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/DyadicSolutions/StateSpaceGridLib/grid"
)

// palette cycles across trajectories.
var palette = []color.RGBA{
	{R: 0x4b, G: 0x00, B: 0x82, A: 0xff}, // indigo
	{R: 0xb2, G: 0x22, B: 0x22, A: 0xff}, // firebrick
	{R: 0x22, G: 0x8b, B: 0x22, A: 0xff}, // forest green
	{R: 0x1e, G: 0x90, B: 0xff, A: 0xff}, // dodger blue
	{R: 0xd2, G: 0x69, B: 0x1e, A: 0xff}, // chocolate
}

// TrajectoryPlot saves an image of every member trajectory's merged state
// sequence: one node per dwell state (sized by dwell duration) joined by
// edges in temporal order. The output format follows the file extension
// (png, svg, pdf).
func TrajectoryPlot(g *grid.Grid, title, path string) error {
	q, err := g.Quantizer()
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x cell"
	p.Y.Label.Text = "y cell"
	p.Add(plotter.NewGrid())

	nx, ny := q.GridSize()
	p.X.Min, p.X.Max = -0.5, float64(nx)-0.5
	p.Y.Min, p.Y.Max = -0.5, float64(ny)-0.5

	// Node size scales with dwell duration relative to the longest dwell
	// on the whole grid.
	maxDuration := 0.0
	for _, traj := range g.Trajectories() {
		states, err := traj.States(q)
		if err != nil {
			return err
		}
		for _, s := range states {
			if s.Duration > maxDuration {
				maxDuration = s.Duration
			}
		}
	}
	if maxDuration == 0 {
		maxDuration = 1
	}

	for i, traj := range g.Trajectories() {
		states, err := traj.States(q)
		if err != nil {
			return err
		}
		if len(states) == 0 {
			continue
		}

		pts := make(plotter.XYs, len(states))
		durations := make([]float64, len(states))
		for j, s := range states {
			pts[j] = plotter.XY{X: float64(s.Cell.X), Y: float64(s.Cell.Y)}
			durations[j] = s.Duration
		}
		c := palette[i%len(palette)]

		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Width = vg.Points(1)
		line.Color = c

		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		scatter.GlyphStyleFunc = func(j int) draw.GlyphStyle {
			r := vg.Points(2 + 8*math.Sqrt(durations[j]/maxDuration))
			return draw.GlyphStyle{Color: c, Radius: r, Shape: draw.CircleGlyph{}}
		}

		p.Add(line, scatter)
		p.Legend.Add(traj.ID(), line)
	}

	return p.Save(8*vg.Inch, 8*vg.Inch, path)
}
