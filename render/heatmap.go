// Package render draws grids and trajectories from the merged state
// sequences the core exposes. It has no opinion on how those sequences
// were computed; it only consumes cells, durations and visit counts.
package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/DyadicSolutions/StateSpaceGridLib/grid"
)

// Heatmap writes a standalone HTML chart of the grid's cumulative
// per-cell dwell durations.
func Heatmap(g *grid.Grid, title string, w io.Writer) error {
	q, err := g.Quantizer()
	if err != nil {
		return err
	}
	durations, err := g.CellDurations()
	if err != nil {
		return err
	}

	nx, ny := q.GridSize()
	xLabels := make([]string, nx)
	for i := range xLabels {
		xLabels[i] = strconv.Itoa(i)
	}
	yLabels := make([]string, ny)
	for i := range yLabels {
		yLabels[i] = strconv.Itoa(i)
	}

	data := make([]opts.HeatMapData, 0, len(durations))
	maxDuration := 0.0
	for cell, d := range durations {
		data = append(data, opts.HeatMapData{Value: [3]interface{}{cell.X, cell.Y, d}})
		if d > maxDuration {
			maxDuration = d
		}
	}
	if maxDuration == 0 {
		maxDuration = 1
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%d trajectories, %d cells visited", g.Len(), len(durations)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Data:      yLabels,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxDuration),
		}),
	)
	hm.SetXAxis(xLabels).AddSeries("dwell duration", data)
	return hm.Render(w)
}
