package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DyadicSolutions/StateSpaceGridLib/grid"
	"github.com/DyadicSolutions/StateSpaceGridLib/quantize"
	"github.com/DyadicSolutions/StateSpaceGridLib/trajectory"
)

func testGrid(t *testing.T) *grid.Grid {
	t.Helper()
	nums := func(vs ...float64) []quantize.Value {
		out := make([]quantize.Value, len(vs))
		for i, v := range vs {
			out[i] = quantize.Num(v)
		}
		return out
	}
	t1, err := trajectory.New("dyad-1",
		nums(1, 1, 3, 2),
		nums(2, 2, 3, 1),
		[]float64{0, 1, 2, 3, 5},
	)
	require.NoError(t, err)
	t2, err := trajectory.New("dyad-2",
		nums(2, 3),
		nums(2, 3),
		[]float64{0, 4, 6},
	)
	require.NoError(t, err)

	g := grid.New()
	require.NoError(t, g.Add(t1, t2))
	return g
}

func TestHeatmapWritesChart(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Heatmap(testGrid(t), "dwell durations", &buf))

	html := buf.String()
	assert.Contains(t, html, "heatmap")
	assert.Contains(t, html, "dwell durations")
}

func TestTrajectoryPlotSavesImage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "grid.png")
	require.NoError(t, TrajectoryPlot(testGrid(t), "dyads", path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestTrajectoryPlotSkipsEmptyTrajectories(t *testing.T) {
	t.Parallel()

	empty, err := trajectory.New("empty", nil, nil, []float64{0})
	require.NoError(t, err)

	spec := quantize.AxisSpec{Min: quantize.Float(0), Max: quantize.Float(3)}
	q, err := quantize.Resolve(spec, spec, nil)
	require.NoError(t, err)

	g := grid.New(grid.WithQuantizer(q))
	require.NoError(t, g.Add(empty))

	path := filepath.Join(t.TempDir(), "empty.png")
	require.NoError(t, TrajectoryPlot(g, "empty", path))
	assert.True(t, strings.HasSuffix(path, ".png"))
}
