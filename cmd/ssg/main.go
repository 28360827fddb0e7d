// Command ssg computes state space grid measures for one or more
// trajectory CSV files evaluated together on a shared grid.
//
// Output is a flat CSV table: one combined row for the whole set, plus
// one row per trajectory with -each. Results can additionally be
// persisted to SQLite (-db) and rendered as an HTML heatmap (-chart) or
// a grid image (-plot).
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/DyadicSolutions/StateSpaceGridLib/grid"
	"github.com/DyadicSolutions/StateSpaceGridLib/internal/idgen"
	"github.com/DyadicSolutions/StateSpaceGridLib/internal/trajio"
	"github.com/DyadicSolutions/StateSpaceGridLib/internal/version"
	"github.com/DyadicSolutions/StateSpaceGridLib/quantize"
	"github.com/DyadicSolutions/StateSpaceGridLib/render"
	"github.com/DyadicSolutions/StateSpaceGridLib/store"
	"github.com/DyadicSolutions/StateSpaceGridLib/trajectory"
)

var (
	out     = flag.String("out", "", "Measures CSV output path (default stdout)")
	dbPath  = flag.String("db", "", "SQLite database to persist the run to")
	chart   = flag.String("chart", "", "HTML heatmap output path")
	plot    = flag.String("plot", "", "Grid image output path (png, svg, pdf)")
	each    = flag.Bool("each", false, "Also emit one row per trajectory")
	workers = flag.Int("workers", 0, "Parallel summary workers (0 = GOMAXPROCS)")
	showVer = flag.Bool("version", false, "Print version and exit")

	xOrder = flag.String("x-order", "", "Comma-separated explicit x axis order")
	yOrder = flag.String("y-order", "", "Comma-separated explicit y axis order")
	xMin   = flag.Float64("x-min", 0, "Explicit x axis minimum")
	xMax   = flag.Float64("x-max", 0, "Explicit x axis maximum")
	yMin   = flag.Float64("y-min", 0, "Explicit y axis minimum")
	yMax   = flag.Float64("y-max", 0, "Explicit y axis maximum")
	xCell  = flag.Float64("x-cell", 0, "x axis cell size")
	yCell  = flag.Float64("y-cell", 0, "y axis cell size")
)

func main() {
	flag.Parse()
	if *showVer {
		fmt.Printf("ssg %s (%s)\n", version.Version, version.GitSHA)
		return
	}
	files := flag.Args()
	if len(files) == 0 {
		log.Fatal("usage: ssg [flags] trajectory.csv [trajectory.csv ...]")
	}

	xSpec, ySpec := axisSpecs()

	g := grid.New(grid.WithAxes(xSpec, ySpec))
	for _, path := range files {
		data, err := trajio.ReadFile(path)
		if err != nil {
			log.Fatalf("read %s: %v", path, err)
		}
		id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		traj, err := trajectory.New(id, data.X, data.Y, data.Times)
		if err != nil {
			log.Fatalf("build trajectory: %v", err)
		}
		if err := g.Add(traj); err != nil {
			log.Fatalf("add trajectory: %v", err)
		}
	}

	combined, err := g.MeasuresParallel(*workers)
	if err != nil {
		log.Fatalf("compute measures: %v", err)
	}

	rows := [][]string{combined.Record()}
	if *each {
		perTrajectory, err := trajectoryRows(g)
		if err != nil {
			log.Fatalf("compute per-trajectory measures: %v", err)
		}
		rows = append(rows, perTrajectory...)
	}
	if err := writeTable(*out, rows); err != nil {
		log.Fatalf("write measures: %v", err)
	}

	if *dbPath != "" {
		st, err := store.Open(*dbPath)
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
		defer st.Close()
		runID := idgen.UUID{}.Next()
		if err := st.SaveRun(runID, combined); err != nil {
			log.Fatalf("persist run: %v", err)
		}
		log.Printf("saved run %s to %s", runID, *dbPath)
	}

	if *chart != "" {
		f, err := os.Create(*chart)
		if err != nil {
			log.Fatalf("create chart: %v", err)
		}
		if err := render.Heatmap(g, "Dwell durations", f); err != nil {
			log.Fatalf("render chart: %v", err)
		}
		if err := f.Close(); err != nil {
			log.Fatalf("close chart: %v", err)
		}
	}

	if *plot != "" {
		if err := render.TrajectoryPlot(g, "Trajectories", *plot); err != nil {
			log.Fatalf("render plot: %v", err)
		}
	}
}

// axisSpecs builds the per-axis configuration, treating range and cell
// size flags as set only when supplied on the command line.
func axisSpecs() (quantize.AxisSpec, quantize.AxisSpec) {
	var xSpec, ySpec quantize.AxisSpec
	if *xOrder != "" {
		xSpec.Order = strings.Split(*xOrder, ",")
	}
	if *yOrder != "" {
		ySpec.Order = strings.Split(*yOrder, ",")
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "x-min":
			xSpec.Min = quantize.Float(*xMin)
		case "x-max":
			xSpec.Max = quantize.Float(*xMax)
		case "y-min":
			ySpec.Min = quantize.Float(*yMin)
		case "y-max":
			ySpec.Max = quantize.Float(*yMax)
		case "x-cell":
			xSpec.CellSize = quantize.Float(*xCell)
		case "y-cell":
			ySpec.CellSize = quantize.Float(*yCell)
		}
	})
	return xSpec, ySpec
}

// trajectoryRows computes one measure row per trajectory, reusing the
// combined grid's quantization so every row is on the same scale.
func trajectoryRows(g *grid.Grid) ([][]string, error) {
	q, err := g.Quantizer()
	if err != nil {
		return nil, err
	}
	var rows [][]string
	for _, traj := range g.Trajectories() {
		sub := grid.New(grid.WithQuantizer(q))
		if err := sub.Add(traj); err != nil {
			return nil, err
		}
		m, err := sub.Measures()
		if err != nil {
			return nil, fmt.Errorf("trajectory %s: %w", traj.ID(), err)
		}
		rows = append(rows, m.Record())
	}
	return rows, nil
}

func writeTable(path string, rows [][]string) error {
	f := os.Stdout
	if path != "" {
		var err error
		f, err = os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
	}
	w := csv.NewWriter(f)
	if err := w.Write(grid.Header()); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
