package grid

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/DyadicSolutions/StateSpaceGridLib/quantize"
	"github.com/DyadicSolutions/StateSpaceGridLib/trajectory"
)

// Measures is an immutable snapshot of the statistics for one or more
// trajectories evaluated together. Measures that are mathematically
// undefined for the given input hold NaN rather than a fabricated zero.
type Measures struct {
	// TrajectoryIDs lists the evaluated trajectories in insertion order.
	TrajectoryIDs []string

	MeanDuration       float64
	MeanNumberOfEvents float64
	MeanNumberOfVisits float64
	MeanCellRange      float64

	// OverallCellRange is the cardinality of the union of the
	// trajectories' distinct-cell sets. A cell visited by two
	// trajectories counts once.
	OverallCellRange int

	// Per-unit means: each ratio is computed per trajectory before
	// averaging, never as a ratio of means.
	MeanDurationPerEvent float64
	MeanDurationPerVisit float64
	MeanDurationPerCell  float64

	// Dispersion is the mean of the per-trajectory dispersion values.
	// Trajectories whose own dispersion is undefined are excluded from
	// the mean and listed in UndefinedDispersion.
	Dispersion          float64
	UndefinedDispersion []string

	// VisitedEntropy is the Shannon entropy, in nats, of the combined
	// visitation distribution across all evaluated trajectories. NaN
	// when there are no visits at all.
	VisitedEntropy float64
}

// summary holds the per-trajectory values the reduction step folds over.
// Summaries are mutually independent and may be computed in parallel.
type summary struct {
	id          string
	duration    float64
	events      int
	visits      int
	cellRange   int
	dispersion  float64
	visitCounts map[quantize.Cell]int
}

func summarize(traj *trajectory.Trajectory, q *quantize.Quantizer) (summary, error) {
	states, err := traj.States(q)
	if err != nil {
		return summary{}, err
	}
	visitCounts := make(map[quantize.Cell]int, len(states))
	cellDurations := make(map[quantize.Cell]float64, len(states))
	for _, s := range states {
		visitCounts[s.Cell]++
		cellDurations[s.Cell] += s.Duration
	}
	return summary{
		id:          traj.ID(),
		duration:    traj.Duration(),
		events:      traj.NumEvents(),
		visits:      len(states),
		cellRange:   len(visitCounts),
		dispersion:  trajectory.DispersionOf(cellDurations, traj.Duration(), q.NumCells()),
		visitCounts: visitCounts,
	}, nil
}

// reduce folds per-trajectory summaries into one Measures record. Strictly
// sequential; callers running summaries in parallel must finish all of
// them first.
func reduce(summaries []summary) Measures {
	k := len(summaries)
	ids := make([]string, k)
	durations := make([]float64, k)
	events := make([]float64, k)
	visits := make([]float64, k)
	ranges := make([]float64, k)

	perEvent := make([]float64, 0, k)
	perVisit := make([]float64, 0, k)
	perCell := make([]float64, 0, k)
	dispersions := make([]float64, 0, k)
	var undefined []string

	union := make(map[quantize.Cell]struct{})
	combined := make(map[quantize.Cell]int)

	for i, s := range summaries {
		ids[i] = s.id
		durations[i] = s.duration
		events[i] = float64(s.events)
		visits[i] = float64(s.visits)
		ranges[i] = float64(s.cellRange)

		if s.events > 0 {
			perEvent = append(perEvent, s.duration/float64(s.events))
		}
		if s.visits > 0 {
			perVisit = append(perVisit, s.duration/float64(s.visits))
		}
		if s.cellRange > 0 {
			perCell = append(perCell, s.duration/float64(s.cellRange))
		}
		if math.IsNaN(s.dispersion) {
			undefined = append(undefined, s.id)
		} else {
			dispersions = append(dispersions, s.dispersion)
		}

		for cell, n := range s.visitCounts {
			union[cell] = struct{}{}
			combined[cell] += n
		}
	}

	return Measures{
		TrajectoryIDs:        ids,
		MeanDuration:         stat.Mean(durations, nil),
		MeanNumberOfEvents:   stat.Mean(events, nil),
		MeanNumberOfVisits:   stat.Mean(visits, nil),
		MeanCellRange:        stat.Mean(ranges, nil),
		OverallCellRange:     len(union),
		MeanDurationPerEvent: meanOrNaN(perEvent),
		MeanDurationPerVisit: meanOrNaN(perVisit),
		MeanDurationPerCell:  meanOrNaN(perCell),
		Dispersion:           meanOrNaN(dispersions),
		UndefinedDispersion:  undefined,
		VisitedEntropy:       visitedEntropy(combined),
	}
}

func meanOrNaN(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(xs, nil)
}

// visitedEntropy computes the Shannon entropy, in nats, of the combined
// visit distribution. Cells with zero probability contribute nothing
// (the 0*ln 0 = 0 convention); zero total visits is undefined.
func visitedEntropy(visits map[quantize.Cell]int) float64 {
	total := 0
	for _, n := range visits {
		total += n
	}
	if total == 0 {
		return math.NaN()
	}
	p := make([]float64, 0, len(visits))
	for _, n := range visits {
		p = append(p, float64(n)/float64(total))
	}
	// Stable summation order regardless of map iteration.
	sort.Float64s(p)
	return stat.Entropy(p)
}

// Measures computes the full measure record over the grid's member
// trajectories. The reduction runs strictly sequentially; use
// MeasuresParallel for large batches.
func (g *Grid) Measures() (Measures, error) {
	if len(g.trajs) == 0 {
		return Measures{}, ErrNoTrajectories
	}
	q, err := g.Quantizer()
	if err != nil {
		return Measures{}, err
	}
	summaries := make([]summary, len(g.trajs))
	for i, traj := range g.trajs {
		s, err := summarize(traj, q)
		if err != nil {
			return Measures{}, err
		}
		summaries[i] = s
	}
	return reduce(summaries), nil
}
