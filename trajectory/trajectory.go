// Package trajectory holds a single dyadic time series and its derived
// dwell-state sequence.
//
// A trajectory is an ordered list of (x, y) samples with fencepost
// timestamps: n events carry n+1 timestamps, the last one closing the
// final event. Applying a quantize.Quantizer produces the merged State
// sequence that every published measure is computed from.
package trajectory

import (
	"fmt"
	"math"

	"github.com/DyadicSolutions/StateSpaceGridLib/quantize"
)

// ValidationError reports malformed trajectory input.
type ValidationError struct {
	ID     string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("trajectory %s: %s", e.ID, e.Reason)
}

// Event is one raw duration-bearing sample.
type Event struct {
	X, Y  quantize.Value
	Start float64
	End   float64
}

// Duration returns the event's time span.
func (e Event) Duration() float64 { return e.End - e.Start }

// State is a maximal run of consecutive events occupying one cell. Each
// State is one visit to its cell.
type State struct {
	Cell     quantize.Cell
	Start    float64
	End      float64
	Duration float64
}

// Trajectory is one ordered event sequence. Construct with New; the id is
// mandatory and supplied by the caller.
type Trajectory struct {
	id     string
	events []Event
}

// New validates and stores a raw trajectory. The timestamp list must hold
// exactly one more entry than the value lists and must be strictly
// ascending.
func New(id string, xs, ys []quantize.Value, times []float64) (*Trajectory, error) {
	if id == "" {
		return nil, &ValidationError{ID: "?", Reason: "empty trajectory id"}
	}
	if len(xs) != len(ys) {
		return nil, &ValidationError{
			ID:     id,
			Reason: fmt.Sprintf("%d x values but %d y values", len(xs), len(ys)),
		}
	}
	if len(times) != len(xs)+1 {
		return nil, &ValidationError{
			ID:     id,
			Reason: fmt.Sprintf("%d events need %d timestamps, got %d", len(xs), len(xs)+1, len(times)),
		}
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, &ValidationError{
				ID:     id,
				Reason: fmt.Sprintf("timestamps not ascending at index %d", i),
			}
		}
	}

	events := make([]Event, len(xs))
	for i := range xs {
		events[i] = Event{X: xs[i], Y: ys[i], Start: times[i], End: times[i+1]}
	}
	return &Trajectory{id: id, events: events}, nil
}

// ID returns the caller-supplied identifier.
func (t *Trajectory) ID() string { return t.id }

// NumEvents returns the number of raw events.
func (t *Trajectory) NumEvents() int { return len(t.events) }

// Duration returns the total trajectory duration, last timestamp minus
// first. Zero for an empty trajectory.
func (t *Trajectory) Duration() float64 {
	if len(t.events) == 0 {
		return 0
	}
	return t.events[len(t.events)-1].End - t.events[0].Start
}

// Events returns a copy of the raw event sequence.
func (t *Trajectory) Events() []Event {
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}

// Samples returns the raw (x, y) pairs, in order, for quantization
// resolution across a whole grid.
func (t *Trajectory) Samples() []quantize.Sample {
	out := make([]quantize.Sample, len(t.events))
	for i, e := range t.events {
		out[i] = quantize.Sample{X: e.X, Y: e.Y}
	}
	return out
}

// States quantizes the events and merges temporally consecutive events
// that land in the same cell into dwell states. Merging sums durations
// and keeps the first start and last end. The scan is deterministic and
// idempotent: an already-merged sequence passes through unchanged.
func (t *Trajectory) States(q *quantize.Quantizer) ([]State, error) {
	var states []State
	for _, e := range t.events {
		cell, err := q.Cell(e.X, e.Y)
		if err != nil {
			return nil, fmt.Errorf("trajectory %s: %w", t.id, err)
		}
		if n := len(states); n > 0 && states[n-1].Cell == cell {
			states[n-1].End = e.End
			states[n-1].Duration += e.Duration()
			continue
		}
		states = append(states, State{
			Cell:     cell,
			Start:    e.Start,
			End:      e.End,
			Duration: e.Duration(),
		})
	}
	return states, nil
}

// NumVisits counts the merged states. Returning to a cell after leaving
// it counts as a new visit.
func (t *Trajectory) NumVisits(q *quantize.Quantizer) (int, error) {
	states, err := t.States(q)
	if err != nil {
		return 0, err
	}
	return len(states), nil
}

// CellRange counts the distinct cells visited. A revisited cell counts
// once.
func (t *Trajectory) CellRange(q *quantize.Quantizer) (int, error) {
	states, err := t.States(q)
	if err != nil {
		return 0, err
	}
	seen := make(map[quantize.Cell]struct{}, len(states))
	for _, s := range states {
		seen[s.Cell] = struct{}{}
	}
	return len(seen), nil
}

// CellDurations returns the cumulative dwell duration per visited cell.
func (t *Trajectory) CellDurations(q *quantize.Quantizer) (map[quantize.Cell]float64, error) {
	states, err := t.States(q)
	if err != nil {
		return nil, err
	}
	durations := make(map[quantize.Cell]float64, len(states))
	for _, s := range states {
		durations[s.Cell] += s.Duration
	}
	return durations, nil
}

// Dispersion measures how evenly the trajectory's duration spreads over
// the grid's cells, normalised to [0,1]. It is NaN (undefined, not an
// error) when the grid has a single cell or the trajectory has zero
// duration.
func (t *Trajectory) Dispersion(q *quantize.Quantizer) (float64, error) {
	durations, err := t.CellDurations(q)
	if err != nil {
		return 0, err
	}
	return DispersionOf(durations, t.Duration(), q.NumCells()), nil
}

// DispersionOf computes the dispersion of the given per-cell durations on
// a grid of totalCells cells:
//
//	1 - (n*sum((d_i/D)^2) - 1) / (n - 1)
//
// NaN when totalCells <= 1 or total <= 0.
func DispersionOf(durations map[quantize.Cell]float64, total float64, totalCells int) float64 {
	if totalCells <= 1 || total <= 0 {
		return math.NaN()
	}
	var sumSq float64
	for _, d := range durations {
		p := d / total
		sumSq += p * p
	}
	n := float64(totalCells)
	return 1 - (n*sumSq-1)/(n-1)
}
