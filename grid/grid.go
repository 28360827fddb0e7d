// Package grid groups trajectories under one shared quantization and
// computes the published cross-trajectory measures.
//
// A Grid resolves its quantization once: either explicitly at
// construction or lazily from the union of every member trajectory's raw
// values on first use. Re-quantization within one Grid instance is not
// supported; callers wanting a different quantization construct a new
// Grid.
package grid

import (
	"errors"
	"fmt"

	"github.com/DyadicSolutions/StateSpaceGridLib/quantize"
	"github.com/DyadicSolutions/StateSpaceGridLib/trajectory"
)

// ErrNoTrajectories is returned when measures are requested for an empty
// trajectory set.
var ErrNoTrajectories = errors.New("grid: at least one trajectory required")

// ErrQuantized is returned when trajectories are added after the grid's
// quantization has been resolved.
var ErrQuantized = errors.New("grid: quantization already resolved, construct a new grid")

// Grid is a set of trajectories sharing one quantization, with cumulative
// per-cell duration and visit totals across the whole set.
type Grid struct {
	xSpec, ySpec quantize.AxisSpec

	q        *quantize.Quantizer
	inferred bool
	trajs    []*trajectory.Trajectory
	ids      map[string]struct{}

	cellDurations map[quantize.Cell]float64
	cellVisits    map[quantize.Cell]int
}

// Option configures a Grid at construction.
type Option func(*Grid)

// WithAxes supplies explicit per-axis quantization configuration. Fields
// left unset are still resolved from the member trajectories.
func WithAxes(x, y quantize.AxisSpec) Option {
	return func(g *Grid) {
		g.xSpec = x
		g.ySpec = y
	}
}

// WithQuantizer supplies a fully resolved quantization up front,
// overriding lazy inference entirely.
func WithQuantizer(q *quantize.Quantizer) Option {
	return func(g *Grid) { g.q = q }
}

// New constructs an empty Grid.
func New(opts ...Option) *Grid {
	g := &Grid{ids: make(map[string]struct{})}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Add registers trajectories as members of the grid. Ids must be unique
// within one grid. Adding after the quantization has been resolved fails
// with ErrQuantized, unless the quantizer was supplied explicitly at
// construction (then nothing was inferred from data).
func (g *Grid) Add(trajs ...*trajectory.Trajectory) error {
	if g.inferred || g.cellDurations != nil {
		return ErrQuantized
	}
	for _, traj := range trajs {
		if _, dup := g.ids[traj.ID()]; dup {
			return fmt.Errorf("grid: duplicate trajectory id %q", traj.ID())
		}
		g.ids[traj.ID()] = struct{}{}
		g.trajs = append(g.trajs, traj)
	}
	return nil
}

// Len returns the number of member trajectories.
func (g *Grid) Len() int { return len(g.trajs) }

// Trajectories returns the member trajectories in insertion order.
func (g *Grid) Trajectories() []*trajectory.Trajectory {
	out := make([]*trajectory.Trajectory, len(g.trajs))
	copy(out, g.trajs)
	return out
}

// Quantizer returns the shared quantization, resolving it from the union
// of the member trajectories' raw values if it was not supplied up front.
func (g *Grid) Quantizer() (*quantize.Quantizer, error) {
	if g.q != nil {
		return g.q, nil
	}
	var samples []quantize.Sample
	for _, traj := range g.trajs {
		samples = append(samples, traj.Samples()...)
	}
	q, err := quantize.Resolve(g.xSpec, g.ySpec, samples)
	if err != nil {
		return nil, err
	}
	g.q = q
	g.inferred = true
	return q, nil
}

// accumulate fills the cumulative per-cell totals. Runs once, single
// threaded.
func (g *Grid) accumulate() error {
	if g.cellDurations != nil {
		return nil
	}
	q, err := g.Quantizer()
	if err != nil {
		return err
	}
	durations := make(map[quantize.Cell]float64)
	visits := make(map[quantize.Cell]int)
	for _, traj := range g.trajs {
		states, err := traj.States(q)
		if err != nil {
			return err
		}
		for _, s := range states {
			durations[s.Cell] += s.Duration
			visits[s.Cell]++
		}
	}
	g.cellDurations = durations
	g.cellVisits = visits
	return nil
}

// CellDurations returns the cumulative dwell duration per cell across all
// member trajectories.
func (g *Grid) CellDurations() (map[quantize.Cell]float64, error) {
	if err := g.accumulate(); err != nil {
		return nil, err
	}
	out := make(map[quantize.Cell]float64, len(g.cellDurations))
	for c, d := range g.cellDurations {
		out[c] = d
	}
	return out, nil
}

// CellVisits returns the cumulative visit count per cell across all
// member trajectories.
func (g *Grid) CellVisits() (map[quantize.Cell]int, error) {
	if err := g.accumulate(); err != nil {
		return nil, err
	}
	out := make(map[quantize.Cell]int, len(g.cellVisits))
	for c, v := range g.cellVisits {
		out[c] = v
	}
	return out, nil
}
