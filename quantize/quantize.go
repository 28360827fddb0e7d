// Package quantize derives the shared discretisation that places raw
// bivariate samples onto a grid of cells.
//
// Each axis of the grid carries its own ordering, value range and cell
// size. Numeric axes use natural numeric order; categorical axes require
// an explicit caller-supplied order. Once resolved, a Quantizer is a pure
// value-to-cell mapping and is stable for the lifetime of the grid that
// owns it.
package quantize

import (
	"fmt"
	"math"
	"strconv"
)

// Value is one raw observation on a single axis: either a numeric reading
// or a categorical label.
type Value struct {
	label   string
	num     float64
	numeric bool
}

// Num wraps a numeric observation.
func Num(v float64) Value { return Value{num: v, numeric: true} }

// Label wraps a categorical observation.
func Label(s string) Value { return Value{label: s} }

// IsNumeric reports whether the value is a numeric reading.
func (v Value) IsNumeric() bool { return v.numeric }

// Float returns the numeric reading. Only meaningful when IsNumeric is true.
func (v Value) Float() float64 { return v.num }

// String returns the label for categorical values and the shortest exact
// decimal representation for numeric ones. This is also the key used to
// match values against an explicit axis order.
func (v Value) String() string {
	if v.numeric {
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	}
	return v.label
}

// Sample is one raw (x, y) observation pair.
type Sample struct {
	X, Y Value
}

// AxisSpec is the caller-supplied configuration for one axis. All fields
// are optional; nil and empty fields are resolved from the observed data.
type AxisSpec struct {
	// Order is an explicit total order over the values the axis can take.
	// Required for categorical axes. When set, any observed value absent
	// from it is a configuration error.
	Order []string

	// Min and Max bound the axis. Numeric axes default to the observed
	// extrema; categorical axes ignore them (the order defines the range).
	Min, Max *float64

	// CellSize is the width of one cell. Defaults to 1 (numeric) or one
	// rank per cell (categorical).
	CellSize *float64
}

// Float returns a *float64 suitable for the optional AxisSpec fields.
func Float(v float64) *float64 { return &v }

// ConfigError reports an axis that cannot be resolved into a quantization:
// a categorical axis without an explicit order, an observed value missing
// from a supplied order, or an empty axis with no explicit range.
type ConfigError struct {
	Axis   string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("quantize: %s axis: %s", e.Axis, e.Reason)
}

// Cell is a discrete grid cell identifier.
type Cell struct {
	X, Y int
}

func (c Cell) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// axisQuant is a resolved single-axis quantization.
type axisQuant struct {
	name     string
	ranks    map[string]int // nil for purely numeric axes
	min      float64
	max      float64
	cellSize float64
	bins     int
}

// Quantizer maps raw (x, y) values to grid cells. Construct one with
// Resolve; the zero value is not usable.
type Quantizer struct {
	x, y axisQuant
}

// Resolve builds a Quantizer from the per-axis specs and the raw samples
// of every trajectory that will share the grid. Resolution is applied per
// axis independently:
//
//   - an explicit Order fixes the ranks; observed values outside it fail
//   - otherwise, if all observed values are numeric, natural numeric
//     order applies
//   - otherwise the axis is ambiguous and resolution fails; categorical
//     data always needs an explicit order
func Resolve(xSpec, ySpec AxisSpec, samples []Sample) (*Quantizer, error) {
	xs := make([]Value, len(samples))
	ys := make([]Value, len(samples))
	for i, s := range samples {
		xs[i] = s.X
		ys[i] = s.Y
	}
	ax, err := resolveAxis("x", xSpec, xs)
	if err != nil {
		return nil, err
	}
	ay, err := resolveAxis("y", ySpec, ys)
	if err != nil {
		return nil, err
	}
	return &Quantizer{x: ax, y: ay}, nil
}

func resolveAxis(name string, spec AxisSpec, values []Value) (axisQuant, error) {
	if len(spec.Order) > 0 {
		return resolveOrdered(name, spec, values)
	}

	numeric := true
	for _, v := range values {
		if !v.IsNumeric() {
			numeric = false
			break
		}
	}
	if !numeric {
		return axisQuant{}, &ConfigError{
			Axis:   name,
			Reason: "categorical values need an explicit order",
		}
	}
	return resolveNumeric(name, spec, values)
}

func resolveOrdered(name string, spec AxisSpec, values []Value) (axisQuant, error) {
	ranks := make(map[string]int, len(spec.Order))
	for i, label := range spec.Order {
		if _, dup := ranks[label]; dup {
			return axisQuant{}, &ConfigError{
				Axis:   name,
				Reason: fmt.Sprintf("duplicate value %q in order", label),
			}
		}
		ranks[label] = i
	}
	for _, v := range values {
		if _, ok := ranks[v.String()]; !ok {
			return axisQuant{}, &ConfigError{
				Axis:   name,
				Reason: fmt.Sprintf("observed value %q absent from order", v.String()),
			}
		}
	}

	cellSize := 1.0
	if spec.CellSize != nil {
		cellSize = *spec.CellSize
	}
	if cellSize <= 0 {
		return axisQuant{}, &ConfigError{Axis: name, Reason: "cell size must be positive"}
	}
	bins := int(math.Ceil(float64(len(ranks)) / cellSize))
	return axisQuant{
		name:     name,
		ranks:    ranks,
		min:      0,
		max:      float64(len(ranks) - 1),
		cellSize: cellSize,
		bins:     bins,
	}, nil
}

func resolveNumeric(name string, spec AxisSpec, values []Value) (axisQuant, error) {
	var min, max float64
	switch {
	case spec.Min != nil && spec.Max != nil:
		min, max = *spec.Min, *spec.Max
	case len(values) == 0:
		return axisQuant{}, &ConfigError{
			Axis:   name,
			Reason: "no samples and no explicit range",
		}
	default:
		min, max = values[0].Float(), values[0].Float()
		for _, v := range values[1:] {
			min = math.Min(min, v.Float())
			max = math.Max(max, v.Float())
		}
		if spec.Min != nil {
			min = *spec.Min
		}
		if spec.Max != nil {
			max = *spec.Max
		}
	}
	if max < min {
		return axisQuant{}, &ConfigError{Axis: name, Reason: "max below min"}
	}

	cellSize := 1.0
	if spec.CellSize != nil {
		cellSize = *spec.CellSize
	}
	if cellSize <= 0 {
		return axisQuant{}, &ConfigError{Axis: name, Reason: "cell size must be positive"}
	}
	return axisQuant{
		name:     name,
		min:      min,
		max:      max,
		cellSize: cellSize,
		bins:     int(math.Floor((max-min)/cellSize)) + 1,
	}, nil
}

// bin maps a raw value to the axis cell index. Values outside the resolved
// range clamp to the edge cells so that an explicit, narrower range never
// produces an index off the grid.
func (a *axisQuant) bin(v Value) (int, error) {
	if a.ranks != nil {
		rank, ok := a.ranks[v.String()]
		if !ok {
			return 0, &ConfigError{
				Axis:   a.name,
				Reason: fmt.Sprintf("observed value %q absent from order", v.String()),
			}
		}
		return int(float64(rank) / a.cellSize), nil
	}
	if !v.IsNumeric() {
		return 0, &ConfigError{
			Axis:   a.name,
			Reason: fmt.Sprintf("categorical value %q on numeric axis", v.String()),
		}
	}
	f := v.Float()
	if f < a.min {
		f = a.min
	}
	if f > a.max {
		f = a.max
	}
	idx := int(math.Floor((f - a.min) / a.cellSize))
	if idx >= a.bins {
		idx = a.bins - 1
	}
	return idx, nil
}

// Cell maps a raw (x, y) pair to its grid cell.
func (q *Quantizer) Cell(x, y Value) (Cell, error) {
	bx, err := q.x.bin(x)
	if err != nil {
		return Cell{}, err
	}
	by, err := q.y.bin(y)
	if err != nil {
		return Cell{}, err
	}
	return Cell{X: bx, Y: by}, nil
}

// GridSize returns the number of realizable cells along each axis.
func (q *Quantizer) GridSize() (nx, ny int) {
	return q.x.bins, q.y.bins
}

// NumCells returns the total number of realizable (x, y) cells. This is
// the n that normalises dispersion.
func (q *Quantizer) NumCells() int {
	return q.x.bins * q.y.bins
}
