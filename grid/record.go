package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// The flat tabular form of a Measures record. Field order is fixed and
// documented; sentinels (NaN) serialize explicitly so that field presence
// never depends on which measures were defined.

const idSeparator = ";"

var header = []string{
	"trajectory_ids",
	"mean_duration",
	"mean_number_of_events",
	"mean_number_of_visits",
	"mean_cell_range",
	"overall_cell_range",
	"mean_duration_per_event",
	"mean_duration_per_visit",
	"mean_duration_per_cell",
	"dispersion",
	"undefined_dispersion",
	"visited_entropy",
}

// Header returns the column names of the tabular form, in record order.
func Header() []string {
	out := make([]string, len(header))
	copy(out, header)
	return out
}

// Record returns the measures as one flat row matching Header. Floats use
// the shortest exact decimal representation, so parsing a record back
// reproduces every value bit for bit.
func (m Measures) Record() []string {
	return []string{
		strings.Join(m.TrajectoryIDs, idSeparator),
		formatFloat(m.MeanDuration),
		formatFloat(m.MeanNumberOfEvents),
		formatFloat(m.MeanNumberOfVisits),
		formatFloat(m.MeanCellRange),
		strconv.Itoa(m.OverallCellRange),
		formatFloat(m.MeanDurationPerEvent),
		formatFloat(m.MeanDurationPerVisit),
		formatFloat(m.MeanDurationPerCell),
		formatFloat(m.Dispersion),
		strings.Join(m.UndefinedDispersion, idSeparator),
		formatFloat(m.VisitedEntropy),
	}
}

// ParseRecord rebuilds a Measures value from a row produced by Record.
func ParseRecord(fields []string) (Measures, error) {
	if len(fields) != len(header) {
		return Measures{}, fmt.Errorf("grid: record has %d fields, want %d", len(fields), len(header))
	}
	var m Measures
	var err error
	m.TrajectoryIDs = splitIDs(fields[0])
	if m.MeanDuration, err = parseFloat(header[1], fields[1]); err != nil {
		return Measures{}, err
	}
	if m.MeanNumberOfEvents, err = parseFloat(header[2], fields[2]); err != nil {
		return Measures{}, err
	}
	if m.MeanNumberOfVisits, err = parseFloat(header[3], fields[3]); err != nil {
		return Measures{}, err
	}
	if m.MeanCellRange, err = parseFloat(header[4], fields[4]); err != nil {
		return Measures{}, err
	}
	if m.OverallCellRange, err = strconv.Atoi(fields[5]); err != nil {
		return Measures{}, fmt.Errorf("grid: field %s: %w", header[5], err)
	}
	if m.MeanDurationPerEvent, err = parseFloat(header[6], fields[6]); err != nil {
		return Measures{}, err
	}
	if m.MeanDurationPerVisit, err = parseFloat(header[7], fields[7]); err != nil {
		return Measures{}, err
	}
	if m.MeanDurationPerCell, err = parseFloat(header[8], fields[8]); err != nil {
		return Measures{}, err
	}
	if m.Dispersion, err = parseFloat(header[9], fields[9]); err != nil {
		return Measures{}, err
	}
	m.UndefinedDispersion = splitIDs(fields[10])
	if m.VisitedEntropy, err = parseFloat(header[11], fields[11]); err != nil {
		return Measures{}, err
	}
	return m, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("grid: field %s: %w", name, err)
	}
	return v, nil
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, idSeparator)
}
