// Package trajio reads trajectory files into the raw value and timestamp
// lists the core consumes. It performs no cleaning: inputs are expected
// to already be free of missing values.
//
// The format is CSV with an onset,x,y header. Each row is one event
// starting at the onset; the final row carries only the closing onset
// (the fencepost ending the last event) with empty x and y:
//
//	onset,x,y
//	0,3,calm
//	1.5,4,calm
//	3,4,tense
//	5,,
package trajio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/DyadicSolutions/StateSpaceGridLib/quantize"
)

// Data is the raw content of one trajectory file.
type Data struct {
	X     []quantize.Value
	Y     []quantize.Value
	Times []float64
}

// ReadFile reads one trajectory CSV from disk.
func ReadFile(path string) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, err
	}
	defer f.Close()
	d, err := Read(f)
	if err != nil {
		return Data{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Read parses trajectory CSV content.
func Read(r io.Reader) (Data, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return Data{}, err
	}
	if len(rows) == 0 {
		return Data{}, fmt.Errorf("trajio: empty file")
	}
	if !isHeader(rows[0]) {
		return Data{}, fmt.Errorf("trajio: missing onset,x,y header")
	}
	rows = rows[1:]
	if len(rows) == 0 {
		return Data{}, fmt.Errorf("trajio: no rows after header")
	}

	var d Data
	for i, row := range rows {
		if len(row) != 3 {
			return Data{}, fmt.Errorf("trajio: row %d: want 3 columns, got %d", i+2, len(row))
		}
		onset, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if err != nil {
			return Data{}, fmt.Errorf("trajio: row %d: bad onset %q", i+2, row[0])
		}
		d.Times = append(d.Times, onset)

		x := strings.TrimSpace(row[1])
		y := strings.TrimSpace(row[2])
		if i == len(rows)-1 && x == "" && y == "" {
			// closing fencepost
			return d, nil
		}
		if x == "" || y == "" {
			return Data{}, fmt.Errorf("trajio: row %d: missing value", i+2)
		}
		d.X = append(d.X, parseValue(x))
		d.Y = append(d.Y, parseValue(y))
	}
	return Data{}, fmt.Errorf("trajio: missing closing fencepost row")
}

func isHeader(row []string) bool {
	return len(row) == 3 &&
		strings.EqualFold(strings.TrimSpace(row[0]), "onset") &&
		strings.EqualFold(strings.TrimSpace(row[1]), "x") &&
		strings.EqualFold(strings.TrimSpace(row[2]), "y")
}

// parseValue treats anything that parses as a float as numeric and
// everything else as a categorical label.
func parseValue(s string) quantize.Value {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return quantize.Num(f)
	}
	return quantize.Label(s)
}
