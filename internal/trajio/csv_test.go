package trajio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DyadicSolutions/StateSpaceGridLib/quantize"
	"github.com/DyadicSolutions/StateSpaceGridLib/trajectory"
)

func TestReadNumericTrajectory(t *testing.T) {
	t.Parallel()

	d, err := Read(strings.NewReader("onset,x,y\n0,1,2\n1,1,2\n2,3,3\n3,,\n"))
	require.NoError(t, err)

	require.Len(t, d.X, 3)
	assert.Equal(t, []float64{0, 1, 2, 3}, d.Times)
	assert.Equal(t, quantize.Num(1), d.X[0])
	assert.Equal(t, quantize.Num(3), d.Y[2])

	// the output feeds straight into trajectory construction
	_, err = trajectory.New("t1", d.X, d.Y, d.Times)
	require.NoError(t, err)
}

func TestReadCategoricalValues(t *testing.T) {
	t.Parallel()

	d, err := Read(strings.NewReader("onset,x,y\n0,calm,3\n2.5,tense,4\n4,,\n"))
	require.NoError(t, err)

	assert.Equal(t, quantize.Label("calm"), d.X[0])
	assert.Equal(t, quantize.Label("tense"), d.X[1])
	assert.Equal(t, quantize.Num(4), d.Y[1])
	assert.Equal(t, []float64{0, 2.5, 4}, d.Times)
}

func TestReadErrors(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing header", "0,1,2\n1,,\n"},
		{"header only", "onset,x,y\n"},
		{"no closing fencepost", "onset,x,y\n0,1,2\n"},
		{"missing value mid-file", "onset,x,y\n0,1,\n1,1,2\n2,,\n"},
		{"bad onset", "onset,x,y\nzero,1,2\n1,,\n"},
		{"wrong arity", "onset,x\n0,1\n"},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Read(strings.NewReader(tc.input))
			require.Error(t, err)
		})
	}
}
