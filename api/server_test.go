package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DyadicSolutions/StateSpaceGridLib/grid"
	"github.com/DyadicSolutions/StateSpaceGridLib/store"
)

func testServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewServer(st), st
}

func TestHandleRun(t *testing.T) {
	t.Parallel()

	srv, st := testServer(t)
	require.NoError(t, st.SaveRun("run-1", grid.Measures{
		TrajectoryIDs:    []string{"dyad-1"},
		MeanDuration:     12.5,
		OverallCellRange: 3,
		Dispersion:       math.NaN(),
		VisitedEntropy:   0.5,
	}))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/run?run_id=run-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		RunID  string   `json:"run_id"`
		Fields []string `json:"fields"`
		Record []string `json:"record"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	assert.Equal(t, "run-1", payload.RunID)
	assert.Equal(t, grid.Header(), payload.Fields)

	// records parse back, sentinels intact
	m, err := grid.ParseRecord(payload.Record)
	require.NoError(t, err)
	assert.Equal(t, 12.5, m.MeanDuration)
	assert.True(t, math.IsNaN(m.Dispersion))
}

func TestHandleRunNotFound(t *testing.T) {
	t.Parallel()

	srv, _ := testServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/run?run_id=nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleRunMissingParam(t *testing.T) {
	t.Parallel()

	srv, _ := testServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/run", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRunsList(t *testing.T) {
	t.Parallel()

	srv, st := testServer(t)
	require.NoError(t, st.SaveRun("run-a", grid.Measures{TrajectoryIDs: []string{"t1"}}))
	require.NoError(t, st.SaveRun("run-b", grid.Measures{TrajectoryIDs: []string{"t2"}}))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload []struct {
		RunID string `json:"run_id"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	assert.Len(t, payload, 2)
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	srv, _ := testServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/runs", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
