// Package store persists computed measure records to SQLite so that
// batch runs over many trajectory files can be queried and exported
// later. One row per run: the run id, the trajectory ids evaluated
// together, and the flat numeric record.
//
// Undefined measures (NaN sentinels) are stored as SQL NULL and restored
// as NaN on read.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/DyadicSolutions/StateSpaceGridLib/grid"
	"github.com/DyadicSolutions/StateSpaceGridLib/internal/timeutil"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when a run id has no stored record.
var ErrNotFound = errors.New("store: run not found")

// Store wraps the SQLite database holding measure runs.
type Store struct {
	db    *sql.DB
	clock timeutil.Clock
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to stamp saved runs.
func WithClock(c timeutil.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// Run is one stored measure record with its metadata.
type Run struct {
	ID        string
	CreatedAt time.Time
	Measures  grid.Measures
}

// Open opens (creating if necessary) the database at path and applies any
// pending schema migrations.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	s := &Store{db: db, clock: timeutil.RealClock{}}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("store: load migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("store: migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("store: migration up failed: %w", err)
	}
	return nil
}

// SaveRun inserts one measure record under the given run id.
func (s *Store) SaveRun(runID string, m grid.Measures) error {
	_, err := s.db.Exec(`
		INSERT INTO measure_runs (
			run_id, trajectory_ids,
			mean_duration, mean_number_of_events, mean_number_of_visits,
			mean_cell_range, overall_cell_range,
			mean_duration_per_event, mean_duration_per_visit, mean_duration_per_cell,
			dispersion, undefined_dispersion, visited_entropy,
			created_at_unix
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		strings.Join(m.TrajectoryIDs, ";"),
		nullable(m.MeanDuration),
		nullable(m.MeanNumberOfEvents),
		nullable(m.MeanNumberOfVisits),
		nullable(m.MeanCellRange),
		m.OverallCellRange,
		nullable(m.MeanDurationPerEvent),
		nullable(m.MeanDurationPerVisit),
		nullable(m.MeanDurationPerCell),
		nullable(m.Dispersion),
		strings.Join(m.UndefinedDispersion, ";"),
		nullable(m.VisitedEntropy),
		s.clock.Now().UTC().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store: save run %s: %w", runID, err)
	}
	return nil
}

// Run fetches one stored record by id.
func (s *Store) Run(runID string) (Run, error) {
	row := s.db.QueryRow(`
		SELECT run_id, trajectory_ids,
			mean_duration, mean_number_of_events, mean_number_of_visits,
			mean_cell_range, overall_cell_range,
			mean_duration_per_event, mean_duration_per_visit, mean_duration_per_cell,
			dispersion, undefined_dispersion, visited_entropy,
			created_at_unix
		FROM measure_runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	return run, err
}

// ListRuns returns all stored runs, most recent first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT run_id, trajectory_ids,
			mean_duration, mean_number_of_events, mean_number_of_visits,
			mean_cell_range, overall_cell_range,
			mean_duration_per_event, mean_duration_per_visit, mean_duration_per_cell,
			dispersion, undefined_dispersion, visited_entropy,
			created_at_unix
		FROM measure_runs ORDER BY created_at_unix DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run       Run
		ids       string
		undefined string
		md        sql.NullFloat64
		me        sql.NullFloat64
		mv        sql.NullFloat64
		mr        sql.NullFloat64
		pe        sql.NullFloat64
		pv        sql.NullFloat64
		pc        sql.NullFloat64
		disp      sql.NullFloat64
		entropy   sql.NullFloat64
		createdAt int64
	)
	err := row.Scan(
		&run.ID, &ids,
		&md, &me, &mv, &mr,
		&run.Measures.OverallCellRange,
		&pe, &pv, &pc,
		&disp, &undefined, &entropy,
		&createdAt,
	)
	if err != nil {
		return Run{}, err
	}
	run.CreatedAt = time.Unix(createdAt, 0).UTC()
	run.Measures.TrajectoryIDs = splitIDs(ids)
	run.Measures.UndefinedDispersion = splitIDs(undefined)
	run.Measures.MeanDuration = denull(md)
	run.Measures.MeanNumberOfEvents = denull(me)
	run.Measures.MeanNumberOfVisits = denull(mv)
	run.Measures.MeanCellRange = denull(mr)
	run.Measures.MeanDurationPerEvent = denull(pe)
	run.Measures.MeanDurationPerVisit = denull(pv)
	run.Measures.MeanDurationPerCell = denull(pc)
	run.Measures.Dispersion = denull(disp)
	run.Measures.VisitedEntropy = denull(entropy)
	return run, nil
}

// nullable maps NaN sentinels to NULL for storage.
func nullable(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func denull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ";")
}
