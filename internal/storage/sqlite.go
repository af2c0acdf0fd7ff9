// Package storage persists finished runs in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/san-kum/reactorsim/internal/engine"
	"github.com/san-kum/reactorsim/internal/kinetics"
	"github.com/san-kum/reactorsim/internal/logging"
)

// DBName is the database file created inside the data directory.
const DBName = "runs.db"

// timeLayout has fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var ErrRunNotFound = errors.New("run not found")

type RunMetadata struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	CreatedAt  time.Time           `json:"created_at"`
	Integrator string              `json:"integrator"`
	Params     kinetics.Parameters `json:"params"`
	Summary    engine.Summary      `json:"summary"`
}

type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	logger *slog.Logger
}

// Open creates dir if needed and opens the run database inside it.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	dbPath := filepath.Join(dir, DBName)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug("run store opened", "path", dbPath)
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores the simulation's parameters, summary and every sample under a
// new run ID.
func (s *Store) Save(ctx context.Context, name string, sim *engine.Simulation) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	params, err := json.Marshal(sim.Params())
	if err != nil {
		return "", fmt.Errorf("failed to encode params: %w", err)
	}

	id := uuid.NewString()
	if name == "" {
		name = id[:8]
	}
	sum := sim.Summary()

	var promptTime sql.NullFloat64
	if sum.PromptCritical {
		promptTime = nullFloat(sum.PromptCriticalTime)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, name, created_at, integrator, params,
			samples, final_time, final_power, peak_power, peak_power_time,
			min_power, peak_dollars, prompt_critical_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, name, time.Now().UTC().Format(timeLayout), sim.Integrator(), string(params),
		sum.Samples, nullFloat(sum.FinalTime), nullFloat(sum.FinalPower), nullFloat(sum.PeakPower),
		nullFloat(sum.PeakPowerTime), nullFloat(sum.MinPower), nullFloat(sum.PeakDollars), promptTime)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO samples (run_id, idx, time, power, dollars, precursor) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer stmt.Close()

	for i, smp := range sim.Samples() {
		if _, err := stmt.ExecContext(ctx, id, i, smp.Time,
			nullFloat(smp.Power), nullFloat(smp.ReactivityDollars), nullFloat(smp.Precursor)); err != nil {
			return "", fmt.Errorf("failed to insert sample %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	s.logger.Debug("run saved", "id", id, "name", name, "samples", sum.Samples)
	return id, nil
}

const runColumns = `id, name, created_at, integrator, params,
	samples, final_time, final_power, peak_power, peak_power_time,
	min_power, peak_dollars, prompt_critical_time`

// List returns run metadata, newest first.
func (s *Store) List(ctx context.Context) ([]RunMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunMetadata
	for rows.Next() {
		meta, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

// Load returns the metadata of one run. id may be a unique prefix.
func (s *Store) Load(ctx context.Context, id string) (RunMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, id)
}

func (s *Store) load(ctx context.Context, id string) (RunMetadata, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? LIMIT 2`, id, id+"%")
	if err != nil {
		return RunMetadata{}, fmt.Errorf("failed to query run: %w", err)
	}
	defer rows.Close()

	var found []RunMetadata
	for rows.Next() {
		meta, err := scanRun(rows)
		if err != nil {
			return RunMetadata{}, err
		}
		if meta.ID == id {
			return meta, nil
		}
		found = append(found, meta)
	}
	if err := rows.Err(); err != nil {
		return RunMetadata{}, err
	}
	switch len(found) {
	case 0:
		return RunMetadata{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return found[0], nil
	default:
		return RunMetadata{}, fmt.Errorf("ambiguous run id prefix %q", id)
	}
}

// LoadSamples returns the stored history of a run in step order.
func (s *Store) LoadSamples(ctx context.Context, id string) ([]engine.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT time, power, dollars, precursor FROM samples WHERE run_id = ? ORDER BY idx`, meta.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	samples := make([]engine.Sample, 0, meta.Summary.Samples)
	for rows.Next() {
		var smp engine.Sample
		var power, dollars, precursor sql.NullFloat64
		if err := rows.Scan(&smp.Time, &power, &dollars, &precursor); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		smp.Power = floatOrNaN(power)
		smp.ReactivityDollars = floatOrNaN(dollars)
		smp.Precursor = floatOrNaN(precursor)
		samples = append(samples, smp)
	}
	return samples, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, meta.ID); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	s.logger.Debug("run deleted", "id", meta.ID)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunMetadata, error) {
	var meta RunMetadata
	var created, params string
	var finalTime, finalPower, peakPower, peakTime, minPower, peakDollars, promptTime sql.NullFloat64

	if err := row.Scan(&meta.ID, &meta.Name, &created, &meta.Integrator, &params,
		&meta.Summary.Samples, &finalTime, &finalPower, &peakPower, &peakTime,
		&minPower, &peakDollars, &promptTime); err != nil {
		return RunMetadata{}, fmt.Errorf("failed to scan run: %w", err)
	}

	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return RunMetadata{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	meta.CreatedAt = t
	if err := json.Unmarshal([]byte(params), &meta.Params); err != nil {
		return RunMetadata{}, fmt.Errorf("failed to decode params: %w", err)
	}

	meta.Summary.FinalTime = floatOrNaN(finalTime)
	meta.Summary.FinalPower = floatOrNaN(finalPower)
	meta.Summary.PeakPower = floatOrNaN(peakPower)
	meta.Summary.PeakPowerTime = floatOrNaN(peakTime)
	meta.Summary.MinPower = floatOrNaN(minPower)
	meta.Summary.PeakDollars = floatOrNaN(peakDollars)
	if promptTime.Valid {
		meta.Summary.PromptCritical = true
		meta.Summary.PromptCriticalTime = promptTime.Float64
	}
	return meta, nil
}

// nullFloat stores NaN as NULL. Infinities are kept.
func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v)}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
