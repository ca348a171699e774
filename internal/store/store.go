// Package store persists pipeline runs and their per-stage artifacts
// to a local sqlite database, the way internal/db persists sensor
// readings: pragmas tuned for a single-writer workload, schema
// embedded with go:embed, and migrations applied through
// golang-migrate on open. A run groups every artifact produced by one
// invocation of the pipeline's stages under a single uuid, so a later
// stage can be re-run against a cached earlier one without recomputing
// it (spec.md §6's "each stage is driven independently" — the store is
// what lets a driver resume from disk instead of keeping every stage
// resident at once).
package store

import (
	"bytes"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"

	"github.com/comove/tracepair/internal/config"
	"github.com/comove/tracepair/internal/errs"
	"github.com/comove/tracepair/internal/timeutil"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a sqlite connection holding the run/artifact cache.
type Store struct {
	db    *sql.DB
	clock timeutil.Clock
}

// Open opens (creating if necessary) the sqlite database at path,
// applies its pragmas, and migrates it to the latest schema version.
func Open(path string) (*Store, error) {
	const op = "store.Open"

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errs.New(errs.MalformedInput, op, err)
	}
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, errs.New(errs.MalformedInput, op, err)
	}

	s := &Store{db: db, clock: timeutil.RealClock{}}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// SetClock overrides the store's time source, for tests that need
// deterministic created_at timestamps.
func (s *Store) SetClock(c timeutil.Clock) { s.clock = c }

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("exec %q: %w", p, err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

func migrationsSubFS() (fs.FS, error) {
	return fs.Sub(migrationsFS, "migrations")
}

// CreateRun allocates a fresh run id and records the configuration it
// was run with, returning the new run's uuid.
func (s *Store) CreateRun(cfg *config.RunConfig) (string, error) {
	const op = "store.CreateRun"

	raw, err := json.Marshal(cfg)
	if err != nil {
		return "", errs.New(errs.MalformedInput, op, err)
	}
	runID := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO runs (run_id, created_at, config_json) VALUES (?, ?, ?)`,
		runID, s.clock.Now().Unix(), string(raw),
	)
	if err != nil {
		return "", errs.New(errs.MalformedInput, op, err)
	}
	return runID, nil
}

// SaveArtifact stores the bytes produced by encode for the given run
// and stage, tagged with the feature parameters it was computed with
// and the wire format ("json" or "binary") encode wrote in.
func (s *Store) SaveArtifact(runID, stage, format string, params config.FeatureParameters, encode func(w *bytes.Buffer) error) error {
	const op = "store.SaveArtifact"

	var buf bytes.Buffer
	if err := encode(&buf); err != nil {
		return err
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return errs.New(errs.MalformedInput, op, err)
	}

	_, err = s.db.Exec(
		`INSERT INTO artifacts (run_id, stage, format, parameters_json, blob, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (run_id, stage) DO UPDATE SET
		   format = excluded.format,
		   parameters_json = excluded.parameters_json,
		   blob = excluded.blob,
		   created_at = excluded.created_at`,
		runID, stage, format, string(paramsJSON), buf.Bytes(), s.clock.Now().Unix(),
	)
	if err != nil {
		return errs.New(errs.MalformedInput, op, err)
	}
	return nil
}

// LoadArtifact retrieves the stage's cached bytes for runID, the
// format they were written in, and the parameters they were computed
// with. Callers compare the returned parameters against their own
// configured FeatureParameters and reject a mismatch as
// errs.ParameterMismatch before decoding the blob.
func (s *Store) LoadArtifact(runID, stage string) (blob []byte, format string, params config.FeatureParameters, err error) {
	const op = "store.LoadArtifact"

	var paramsJSON string
	row := s.db.QueryRow(
		`SELECT format, parameters_json, blob FROM artifacts WHERE run_id = ? AND stage = ?`,
		runID, stage,
	)
	if scanErr := row.Scan(&format, &paramsJSON, &blob); scanErr != nil {
		return nil, "", config.FeatureParameters{}, errs.New(errs.RangeError, op, scanErr)
	}
	if unmarshalErr := json.Unmarshal([]byte(paramsJSON), &params); unmarshalErr != nil {
		return nil, "", config.FeatureParameters{}, errs.New(errs.MalformedInput, op, unmarshalErr)
	}
	return blob, format, params, nil
}

// Stages lists every stage name with a cached artifact for runID, in
// the order they were most recently written.
func (s *Store) Stages(runID string) ([]string, error) {
	const op = "store.Stages"

	rows, err := s.db.Query(`SELECT stage FROM artifacts WHERE run_id = ? ORDER BY created_at`, runID)
	if err != nil {
		return nil, errs.New(errs.MalformedInput, op, err)
	}
	defer rows.Close()

	var stages []string
	for rows.Next() {
		var stage string
		if err := rows.Scan(&stage); err != nil {
			return nil, errs.New(errs.MalformedInput, op, err)
		}
		stages = append(stages, stage)
	}
	return stages, rows.Err()
}
