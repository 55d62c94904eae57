// Package sqlite mirrors the cleaned station table into a SQLite database and
// records one row per run.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/couchcryptid/air-station-etl/internal/domain"
)

const createRuns = `CREATE TABLE IF NOT EXISTS runs (
	run_id           TEXT PRIMARY KEY,
	generated_at     TEXT NOT NULL,
	station_count    INTEGER NOT NULL,
	air_record_count INTEGER NOT NULL,
	join_rows        INTEGER NOT NULL
)`

// Store writes reports to the database at path.
// It implements pipeline.Loader.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a Store. The database file is created on first Load.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Name identifies the sink in logs and errors.
func (s *Store) Name() string { return "sqlite" }

// Load replaces the stations table with the report's cleaned stations and
// appends the run to the runs table, in one transaction.
func (s *Store) Load(ctx context.Context, report *domain.Report) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create database dir: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := replaceStations(ctx, tx, report.Stations); err != nil {
		return err
	}
	if err := insertRun(ctx, tx, report); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("sqlite written", "path", s.path, "stations", len(report.Stations), "run_id", report.Run.ID)
	return nil
}

func replaceStations(ctx context.Context, tx *sql.Tx, stations []domain.StationRecord) error {
	defs := make([]string, len(domain.StationColumns))
	for i, c := range domain.StationColumns {
		defs[i] = fmt.Sprintf("%q TEXT", c)
	}

	stmts := []string{
		`DROP TABLE IF EXISTS stations`,
		`CREATE TABLE stations (` + strings.Join(defs, ", ") + `)`,
		`CREATE INDEX idx_stations_city_district ON stations(city, district)`,
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("prepare stations table: %w", err)
		}
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(domain.StationColumns)), ",")
	insert, err := tx.PrepareContext(ctx, `INSERT INTO stations VALUES (`+placeholders+`)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer insert.Close()

	for _, r := range stations {
		vals := r.Values()
		args := make([]any, len(vals))
		for i, v := range vals {
			args[i] = v
		}
		if _, err := insert.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert station %s: %w", r.StationNo, err)
		}
	}
	return nil
}

func insertRun(ctx context.Context, tx *sql.Tx, report *domain.Report) error {
	if _, err := tx.ExecContext(ctx, createRuns); err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, generated_at, station_count, air_record_count, join_rows) VALUES (?, ?, ?, ?, ?)`,
		report.Run.ID,
		report.Run.GeneratedAt.Format(time.RFC3339),
		len(report.Stations),
		len(report.AirQuality),
		len(report.CityJoin),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}
