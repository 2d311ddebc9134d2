// Package store persists prediction records in a local sqlite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/cyclone-inference-service/internal/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS predictions (
		id               TEXT PRIMARY KEY,
		sea_surface_temp REAL NOT NULL,
		pressure         REAL NOT NULL,
		humidity         REAL NOT NULL,
		wind_shear       REAL NOT NULL,
		vorticity        REAL NOT NULL,
		latitude         REAL NOT NULL,
		ocean_depth      REAL NOT NULL,
		proximity        REAL NOT NULL,
		disturbance      INTEGER NOT NULL,
		class            INTEGER NOT NULL,
		probability      REAL,
		created_at       TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions (created_at);
`

// SQLite stores prediction records. Safe for concurrent use; database/sql
// serializes access to the single writer sqlite allows.
type SQLite struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// SavePrediction inserts one record.
func (s *SQLite) SavePrediction(ctx context.Context, rec domain.PredictionRecord) error {
	var probability sql.NullFloat64
	if rec.Probability != nil {
		probability = sql.NullFloat64{Float64: *rec.Probability, Valid: true}
	}

	f := rec.Features
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO predictions (
			id, sea_surface_temp, pressure, humidity, wind_shear, vorticity,
			latitude, ocean_depth, proximity, disturbance, class, probability, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, f.SeaSurfaceTemp, f.Pressure, f.Humidity, f.WindShear, f.Vorticity,
		f.Latitude, f.OceanDepth, f.Proximity, int(f.Disturbance), rec.Class, probability,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert prediction %s: %w", rec.ID, err)
	}
	return nil
}

// RecentPredictions returns up to limit records, newest first.
func (s *SQLite) RecentPredictions(ctx context.Context, limit int) ([]domain.PredictionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sea_surface_temp, pressure, humidity, wind_shear, vorticity,
		       latitude, ocean_depth, proximity, disturbance, class, probability, created_at
		FROM predictions
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	records := make([]domain.PredictionRecord, 0, limit)
	for rows.Next() {
		var (
			rec         domain.PredictionRecord
			disturbance int
			probability sql.NullFloat64
			createdAt   string
		)
		f := &rec.Features
		if err := rows.Scan(
			&rec.ID, &f.SeaSurfaceTemp, &f.Pressure, &f.Humidity, &f.WindShear, &f.Vorticity,
			&f.Latitude, &f.OceanDepth, &f.Proximity, &disturbance, &rec.Class, &probability, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		f.Disturbance = float64(disturbance)
		if probability.Valid {
			rec.Probability = &probability.Float64
		}
		rec.Label = domain.Prediction{Class: rec.Class}.Label()
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at for %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Ping verifies the database is reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}
