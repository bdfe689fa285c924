// Package storage persists scans and reports to PostgreSQL.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/reconprobe/reconprobe/pkg/models"
)

const (
	connectRetries = 5
	retryDelay     = 2 * time.Second
)

// Store wraps the PostgreSQL connection used by the agent.
type Store struct {
	db *sql.DB
}

// Open connects to PostgreSQL with retries and verifies the connection.
func Open(databaseURL string) (*Store, error) {
	var db *sql.DB
	var err error

	for i := 0; i < connectRetries; i++ {
		db, err = sql.Open("postgres", databaseURL)
		if err == nil {
			if err = db.Ping(); err == nil {
				return &Store{db: db}, nil
			}
			db.Close()
		}
		time.Sleep(retryDelay)
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", connectRetries, err)
}

// Init creates the schema when it does not already exist.
func (s *Store) Init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scans (
		id VARCHAR(36) PRIMARY KEY,
		target TEXT NOT NULL,
		status VARCHAR(16) NOT NULL,
		total_probes INTEGER NOT NULL DEFAULT 0,
		open_ports INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS port_results (
		id SERIAL PRIMARY KEY,
		scan_id VARCHAR(36) NOT NULL REFERENCES scans(id),
		host TEXT NOT NULL,
		port INTEGER NOT NULL,
		is_open BOOLEAN NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS reports (
		id SERIAL PRIMARY KEY,
		scan_id VARCHAR(36) NOT NULL,
		report JSONB NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_port_results_scan_id ON port_results(scan_id);
	CREATE INDEX IF NOT EXISTS idx_reports_scan_id ON reports(scan_id);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// CreateScan records a new pending scan.
func (s *Store) CreateScan(id, target string, totalProbes int) error {
	_, err := s.db.Exec(
		`INSERT INTO scans (id, target, status, total_probes) VALUES ($1, $2, 'running', $3)`,
		id, target, totalProbes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert scan: %w", err)
	}
	return nil
}

// SavePortResult records one probe outcome and bumps the open counter.
func (s *Store) SavePortResult(scanID string, r models.PortResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO port_results (scan_id, host, port, is_open) VALUES ($1, $2, $3, $4)`,
		scanID, r.Host, r.Port, r.IsOpen,
	)
	if err != nil {
		return fmt.Errorf("failed to insert port result: %w", err)
	}

	if r.IsOpen {
		_, err = tx.Exec(
			`UPDATE scans SET open_ports = open_ports + 1, updated_at = NOW() WHERE id = $1`,
			scanID,
		)
		if err != nil {
			return fmt.Errorf("failed to update open port count: %w", err)
		}
	}

	return tx.Commit()
}

// SaveReport persists the final report JSON and marks the scan completed.
func (s *Store) SaveReport(r *models.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if _, err := s.db.Exec(`INSERT INTO reports (scan_id, report) VALUES ($1, $2)`, r.ScanID, data); err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	_, err = s.db.Exec(
		`UPDATE scans SET status = 'completed', updated_at = NOW(), completed_at = NOW() WHERE id = $1`,
		r.ScanID,
	)
	if err != nil {
		// The report row is already persisted even when the scans table is missing.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "42P01" {
			return nil
		}
		return fmt.Errorf("failed to update scan status: %w", err)
	}
	return nil
}

// MarkFailed flags a scan that could not complete.
func (s *Store) MarkFailed(scanID string) error {
	_, err := s.db.Exec(
		`UPDATE scans SET status = 'failed', updated_at = NOW() WHERE id = $1`,
		scanID,
	)
	return err
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
