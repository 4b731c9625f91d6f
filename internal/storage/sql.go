package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"gunit/internal/domain"
)

const queryTimeout = 10 * time.Second

var schema = []string{
	`CREATE TABLE IF NOT EXISTS gunit_runs (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		run_id CHAR(36) NOT NULL UNIQUE,
		meta JSON NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS gunit_failures (
		run_id CHAR(36) NOT NULL,
		position INT NOT NULL,
		full_name VARCHAR(1024) NOT NULL,
		status VARCHAR(32) NOT NULL,
		detail JSON NOT NULL,
		PRIMARY KEY (run_id, position)
	)`,
}

// SQLStorage keeps the run history in a MySQL database. Load returns the latest run.
type SQLStorage struct {
	db *sql.DB
}

// NewSQLStorage connects to dsn and creates the results tables if needed
func NewSQLStorage(dsn string) (*SQLStorage, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid results dsn: %w", err)
	}
	cfg.ParseTime = true

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database server: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database server: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create results schema: %w", err)
		}
	}
	return &SQLStorage{db: db}, nil
}

// Save inserts a new run with its failures
func (s *SQLStorage) Save(results []*domain.Result, failures []domain.TestFailure, duration time.Duration, workers int) error {
	return s.SaveOutput(NewOutput(results, failures, duration, workers))
}

// SaveOutput upserts the run and replaces its failures
func (s *SQLStorage) SaveOutput(output *domain.TestResultsOutput) error {
	meta, err := json.Marshal(output.Meta)
	if err != nil {
		return fmt.Errorf("marshal run meta: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO gunit_runs (run_id, meta, created_at) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE meta = VALUES(meta)`,
		output.Meta.RunID, meta, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save run %s: %w", output.Meta.RunID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM gunit_failures WHERE run_id = ?`, output.Meta.RunID); err != nil {
		return fmt.Errorf("clear failures of run %s: %w", output.Meta.RunID, err)
	}
	for i, f := range output.Details {
		detail, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("marshal failure %s: %w", f.FullName, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO gunit_failures (run_id, position, full_name, status, detail) VALUES (?, ?, ?, ?, ?)`,
			output.Meta.RunID, i, f.FullName, string(f.Status), detail)
		if err != nil {
			return fmt.Errorf("save failure %s: %w", f.FullName, err)
		}
	}
	return tx.Commit()
}

// Load reads the most recent run
func (s *SQLStorage) Load() (*domain.TestResultsOutput, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var runID string
	var meta []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, meta FROM gunit_runs ORDER BY id DESC LIMIT 1`).Scan(&runID, &meta)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no stored test runs")
	}
	if err != nil {
		return nil, fmt.Errorf("read last run: %w", err)
	}

	output := &domain.TestResultsOutput{Details: []domain.TestFailure{}}
	if err := json.Unmarshal(meta, &output.Meta); err != nil {
		return nil, fmt.Errorf("parse run meta: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT detail FROM gunit_failures WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("read failures of run %s: %w", runID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var detail []byte
		if err := rows.Scan(&detail); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		var f domain.TestFailure
		if err := json.Unmarshal(detail, &f); err != nil {
			return nil, fmt.Errorf("parse failure: %w", err)
		}
		output.Details = append(output.Details, f)
	}
	return output, rows.Err()
}

func (s *SQLStorage) Close() error {
	return s.db.Close()
}
