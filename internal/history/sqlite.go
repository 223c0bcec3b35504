package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"worklog-go/internal/history/migrations"
)

// SQLiteStore implements Store on a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the run-history database at path and
// brings its schema up to date. path can be ":memory:" for tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating run history schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// OpenConnection opens and configures a SQLite connection.
// Exported for tests that need a raw connection with the same PRAGMAs.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

func (s *SQLiteStore) CreateRun(operation string) (*Run, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO runs (operation, started_at, status) VALUES (?, ?, ?)`,
		operation, now, StatusRunning,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading run id: %w", err)
	}

	return &Run{
		ID:        id,
		Operation: operation,
		StartedAt: now,
		Status:    StatusRunning,
	}, nil
}

func (s *SQLiteStore) FinishRun(id int64, status string, counts Counts) error {
	_, err := s.db.Exec(
		`UPDATE runs
		 SET finished_at = ?, status = ?,
		     created_count = ?, moved_count = ?, skipped_count = ?, failed_count = ?
		 WHERE id = ?`,
		time.Now().UTC(), status,
		counts.Created, counts.Moved, counts.Skipped, counts.Failed, id,
	)
	if err != nil {
		return fmt.Errorf("finishing run %d: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	rows, err := s.db.Query(
		`SELECT id, operation, started_at, finished_at, status,
		        created_count, moved_count, skipped_count, failed_count
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Operation, &r.StartedAt, &r.FinishedAt, &r.Status,
			&r.Created, &r.Moved, &r.Skipped, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
