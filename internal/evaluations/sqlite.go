package evaluations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// SQLiteStore persists evaluations in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	dsn = strings.TrimPrefix(strings.TrimSpace(dsn), "sqlite://")
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS evaluations (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL UNIQUE,
			user_email TEXT NOT NULL,
			candidate_name TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			duration_minutes INTEGER NOT NULL,
			score_1 INTEGER NOT NULL,
			score_2 INTEGER NOT NULL,
			score_3 INTEGER NOT NULL,
			score_4 INTEGER NOT NULL,
			score_5 INTEGER NOT NULL,
			overall_score REAL NOT NULL,
			strength_1 TEXT NOT NULL,
			strength_2 TEXT NOT NULL,
			strength_3 TEXT NOT NULL,
			improvement_1 TEXT NOT NULL,
			improvement_2 TEXT NOT NULL,
			recommendation TEXT NOT NULL,
			transcript TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_email_created ON evaluations(user_email, created_at)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

func sqlitePlaceholder(int) string { return "?" }

func (s *SQLiteStore) Insert(ctx context.Context, record Record) error {
	record = prepareRecord(record, uuid.NewString, time.Now)
	_, err := s.db.ExecContext(ctx, insertStatement(sqlitePlaceholder), insertArgs(record)...)
	if err != nil {
		var sqErr sqlite3.Error
		if errors.As(err, &sqErr) && sqErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicate
		}
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Query(ctx context.Context, filter Filter) ([]Record, error) {
	q, args := selectStatement(filter, sqlitePlaceholder)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluation rows: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
