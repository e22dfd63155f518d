package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens dsn (a file path or ":memory:") and runs the migrations.
func OpenSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A :memory: database exists per connection.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS diagnoses (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			patient_name TEXT NOT NULL DEFAULT '',
			input TEXT NOT NULL,
			response TEXT NOT NULL,
			critical INTEGER NOT NULL DEFAULT 0,
			keywords TEXT NOT NULL DEFAULT '[]',
			report_file TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_diagnoses_session ON diagnoses(session_id, created_at)`,
	}
	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

func (s *SQLite) Record(ctx context.Context, e Entry) error {
	keywords, err := json.Marshal(e.Keywords)
	if err != nil {
		return fmt.Errorf("encode keywords: %w", err)
	}
	if e.Keywords == nil {
		keywords = []byte("[]")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO diagnoses (id, session_id, kind, patient_name, input, response, critical, keywords, report_file, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SessionID, e.Kind, e.PatientName, e.Input, e.Response, e.Critical, string(keywords), e.ReportFile, e.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert diagnosis: %w", err)
	}
	return nil
}

func (s *SQLite) List(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, kind, patient_name, input, response, critical, keywords, report_file, created_at
		   FROM diagnoses
		  WHERE ? = '' OR session_id = ?
		  ORDER BY created_at DESC, rowid DESC
		  LIMIT ?`,
		sessionID, sessionID, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query diagnoses: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e        Entry
			keywords string
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Kind, &e.PatientName, &e.Input, &e.Response,
			&e.Critical, &keywords, &e.ReportFile, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan diagnosis: %w", err)
		}
		if err := json.Unmarshal([]byte(keywords), &e.Keywords); err != nil {
			return nil, fmt.Errorf("decode keywords: %w", err)
		}
		if len(e.Keywords) == 0 {
			e.Keywords = nil
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
