package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS diagnoses (
	id           TEXT PRIMARY KEY,
	session_id   TEXT NOT NULL,
	kind         TEXT NOT NULL,
	patient_name TEXT NOT NULL DEFAULT '',
	input        TEXT NOT NULL,
	response     TEXT NOT NULL,
	critical     BOOLEAN NOT NULL DEFAULT FALSE,
	keywords     TEXT[] NOT NULL DEFAULT '{}',
	report_file  TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_diagnoses_session ON diagnoses (session_id, created_at DESC);`

type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects, verifies the connection and creates the table if needed.
func OpenPostgres(ctx context.Context, url string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Record(ctx context.Context, e Entry) error {
	keywords := e.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO diagnoses (id, session_id, kind, patient_name, input, response, critical, keywords, report_file, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.SessionID, e.Kind, e.PatientName, e.Input, e.Response, e.Critical, keywords, e.ReportFile, e.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert diagnosis: %w", err)
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, session_id, kind, patient_name, input, response, critical, keywords, report_file, created_at
		   FROM diagnoses
		  WHERE $1::text = '' OR session_id = $1
		  ORDER BY created_at DESC
		  LIMIT $2`,
		sessionID, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query diagnoses: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Kind, &e.PatientName, &e.Input, &e.Response,
			&e.Critical, &e.Keywords, &e.ReportFile, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan diagnosis: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
