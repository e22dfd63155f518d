// Package store keeps an optional, durable log of completed diagnoses.
//
// The log is separate from session state: sessions still expire after their idle
// period, while the log is an audit trail that is only written when enabled.
package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

const defaultListLimit = 50

var ErrMissingURL = errors.New("store: database url is required")

// Entry is one completed model interaction.
type Entry struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	Kind        string    `json:"kind"`
	PatientName string    `json:"patient_name,omitempty"`
	Input       string    `json:"input"`
	Response    string    `json:"response"`
	Critical    bool      `json:"critical"`
	Keywords    []string  `json:"keywords,omitempty"`
	ReportFile  string    `json:"report_file,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Log records entries and lists them back, newest first.
type Log interface {
	Record(ctx context.Context, e Entry) error
	List(ctx context.Context, sessionID string, limit int) ([]Entry, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open picks the backend from url: postgres:// and postgresql:// URLs use Postgres,
// anything else is treated as a SQLite DSN.
func Open(ctx context.Context, url string) (Log, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrMissingURL
	}
	if IsPostgresURL(url) {
		return OpenPostgres(ctx, url)
	}
	return OpenSQLite(ctx, url)
}

func IsPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return defaultListLimit
	}
	return limit
}
