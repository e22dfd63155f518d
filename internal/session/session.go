// Package session keeps per-browser interaction history with an idle expiry.
//
// A session that has been idle for longer than the configured duration is cleared
// before anything reads it again; the history is never kept past that point.
package session

import (
	"context"
	"errors"
	"time"
)

// DefaultIdleTimeout is the idle period after which history is discarded.
const DefaultIdleTimeout = 120 * time.Second

var ErrNotFound = errors.New("session not found")

type Kind string

const (
	KindImageChat Kind = "image_chat"
	KindDiagnosis Kind = "diagnosis"
)

// Interaction is one submission and the model's answer.
type Interaction struct {
	ID         string            `json:"id"`
	Kind       Kind              `json:"kind"`
	Fields     map[string]string `json:"fields"`
	Response   string            `json:"response"`
	Critical   bool              `json:"critical,omitempty"`
	Keywords   []string          `json:"keywords,omitempty"`
	ReportFile string            `json:"report_file,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

type State struct {
	ID           string        `json:"id"`
	History      []Interaction `json:"history"`
	Last         *Interaction  `json:"last,omitempty"`
	LastActivity time.Time     `json:"last_activity"`
}

// Expired reports whether more than idle has passed since lastActivity.
func Expired(now, lastActivity time.Time, idle time.Duration) bool {
	return now.Sub(lastActivity) > idle
}

// Reset discards history and the cached last interaction.
func (s *State) Reset() {
	s.History = nil
	s.Last = nil
}

// HasReport reports whether file was produced by an interaction still in history.
func (s *State) HasReport(file string) bool {
	if file == "" {
		return false
	}
	for _, in := range s.History {
		if in.ReportFile == file {
			return true
		}
	}
	return false
}

func (s *State) clone() *State {
	out := &State{ID: s.ID, LastActivity: s.LastActivity}
	if s.History != nil {
		out.History = make([]Interaction, len(s.History))
		copy(out.History, s.History)
	}
	if s.Last != nil {
		last := *s.Last
		out.Last = &last
	}
	return out
}

// Store persists session state under a key. Get returns ErrNotFound for unknown keys.
type Store interface {
	Get(ctx context.Context, key string) (*State, error)
	Put(ctx context.Context, key string, state *State) error
	Delete(ctx context.Context, key string) error
}
