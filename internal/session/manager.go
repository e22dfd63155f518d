package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// Manager applies the idle-expiry policy on top of a Store. Each read-modify-write of a
// session happens under the manager's lock.
type Manager struct {
	mu        sync.Mutex
	store     Store
	namespace string
	idle      time.Duration
}

// NewManager scopes sessions under namespace so independent UIs sharing a store never
// see each other's history. A non-positive idle falls back to DefaultIdleTimeout.
func NewManager(store Store, namespace string, idle time.Duration) *Manager {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Manager{store: store, namespace: namespace, idle: idle}
}

// IdleTimeout returns the configured idle period.
func (m *Manager) IdleTimeout() time.Duration {
	return m.idle
}

func (m *Manager) key(id string) string {
	return m.namespace + ":" + id
}

// Begin is called at the start of every request. It creates the session on first
// access, clears it when expired, refreshes the activity timestamp and returns a copy.
func (m *Manager) Begin(ctx context.Context, id string, now time.Time) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.loadLocked(ctx, id, now)
	if err != nil {
		return nil, err
	}
	st.LastActivity = now
	if err := m.store.Put(ctx, m.key(id), st); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return st.clone(), nil
}

// Record appends in to the history and makes it the last interaction.
func (m *Manager) Record(ctx context.Context, id string, in Interaction, now time.Time) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.loadLocked(ctx, id, now)
	if err != nil {
		return nil, err
	}
	st.History = append(st.History, in)
	last := in
	st.Last = &last
	st.LastActivity = now
	if err := m.store.Put(ctx, m.key(id), st); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return st.clone(), nil
}

// Clear drops the session entirely.
func (m *Manager) Clear(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Delete(ctx, m.key(id))
}

func (m *Manager) loadLocked(ctx context.Context, id string, now time.Time) (*State, error) {
	st, err := m.store.Get(ctx, m.key(id))
	if errors.Is(err, ErrNotFound) {
		return &State{ID: id, LastActivity: now}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if Expired(now, st.LastActivity, m.idle) {
		log.Printf("session: %s expired after %s idle, clearing history", m.key(id), now.Sub(st.LastActivity).Round(time.Second))
		st.Reset()
	}
	st.ID = id
	return st, nil
}
