// Package alert publishes critical-condition events for downstream consumers.
package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultQueue = "gomedic:critical_events"

// Event describes one diagnosis flagged critical.
type Event struct {
	SessionID string    `json:"session_id"`
	Patient   string    `json:"patient"`
	Keywords  []string  `json:"keywords"`
	Report    string    `json:"report,omitempty"`
	At        time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// RedisQueue appends JSON events to a Redis list.
type RedisQueue struct {
	client *redis.Client
	name   string
}

func NewRedisQueue(client *redis.Client, name string) *RedisQueue {
	if name == "" {
		name = DefaultQueue
	}
	return &RedisQueue{client: client, name: name}
}

func (q *RedisQueue) Name() string { return q.name }

func (q *RedisQueue) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	if err := q.client.RPush(ctx, q.name, string(data)).Err(); err != nil {
		return fmt.Errorf("enqueue alert: %w", err)
	}
	return nil
}
