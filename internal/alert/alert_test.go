package alert

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopPublish(t *testing.T) {
	assert.NoError(t, Nop{}.Publish(context.Background(), Event{SessionID: "s1"}))
}

func TestNewRedisQueueDefaultName(t *testing.T) {
	q := NewRedisQueue(nil, "")
	assert.Equal(t, DefaultQueue, q.Name())
}

func TestRedisQueuePublish(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	name := "gomedic:test:" + uuid.NewString()
	defer client.Del(ctx, name)
	q := NewRedisQueue(client, name)

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, q.Publish(ctx, Event{SessionID: "s1", Patient: "Jane Doe", Keywords: []string{"chest pain"}, At: at}))

	raw, err := client.LPop(ctx, name).Result()
	require.NoError(t, err)

	var got Event
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, "Jane Doe", got.Patient)
	assert.Equal(t, []string{"chest pain"}, got.Keywords)
	assert.True(t, at.Equal(got.At))
}
