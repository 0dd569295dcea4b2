package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient spins up a miniredis server and returns a client plus the server.
func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestStore_PutGet(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewWithClient(client, "test")
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "UniversalRateReminder")
	require.NoError(t, err)
	assert.False(t, ok)

	values := map[string]string{"Count": "2", "Dismissed": "false", "AppVersion": "1.0.0.0"}
	require.NoError(t, store.Put(ctx, "UniversalRateReminder", values))

	got, ok, err := store.Get(ctx, "UniversalRateReminder")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, values, got)

	// stored as a hash under the prefixed key
	assert.Equal(t, "2", mr.HGet("test:container:UniversalRateReminder", "Count"))
}

func TestStore_PutReplacesContainer(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewWithClient(client, "test")
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "c", map[string]string{"Count": "1", "Stale": "x"}))
	require.NoError(t, store.Put(ctx, "c", map[string]string{"Count": "2"}))

	got, ok, err := store.Get(ctx, "c")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"Count": "2"}, got)
}

func TestStore_Delete(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewWithClient(client, "")
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "c", map[string]string{"Count": "1"}))
	assert.True(t, mr.Exists("container:c"))

	require.NoError(t, store.Delete(ctx, "c"))
	require.NoError(t, store.Delete(ctx, "c"))
	_, ok, err := store.Get(ctx, "c")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ConnectionErrors(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewWithClient(client, "test")
	mr.Close()

	_, _, err := store.Get(context.Background(), "c")
	assert.Error(t, err)
	assert.Error(t, store.Put(context.Background(), "c", map[string]string{"Count": "1"}))
}

func TestNew_Unreachable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:1"
	cfg.DialTimeout = 100 * time.Millisecond
	_, err := New(cfg)
	assert.Error(t, err)
}
