package infrastructure

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisGuard_FailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	guard := NewRedisGuard(rdb, time.Minute, nil)

	assert.True(t, guard.Acquire(context.Background(), "pi_offline"))
	assert.True(t, guard.Acquire(context.Background(), "pi_offline"))
	assert.Error(t, guard.Ping(context.Background()))
}

func TestRedisGuard_AcquireRelease(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	rdb, err := NewRedisClient(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	guard := NewRedisGuard(rdb, time.Minute, nil)
	ctx := context.Background()
	ref := "pi_" + uuid.NewString()

	assert.True(t, guard.Acquire(ctx, ref))
	assert.False(t, guard.Acquire(ctx, ref))

	guard.Release(ctx, ref)
	assert.True(t, guard.Acquire(ctx, ref))
	guard.Release(ctx, ref)
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := NewRedisClient("not a url")
	assert.Error(t, err)
}
