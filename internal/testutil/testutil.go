//go:build integration

// Package testutil provides helpers for integration tests.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// redisImage is started when TEST_REDIS_URL is not set.
const redisImage = "redis:7-alpine"

// RedisURL returns the URL of an empty Redis database.
//
// TEST_REDIS_URL points the tests at an existing server, which is flushed
// first. Otherwise a container is started and terminated when the test ends.
func RedisURL(t testing.TB) string {
	t.Helper()

	ctx := context.Background()

	if url := os.Getenv("TEST_REDIS_URL"); url != "" {
		if err := FlushRedis(ctx, url); err != nil {
			t.Fatalf("failed to flush redis: %v", err)
		}
		return url
	}

	container, err := tcredis.Run(ctx, redisImage)
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get redis connection string: %v", err)
	}
	return url
}

// FlushRedis clears the Redis database at url.
func FlushRedis(ctx context.Context, url string) error {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return err
	}

	client := redis.NewClient(opts)
	defer client.Close()

	return client.FlushDB(ctx).Err()
}
