package db

import (
	"context"
	"testing"
	"time"

	"storefront/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectRedis_URL(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := ConnectRedis(context.Background(), config.Config{RedisURL: "redis://" + mr.Addr() + "/0"})

	require.NoError(t, err)
	assert.NoError(t, client.Close())
}

func TestConnectRedis_Addr(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := ConnectRedis(context.Background(), config.Config{RedisAddr: mr.Addr()})

	require.NoError(t, err)
	assert.NoError(t, client.Close())
}

func TestConnectRedis_Errors(t *testing.T) {
	_, err := ConnectRedis(context.Background(), config.Config{RedisURL: "://bad"})
	assert.ErrorContains(t, err, "parse REDIS_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = ConnectRedis(ctx, config.Config{RedisAddr: "127.0.0.1:1"})
	assert.ErrorContains(t, err, "redis ping")
}
