package redis

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-advisor/backend/pkg/config"
)

func TestNew_Disabled(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{Enabled: false})
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.Nil(t, client.Redis())
	assert.NoError(t, client.Close())
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(Disabled(), "test")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", "value", time.Minute))

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, result)

	assert.NoError(t, cache.Delete(ctx, "key"))
}

func TestRateLimiter_LocalFallback(t *testing.T) {
	limiter := NewRateLimiter(Disabled(), "test")
	cfg := RateLimitConfig{Key: "burst", Limit: 3, Window: time.Hour}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, err := limiter.Allow(ctx, cfg)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i)
	}

	allowed, remaining, err := limiter.Allow(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)

	// 다른 키는 독립
	allowed, _, err = limiter.Allow(ctx, RateLimitConfig{Key: "other", Limit: 3, Window: time.Hour})
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestWindowMember_UniqueWithinMillisecond(t *testing.T) {
	a := windowMember(1700000000000)
	b := windowMember(1700000000000)
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "1700000000000-"))
}

func TestRateLimiter_RedisCountsEveryRequest(t *testing.T) {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		t.Skip("REDIS_HOST not set")
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	ctx := context.Background()
	client, err := New(ctx, config.RedisConfig{Host: host, Port: port, Enabled: true})
	require.NoError(t, err)
	defer client.Close()

	limiter := NewRateLimiter(client, "test")
	cfg := RateLimitConfig{Key: "burst:" + uuid.NewString(), Limit: 5, Window: time.Minute}
	defer client.Redis().Del(ctx, "test:ratelimit:"+cfg.Key)

	// 같은 밀리초에 몰린 요청도 각각 집계
	for i := 0; i < cfg.Limit; i++ {
		allowed, remaining, err := limiter.Allow(ctx, cfg)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i)
		assert.Equal(t, cfg.Limit-i-1, remaining)
	}
	allowed, _, err := limiter.Allow(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCacheKeys(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{
			name:     "RecommendationKey",
			got:      RecommendationKey("AAPL", "0123456789abcdef0123", "d1g3st"),
			expected: "recommendation:AAPL:0123456789ab:d1g3st",
		},
		{
			name:     "RecommendationKey short hash",
			got:      RecommendationKey("MSFT", "abc", "x"),
			expected: "recommendation:MSFT:abc:x",
		},
		{
			name:     "PerformanceKey",
			got:      PerformanceKey("portfolio:42"),
			expected: "signals:performance:portfolio:42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestSignalWriteLimit(t *testing.T) {
	cfg := SignalWriteLimit("user:u1")
	assert.Equal(t, "signals:user:u1", cfg.Key)
	assert.Equal(t, 60, cfg.Limit)
	assert.Equal(t, time.Minute, cfg.Window)
}
