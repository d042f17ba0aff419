package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRateLimiter(t testing.TB, maxRequests int, window, blockTime time.Duration) (*RateLimiter, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	rl := NewRateLimiter(client, RateLimiterConfig{
		MaxRequests: maxRequests,
		Window:      window,
		BlockTime:   blockTime,
		Prefix:      "ratelimit:test",
	})
	return rl, mr
}

func limitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})
	return router
}

func doRequest(router http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsRequestsUnderLimit(t *testing.T) {
	rl, _ := setupTestRateLimiter(t, 5, time.Minute, 5*time.Minute)
	router := limitedRouter(rl)

	for i := 0; i < 5; i++ {
		w := doRequest(router, "192.168.1.1")
		assert.Equal(t, http.StatusOK, w.Code, "Request %d should succeed", i+1)
	}
}

func TestRateLimiter_BlocksRequestsOverLimit(t *testing.T) {
	rl, mr := setupTestRateLimiter(t, 5, time.Minute, 5*time.Minute)
	router := limitedRouter(rl)

	for i := 0; i < 5; i++ {
		doRequest(router, "192.168.1.1")
	}

	w := doRequest(router, "192.168.1.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "6th request should be rate limited")
	assert.Equal(t, "300", w.Header().Get("Retry-After"))
	assert.True(t, mr.Exists("ratelimit:test:192.168.1.1"))
}

func TestRateLimiter_DifferentIPsIndependent(t *testing.T) {
	rl, _ := setupTestRateLimiter(t, 3, time.Minute, 0)
	router := limitedRouter(rl)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(router, "192.168.1.1").Code, "IP1 request %d should succeed", i+1)
	}
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(router, "192.168.1.2").Code, "IP2 request %d should succeed", i+1)
	}

	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "192.168.1.1").Code)
}

func TestRateLimiter_CheckLimit(t *testing.T) {
	rl, _ := setupTestRateLimiter(t, 3, time.Minute, 0)
	ctx := context.Background()
	ip := "192.168.1.100"

	for i := 0; i < 3; i++ {
		allowed, _, err := rl.CheckLimit(ctx, ip)
		require.NoError(t, err)
		assert.True(t, allowed, "Request %d should be allowed", i+1)
	}

	allowed, retryAfter, err := rl.CheckLimit(ctx, ip)
	require.NoError(t, err)
	assert.False(t, allowed, "4th request should be denied")
	assert.Greater(t, retryAfter, time.Duration(0))
}

func TestRateLimiter_BlockOutlastsWindow(t *testing.T) {
	rl, mr := setupTestRateLimiter(t, 1, time.Second, time.Minute)
	ctx := context.Background()
	ip := "10.0.0.1"

	allowed, _, err := rl.CheckLimit(ctx, ip)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, retryAfter, err := rl.CheckLimit(ctx, ip)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, time.Minute, retryAfter)

	mr.FastForward(2 * time.Second)
	allowed, _, err = rl.CheckLimit(ctx, ip)
	require.NoError(t, err)
	assert.False(t, allowed, "still blocked after the window")

	mr.FastForward(time.Minute)
	allowed, _, err = rl.CheckLimit(ctx, ip)
	require.NoError(t, err)
	assert.True(t, allowed, "block expired")
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	rl, mr := setupTestRateLimiter(t, 2, time.Second, 0)
	ctx := context.Background()
	ip := "192.168.1.100"

	for i := 0; i < 2; i++ {
		allowed, _, err := rl.CheckLimit(ctx, ip)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, _, err := rl.CheckLimit(ctx, ip)
	require.NoError(t, err)
	assert.False(t, allowed, "3rd request should be denied")

	mr.FastForward(2 * time.Second)

	allowed, _, err = rl.CheckLimit(ctx, ip)
	require.NoError(t, err)
	assert.True(t, allowed, "Request should be allowed after window expires")
}

func TestRateLimiter_BanAndUnban(t *testing.T) {
	rl, _ := setupTestRateLimiter(t, 100, time.Minute, 0)
	router := limitedRouter(rl)
	ctx := context.Background()
	ip := "192.168.1.100"

	require.NoError(t, rl.BanIP(ctx, ip))
	banned, err := rl.IsIPBanned(ctx, ip)
	require.NoError(t, err)
	assert.True(t, banned)

	w := doRequest(router, ip)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "banned")

	require.NoError(t, rl.UnbanIP(ctx, ip))
	assert.Equal(t, http.StatusOK, doRequest(router, ip).Code)
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	rl, mr := setupTestRateLimiter(t, 1, time.Minute, 0)
	router := limitedRouter(rl)

	mr.Close()

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(router, "192.168.1.1").Code)
	}
}

func TestRateLimiter_SequentialBurst(t *testing.T) {
	rl, _ := setupTestRateLimiter(t, 10, time.Minute, 0)
	router := limitedRouter(rl)

	successCount, rateLimitedCount := 0, 0
	for i := 0; i < 20; i++ {
		switch doRequest(router, "192.168.1.1").Code {
		case http.StatusOK:
			successCount++
		case http.StatusTooManyRequests:
			rateLimitedCount++
		}
	}

	assert.Equal(t, 10, successCount)
	assert.Equal(t, 10, rateLimitedCount)
}

func BenchmarkRateLimiter_CheckLimit(b *testing.B) {
	rl, _ := setupTestRateLimiter(b, 1000000, time.Minute, 0)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = rl.CheckLimit(ctx, "192.168.1.100")
	}
}
