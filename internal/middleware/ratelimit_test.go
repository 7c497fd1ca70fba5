package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet3d-backend/internal/middleware"
)

func TestLocalLimiter(t *testing.T) {
	l := middleware.NewLocalLimiter(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
	}
	ok, _ := l.Allow(ctx, "a")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "b")
	assert.True(t, ok, "keys are independent")
}

func TestRedisLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	l := middleware.NewRedisLimiter(client, "test:rl:", 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "user:1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "user:1")
	require.NoError(t, err)
	assert.False(t, ok)

	other := middleware.NewRedisLimiter(client, "test:rl:", 2)
	ok, err = other.Allow(ctx, "user:1")
	require.NoError(t, err)
	assert.False(t, ok, "window is shared across limiter instances")
}

func TestRedisLimiter_KeyLayout(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	for _, prefix := range []string{"pet3d:rl", "pet3d:rl:"} {
		mr.FlushAll()
		_, err := middleware.NewRedisLimiter(client, prefix, 5).Allow(context.Background(), "user:1")
		require.NoError(t, err)
		keys := mr.Keys()
		require.Len(t, keys, 1)
		assert.True(t, strings.HasPrefix(keys[0], "pet3d:rl:user:1:"), keys[0])
		assert.NotContains(t, keys[0], "::")
	}
}

func TestRedisLimiter_BackendDownFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/poll", middleware.RateLimit(middleware.NewRedisLimiter(client, "rl:", 1), middleware.KeyByUserAndRoute), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/poll", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimit_Rejects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/poll", middleware.RateLimit(middleware.NewLocalLimiter(1), middleware.KeyByUserAndRoute), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/poll", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/poll", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}
