package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allow, s.err
}

func serve(l Limiter, failOpen bool, userID string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set("userID", userID)
		}
		c.Next()
	})
	r.Use(Middleware(l, zap.NewNop(), failOpen))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.7:51000"
	r.ServeHTTP(w, req)
	return w
}

func TestMiddleware(t *testing.T) {
	l := &stubLimiter{allow: true}
	assert.Equal(t, http.StatusOK, serve(l, false, "").Code)
	assert.Equal(t, http.StatusOK, serve(l, false, "u-1").Code)
	assert.Equal(t, []string{"ip:10.0.0.7", "user:u-1"}, l.keys)

	assert.Equal(t, http.StatusTooManyRequests, serve(&stubLimiter{allow: false}, false, "").Code)
}

func TestMiddleware_LimiterFailure(t *testing.T) {
	broken := &stubLimiter{err: errors.New("redis down")}
	assert.Equal(t, http.StatusOK, serve(broken, true, "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(broken, false, "").Code)
}

func TestMemoryLimiter(t *testing.T) {
	l := NewMemoryLimiter(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
	}
	ok, _ := l.Allow(ctx, "a")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "b")
	assert.True(t, ok, "keys have separate budgets")
}

func TestMemoryLimiter_DropsIdleKeys(t *testing.T) {
	l := NewMemoryLimiter(2)
	clock := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		_, err := l.Allow(ctx, fmt.Sprintf("ip:10.0.0.%d", i))
		require.NoError(t, err)
	}
	_, _ = l.Allow(ctx, "busy")
	_, _ = l.Allow(ctx, "busy")
	ok, _ := l.Allow(ctx, "busy")
	assert.False(t, ok)
	assert.Equal(t, 101, l.Len())

	clock = clock.Add(30 * time.Second)
	_, _ = l.Allow(ctx, "other")
	assert.Equal(t, 102, l.Len(), "nothing is idle long enough yet")

	clock = clock.Add(40 * time.Second)
	ok, _ = l.Allow(ctx, "busy")
	assert.True(t, ok, "a dropped bucket starts full again")
	assert.Equal(t, 2, l.Len(), "only keys seen within the last minute remain")
}

func TestToInt64(t *testing.T) {
	n, err := toInt64(int64(4))
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	n, err = toInt64("12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	_, err = toInt64(1.5)
	assert.Error(t, err)
}

func TestNewRedisLimiter_Defaults(t *testing.T) {
	l := NewRedisLimiter(nil, 0, 0, " ")
	assert.Equal(t, 60, l.limit)
	assert.Equal(t, "rl", l.prefix)
}
