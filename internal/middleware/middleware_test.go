package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(SubjectKey))
	})
	return r
}

func get(r http.Handler, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterWindow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 2, time.Minute)
	now := time.Unix(1000, 0)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "limits are per client")

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("a"), "window slid past old requests")
}

func TestRateLimitMiddleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := newEngine(RateLimit(NewRateLimiter(ctx, 1, time.Minute)))
	assert.Equal(t, http.StatusOK, get(r, "/ping", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/ping", nil).Code)
}

func TestAuth(t *testing.T) {
	const secret = "test-secret"
	r := newEngine(Auth(secret))

	token, err := IssueToken(secret, "analyst", time.Hour)
	require.NoError(t, err)

	t.Run("bearer header", func(t *testing.T) {
		w := get(r, "/ping", map[string]string{"Authorization": "Bearer " + token})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "analyst", w.Body.String())
	})

	t.Run("query parameter", func(t *testing.T) {
		w := get(r, "/ping?token="+token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(r, "/ping", nil).Code)
	})

	t.Run("not bearer", func(t *testing.T) {
		w := get(r, "/ping", map[string]string{"Authorization": "Basic abc"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := IssueToken("other", "analyst", time.Hour)
		require.NoError(t, err)
		w := get(r, "/ping", map[string]string{"Authorization": "Bearer " + other})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired", func(t *testing.T) {
		old, err := IssueToken(secret, "analyst", -time.Minute)
		require.NoError(t, err)
		w := get(r, "/ping", map[string]string{"Authorization": "Bearer " + old})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestIssueTokenNeedsSecret(t *testing.T) {
	_, err := IssueToken("", "analyst", time.Hour)
	assert.Error(t, err)
}

func TestLogger(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := newEngine(Logger(log))
	assert.Equal(t, http.StatusOK, get(r, "/ping?x=1", nil).Code)
}
