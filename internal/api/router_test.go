package api

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

	"github.com/jengzang/incidentmap/internal/config"
	"github.com/jengzang/incidentmap/internal/middleware"
	"github.com/jengzang/incidentmap/internal/models"
	"github.com/jengzang/incidentmap/internal/repository"
	"github.com/jengzang/incidentmap/internal/service"
)

func newTestRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := repository.NewRecordStore([]models.Record{
		{Case: "A", Latitude: 40, Longitude: -100, Fatalities: 1, Injured: 1, TotalVictims: 2, AgeOfShooter: 30},
	}, nil)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	explorer, _, err := service.NewExplorer(store, service.OptionsFromConfig(cfg, log))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	loop := service.NewLoop(4)
	go loop.Run(ctx)

	session := service.NewSession(explorer, loop, service.NewHub(4, log))
	return SetupRouter(ctx, cfg, session, nil, log)
}

func request(r http.Handler, method, path, token string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRouterOpenRoutes(t *testing.T) {
	r := newTestRouter(t, config.Default())

	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/health", ""))
	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/metrics", ""))
	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/api/v1/state", ""))
	assert.Equal(t, http.StatusOK, request(r, http.MethodPost, "/api/v1/filters/reset", ""))
	assert.Equal(t, http.StatusNoContent, request(r, http.MethodOptions, "/api/v1/state", ""))
}

func TestRouterRequiresTokenWhenSecretSet(t *testing.T) {
	cfg := config.Default()
	cfg.Server.JWTSecret = "router-secret"
	r := newTestRouter(t, cfg)

	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/health", ""))
	assert.Equal(t, http.StatusUnauthorized, request(r, http.MethodGet, "/api/v1/state", ""))

	token, err := middleware.IssueToken(cfg.Server.JWTSecret, "tester", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/api/v1/state", token))
}

func TestRouterRateLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Server.RateLimit = 2
	cfg.Server.RateWindow = time.Minute
	r := newTestRouter(t, cfg)

	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/api/v1/ranges", ""))
	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/api/v1/ranges", ""))
	assert.Equal(t, http.StatusTooManyRequests, request(r, http.MethodGet, "/api/v1/ranges", ""))
}
