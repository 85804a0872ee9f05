package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medialens/medialens/internal/cache"
	"github.com/medialens/medialens/internal/config"
	"github.com/medialens/medialens/internal/httputil"
	"github.com/medialens/medialens/internal/models"
	"github.com/medialens/medialens/internal/version"
)

func testServer(cfg *config.Config) *Server {
	if cfg.UpstreamTimeout == 0 {
		cfg.UpstreamTimeout = time.Second
	}
	return NewServer(cfg, version.Info{Version: "test"}, cache.Disabled{})
}

func doRequest(t *testing.T, s *Server, method, path string) (*httptest.ResponseRecorder, httputil.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var body httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return rec, body
}

func TestHealth(t *testing.T) {
	s := testServer(&config.Config{})
	rec, body := doRequest(t, s, http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body.Status)
	assert.NotEmpty(t, body.RequestID)
	assert.Equal(t, body.RequestID, rec.Header().Get(httputil.RequestIDHeader))
}

func TestStatusReportsConfiguration(t *testing.T) {
	s := testServer(&config.Config{
		DataSource:  config.SourceAuto,
		TautulliURL: "http://tautulli",
		TautulliKey: "k",
	})
	rec, body := doRequest(t, s, http.MethodGet, "/api/v1/status")

	assert.Equal(t, http.StatusOK, rec.Code)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, "test", data["version"])
	assert.Equal(t, []interface{}{"tautulli"}, data["sources"])
	assert.Equal(t, false, data["radarr_enabled"])
}

func TestLibrariesWithoutSource(t *testing.T) {
	s := testServer(&config.Config{DataSource: config.SourceAuto})
	rec, body := doRequest(t, s, http.MethodGet, "/api/v1/libraries")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "NOT_CONFIGURED", body.Error.Code)
}

func TestContentSummaryWithoutServices(t *testing.T) {
	s := testServer(&config.Config{})
	rec, body := doRequest(t, s, http.MethodGet, "/api/v1/content/summary")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotNil(t, body.Error)
}

func TestCacheClear(t *testing.T) {
	s := testServer(&config.Config{})
	rec, body := doRequest(t, s, http.MethodPost, "/api/v1/cache/clear")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body.Status)
}

func TestRequestIDIsHonored(t *testing.T) {
	s := testServer(&config.Config{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(httputil.RequestIDHeader, "fixed-id")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, "fixed-id", rec.Header().Get(httputil.RequestIDHeader))
}

func TestPageParams(t *testing.T) {
	tests := []struct {
		query  string
		offset int
		limit  int
	}{
		{"", 0, defaultPageSize},
		{"?offset=10&limit=5", 10, 5},
		{"?limit=all", 0, models.LimitAll},
		{"?offset=-3&limit=0", 0, defaultPageSize},
		{"?limit=nonsense", 0, defaultPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/x"+tt.query, nil)
			offset, limit := pageParams(r)
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.limit, limit)
		})
	}
}
