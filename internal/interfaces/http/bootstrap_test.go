package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/phimark/internal/config"
	"github.com/turtacn/phimark/internal/markup/trie"
	"github.com/turtacn/phimark/internal/testutil"
)

func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Server.Mode = "test"
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	return cfg
}

func TestNewAPIServer(t *testing.T) {
	s, err := NewAPIServer(testConfig(), nil, "test")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tokens/merge", strings.NewReader(`{"tokens":["A","1","x"]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tokens":["A1","x"]}`, w.Body.String())

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `phimark_tokens_merged_total`)

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewAPIServer_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Disabled = true
	s, err := NewAPIServer(cfg, nil, "test")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewAPIServer_LogsAssembly(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxBodySize = 4096
	logger := testutil.NewMockLogger()

	_, err := NewAPIServer(cfg, logger, "test")
	require.NoError(t, err)

	entry, ok := logger.Find("info", "API server assembled")
	require.True(t, ok)
	size, _ := entry.Field("max_body_size")
	assert.Equal(t, int64(4096), size)
}

func TestNewAPIServer_NilConfig(t *testing.T) {
	_, err := NewAPIServer(nil, nil, "test")
	assert.Error(t, err)
}

func TestPhraseChecker(t *testing.T) {
	assert.NoError(t, phraseChecker{phrases: trie.New([]string{"A", "1"})}.Check(context.Background()))
	assert.Error(t, phraseChecker{phrases: trie.New()}.Check(context.Background()))
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	s, err := NewAPIServer(testConfig(), nil, "test")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
