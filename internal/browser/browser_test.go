package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/tenderscan/internal/config"
	"github.com/jonesrussell/tenderscan/internal/logger"
)

func testGridConfig(url string) *config.GridConfig {
	return &config.GridConfig{
		URL:            url,
		MaxSessions:    2,
		SessionTimeout: time.Minute,
		HealthTimeout:  time.Second,
		ReadyWait:      time.Second,
		CreateRetries:  1,
	}
}

func TestNewPoolValidation(t *testing.T) {
	t.Parallel()

	_, err := NewPool(testGridConfig(""), logger.NewNoOp())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGridUnavailable)

	cfg := testGridConfig("http://localhost:9222")
	cfg.MaxSessions = 0
	_, err = NewPool(cfg, logger.NewNoOp())
	require.Error(t, err)
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/version" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Browser":"Chrome/120.0.0.0","Protocol-Version":"1.3"}`))
	}))
	defer srv.Close()

	pool, err := NewPool(testGridConfig(srv.URL), logger.NewNoOp())
	require.NoError(t, err)
	defer pool.Close()

	assert.NoError(t, pool.HealthCheck(context.Background()))
}

func TestHealthCheckUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	pool, err := NewPool(testGridConfig(srv.URL), logger.NewNoOp())
	require.NoError(t, err)
	defer pool.Close()

	err = pool.HealthCheck(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGridUnavailable)
}

func TestWaitUntilReadyTimesOut(t *testing.T) {
	t.Parallel()

	pool, err := NewPool(testGridConfig("http://127.0.0.1:1"), logger.NewNoOp())
	require.NoError(t, err)
	defer pool.Close()

	err = pool.WaitUntilReady(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGridUnavailable)
}

func TestAcquireAfterClose(t *testing.T) {
	t.Parallel()

	pool, err := NewPool(testGridConfig("http://localhost:9222"), logger.NewNoOp())
	require.NoError(t, err)

	pool.Close()

	_, err = pool.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestRandomUserAgent(t *testing.T) {
	t.Parallel()

	for range 20 {
		ua := randomUserAgent()
		assert.Contains(t, userAgents, ua)
	}
}

func TestScopedHonorsCallerCancellation(t *testing.T) {
	t.Parallel()

	sessionCtx, sessionCancel := context.WithCancel(context.Background())
	defer sessionCancel()

	s := &Session{ctx: sessionCtx}

	callerCtx, callerCancel := context.WithCancel(context.Background())
	runCtx, cancel := s.scoped(callerCtx, time.Minute)
	defer cancel()

	callerCancel()

	select {
	case <-runCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("caller cancellation did not propagate to the scoped context")
	}
	assert.NoError(t, sessionCtx.Err())
}

func TestBuildProbeScript(t *testing.T) {
	t.Parallel()

	script, err := buildProbeScript([]string{`tr[class*="tender"]`, "div.result 'quoted'"})
	require.NoError(t, err)

	assert.True(t, strings.Contains(script, `tr[class*=\"tender\"]`))
	assert.True(t, strings.Contains(script, "document.querySelector"))
}
