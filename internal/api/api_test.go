package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/tenderscan/internal/api"
	"github.com/jonesrussell/tenderscan/internal/config"
	"github.com/jonesrussell/tenderscan/internal/database"
	"github.com/jonesrussell/tenderscan/internal/domain"
	"github.com/jonesrussell/tenderscan/internal/logger"
	"github.com/jonesrussell/tenderscan/internal/metrics"
	"github.com/jonesrussell/tenderscan/internal/sources"
)

type stubTrigger struct {
	calls atomic.Int32
}

func (s *stubTrigger) Scan(context.Context) (*domain.ScanReport, error) {
	s.calls.Add(1)
	return &domain.ScanReport{CycleID: "test-cycle"}, nil
}

func (s *stubTrigger) Metrics() metrics.Snapshot {
	return metrics.Snapshot{CyclesCompleted: int64(s.calls.Load())}
}

type stubSearcher struct{}

func (stubSearcher) Search(context.Context, string, int) ([]domain.Tender, error) {
	return []domain.Tender{{Portal: "MERX", TenderID: "T-1", Title: "Scrum Training"}}, nil
}

func seedStore(t *testing.T) database.TenderStore {
	t.Helper()

	store := database.NewMemoryStore()

	closing := time.Now().UTC().Add(30 * 24 * time.Hour)
	tenders := []domain.Tender{
		{
			Portal: "MERX", TenderID: "T-1", Title: "PRINCE2 Training Services",
			Priority: domain.PriorityHigh, ClosingDate: &closing,
			Value: 150000, URL: "https://example.com/1", IsActive: true,
		},
		{
			Portal: "BC Bid", TenderID: "T-2", Title: "Leadership Coaching",
			Priority: domain.PriorityMedium, URL: "https://example.com/2", IsActive: true,
		},
	}
	for i := range tenders {
		tenders[i].ContentHash = tenders[i].ComputeContentHash()
		_, err := store.Apply(context.Background(), &tenders[i])
		require.NoError(t, err)
	}

	return store
}

func testRouter(t *testing.T, cfg *config.ServerConfig, deps api.Deps) http.Handler {
	t.Helper()

	if deps.Logger == nil {
		deps.Logger = logger.NewNoOp()
	}
	if deps.Store == nil {
		deps.Store = seedStore(t)
	}
	if deps.Sources == nil {
		reg, err := sources.New(sources.Presets(), logger.NewNoOp())
		require.NoError(t, err)
		deps.Sources = reg
	}
	if cfg == nil {
		cfg = &config.ServerConfig{Address: ":0"}
	}

	return api.SetupRouter(cfg, deps)
}

func doRequest(t *testing.T, router http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, http.NoBody)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()

	router := testRouter(t, nil, api.Deps{})
	rec := doRequest(t, router, http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListTenders(t *testing.T) {
	t.Parallel()

	router := testRouter(t, nil, api.Deps{})
	rec := doRequest(t, router, http.MethodGet, "/api/v1/tenders")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count   int             `json:"count"`
		Tenders []domain.Tender `json:"tenders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
}

func TestListTendersFilterByPriority(t *testing.T) {
	t.Parallel()

	router := testRouter(t, nil, api.Deps{})
	rec := doRequest(t, router, http.MethodGet, "/api/v1/tenders?priority=high")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tenders []domain.Tender `json:"tenders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Tenders, 1)
	assert.Equal(t, "T-1", body.Tenders[0].TenderID)
}

func TestListTendersRejectsBadPriority(t *testing.T) {
	t.Parallel()

	router := testRouter(t, nil, api.Deps{})
	rec := doRequest(t, router, http.MethodGet, "/api/v1/tenders?priority=urgent")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStats(t *testing.T) {
	t.Parallel()

	router := testRouter(t, nil, api.Deps{})
	rec := doRequest(t, router, http.MethodGet, "/api/v1/tenders/stats")

	require.Equal(t, http.StatusOK, rec.Code)

	var stats database.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Total)
}

func TestExportCSV(t *testing.T) {
	t.Parallel()

	router := testRouter(t, nil, api.Deps{})
	rec := doRequest(t, router, http.MethodGet, "/api/v1/tenders/export")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Tender ID")
}

func TestListSources(t *testing.T) {
	t.Parallel()

	router := testRouter(t, nil, api.Deps{})
	rec := doRequest(t, router, http.MethodGet, "/api/v1/sources")

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, len(sources.Presets()), body.Count)
}

func TestSearchUnavailableWithoutBackend(t *testing.T) {
	t.Parallel()

	router := testRouter(t, nil, api.Deps{})
	rec := doRequest(t, router, http.MethodGet, "/api/v1/search?q=scrum")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	router := testRouter(t, nil, api.Deps{Searcher: stubSearcher{}})
	rec := doRequest(t, router, http.MethodGet, "/api/v1/search?q=scrum")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Scrum Training")
}

func TestTriggerScan(t *testing.T) {
	t.Parallel()

	trigger := &stubTrigger{}
	router := testRouter(t, nil, api.Deps{Trigger: trigger})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/scan")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, func() bool {
		return trigger.calls.Load() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestScanStatus(t *testing.T) {
	t.Parallel()

	router := testRouter(t, nil, api.Deps{Trigger: &stubTrigger{}})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/scan/status")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"running":false`)
	assert.Contains(t, rec.Body.String(), `"cycles_completed":0`)
}

func TestScanStatusUnavailableWithoutTrigger(t *testing.T) {
	t.Parallel()

	router := testRouter(t, nil, api.Deps{})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/scan/status")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAPIKeyMiddleware(t *testing.T) {
	t.Parallel()

	cfg := &config.ServerConfig{Address: ":0", APIKey: "secret"}
	router := testRouter(t, cfg, api.Deps{})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/tenders")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tenders", http.NoBody)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}
