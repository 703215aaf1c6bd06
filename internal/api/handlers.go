package api

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/tenderscan/internal/database"
	"github.com/jonesrussell/tenderscan/internal/domain"
	"github.com/jonesrussell/tenderscan/internal/logger"
)

const (
	defaultListLimit   = 50
	defaultSearchLimit = 25
	maxListLimit       = 500
)

type handler struct {
	deps       Deps
	logger     logger.Interface
	scanActive atomic.Bool
}

func newHandler(deps Deps) *handler {
	return &handler{
		deps:   deps,
		logger: deps.Logger.WithComponent("api"),
	}
}

// listTenders serves the filtered tender list. Filters mirror the store's
// ListFilters; active=false includes swept tenders.
func (h *handler) listTenders(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tenders, err := h.deps.Store.List(c.Request.Context(), filters)
	if err != nil {
		h.logger.Error("listing tenders failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list tenders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tenders": tenders,
		"count":   len(tenders),
	})
}

func (h *handler) stats(c *gin.Context) {
	stats, err := h.deps.Store.GetStats(c.Request.Context())
	if err != nil {
		h.logger.Error("stats query failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// exportCSV streams the filtered tender list as a CSV download.
func (h *handler) exportCSV(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tenders, err := h.deps.Store.List(c.Request.Context(), filters)
	if err != nil {
		h.logger.Error("export query failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not export tenders"})
		return
	}

	filename := fmt.Sprintf("tenders_%s.csv", time.Now().UTC().Format("20060102"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{
		"Tender ID", "Title", "Organization", "Portal", "Value",
		"Closing Date", "Location", "Priority", "Matching Courses", "URL",
	})

	for _, t := range tenders {
		closing := ""
		if t.ClosingDate != nil {
			closing = t.ClosingDate.Format("2006-01-02")
		}
		_ = w.Write([]string{
			t.TenderID,
			t.Title,
			t.Organization,
			t.Portal,
			strconv.FormatFloat(t.Value, 'f', 2, 64),
			closing,
			t.Location,
			string(t.Priority),
			strings.Join(t.MatchingCourses, "; "),
			t.URL,
		})
	}
	w.Flush()
}

func (h *handler) listSources(c *gin.Context) {
	srcs := h.deps.Sources.All()
	c.JSON(http.StatusOK, gin.H{
		"sources": srcs,
		"count":   len(srcs),
	})
}

// search serves full-text queries when a search backend is configured.
func (h *handler) search(c *gin.Context) {
	if h.deps.Searcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search is not enabled"})
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	limit := intQuery(c, "limit", defaultSearchLimit)

	tenders, err := h.deps.Searcher.Search(c.Request.Context(), query, limit)
	if err != nil {
		h.logger.Error("search failed", "query", query, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tenders": tenders,
		"count":   len(tenders),
	})
}

// triggerScan starts a scan cycle in the background. Only one manual scan
// may run at a time.
func (h *handler) triggerScan(c *gin.Context) {
	if h.deps.Trigger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scanning is not enabled"})
		return
	}

	if !h.scanActive.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, gin.H{"error": "a scan is already running"})
		return
	}

	// The cycle outlives the request, so it runs on its own context.
	go func() {
		defer h.scanActive.Store(false)

		report, err := h.deps.Trigger.Scan(context.Background())
		if err != nil {
			h.logger.Error("manual scan failed", "error", err.Error())
			return
		}

		h.logger.Info("manual scan finished",
			"cycle_id", report.CycleID,
			"new", report.TotalNew(),
			"updated", report.TotalUpdated())
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

// scanStatus reports whether a manual scan is running plus the cumulative
// cycle counters.
func (h *handler) scanStatus(c *gin.Context) {
	if h.deps.Trigger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scanning is not enabled"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"running": h.scanActive.Load(),
		"metrics": h.deps.Trigger.Metrics(),
	})
}

func parseFilters(c *gin.Context) (database.ListFilters, error) {
	filters := database.ListFilters{
		Portal:     c.Query("portal"),
		Priority:   c.Query("priority"),
		Category:   c.Query("category"),
		Search:     c.Query("q"),
		ActiveOnly: true,
		Limit:      intQuery(c, "limit", defaultListLimit),
		Offset:     intQuery(c, "offset", 0),
	}

	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, fmt.Errorf("invalid active value %q", raw)
		}
		filters.ActiveOnly = active
	}

	if filters.Priority != "" {
		switch domain.Priority(filters.Priority) {
		case domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow:
		default:
			return filters, fmt.Errorf("invalid priority %q", filters.Priority)
		}
	}

	if filters.Limit <= 0 || filters.Limit > maxListLimit {
		filters.Limit = defaultListLimit
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	return filters, nil
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
