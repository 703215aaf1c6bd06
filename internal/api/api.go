// Package api implements the HTTP API for querying tenders and triggering
// scans.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/tenderscan/internal/config"
	"github.com/jonesrussell/tenderscan/internal/database"
	"github.com/jonesrussell/tenderscan/internal/domain"
	"github.com/jonesrussell/tenderscan/internal/logger"
	"github.com/jonesrussell/tenderscan/internal/metrics"
	"github.com/jonesrussell/tenderscan/internal/sources"
)

const readHeaderTimeout = 10 * time.Second

// ScanTrigger starts a scan cycle. *scanner.Scanner is the production
// implementation.
type ScanTrigger interface {
	Scan(ctx context.Context) (*domain.ScanReport, error)
	Metrics() metrics.Snapshot
}

// Searcher serves full-text queries. It is optional; without one the search
// endpoint reports the feature as unavailable.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]domain.Tender, error)
}

// Deps carries everything the router serves from.
type Deps struct {
	Logger   logger.Interface
	Store    database.TenderStore
	Sources  sources.Interface
	Trigger  ScanTrigger
	Searcher Searcher
}

// SetupRouter creates and configures the Gin router with all routes.
func SetupRouter(cfg *config.ServerConfig, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(deps.Logger))
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := newHandler(deps)

	v1 := router.Group("/api/v1")
	if cfg.APIKey != "" {
		v1.Use(apiKeyMiddleware(cfg.APIKey))
	}

	v1.GET("/tenders", h.listTenders)
	v1.GET("/tenders/stats", h.stats)
	v1.GET("/tenders/export", h.exportCSV)
	v1.GET("/sources", h.listSources)
	v1.GET("/search", h.search)
	v1.POST("/scan", h.triggerScan)
	v1.GET("/scan/status", h.scanStatus)

	return router
}

// StartHTTPServer builds the HTTP server around the configured router.
func StartHTTPServer(cfg *config.ServerConfig, deps Deps) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           SetupRouter(cfg, deps),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// loggingMiddleware logs every request with latency and status.
func loggingMiddleware(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info("http request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
		)
	}
}

// corsMiddleware allows the dashboard frontend to call the API.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers",
			"Content-Type, Content-Length, Accept-Encoding, Authorization, "+
				"accept, origin, Cache-Control, X-Requested-With, X-API-Key")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func apiKeyMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-API-Key") != key {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}
		c.Next()
	}
}
