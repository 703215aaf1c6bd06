// Package config provides configuration management for the tender scanner.
// It handles loading, validation, and access to configuration values from
// YAML files and environment variables via Viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/jonesrussell/tenderscan/internal/logger"
)

// Interface defines the interface for configuration management.
type Interface interface {
	// GetServerConfig returns the HTTP server configuration.
	GetServerConfig() *ServerConfig
	// GetGridConfig returns the browser grid configuration.
	GetGridConfig() *GridConfig
	// GetScanConfig returns the scan cycle configuration.
	GetScanConfig() *ScanConfig
	// GetDatabaseConfig returns the database configuration.
	GetDatabaseConfig() *DatabaseConfig
	// GetSearchConfig returns the search indexing configuration.
	GetSearchConfig() *SearchConfig
	// GetReportConfig returns the digest report configuration.
	GetReportConfig() *ReportConfig
	// GetLoggerConfig returns the logger configuration.
	GetLoggerConfig() *logger.Config
	// Validate validates the configuration.
	Validate() error
}

// Config represents the application configuration.
type Config struct {
	// App holds application identity settings.
	App AppConfig `mapstructure:"app" yaml:"app"`
	// Logger holds logging configuration.
	Logger logger.Config `mapstructure:"logger" yaml:"logger"`
	// Server holds HTTP API server configuration.
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	// Grid holds browser automation grid configuration.
	Grid GridConfig `mapstructure:"grid" yaml:"grid"`
	// Scan holds scan cycle configuration.
	Scan ScanConfig `mapstructure:"scan" yaml:"scan"`
	// Database holds PostgreSQL configuration.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	// Search holds Elasticsearch indexing configuration.
	Search SearchConfig `mapstructure:"search" yaml:"search"`
	// Report holds email digest configuration.
	Report ReportConfig `mapstructure:"report" yaml:"report"`
}

// AppConfig holds application identity settings.
type AppConfig struct {
	Name        string `mapstructure:"name" yaml:"name"`
	Environment string `mapstructure:"environment" yaml:"environment"`
	Debug       bool   `mapstructure:"debug" yaml:"debug"`
}

// ServerConfig holds HTTP API server configuration.
type ServerConfig struct {
	Address      string        `mapstructure:"address" yaml:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	APIKey       string        `mapstructure:"api_key" yaml:"api_key"`
}

// GridConfig holds browser automation grid configuration.
type GridConfig struct {
	// URL is the grid's HTTP endpoint, e.g. http://localhost:9222.
	URL string `mapstructure:"url" yaml:"url"`
	// MaxSessions caps concurrent browser sessions.
	MaxSessions int `mapstructure:"max_sessions" yaml:"max_sessions"`
	// SessionTimeout bounds how long one session may be held.
	SessionTimeout time.Duration `mapstructure:"session_timeout" yaml:"session_timeout"`
	// HealthTimeout bounds the readiness probe.
	HealthTimeout time.Duration `mapstructure:"health_timeout" yaml:"health_timeout"`
	// ReadyWait bounds how long startup waits for the grid to become ready.
	ReadyWait time.Duration `mapstructure:"ready_wait" yaml:"ready_wait"`
	// CreateRetries is the number of session creation attempts.
	CreateRetries int `mapstructure:"create_retries" yaml:"create_retries"`
}

// ScanConfig holds scan cycle configuration.
type ScanConfig struct {
	// SourceTimeout is the per-source time budget within a cycle.
	SourceTimeout time.Duration `mapstructure:"source_timeout" yaml:"source_timeout"`
	// FeedWorkers bounds concurrent feed and static sources.
	FeedWorkers int `mapstructure:"feed_workers" yaml:"feed_workers"`
	// BrowserWorkers bounds concurrent browser sources.
	BrowserWorkers int `mapstructure:"browser_workers" yaml:"browser_workers"`
	// MaxPages caps pagination per source when the source sets no ceiling.
	MaxPages int `mapstructure:"max_pages" yaml:"max_pages"`
	// SourcesFile is the path to the YAML sources file. Presets are used
	// when the file is absent.
	SourcesFile string `mapstructure:"sources_file" yaml:"sources_file"`
	// Schedule is the cron expression for periodic scans.
	Schedule string `mapstructure:"schedule" yaml:"schedule"`
	// MinRelevanceScore is the relevance threshold a candidate must reach.
	MinRelevanceScore int `mapstructure:"min_relevance_score" yaml:"min_relevance_score"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	User            string        `mapstructure:"user" yaml:"user"`
	Password        string        `mapstructure:"password" yaml:"password"`
	Database        string        `mapstructure:"database" yaml:"database"`
	SSLMode         string        `mapstructure:"sslmode" yaml:"sslmode"`
	MaxConnections  int           `mapstructure:"max_connections" yaml:"max_connections"`
	MaxIdleConns    int           `mapstructure:"max_idle_connections" yaml:"max_idle_connections"`
	ConnMaxLifetime time.Duration `mapstructure:"connection_max_lifetime" yaml:"connection_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// SearchConfig holds Elasticsearch indexing configuration.
type SearchConfig struct {
	Enabled   bool     `mapstructure:"enabled" yaml:"enabled"`
	Addresses []string `mapstructure:"addresses" yaml:"addresses"`
	Username  string   `mapstructure:"username" yaml:"username"`
	Password  string   `mapstructure:"password" yaml:"password"`
	Index     string   `mapstructure:"index" yaml:"index"`
}

// ReportConfig holds email digest configuration.
type ReportConfig struct {
	Enabled    bool     `mapstructure:"enabled" yaml:"enabled"`
	SMTPHost   string   `mapstructure:"smtp_host" yaml:"smtp_host"`
	SMTPPort   int      `mapstructure:"smtp_port" yaml:"smtp_port"`
	Username   string   `mapstructure:"username" yaml:"username"`
	Password   string   `mapstructure:"password" yaml:"password"`
	From       string   `mapstructure:"from" yaml:"from"`
	Recipients []string `mapstructure:"recipients" yaml:"recipients"`
}

var _ Interface = (*Config)(nil)

// Load loads configuration from Viper. InitializeViper must have been
// called first.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// GetServerConfig returns the HTTP server configuration.
func (c *Config) GetServerConfig() *ServerConfig { return &c.Server }

// GetGridConfig returns the browser grid configuration.
func (c *Config) GetGridConfig() *GridConfig { return &c.Grid }

// GetScanConfig returns the scan cycle configuration.
func (c *Config) GetScanConfig() *ScanConfig { return &c.Scan }

// GetDatabaseConfig returns the database configuration.
func (c *Config) GetDatabaseConfig() *DatabaseConfig { return &c.Database }

// GetSearchConfig returns the search indexing configuration.
func (c *Config) GetSearchConfig() *SearchConfig { return &c.Search }

// GetReportConfig returns the digest report configuration.
func (c *Config) GetReportConfig() *ReportConfig { return &c.Report }

// GetLoggerConfig returns the logger configuration.
func (c *Config) GetLoggerConfig() *logger.Config { return &c.Logger }

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Grid.URL == "" {
		return errors.New("grid url is required")
	}
	if c.Scan.FeedWorkers <= 0 {
		return errors.New("scan feed_workers must be positive")
	}
	if c.Scan.BrowserWorkers <= 0 {
		return errors.New("scan browser_workers must be positive")
	}
	// Browser sessions are the scarce resource; the browser pool must never
	// outgrow the feed pool.
	if c.Scan.BrowserWorkers > c.Scan.FeedWorkers {
		return errors.New("scan browser_workers must not exceed feed_workers")
	}
	if c.Scan.SourceTimeout <= 0 {
		return errors.New("scan source_timeout must be positive")
	}
	if c.Search.Enabled && len(c.Search.Addresses) == 0 {
		return errors.New("search is enabled but no addresses are configured")
	}
	if c.Report.Enabled {
		if c.Report.SMTPHost == "" {
			return errors.New("report is enabled but no smtp_host is configured")
		}
		if len(c.Report.Recipients) == 0 {
			return errors.New("report is enabled but no recipients are configured")
		}
	}
	return nil
}
