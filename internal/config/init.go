package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// InitializeViper initializes Viper configuration from environment variables
// and config files. Must be called before Load().
func InitializeViper() error {
	loadEnvFile()
	setupViper()
	setDefaults()
	readConfigFile()
	return nil
}

// loadEnvFile loads .env file (ignores error if file doesn't exist).
func loadEnvFile() {
	_ = godotenv.Load()
}

// setupViper configures Viper for environment variable and config file reading.
func setupViper() {
	viper.AutomaticEnv()
	viper.SetEnvPrefix("TENDERSCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
}

// readConfigFile reads config file (ignores error if file doesn't exist).
func readConfigFile() {
	_ = viper.ReadInConfig()
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("app", map[string]any{
		"name":        "tenderscan",
		"environment": "production",
		"debug":       false,
	})

	viper.SetDefault("logger", map[string]any{
		"level":       "info",
		"development": false,
		"encoding":    "json",
	})

	viper.SetDefault("server", map[string]any{
		"address":       ":8060",
		"read_timeout":  "15s",
		"write_timeout": "15s",
		"idle_timeout":  "60s",
	})

	viper.SetDefault("grid", map[string]any{
		"url":             "http://localhost:9222",
		"max_sessions":    3,
		"session_timeout": "5m",
		"health_timeout":  "10s",
		"ready_wait":      "60s",
		"create_retries":  3,
	})

	viper.SetDefault("scan", map[string]any{
		"source_timeout":      "4m",
		"feed_workers":        4,
		"browser_workers":     2,
		"max_pages":           5,
		"sources_file":        "sources.yml",
		"schedule":            "0 */6 * * *",
		"min_relevance_score": 3,
	})

	viper.SetDefault("database", map[string]any{
		"host":                    "localhost",
		"port":                    5432,
		"user":                    "postgres",
		"database":                "tenderscan",
		"sslmode":                 "disable",
		"max_connections":         25,
		"max_idle_connections":    5,
		"connection_max_lifetime": "5m",
	})

	viper.SetDefault("search", map[string]any{
		"enabled": false,
		"index":   "tenders",
	})

	viper.SetDefault("report", map[string]any{
		"enabled":   false,
		"smtp_port": 587,
	})
}
