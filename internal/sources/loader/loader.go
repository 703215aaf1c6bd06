// Package loader provides functionality for loading source configurations from files.
package loader

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/jonesrussell/tenderscan/internal/sources"
)

var (
	// ErrNoSources indicates no sources were found in the configuration
	ErrNoSources = errors.New("no sources found in configuration")
	// ErrMissingRequiredField indicates a required field is missing
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrInvalidStrategy indicates an unknown acquisition strategy
	ErrInvalidStrategy = errors.New("invalid acquisition strategy")
)

const defaultRateLimit = 2 * time.Second

// Config represents a source configuration loaded from a file.
type Config struct {
	ID              string `mapstructure:"id"`
	Name            string `mapstructure:"name"`
	Strategy        string `mapstructure:"strategy"`
	BaseURL         string `mapstructure:"base_url"`
	SearchURL       string `mapstructure:"search_url"`
	Query           string `mapstructure:"query"`
	RequiresBrowser bool   `mapstructure:"requires_browser"`
	Tier            string `mapstructure:"tier"`
	MaxPages        int    `mapstructure:"max_pages"`
	RateLimit       any    `mapstructure:"rate_limit"` // Can be string or number
	Enabled         *bool  `mapstructure:"enabled"`
}

// sourcesFile represents the structure of a sources YAML file.
type sourcesFile struct {
	Sources []map[string]any `yaml:"sources"`
}

// Loader handles loading and validating source configurations.
type Loader struct {
	configPath string
}

// NewLoader creates a new Loader instance.
func NewLoader(configPath string) *Loader {
	return &Loader{configPath: configPath}
}

// LoadSources loads and validates all sources from the configuration file.
// A missing file yields the built-in presets.
func (l *Loader) LoadSources() ([]sources.Config, error) {
	raw, err := l.loadRawSources()
	if err != nil {
		return nil, fmt.Errorf("failed to load raw sources: %w", err)
	}
	if raw == nil {
		return sources.Presets(), nil
	}

	configs := make([]sources.Config, 0, len(raw))
	for _, src := range raw {
		cfg, convertErr := l.convertToConfig(src)
		if convertErr != nil {
			continue
		}
		converted, validateErr := l.validateConfig(&cfg)
		if validateErr != nil {
			continue
		}
		configs = append(configs, *converted)
	}

	if len(configs) == 0 {
		return nil, ErrNoSources
	}

	return configs, nil
}

// loadRawSources loads the raw source data from the configuration file.
// Returns nil when the file does not exist.
func (l *Loader) loadRawSources() ([]map[string]any, error) {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(file.Sources) == 0 {
		return nil, ErrNoSources
	}

	return file.Sources, nil
}

// convertToConfig converts a raw source map to a Config struct.
func (l *Loader) convertToConfig(src map[string]any) (Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return Config{}, fmt.Errorf("failed to create decoder: %w", err)
	}

	if decodeErr := decoder.Decode(src); decodeErr != nil {
		return Config{}, fmt.Errorf("failed to decode source: %w", decodeErr)
	}

	return cfg, nil
}

// validateConfig validates a loaded configuration and converts it to the
// registry's source type.
func (l *Loader) validateConfig(cfg *Config) (*sources.Config, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("%w: id", ErrMissingRequiredField)
	}
	if cfg.Name == "" {
		return nil, fmt.Errorf("%w: name", ErrMissingRequiredField)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base_url", ErrMissingRequiredField)
	}
	if err := l.validateURL(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base_url: %w", err)
	}
	if cfg.SearchURL != "" {
		if err := l.validateURL(cfg.SearchURL); err != nil {
			return nil, fmt.Errorf("invalid search_url: %w", err)
		}
	}

	strategy, err := l.parseStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}

	rateLimit, err := l.parseRateLimit(cfg.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit: %w", err)
	}

	enabled := true
	if cfg.Enabled != nil {
		enabled = *cfg.Enabled
	}

	return &sources.Config{
		ID:              cfg.ID,
		Name:            cfg.Name,
		Strategy:        strategy,
		BaseURL:         cfg.BaseURL,
		SearchURL:       cfg.SearchURL,
		Query:           cfg.Query,
		RequiresBrowser: cfg.RequiresBrowser || strategy == sources.StrategyBrowser,
		Tier:            l.parseTier(cfg.Tier),
		MaxPages:        cfg.MaxPages,
		RateLimit:       rateLimit,
		Enabled:         enabled,
	}, nil
}

// validateURL validates the URL format.
func (l *Loader) validateURL(urlStr string) error {
	u, err := url.Parse(urlStr)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must be a valid HTTP(S) URL")
	}
	return nil
}

// parseStrategy normalizes the acquisition strategy. Empty defaults to hybrid.
func (l *Loader) parseStrategy(s string) (sources.Strategy, error) {
	switch sources.Strategy(s) {
	case sources.StrategyFeed, sources.StrategyBrowser, sources.StrategyHybrid:
		return sources.Strategy(s), nil
	case "":
		return sources.StrategyHybrid, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStrategy, s)
	}
}

// parseTier normalizes the source tier. Empty defaults to medium.
func (l *Loader) parseTier(s string) sources.Tier {
	switch sources.Tier(s) {
	case sources.TierHigh, sources.TierMedium, sources.TierLow:
		return sources.Tier(s)
	default:
		return sources.TierMedium
	}
}

// parseRateLimit normalizes the rate limit, which may be a duration string
// or a number of seconds.
func (l *Loader) parseRateLimit(v any) (time.Duration, error) {
	switch value := v.(type) {
	case nil:
		return defaultRateLimit, nil
	case time.Duration:
		return value, nil
	case string:
		if value == "" {
			return defaultRateLimit, nil
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %w", err)
		}
		return d, nil
	case int:
		return time.Duration(value) * time.Second, nil
	case int64:
		return time.Duration(value) * time.Second, nil
	case float64:
		return time.Duration(value * float64(time.Second)), nil
	default:
		return 0, errors.New("must be a string or number")
	}
}
