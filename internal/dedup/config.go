package dedup

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/scholarsift/scholarsift/internal/similarity"
)

// Config holds configuration for the deduplication engine. It is passed
// explicitly at construction; the engine keeps no package-level state.
type Config struct {
	// Threshold is the weighted-similarity value two records must
	// exceed (strictly) to be judged duplicates. Default: 0.7
	Threshold float64 `yaml:"threshold"`

	// Weights are the per-field contributions to the aggregate
	// similarity. Default: title 0.4, organization 0.3, amount 0.2,
	// deadline 0.1
	Weights similarity.Weights `yaml:"weights"`

	// AuthorityDomains is the allow-list of authoritative domain
	// suffixes/names used as the merge tiebreaker.
	AuthorityDomains []string `yaml:"authority_domains"`

	// BatchConcurrency bounds the worker pool for batch mode.
	// Default: 4
	BatchConcurrency int `yaml:"batch_concurrency"`

	// RequestTimeout is the per-call timeout for the model service.
	// Default: 60s
	RequestTimeout time.Duration `yaml:"-"`
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		Threshold:        0.7,
		Weights:          similarity.DefaultWeights(),
		AuthorityDomains: similarity.DefaultAuthorityList(),
		BatchConcurrency: 4,
		RequestTimeout:   60 * time.Second,
	}
}

// Validate checks that the configuration has usable values.
func (c Config) Validate() error {
	if c.Threshold < 0.0 || c.Threshold > 1.0 {
		return fmt.Errorf("threshold must be between 0.0 and 1.0 (got %.2f)", c.Threshold)
	}
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("invalid weights: %w", err)
	}
	if c.BatchConcurrency <= 0 {
		return fmt.Errorf("batch_concurrency must be positive (got %d)", c.BatchConcurrency)
	}
	if c.BatchConcurrency > 64 {
		return fmt.Errorf("batch_concurrency too large (got %d, max 64)", c.BatchConcurrency)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive (got %v)", c.RequestTimeout)
	}
	if c.RequestTimeout > 5*time.Minute {
		return fmt.Errorf("request_timeout too large (got %v, max 5 minutes)", c.RequestTimeout)
	}
	return nil
}

// String returns a human-readable representation of the config.
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{Threshold: %.2f, Weights: %.2f/%.2f/%.2f/%.2f, AuthorityDomains: %d, Concurrency: %d, Timeout: %v}",
		c.Threshold, c.Weights.Title, c.Weights.Organization, c.Weights.Amount, c.Weights.Deadline,
		len(c.AuthorityDomains), c.BatchConcurrency, c.RequestTimeout,
	)
}

// ConfigFromEnv creates a Config from environment variables, falling
// back to defaults.
//
// Environment variables:
//   - SCHOLARSIFT_DEDUP_THRESHOLD: duplicate similarity threshold (default: 0.7)
//   - SCHOLARSIFT_DEDUP_WEIGHT_TITLE: title weight (default: 0.4)
//   - SCHOLARSIFT_DEDUP_WEIGHT_ORGANIZATION: organization weight (default: 0.3)
//   - SCHOLARSIFT_DEDUP_WEIGHT_AMOUNT: amount weight (default: 0.2)
//   - SCHOLARSIFT_DEDUP_WEIGHT_DEADLINE: deadline weight (default: 0.1)
//   - SCHOLARSIFT_DEDUP_AUTHORITY_DOMAINS: comma-separated allow-list
//   - SCHOLARSIFT_DEDUP_BATCH_CONCURRENCY: batch worker pool size (default: 4)
//   - SCHOLARSIFT_DEDUP_TIMEOUT_SECS: model call timeout in seconds (default: 60)
//
// Returns an error if any variable has an invalid value.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if err := parseEnvFloat("SCHOLARSIFT_DEDUP_THRESHOLD", &cfg.Threshold); err != nil {
		return cfg, err
	}
	if err := parseEnvFloat("SCHOLARSIFT_DEDUP_WEIGHT_TITLE", &cfg.Weights.Title); err != nil {
		return cfg, err
	}
	if err := parseEnvFloat("SCHOLARSIFT_DEDUP_WEIGHT_ORGANIZATION", &cfg.Weights.Organization); err != nil {
		return cfg, err
	}
	if err := parseEnvFloat("SCHOLARSIFT_DEDUP_WEIGHT_AMOUNT", &cfg.Weights.Amount); err != nil {
		return cfg, err
	}
	if err := parseEnvFloat("SCHOLARSIFT_DEDUP_WEIGHT_DEADLINE", &cfg.Weights.Deadline); err != nil {
		return cfg, err
	}
	parseEnvList("SCHOLARSIFT_DEDUP_AUTHORITY_DOMAINS", &cfg.AuthorityDomains)
	if err := parseEnvInt("SCHOLARSIFT_DEDUP_BATCH_CONCURRENCY", &cfg.BatchConcurrency); err != nil {
		return cfg, err
	}
	if err := parseEnvDuration("SCHOLARSIFT_DEDUP_TIMEOUT_SECS", &cfg.RequestTimeout, time.Second); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration from environment: %w", err)
	}
	return cfg, nil
}

// LoadConfigFile loads a Config from a YAML file, applied on top of the
// defaults. Timeout is expressed as `request_timeout: 90s`.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	var file struct {
		Threshold        *float64           `yaml:"threshold"`
		Weights          similarity.Weights `yaml:"weights"`
		AuthorityDomains []string           `yaml:"authority_domains"`
		BatchConcurrency *int               `yaml:"batch_concurrency"`
		RequestTimeout   string             `yaml:"request_timeout"`
	}
	file.Weights = cfg.Weights
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parsing YAML: %w", err)
	}

	if file.Threshold != nil {
		cfg.Threshold = *file.Threshold
	}
	cfg.Weights = file.Weights
	if file.AuthorityDomains != nil {
		cfg.AuthorityDomains = file.AuthorityDomains
	}
	if file.BatchConcurrency != nil {
		cfg.BatchConcurrency = *file.BatchConcurrency
	}
	if file.RequestTimeout != "" {
		d, err := time.ParseDuration(file.RequestTimeout)
		if err != nil {
			return cfg, fmt.Errorf("invalid request_timeout %q: %w", file.RequestTimeout, err)
		}
		cfg.RequestTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

func parseEnvFloat(key string, dest *float64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

func parseEnvDuration(key string, dest *time.Duration, multiplier time.Duration) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = time.Duration(parsed) * multiplier
	return nil
}

func parseEnvList(key string, dest *[]string) {
	value := os.Getenv(key)
	if value == "" {
		return // Use default
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) > 0 {
		*dest = out
	}
}
