// Package config loads service configuration from environment variables,
// with an optional YAML file overlay pointed at by OUTLINER_CONFIG.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dbarrow/outliner/internal/outline"
)

type Config struct {
	Port string

	// Auth. Empty disables bearer-token checks.
	APIKey string

	// Storage
	DBPath     string
	SchemaPath string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Outline pipeline toggles
	ExtendedOutput bool
	UseFontLevels  bool
	BuildHierarchy bool
	MaxHeadings    int
	FuzzyThreshold float64
}

// fileConfig mirrors the YAML overlay. Pointer fields so absent keys leave
// the env-derived value untouched.
type fileConfig struct {
	Port           *string  `yaml:"port"`
	APIKey         *string  `yaml:"api_key"`
	DBPath         *string  `yaml:"db_path"`
	SchemaPath     *string  `yaml:"schema_path"`
	WorkerCount    *int     `yaml:"worker_count"`
	MaxQueueSize   *int     `yaml:"max_queue_size"`
	MaxUploadBytes *int64   `yaml:"max_upload_bytes"`
	JobTTL         *string  `yaml:"job_ttl"`
	ExtendedOutput *bool    `yaml:"extended_output"`
	UseFontLevels  *bool    `yaml:"use_font_levels"`
	BuildHierarchy *bool    `yaml:"build_hierarchy"`
	MaxHeadings    *int     `yaml:"max_headings"`
	FuzzyThreshold *float64 `yaml:"fuzzy_threshold"`
}

func Load() (Config, error) {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("OUTLINER_API_KEY"),

		DBPath:     envOr("DB_PATH", "outliner.db"),
		SchemaPath: os.Getenv("SCHEMA_PATH"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		ExtendedOutput: envBool("EXTENDED_OUTPUT", false),
		UseFontLevels:  envBool("USE_FONT_LEVELS", true),
		BuildHierarchy: envBool("BUILD_HIERARCHY", false),
		MaxHeadings:    envInt("MAX_HEADINGS", outline.MaxOutlineEntries),
		FuzzyThreshold: envFloat("FUZZY_THRESHOLD", outline.FuzzyDedupeThreshold),
	}

	if path := os.Getenv("OUTLINER_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return cfg, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.MaxHeadings <= 0 {
		cfg.MaxHeadings = outline.MaxOutlineEntries
	}
	if cfg.FuzzyThreshold <= 0 || cfg.FuzzyThreshold > 1 {
		cfg.FuzzyThreshold = outline.FuzzyDedupeThreshold
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}

	if fc.Port != nil {
		c.Port = *fc.Port
	}
	if fc.APIKey != nil {
		c.APIKey = *fc.APIKey
	}
	if fc.DBPath != nil {
		c.DBPath = *fc.DBPath
	}
	if fc.SchemaPath != nil {
		c.SchemaPath = *fc.SchemaPath
	}
	if fc.WorkerCount != nil {
		c.WorkerCount = *fc.WorkerCount
	}
	if fc.MaxQueueSize != nil {
		c.MaxQueueSize = *fc.MaxQueueSize
	}
	if fc.MaxUploadBytes != nil {
		c.MaxUploadBytes = *fc.MaxUploadBytes
	}
	if fc.JobTTL != nil {
		d, err := time.ParseDuration(*fc.JobTTL)
		if err != nil {
			return fmt.Errorf("parse job_ttl: %w", err)
		}
		c.JobTTL = d
	}
	if fc.ExtendedOutput != nil {
		c.ExtendedOutput = *fc.ExtendedOutput
	}
	if fc.UseFontLevels != nil {
		c.UseFontLevels = *fc.UseFontLevels
	}
	if fc.BuildHierarchy != nil {
		c.BuildHierarchy = *fc.BuildHierarchy
	}
	if fc.MaxHeadings != nil {
		c.MaxHeadings = *fc.MaxHeadings
	}
	if fc.FuzzyThreshold != nil {
		c.FuzzyThreshold = *fc.FuzzyThreshold
	}
	return nil
}

// OutlineOptions maps the configured toggles onto pipeline options.
func (c Config) OutlineOptions() outline.Options {
	return outline.Options{
		UseFontLevels:  c.UseFontLevels,
		BuildHierarchy: c.BuildHierarchy,
		MaxHeadings:    c.MaxHeadings,
		FuzzyThreshold: c.FuzzyThreshold,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
