// Package config provides unified configuration loading for synthgen.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/tracklab/synthgen/internal/models"
	"gopkg.in/yaml.v3"
)

// Output formats supported by the generate command.
const (
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
	FormatBoth   = "both"
)

// Config contains all synthgen configuration settings.
type Config struct {
	// Generation controls the simulated time window and dataset scale.
	Generation GenerationConfig `json:"generation" yaml:"generation"`

	// Imperfections controls the deliberately injected data-quality defects.
	Imperfections ImperfectionConfig `json:"imperfections" yaml:"imperfections"`

	// Output controls where and how the generated tables are written.
	Output OutputConfig `json:"output" yaml:"output"`

	// Logging contains settings for operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// GenerationConfig configures the simulated window and dataset scale.
type GenerationConfig struct {
	// Seed seeds the random number generator. A nonzero seed makes the
	// run fully reproducible; 0 selects a time-based seed.
	Seed int64 `json:"seed" yaml:"seed"`

	// StartDate is the first simulated calendar day, formatted YYYY-MM-DD.
	StartDate string `json:"start_date" yaml:"start_date"`

	// Days is the length of the simulation window in calendar days.
	Days int `json:"days" yaml:"days"`

	// Accounts is the number of accounts to generate.
	Accounts int `json:"accounts" yaml:"accounts"`

	// MinUsersPerAccount and MaxUsersPerAccount bound the per-account user
	// counts drawn by the user generator.
	MinUsersPerAccount int `json:"min_users_per_account" yaml:"min_users_per_account"`
	MaxUsersPerAccount int `json:"max_users_per_account" yaml:"max_users_per_account"`
}

// ImperfectionConfig configures the defect rates applied by the
// imperfection injector. All rates are fractions in [0, 1].
type ImperfectionConfig struct {
	// PctMissingDuration is the fraction of duration-carrying rows
	// (timer_stop, idle_detected, manual_time_added) whose
	// duration_seconds is nulled out.
	PctMissingDuration float64 `json:"pct_missing_duration" yaml:"pct_missing_duration"`

	// PctMissingTaskID is the fraction of task_completed rows whose
	// task_id is nulled out.
	PctMissingTaskID float64 `json:"pct_missing_task_id" yaml:"pct_missing_task_id"`

	// PctOutlierDuration is the fraction of timer_stop rows whose
	// duration is overwritten with an 8-16 hour outlier.
	PctOutlierDuration float64 `json:"pct_outlier_duration" yaml:"pct_outlier_duration"`

	// PctLateEvents is the fraction of rows that receive a 1-72 hour
	// ingestion delay instead of the near-real-time exponential delay.
	PctLateEvents float64 `json:"pct_late_events" yaml:"pct_late_events"`
}

// OutputConfig configures output location and format.
type OutputConfig struct {
	// Dir is the directory the generated tables are written to.
	Dir string `json:"dir" yaml:"dir"`

	// Format selects the sink: "csv", "sqlite", or "both".
	Format string `json:"format" yaml:"format"`
}

// LoggingConfig configures synthgen's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	Level string `json:"level" yaml:"level"`
}

// Default returns a Config with the documented defaults.
func Default() *Config {
	return &Config{
		Generation: GenerationConfig{
			Seed:               42,
			StartDate:          "2025-11-01",
			Days:               90,
			Accounts:           200,
			MinUsersPerAccount: 3,
			MaxUsersPerAccount: 120,
		},
		Imperfections: ImperfectionConfig{
			PctMissingDuration: 0.015,
			PctMissingTaskID:   0.015,
			PctOutlierDuration: 0.003,
			PctLateEvents:      0.07,
		},
		Output: OutputConfig{
			Dir:    "data/raw",
			Format: FormatCSV,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from an optional YAML file and environment
// variables. Order: defaults -> file (if path is non-empty) -> environment.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Start returns the parsed first simulated calendar day.
func (c GenerationConfig) Start() (time.Time, error) {
	t, err := time.Parse(models.DateLayout, c.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse start_date %q: %w", c.StartDate, err)
	}
	return t, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.Generation.Start(); err != nil {
		return err
	}
	if c.Generation.Days <= 0 {
		return fmt.Errorf("days must be positive, got %d", c.Generation.Days)
	}
	if c.Generation.Accounts <= 0 {
		return fmt.Errorf("accounts must be positive, got %d", c.Generation.Accounts)
	}
	if c.Generation.MinUsersPerAccount < 1 {
		return fmt.Errorf("min_users_per_account must be at least 1, got %d", c.Generation.MinUsersPerAccount)
	}
	if c.Generation.MaxUsersPerAccount < c.Generation.MinUsersPerAccount {
		return fmt.Errorf("max_users_per_account %d is below min_users_per_account %d",
			c.Generation.MaxUsersPerAccount, c.Generation.MinUsersPerAccount)
	}

	rates := map[string]float64{
		"pct_missing_duration": c.Imperfections.PctMissingDuration,
		"pct_missing_task_id":  c.Imperfections.PctMissingTaskID,
		"pct_outlier_duration": c.Imperfections.PctOutlierDuration,
		"pct_late_events":      c.Imperfections.PctLateEvents,
	}
	for name, rate := range rates {
		if rate < 0 || rate > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %f", name, rate)
		}
	}

	switch c.Output.Format {
	case FormatCSV, FormatSQLite, FormatBoth:
	default:
		return fmt.Errorf("invalid output format: %s (valid: csv, sqlite, both)", c.Output.Format)
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output dir must not be empty")
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("SYNTHGEN_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Generation.Seed = n
		}
	}

	if v := os.Getenv("SYNTHGEN_START_DATE"); v != "" {
		config.Generation.StartDate = v
	}

	if v := os.Getenv("SYNTHGEN_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Generation.Days = n
		}
	}

	if v := os.Getenv("SYNTHGEN_ACCOUNTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Generation.Accounts = n
		}
	}

	if v := os.Getenv("SYNTHGEN_OUT_DIR"); v != "" {
		config.Output.Dir = v
	}

	if v := os.Getenv("SYNTHGEN_FORMAT"); v != "" {
		config.Output.Format = v
	}

	if v := os.Getenv("SYNTHGEN_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}
