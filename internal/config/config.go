// Package config provides configuration management for the cleaning pipeline.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"hrclean/internal/models"
)

// Source kinds.
const (
	SourceCSV      = "csv"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

// Output formats.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatCSV      = "csv"
)

// Configuration validation errors.
var (
	ErrInvalidSourceKind      = errors.New("source.kind must be one of: csv, sqlite, postgres")
	ErrMissingSourcePath      = errors.New("source.path is required for csv and sqlite sources")
	ErrMissingSourceDSN       = errors.New("source.dsn is required for postgres sources")
	ErrMissingSourceTable     = errors.New("source.table is required for sql sources")
	ErrMissingIdentifier      = errors.New("normalization.identifier_column is required")
	ErrInvalidWorkers         = errors.New("normalization.workers must be at least 1")
	ErrInvalidChunkSize       = errors.New("normalization.chunk_size must be at least 1")
	ErrInvalidReferenceDate   = errors.New("normalization.reference_date must be YYYY-MM-DD")
	ErrMissingActiveSentinel  = errors.New("normalization.active_sentinel is required")
	ErrInvalidAdultAge        = errors.New("report.adult_age must be non-negative")
	ErrInvalidQueryConcurrent = errors.New("report.concurrency must be at least 1")
	ErrInvalidOutputFormat    = errors.New("output.format must be one of: text, markdown, json, csv")
	ErrInvalidLogLevel        = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat       = errors.New("logging.format must be 'text' or 'json'")
)

// Config represents the complete pipeline configuration.
type Config struct {
	Source        SourceConfig        `yaml:"source"`
	Normalization NormalizationConfig `yaml:"normalization"`
	Report        ReportConfig        `yaml:"report"`
	Output        OutputConfig        `yaml:"output"`
	Logging       LoggingConfig       `yaml:"logging"`
	Metrics       MetricsConfig       `yaml:"metrics"`
}

// SourceConfig describes where the raw employee table lives.
type SourceConfig struct {
	Kind  string `yaml:"kind"`
	Path  string `yaml:"path"`
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// IsSQL returns true if the source is a database table.
func (s *SourceConfig) IsSQL() bool {
	return s.Kind == SourceSQLite || s.Kind == SourcePostgres
}

// NormalizationConfig controls the normalizer.
type NormalizationConfig struct {
	IdentifierColumn  string `yaml:"identifier_column"`
	ReferenceDate     string `yaml:"reference_date"`
	ActiveSentinel    string `yaml:"active_sentinel"`
	Workers           int    `yaml:"workers"`
	ChunkSize         int    `yaml:"chunk_size"`
	StrictTermination bool   `yaml:"strict_termination"`
}

// ReportConfig controls the reporter.
type ReportConfig struct {
	Queries     []string `yaml:"queries"`
	AdultAge    int      `yaml:"adult_age"`
	Concurrency int      `yaml:"concurrency"`
}

// OutputConfig defines output behavior.
type OutputConfig struct {
	Dir             string `yaml:"dir"`
	Format          string `yaml:"format"`
	Sign            bool   `yaml:"sign"`
	WriteNormalized bool   `yaml:"write_normalized"`
	CleanSuffix     string `yaml:"clean_suffix"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig defines where metrics are dumped after a run.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Default returns a configuration that reads hr.csv and prints text reports.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Kind:  SourceCSV,
			Path:  "hr.csv",
			Table: "hr",
		},
		Normalization: NormalizationConfig{
			IdentifierColumn:  "ï»¿id",
			ActiveSentinel:    models.DefaultActiveSentinel,
			Workers:           4,
			ChunkSize:         1024,
			StrictTermination: true,
		},
		Report: ReportConfig{
			AdultAge:    18,
			Concurrency: 4,
		},
		Output: OutputConfig{
			Format:      FormatText,
			CleanSuffix: "_clean",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from YAML file on top of Default.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceCSV, SourceSQLite:
		if c.Source.Path == "" {
			return ErrMissingSourcePath
		}
	case SourcePostgres:
		if c.Source.DSN == "" {
			return ErrMissingSourceDSN
		}
	default:
		return ErrInvalidSourceKind
	}

	if c.Source.IsSQL() && c.Source.Table == "" {
		return ErrMissingSourceTable
	}

	n := c.Normalization
	if n.IdentifierColumn == "" {
		return ErrMissingIdentifier
	}

	if n.Workers < 1 {
		return ErrInvalidWorkers
	}

	if n.ChunkSize < 1 {
		return ErrInvalidChunkSize
	}

	if n.ActiveSentinel == "" {
		return ErrMissingActiveSentinel
	}

	if n.ReferenceDate != "" {
		if _, err := models.ParseISODate(n.ReferenceDate); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidReferenceDate, err)
		}
	}

	if c.Report.AdultAge < 0 {
		return ErrInvalidAdultAge
	}

	if c.Report.Concurrency < 1 {
		return ErrInvalidQueryConcurrent
	}

	validFormats := map[string]bool{FormatText: true, FormatMarkdown: true, FormatJSON: true, FormatCSV: true}
	if !validFormats[c.Output.Format] {
		return ErrInvalidOutputFormat
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

// GetReferenceDate returns the configured reference date, or today in now's location.
func (c *Config) GetReferenceDate(now time.Time) models.Date {
	if c.Normalization.ReferenceDate != "" {
		if d, err := models.ParseISODate(c.Normalization.ReferenceDate); err == nil {
			return d
		}
	}

	return models.DateOf(now)
}

// GetCleanTable returns the name the normalized table is stored under.
func (c *Config) GetCleanTable() string {
	return c.Source.Table + c.Output.CleanSuffix
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Source: %s:%s, Workers: %d, Format: %s}",
		c.Source.Kind,
		c.sourceLocation(),
		c.Normalization.Workers,
		c.Output.Format,
	)
}

// sourceLocation avoids printing a DSN, which may embed credentials.
func (c *Config) sourceLocation() string {
	if c.Source.Kind == SourcePostgres {
		return c.Source.Table
	}

	return c.Source.Path
}
