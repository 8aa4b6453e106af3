package cliconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Record sources.
const (
	SourceFile     = "file"
	SourceHub      = "hf"
	SourcePostgres = "postgres"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// DefaultHubURL is the default datasets-server endpoint.
const DefaultHubURL = "https://datasets-server.huggingface.co"

// maxPageSize is the largest page the hub serves.
const maxPageSize = 100

// Config holds CLI configuration for evalsample.
type Config struct {
	Source        string
	Dataset       string
	DatasetConfig string
	Split         string

	Count int
	Seed  int64

	Output string
	Format string

	InstancesFiles []string
	IDField        string
	GroupField     string
	SamplePrefix   string

	HubURL            string
	HubToken          string
	PageSize          int
	RequestsPerSecond float64
	HTTPTimeout       time.Duration

	PostgresDSN   string
	PostgresTable string

	Watch    bool
	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Dataset:           "SWE-bench/SWE-bench_Verified",
		DatasetConfig:     "default",
		Split:             "test",
		Count:             100,
		Seed:              42,
		Output:            "config/swebench_100_sample.json",
		Format:            FormatJSON,
		IDField:           "instance_id",
		GroupField:        "repo",
		SamplePrefix:      "swebench",
		HubURL:            DefaultHubURL,
		HubToken:          os.Getenv("HF_TOKEN"),
		PageSize:          maxPageSize,
		RequestsPerSecond: 5,
		HTTPTimeout:       30 * time.Second,
		PostgresTable:     "instances",
		LogLevel:          "info",
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.Count < 1 {
		return fmt.Errorf("count must be >= 1")
	}

	if c.Source == "" {
		if len(c.InstancesFiles) > 0 {
			c.Source = SourceFile
		} else {
			c.Source = SourceHub
		}
	}
	switch c.Source {
	case SourceFile:
		if len(c.InstancesFiles) == 0 {
			return fmt.Errorf("instances-file is required for source %q", SourceFile)
		}
	case SourceHub:
		if c.Dataset == "" {
			return fmt.Errorf("dataset is required for source %q", SourceHub)
		}
	case SourcePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres-dsn is required for source %q", SourcePostgres)
		}
		if c.PostgresTable == "" {
			return fmt.Errorf("postgres-table is required for source %q", SourcePostgres)
		}
	default:
		return fmt.Errorf("unknown source %q (want %s, %s or %s)", c.Source, SourceFile, SourceHub, SourcePostgres)
	}

	if c.Watch && c.Source != SourceFile {
		return fmt.Errorf("watch requires source %q", SourceFile)
	}

	c.Format = strings.ToLower(c.Format)
	if c.Format == "" {
		c.Format = FormatJSON
	}
	if c.Format != FormatJSON && c.Format != FormatXLSX {
		return fmt.Errorf("unknown format %q (want %s or %s)", c.Format, FormatJSON, FormatXLSX)
	}
	if c.Output == "" {
		return fmt.Errorf("output is required")
	}

	if strings.TrimSpace(c.IDField) == "" || strings.TrimSpace(c.GroupField) == "" {
		return fmt.Errorf("id-field and group-field must be non-empty")
	}
	if c.Split == "" {
		return fmt.Errorf("split is required")
	}
	if c.SamplePrefix == "" {
		c.SamplePrefix = "sample"
	}

	if c.HubURL == "" {
		c.HubURL = DefaultHubURL
	}
	c.HubURL = strings.TrimRight(c.HubURL, "/")
	if c.DatasetConfig == "" {
		c.DatasetConfig = "default"
	}

	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive")
	}
	if c.PageSize > maxPageSize {
		c.PageSize = maxPageSize
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second must not be negative")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

// Redacted returns a copy safe for logging.
func (c Config) Redacted() Config {
	if c.HubToken != "" {
		c.HubToken = "*****"
	}
	if c.PostgresDSN != "" {
		c.PostgresDSN = "*****"
	}
	return c
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStrings sets a list if not empty and flag not changed.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = append([]string(nil), value...)
}

// setInt sets an int value from a pointer if not nil and flag not changed.
// Range checks are left to Validate.
func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setInt64 sets an int64 value from a pointer if not nil and flag not changed.
// Seeds may legitimately be zero or negative, so presence is the signal.
func (s *configSetter) setInt64(flag string, value *int64, dst *int64) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setFloat sets a float64 value from a pointer if not nil and flag not changed.
func (s *configSetter) setFloat(flag string, value *float64, dst *float64) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setInt64FromString parses a string to int64 and sets the destination.
func (s *configSetter) setInt64FromString(flag, value string, dst *int64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = f
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

// setStringsFromString splits a comma-separated list.
func (s *configSetter) setStringsFromString(flag, value string, dst *[]string) {
	if value == "" || s.changed[flag] {
		return
	}
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) > 0 {
		*dst = out
	}
}
