package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Source            string   `toml:"source"`
	Dataset           string   `toml:"dataset"`
	DatasetConfig     string   `toml:"dataset_config"`
	Split             string   `toml:"split"`
	Count             *int     `toml:"count"`
	Seed              *int64   `toml:"seed"`
	Output            string   `toml:"output"`
	Format            string   `toml:"format"`
	InstancesFiles    []string `toml:"instances_files"`
	IDField           string   `toml:"id_field"`
	GroupField        string   `toml:"group_field"`
	SamplePrefix      string   `toml:"sample_prefix"`
	HubURL            string   `toml:"hub_url"`
	HubToken          string   `toml:"hub_token"`
	PageSize          *int     `toml:"page_size"`
	RequestsPerSecond *float64 `toml:"requests_per_second"`
	HTTPTimeout       string   `toml:"http_timeout"`
	PostgresDSN       string   `toml:"postgres_dsn"`
	PostgresTable     string   `toml:"postgres_table"`
	Watch             *bool    `toml:"watch"`
	LogLevel          string   `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.evalsample/config.toml, or "" if the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".evalsample", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("source", fc.Source, &cfg.Source)
	s.setString("dataset", fc.Dataset, &cfg.Dataset)
	s.setString("dataset-config", fc.DatasetConfig, &cfg.DatasetConfig)
	s.setString("split", fc.Split, &cfg.Split)
	s.setString("output", fc.Output, &cfg.Output)
	s.setString("format", fc.Format, &cfg.Format)
	s.setString("id-field", fc.IDField, &cfg.IDField)
	s.setString("group-field", fc.GroupField, &cfg.GroupField)
	s.setString("sample-prefix", fc.SamplePrefix, &cfg.SamplePrefix)
	s.setString("hub-url", fc.HubURL, &cfg.HubURL)
	s.setString("hub-token", fc.HubToken, &cfg.HubToken)
	s.setString("postgres-dsn", fc.PostgresDSN, &cfg.PostgresDSN)
	s.setString("postgres-table", fc.PostgresTable, &cfg.PostgresTable)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setStrings("instances-file", fc.InstancesFiles, &cfg.InstancesFiles)

	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setInt("count", fc.Count, &cfg.Count)
	s.setInt("page-size", fc.PageSize, &cfg.PageSize)
	s.setInt64("seed", fc.Seed, &cfg.Seed)
	s.setFloat("rps", fc.RequestsPerSecond, &cfg.RequestsPerSecond)

	s.setBool("watch", fc.Watch, &cfg.Watch)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
