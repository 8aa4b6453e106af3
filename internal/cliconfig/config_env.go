package cliconfig

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// ApplyEnvConfig applies configuration from environment variables (EVALSAMPLE_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("source", os.Getenv("EVALSAMPLE_SOURCE"), &cfg.Source)
	s.setString("dataset", os.Getenv("EVALSAMPLE_DATASET"), &cfg.Dataset)
	s.setString("dataset-config", os.Getenv("EVALSAMPLE_DATASET_CONFIG"), &cfg.DatasetConfig)
	s.setString("split", os.Getenv("EVALSAMPLE_SPLIT"), &cfg.Split)
	s.setString("output", os.Getenv("EVALSAMPLE_OUTPUT"), &cfg.Output)
	s.setString("format", os.Getenv("EVALSAMPLE_FORMAT"), &cfg.Format)
	s.setString("id-field", os.Getenv("EVALSAMPLE_ID_FIELD"), &cfg.IDField)
	s.setString("group-field", os.Getenv("EVALSAMPLE_GROUP_FIELD"), &cfg.GroupField)
	s.setString("sample-prefix", os.Getenv("EVALSAMPLE_SAMPLE_PREFIX"), &cfg.SamplePrefix)
	s.setString("hub-url", os.Getenv("EVALSAMPLE_HUB_URL"), &cfg.HubURL)
	s.setString("hub-token", os.Getenv("HF_TOKEN"), &cfg.HubToken)
	s.setString("hub-token", os.Getenv("EVALSAMPLE_HUB_TOKEN"), &cfg.HubToken)
	s.setString("postgres-dsn", os.Getenv("EVALSAMPLE_POSTGRES_DSN"), &cfg.PostgresDSN)
	s.setString("postgres-table", os.Getenv("EVALSAMPLE_POSTGRES_TABLE"), &cfg.PostgresTable)
	s.setString("log-level", os.Getenv("EVALSAMPLE_LOG_LEVEL"), &cfg.LogLevel)

	s.setStringsFromString("instances-file", os.Getenv("EVALSAMPLE_INSTANCES_FILE"), &cfg.InstancesFiles)

	if err := s.setDuration("timeout", os.Getenv("EVALSAMPLE_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}

	if err := s.setIntFromString("count", os.Getenv("EVALSAMPLE_COUNT"), &cfg.Count); err != nil {
		return err
	}
	if err := s.setIntFromString("page-size", os.Getenv("EVALSAMPLE_PAGE_SIZE"), &cfg.PageSize); err != nil {
		return err
	}
	if err := s.setInt64FromString("seed", os.Getenv("EVALSAMPLE_SEED"), &cfg.Seed); err != nil {
		return err
	}
	if err := s.setFloatFromString("rps", os.Getenv("EVALSAMPLE_RPS"), &cfg.RequestsPerSecond); err != nil {
		return err
	}

	s.setBoolFromString("watch", os.Getenv("EVALSAMPLE_WATCH"), &cfg.Watch)

	return nil
}
