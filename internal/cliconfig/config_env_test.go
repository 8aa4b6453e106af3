package cliconfig

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"EVALSAMPLE_SOURCE", "EVALSAMPLE_DATASET", "EVALSAMPLE_SPLIT", "EVALSAMPLE_COUNT",
	"EVALSAMPLE_SEED", "EVALSAMPLE_INSTANCES_FILE", "EVALSAMPLE_HTTP_TIMEOUT",
	"EVALSAMPLE_RPS", "EVALSAMPLE_WATCH", "EVALSAMPLE_HUB_TOKEN", "HF_TOKEN",
	"EVALSAMPLE_PAGE_SIZE",
}

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"EVALSAMPLE_SOURCE":         "file",
				"EVALSAMPLE_COUNT":          "30",
				"EVALSAMPLE_SEED":           "-3",
				"EVALSAMPLE_INSTANCES_FILE": "a.json, b.json,",
				"EVALSAMPLE_HTTP_TIMEOUT":   "2m",
				"EVALSAMPLE_RPS":            "1.5",
				"EVALSAMPLE_WATCH":          "1",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Source:            "file",
				Count:             30,
				Seed:              -3,
				InstancesFiles:    []string{"a.json", "b.json"},
				HTTPTimeout:       2 * time.Minute,
				RequestsPerSecond: 1.5,
				Watch:             true,
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"EVALSAMPLE_COUNT": "30",
				"EVALSAMPLE_SPLIT": "dev",
			},
			changed:  map[string]bool{"count": true},
			initial:  Config{Count: 5},
			expected: Config{Count: 5, Split: "dev"},
		},
		{
			name: "tool token overrides HF_TOKEN",
			envVars: map[string]string{
				"HF_TOKEN":             "hf_generic",
				"EVALSAMPLE_HUB_TOKEN": "hf_specific",
			},
			changed:  map[string]bool{},
			initial:  Config{},
			expected: Config{HubToken: "hf_specific"},
		},
		{
			name:     "HF_TOKEN alone",
			envVars:  map[string]string{"HF_TOKEN": "hf_generic"},
			changed:  map[string]bool{},
			initial:  Config{},
			expected: Config{HubToken: "hf_generic"},
		},
		{
			name:     "zero count is applied",
			envVars:  map[string]string{"EVALSAMPLE_COUNT": "0"},
			changed:  map[string]bool{},
			initial:  Config{Count: 100},
			expected: Config{Count: 0},
		},
		{
			name:     "negative count is applied",
			envVars:  map[string]string{"EVALSAMPLE_COUNT": "-5"},
			changed:  map[string]bool{},
			initial:  Config{Count: 100},
			expected: Config{Count: -5},
		},
		{
			name:     "zero rps disables the limit",
			envVars:  map[string]string{"EVALSAMPLE_RPS": "0"},
			changed:  map[string]bool{},
			initial:  Config{RequestsPerSecond: 5},
			expected: Config{RequestsPerSecond: 0},
		},
		{
			name:    "returns error for invalid duration",
			envVars: map[string]string{"EVALSAMPLE_HTTP_TIMEOUT": "not-a-duration"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid int",
			envVars: map[string]string{"EVALSAMPLE_COUNT": "many"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid seed",
			envVars: map[string]string{"EVALSAMPLE_SEED": "1.5"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid float",
			envVars: map[string]string{"EVALSAMPLE_RPS": "fast"},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range envKeys {
				t.Setenv(k, "")
			}
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyEnvConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(cfg, tt.expected) {
				t.Errorf("ApplyEnvConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestApplyEnvConfig_NonPositiveCountFailsValidation(t *testing.T) {
	for _, v := range []string{"0", "-5"} {
		t.Run(v, func(t *testing.T) {
			for _, k := range envKeys {
				t.Setenv(k, "")
			}
			t.Setenv("EVALSAMPLE_COUNT", v)

			cfg := DefaultConfig()
			if err := ApplyEnvConfig(&cfg, map[string]bool{}); err != nil {
				t.Fatalf("ApplyEnvConfig: %v", err)
			}
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() accepted EVALSAMPLE_COUNT=%s (count=%d)", v, cfg.Count)
			}
			if !strings.Contains(err.Error(), "count must be >= 1") {
				t.Errorf("Validate() = %v, want count error", err)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("EVALSAMPLE_SPLIT=dev\nEVALSAMPLE_COUNT=12\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	t.Setenv("EVALSAMPLE_SPLIT", "")
	os.Unsetenv("EVALSAMPLE_SPLIT")
	t.Setenv("EVALSAMPLE_COUNT", "99")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("EVALSAMPLE_SPLIT"); got != "dev" {
		t.Errorf("EVALSAMPLE_SPLIT = %q, want dev", got)
	}
	if got := os.Getenv("EVALSAMPLE_COUNT"); got != "99" {
		t.Errorf("EVALSAMPLE_COUNT = %q, want existing value 99", got)
	}

	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("LoadDotEnv(missing) = %v, want nil", err)
	}
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"", "info", "DEBUG", "warn", "warning", "error"} {
		if _, err := ParseLevel(name); err != nil {
			t.Errorf("ParseLevel(%q) = %v", name, err)
		}
	}
	if _, err := ParseLevel("trace-ish"); err == nil {
		t.Error("ParseLevel accepted an unknown level")
	}
}
