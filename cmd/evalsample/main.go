package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/evalsample/internal/adapters/fs"
	"github.com/bft-labs/evalsample/internal/adapters/hf"
	logAdapter "github.com/bft-labs/evalsample/internal/adapters/log"
	"github.com/bft-labs/evalsample/internal/adapters/postgres"
	"github.com/bft-labs/evalsample/internal/adapters/xlsx"
	"github.com/bft-labs/evalsample/internal/app"
	"github.com/bft-labs/evalsample/internal/cliconfig"
	"github.com/bft-labs/evalsample/internal/ports"
)

const longHelp = `Draw a reproducible, proportionally stratified sample of labeled records.

Records are grouped by a label (the repository, for SWE-bench). Every group
keeps its share of the pool in the sample, and the same pool, count and seed
always produce the same file.

Records come from the Hugging Face datasets server (default), one or more
local JSON fixtures (--instances-file), or a Postgres table.`

var exampleUsage = strings.TrimSpace(`
  evalsample --count 100 --seed 42
  evalsample --instances-file fixtures/verified.json --count 20 --output out/sample.json
  evalsample --source postgres --postgres-dsn postgres://localhost/eval --format xlsx --output out/sample.xlsx
  evalsample serve --addr :8080
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath, envPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:           "evalsample",
		Short:         "Draw a reproducible stratified sample of labeled records",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return resolveConfig(cmd, &cfg, cfgPath, envPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			log.Info().Interface("config", cfg.Redacted()).Msg("configuration")

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := logAdapter.NewZerologAdapter(log)
			source, closeSource, err := newSource(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeSource()

			sampler := app.NewSampler(app.SamplerConfig{
				Dataset: datasetLabel(cfg),
				Split:   cfg.Split,
				Count:   cfg.Count,
				Seed:    cfg.Seed,
				Prefix:  cfg.SamplePrefix,
			}, source, newWriter(cfg), logger)

			runOnce := func(ctx context.Context) error {
				sum, err := sampler.Run(ctx)
				if err != nil {
					return err
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(sum)
			}

			if !cfg.Watch {
				return runOnce(ctx)
			}
			log.Info().Strs("files", cfg.InstancesFiles).Msg("watching instances files")
			return app.NewWatcher(cfg.InstancesFiles, app.DefaultDebounceDelay, runOnce, logger).Run(ctx)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.evalsample/config.toml)")
	pf.StringVar(&envPath, "env-file", ".env", "dotenv file loaded before reading EVALSAMPLE_* variables")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	pf.StringVar(&cfg.Dataset, "dataset", cfg.Dataset, "dataset name on the hub (also used as the document label)")
	pf.StringVar(&cfg.Split, "split", cfg.Split, "dataset split")
	pf.StringVar(&cfg.SamplePrefix, "sample-prefix", cfg.SamplePrefix, "prefix of the sample id")

	f := root.Flags()
	f.StringVar(&cfg.Source, "source", cfg.Source, "record source: hf, file or postgres (default: file when --instances-file is set, else hf)")
	f.StringVar(&cfg.DatasetConfig, "dataset-config", cfg.DatasetConfig, "dataset config name on the hub")
	f.IntVar(&cfg.Count, "count", cfg.Count, "number of records to sample (clamped to the pool size)")
	f.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	f.StringVar(&cfg.Output, "output", cfg.Output, "output path")
	f.StringVar(&cfg.Format, "format", cfg.Format, "output format: json or xlsx")
	f.StringSliceVar(&cfg.InstancesFiles, "instances-file", cfg.InstancesFiles, "local JSON array fixture with instance_id and repo fields (repeatable)")
	f.StringVar(&cfg.IDField, "id-field", cfg.IDField, "record field holding the id")
	f.StringVar(&cfg.GroupField, "group-field", cfg.GroupField, "record field holding the group")

	f.StringVar(&cfg.HubURL, "hub-url", cfg.HubURL, fmt.Sprintf("datasets server base URL (defaults to %s)", cliconfig.DefaultHubURL))
	if err := f.MarkHidden("hub-url"); err != nil {
		log.Info().Err(err).Msg("failed to hide hub-url flag")
	}
	f.StringVar(&cfg.HubToken, "hub-token", cfg.HubToken, "Hugging Face access token (defaults to $HF_TOKEN)")
	f.IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "rows per hub request (max 100)")
	f.Float64Var(&cfg.RequestsPerSecond, "rps", cfg.RequestsPerSecond, "max hub requests per second (0 disables the limit)")
	f.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout")

	f.StringVar(&cfg.PostgresDSN, "postgres-dsn", cfg.PostgresDSN, "Postgres connection string")
	f.StringVar(&cfg.PostgresTable, "postgres-table", cfg.PostgresTable, "Postgres table holding the records")

	f.BoolVar(&cfg.Watch, "watch", cfg.Watch, "rerun whenever an instances file changes")

	root.AddCommand(newServeCommand(&cfg, log))

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("evalsample")
		os.Exit(1)
	}
}

// resolveConfig layers config file, dotenv, environment and flags.
func resolveConfig(cmd *cobra.Command, cfg *cliconfig.Config, cfgPath, envPath string) error {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	} else if cfgPath != "" {
		return fmt.Errorf("config file %s not found", cfgPath)
	}

	if envPath != "" {
		if err := cliconfig.LoadDotEnv(envPath); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	}
	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}

	return cliconfig.SetLevel(cfg.LogLevel)
}

func newSource(ctx context.Context, cfg cliconfig.Config, logger ports.Logger) (ports.RecordSource, func(), error) {
	switch cfg.Source {
	case cliconfig.SourceFile:
		return fs.NewFixtureSource(cfg.InstancesFiles, cfg.IDField, cfg.GroupField), func() {}, nil
	case cliconfig.SourcePostgres:
		src, err := postgres.Open(ctx, cfg.PostgresDSN, cfg.PostgresTable, cfg.IDField, cfg.GroupField)
		if err != nil {
			return nil, nil, err
		}
		return src, func() {
			if err := src.Close(); err != nil {
				logger.Warn("close postgres", ports.Err(err))
			}
		}, nil
	default:
		return hf.NewRowsSource(hf.Config{
			BaseURL:           cfg.HubURL,
			Dataset:           cfg.Dataset,
			Config:            cfg.DatasetConfig,
			Split:             cfg.Split,
			IDField:           cfg.IDField,
			GroupField:        cfg.GroupField,
			Token:             cfg.HubToken,
			PageSize:          cfg.PageSize,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}, &http.Client{Timeout: cfg.HTTPTimeout}, logger), func() {}, nil
	}
}

func newWriter(cfg cliconfig.Config) ports.DocumentWriter {
	if cfg.Format == cliconfig.FormatXLSX {
		return xlsx.NewWriter(cfg.Output)
	}
	return fs.NewJSONWriter(cfg.Output)
}

// datasetLabel names the record origin in the output document.
func datasetLabel(cfg cliconfig.Config) string {
	switch cfg.Source {
	case cliconfig.SourcePostgres:
		return "postgres:" + cfg.PostgresTable
	default:
		return cfg.Dataset
	}
}
