package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	logAdapter "github.com/bft-labs/evalsample/internal/adapters/log"
	"github.com/bft-labs/evalsample/internal/cliconfig"
	"github.com/bft-labs/evalsample/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(cfg *cliconfig.Config, log zerolog.Logger) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stratified sampling over HTTP",
		Long: `Serve POST /v1/samples: the body carries the records, count and seed, and the
response is the same document the CLI writes to disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			handler := server.New(server.Defaults{
				Dataset: cfg.Dataset,
				Split:   cfg.Split,
				Prefix:  cfg.SamplePrefix,
			}, logAdapter.NewZerologAdapter(log))

			srv := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", addr).Msg("listening")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				log.Info().Msg("received signal, stopping...")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
