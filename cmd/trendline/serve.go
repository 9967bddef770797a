package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/trendline"
	api "github.com/aretw0/trendline/pkg/adapters/http"
	"github.com/aretw0/trendline/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Serves the JSON API described by /openapi.yaml: start runs, fetch stored
reports, follow run events over SSE and scrape Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}

		b, err := openBackend()
		if err != nil {
			return err
		}
		defer b.close()

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics, err := observability.NewMetrics(observability.WithRegisterer(reg))
		if err != nil {
			return err
		}
		streams := api.NewStreamManager()

		engine, err := newEngine(cmd.Context(), b, nil,
			trendline.WithLifecycleHooks(observability.LoggingHooks(logger)),
			trendline.WithLifecycleHooks(metrics.Hooks()),
			trendline.WithLifecycleHooks(streams.Hooks()),
		)
		if err != nil {
			return err
		}

		baseCtx, cancelRuns := context.WithCancel(context.Background())
		defer cancelRuns()

		server := api.NewServer(engine,
			api.WithStreams(streams),
			api.WithGatherer(reg),
			api.WithLogger(logger),
			api.WithVersion(trendline.Version),
			api.WithBaseContext(baseCtx),
		)
		handler, err := server.Handler()
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:    addr,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting trendline server", "addr", srv.Addr, "store", cfg.Store.Type)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutdown started", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("failed to close server", "err", err)
				}
			}
			cancelRuns()
			server.Wait()
			logger.Info("trendline server stopped gracefully")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (overrides server.addr)")
}
