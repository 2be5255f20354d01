package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/phenodash/pkg/cli/config"
	controller "github.com/secmon-lab/phenodash/pkg/controller/http"
	"github.com/secmon-lab/phenodash/pkg/service/dataset"
	"github.com/secmon-lab/phenodash/pkg/service/metrics"
	"github.com/secmon-lab/phenodash/pkg/usecase"
	"github.com/secmon-lab/phenodash/pkg/utils/async"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		datasetCfg   config.Dataset
		dashboardCfg config.Dashboard
	)

	flags := joinFlags(
		serverCfg.Flags(),
		datasetCfg.Flags(),
		dashboardCfg.Flags(),
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start the dashboard HTTP server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting phenodash server",
				slog.Any("server", serverCfg),
				slog.Any("dataset", datasetCfg),
				slog.Any("dashboard", dashboardCfg),
			)

			dashCfg, err := dashboardCfg.Configure()
			if err != nil {
				return err
			}

			m := metrics.New()
			cache := dataset.NewCache(datasetCfg.Configure(), dataset.WithMetrics(m))

			// A dataset that cannot be loaded stops the server before it listens
			ds, err := cache.Get(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to load dataset")
			}
			logger.Info("Dataset loaded",
				"dataset_id", ds.ID,
				"rows", ds.Len(),
				"start", ds.Bounds().Start,
				"end", ds.Bounds().End,
			)

			hub := controller.NewLiveHub(m)
			defer hub.Close()

			if serverCfg.Watch && datasetCfg.IsFile() {
				watcher, err := dataset.NewWatcher(cache, datasetCfg.Path)
				if err != nil {
					return goerr.Wrap(err, "failed to create dataset watcher")
				}
				watcher.OnChange(func() {
					async.Dispatch(ctx, func(ctx context.Context) error {
						// pages reload either way; a failed load shows the error page
						defer hub.NotifyDatasetChanged()
						ds, err := cache.Get(ctx)
						if err != nil {
							return goerr.Wrap(err, "failed to reload dataset")
						}
						ctxlog.From(ctx).Info("Dataset reloaded", "dataset_id", ds.ID, "rows", ds.Len())
						return nil
					})
				})
				if err := watcher.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start dataset watcher")
				}
				defer func() {
					if err := watcher.Stop(); err != nil {
						logger.Warn("Failed to stop dataset watcher", "error", err)
					}
				}()
			}

			server, err := controller.NewServer(ctx, serverCfg.Addr,
				usecase.NewDashboard(cache, dashCfg, m),
				controller.WithMetrics(m),
				controller.WithLiveHub(hub),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			serverErr := make(chan error, 1)
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					serverErr <- err
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			case err := <-serverErr:
				return goerr.Wrap(err, "HTTP server failed", goerr.V("addr", serverCfg.Addr))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
			defer cancel()

			hub.Close()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
