// Package daemonrun wires configuration, logging, the queue, the catalog and
// the HTTP API into a running daemon process.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"cadence/internal/api"
	"cadence/internal/broadcast"
	"cadence/internal/catalog"
	"cadence/internal/config"
	"cadence/internal/daemon"
	"cadence/internal/enrichment"
	"cadence/internal/logging"
	"cadence/internal/metacache"
	"cadence/internal/metrics"
	"cadence/internal/preflight"
	"cadence/internal/queue"
	"cadence/internal/workerconf"
	"cadence/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the cadence daemon and blocks until SIGINT, SIGTERM or cmdCtx
// cancellation.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	level := cfg.Logging.Level
	if strings.TrimSpace(opts.LogLevel) != "" {
		level = opts.LogLevel
	}
	logPath := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
		Development: opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logPreflight(logger, cfg)

	recorder := metrics.NewRecorder()
	q := queue.New()
	hub := broadcast.NewHub(logger)
	manager := workflow.NewManager(cfg, q, hub, logger, workflow.WithMetrics(recorder))
	settings := workerconf.New(cfg.WorkerSettingsPath())

	svcOpts := []api.Option{
		api.WithSettings(settings),
		api.WithMetrics(recorder),
		api.WithLogger(logger),
		api.WithBaseContext(signalCtx),
	}
	daemonOpts := []daemon.Option{
		daemon.WithMetrics(recorder),
		daemon.WithLogPath(logPath),
	}

	if cfg.Catalog.Enabled {
		client, cache, err := openCatalog(signalCtx, cfg, recorder, logger)
		if err != nil {
			return err
		}
		if cache != nil {
			defer cache.Close()
		}
		enricher := enrichment.New(q, client, hub, logger,
			enrichment.WithMetrics(recorder),
			enrichment.WithTimeout(cfg.CatalogTimeout()*4),
		)
		svcOpts = append(svcOpts, api.WithCatalog(client), api.WithEnricher(enricher))
		daemonOpts = append(daemonOpts, daemon.WithBackground(enricher))
	}

	svc := api.NewService(q, manager, hub, svcOpts...)
	d, err := daemon.New(cfg, q, hub, manager, svc, logger, daemonOpts...)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed", logging.Error(err))
		return err
	}

	<-signalCtx.Done()
	logger.Info("cadence daemon shutting down")
	return nil
}

// openCatalog builds the catalog client, backed by the SQLite cache when a
// cache path is configured. A cache that cannot be opened is logged and
// skipped.
func openCatalog(ctx context.Context, cfg *config.Config, recorder *metrics.Recorder, logger *slog.Logger) (*catalog.Client, *metacache.Store, error) {
	opts := []catalog.Option{
		catalog.WithMetrics(recorder),
		catalog.WithLogger(logger),
	}

	var cache *metacache.Store
	if path := strings.TrimSpace(cfg.Catalog.CachePath); path != "" {
		store, err := metacache.Open(path, cfg.CatalogCacheTTL())
		if err != nil {
			logger.Warn("catalog cache unavailable; continuing without persistence",
				logging.String("path", path),
				logging.Error(err),
			)
		} else {
			cache = store
			opts = append(opts, catalog.WithStore(store))
			if removed, err := store.Prune(ctx); err != nil {
				logger.Warn("catalog cache prune failed", logging.Error(err))
			} else if removed > 0 {
				logger.Info("catalog cache pruned", logging.Int64("removed", removed))
			}
		}
	}

	client, err := catalog.New(cfg.Catalog, opts...)
	if err != nil {
		if cache != nil {
			_ = cache.Close()
		}
		return nil, nil, fmt.Errorf("create catalog client: %w", err)
	}
	return client, cache, nil
}

func logPreflight(logger *slog.Logger, cfg *config.Config) {
	for _, result := range preflight.RunAll(cfg) {
		if result.Passed {
			logger.Debug("preflight check passed", logging.String("check", result.Name), logging.String("detail", result.Detail))
			continue
		}
		logger.Warn("preflight check failed", logging.String("check", result.Name), logging.String("detail", result.Detail))
	}
	for _, dep := range preflight.CheckSystemDeps(cfg) {
		logger.Info("dependency snapshot",
			logging.String("name", dep.Name),
			logging.String("command", dep.Command),
			logging.Bool("available", dep.Available),
			logging.String("detail", dep.Detail),
		)
	}
}
