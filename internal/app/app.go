package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lifelogd/lifelogd/internal/config"
	"github.com/lifelogd/lifelogd/internal/httpserver"
	"github.com/lifelogd/lifelogd/internal/httpserver/deps"
	"github.com/lifelogd/lifelogd/internal/logger"
	"github.com/lifelogd/lifelogd/internal/plugins"
	"github.com/lifelogd/lifelogd/internal/resolver"
	"github.com/lifelogd/lifelogd/internal/scheduler"
	"github.com/lifelogd/lifelogd/internal/store/sqlite"
	"github.com/lifelogd/lifelogd/internal/version"
)

type App struct {
	cfg    *config.Config
	logger logger.Logger
	server *httpserver.Server
	store  *sqlite.Store
	sched  *scheduler.Scheduler
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Open storage early - fail fast if the database is unusable
	loggerClient.Infof("Opening event store at %s", cfg.DBPath)
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		loggerClient.Errorf("Failed to open event store: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Event store initialized successfully")

	// Plugin registry + runner over the on-disk plugin root
	registry := plugins.NewRegistry(cfg.PluginsDir, loggerClient)
	runner := plugins.NewRunner(registry, loggerClient)

	// Cron scheduler for enabled, schedule-bearing plugins
	sched := scheduler.New(registry, runner, loggerClient)

	// No external life:// resolver is wired by default; the facade
	// degrades to local store lookups.
	resolverFacade := resolver.New(nil, store, loggerClient)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:    loggerClient,
		StartTime: time.Now(),
		Version:   version.Version,
		Commit:    version.Commit,
		BuildDate: version.BuildDate,
		GoVersion: version.GoVersion,
		TimeNow:   time.Now,
		Store:     store,
		Resolver:  resolverFacade,
		Registry:  registry,
		Runner:    runner,
		Scheduler: sched,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:    cfg,
		logger: loggerClient,
		server: server,
		store:  store,
		sched:  sched,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting lifelogd v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("lifelogd %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Cold-start reconciliation: every enabled+scheduled plugin gets
	// exactly one trigger before the engine starts firing.
	a.sched.ReconcileOnStartup()
	a.sched.Run()
	a.logger.Info("plugin scheduler started")

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	// Stop the scheduler first so no new plugin runs start mid-shutdown;
	// in-flight runs complete.
	a.sched.Shutdown()
	a.logger.Info("plugin scheduler stopped")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warnf("failed to close event store: %v", err)
		} else {
			a.logger.Info("✅ Event store closed cleanly")
		}
	}

	a.logger.Info("✅ lifelogd stopped cleanly")
	return nil
}
