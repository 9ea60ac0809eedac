// Package app assembles a parameter engine from configuration. It is shared
// by the paramctl commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"unicode/utf8"

	"mercator-hq/paramengine/pkg/config"
	"mercator-hq/paramengine/pkg/engine"
	"mercator-hq/paramengine/pkg/function"
	"mercator-hq/paramengine/pkg/index"
	"mercator-hq/paramengine/pkg/matcher"
	"mercator-hq/paramengine/pkg/prepared"
	"mercator-hq/paramengine/pkg/repository"
	"mercator-hq/paramengine/pkg/telemetry/health"
	"mercator-hq/paramengine/pkg/telemetry/metrics"
	"mercator-hq/paramengine/pkg/telemetry/tracing"
	"mercator-hq/paramengine/pkg/types"
)

// App holds a configured engine and the components behind it.
type App struct {
	Config     *config.Config
	Repository repository.Repository
	Compiler   *prepared.Compiler
	Preparer   *prepared.Preparer
	Engine     *engine.Engine

	// Metrics is nil when metrics are disabled.
	Metrics *metrics.Collector
	Tracer  *tracing.Tracer

	base    *slog.Logger
	logger  *slog.Logger
	closers []func(context.Context) error
	warmed  atomic.Bool
}

// Options tune New.
type Options struct {
	// Version is reported as the tracing service version.
	Version string

	// TypeRegistry and MatcherRegistry replace the built-in registries, so
	// hosts can add their own types and matchers.
	TypeRegistry    *types.Registry
	MatcherRegistry *matcher.Registry

	// Functions replaces the empty function registry. Functions declared in
	// the configuration are added to it.
	Functions *function.Registry
}

// New builds an App from cfg. The caller must Close it.
func New(ctx context.Context, cfg *config.Config, opts Options, logger *slog.Logger) (_ *App, err error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{Config: cfg, base: logger, logger: logger.With("component", "app")}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	repo, closeRepo, err := OpenRepository(ctx, &cfg.Repository, logger)
	if err != nil {
		return nil, err
	}
	a.Repository = repo
	if closeRepo != nil {
		a.closers = append(a.closers, func(context.Context) error { return closeRepo() })
	}

	a.Compiler = prepared.NewCompiler(opts.TypeRegistry, opts.MatcherRegistry, logger)
	a.Preparer, err = prepared.NewPreparer(repo, a.Compiler, prepared.PreparerConfig{
		BatchSize:       cfg.Engine.BatchSize,
		WarmConcurrency: cfg.Engine.WarmConcurrency,
	}, logger)
	if err != nil {
		return nil, err
	}

	functions := opts.Functions
	if functions == nil {
		functions = function.NewRegistry()
	}
	if err := functions.RegisterCEL(cfg.Functions); err != nil {
		return nil, fmt.Errorf("registering functions: %w", err)
	}

	extraction, ok := index.ParseExtraction(cfg.Engine.Extraction)
	if !ok {
		return nil, fmt.Errorf("unknown extraction policy %q", cfg.Engine.Extraction)
	}
	engineConfig := engine.DefaultEngineConfig().
		WithExtraction(extraction).
		WithTraceLevelValues(cfg.Engine.TraceLevelValues)

	a.Engine, err = engine.New(engineConfig, a.Preparer, functions, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Telemetry.Metrics.Enabled {
		a.Metrics = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
		a.Compiler.SetObserver(a.Metrics)
		a.Engine.SetRecorder(a.Metrics)
		if err := a.Metrics.RegisterCacheSize(func() int { return len(a.Preparer.Cached()) }); err != nil {
			return nil, fmt.Errorf("registering cache gauge: %w", err)
		}
	}

	a.Tracer, err = tracing.New(ctx, &cfg.Telemetry.Tracing, opts.Version)
	if err != nil {
		return nil, err
	}
	a.Engine.SetTracer(a.Tracer.Tracer())
	a.closers = append(a.closers, a.Tracer.Shutdown)

	return a, nil
}

// OpenRepository opens the repository described by cfg. The returned close
// function is nil when there is nothing to release.
func OpenRepository(ctx context.Context, cfg *config.RepositoryConfig, logger *slog.Logger) (repository.Repository, func() error, error) {
	switch cfg.Kind {
	case "memory":
		return repository.NewMemory(), nil, nil

	case "file":
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating repository directory: %w", err)
		}
		repo, err := repository.NewFile(cfg.Path, logger)
		if err != nil {
			return nil, nil, err
		}
		return repo, nil, nil

	case "csv":
		comma, err := Comma(cfg.CSV.Comma)
		if err != nil {
			return nil, nil, err
		}
		repo, err := repository.NewCSVDir(cfg.Path, comma, cfg.CSV.Compress, logger)
		if err != nil {
			return nil, nil, err
		}
		return repo, nil, nil

	case "sql":
		repo, err := repository.OpenSQL(ctx, &repository.SQLConfig{
			Dialect:      repository.Dialect(cfg.SQL.Driver),
			DSN:          cfg.SQL.DSN,
			MaxOpenConns: cfg.SQL.MaxOpenConns,
			BusyTimeout:  cfg.SQL.BusyTimeout,
			Migrate:      cfg.SQL.MigrateEnabled(),
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported repository kind %q", cfg.Kind)
	}
}

// Comma parses a single-character CSV separator.
func Comma(s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("csv separator %q must be a single character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// Warm compiles the configured warm-up list. Readiness passes once it has
// succeeded.
func (a *App) Warm(ctx context.Context) error {
	if err := a.Preparer.Warm(ctx, a.Config.Engine.Warm); err != nil {
		return err
	}
	a.warmed.Store(true)
	return nil
}

// HealthChecker returns a checker that verifies the repository is reachable
// and the warm-up list has been compiled.
func (a *App) HealthChecker() *health.Checker {
	checker := health.New(0)
	checker.RegisterCheck("repository", func(ctx context.Context) error {
		_, err := a.Repository.List(ctx)
		return err
	})
	checker.RegisterCheck("warm", func(context.Context) error {
		if !a.warmed.Load() {
			return errors.New("warm-up not completed")
		}
		return nil
	})
	return checker
}

// StartBackground starts the repository watcher and the refresh scheduler
// when they are configured. Both stop when ctx is cancelled.
func (a *App) StartBackground(ctx context.Context) error {
	if a.Config.Repository.Watch {
		reloader, ok := a.Repository.(repository.Reloader)
		if !ok {
			return fmt.Errorf("repository kind %q cannot be watched", a.Config.Repository.Kind)
		}

		watchConfig := repository.DefaultWatcherConfig()
		watchConfig.Path = a.Config.Repository.Path
		watchConfig.DebounceInterval = a.Config.Repository.DebounceInterval

		watcher, err := repository.NewWatcher(watchConfig, a.logger)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func(context.Context) error { return watcher.Stop() })

		go func() {
			if err := watcher.Watch(ctx, repository.ReloadAndInvalidate(reloader, a.Preparer)); err != nil {
				a.logger.Error("repository watcher stopped", "error", err)
			}
		}()
	}

	if schedule := a.Config.Engine.RefreshSchedule; schedule != "" {
		scheduler := prepared.NewRefreshScheduler(a.Preparer, schedule, a.logger)
		if err := scheduler.Start(ctx); err != nil {
			return err
		}
		a.closers = append(a.closers, func(context.Context) error {
			scheduler.Stop()
			return nil
		})
		if next := scheduler.NextRun(); next != nil {
			a.logger.Debug("refresh scheduler started", "next_run", next)
		}
	}
	return nil
}

// Logger returns the logger the App was built with.
func (a *App) Logger() *slog.Logger {
	return a.base
}

// Close releases every component in reverse order of creation.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
