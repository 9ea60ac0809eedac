package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"mercator-hq/paramengine/pkg/cli"
	"mercator-hq/paramengine/pkg/server"
	"mercator-hq/paramengine/pkg/telemetry/health"
)

var serveFlags struct {
	listen string
	watch  bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve parameter queries over HTTP",
	Long: `Start the HTTP query server.

The server compiles the engine.warm parameters before accepting traffic,
watches the repository directory when repository.watch is set and recompiles
cached parameters on engine.refreshSchedule. It exposes:

  GET|POST /v1/parameters/{name}   resolve a parameter
  POST     /v1/functions/{name}    call a registered function
  GET      /health /ready /version health probes
  GET      /metrics                Prometheus metrics (when enabled)

The server stops gracefully on SIGINT or SIGTERM.

Examples:
  paramctl serve --config paramengine.yaml
  paramctl serve --listen 0.0.0.0:8090 --watch`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveFlags.listen, "listen", "", "override server.listenAddress")
	serveCmd.Flags().BoolVar(&serveFlags.watch, "watch", false, "reload the repository directory on change")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveFlags.listen != "" {
		cfg.Server.ListenAddress = serveFlags.listen
	}
	if serveFlags.watch {
		cfg.Repository.Watch = true
	}

	ctx, stop := cli.SetupSignalHandler(commandContext(cmd))
	defer stop()

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			a.Logger().Error("shutdown failed", "error", err)
		}
	}()

	logger := a.Logger()
	if err := a.Warm(ctx); err != nil {
		return cli.NewCommandError("serve", fmt.Errorf("warm-up failed: %w", err))
	}
	if err := a.StartBackground(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}

	srv, err := server.NewServer(&cfg.Server, a.Engine, a.HealthChecker(), logger)
	if err != nil {
		return cli.NewConfigError("server", err.Error(), err)
	}
	if a.Metrics != nil {
		srv.WithMetrics(cfg.Telemetry.Metrics.Path, a.Metrics.Handler())
	}
	srv.WithVersion(health.VersionInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
		GoVersion: runtime.Version(),
	})

	logger.Info("paramctl serving",
		"version", Version,
		"repository", cfg.Repository.Kind,
		"address", cfg.Server.ListenAddress,
		"cached", len(a.Preparer.Cached()),
	)

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	return nil
}
