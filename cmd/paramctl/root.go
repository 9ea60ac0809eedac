package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/paramengine/internal/app"
	"mercator-hq/paramengine/pkg/cli"
	"mercator-hq/paramengine/pkg/config"
	"mercator-hq/paramengine/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "paramctl",
	Short: "paramctl - rule-table parameter engine",
	Long: `paramctl resolves parameters: rule tables whose input levels are matched
against level values and whose output levels form the answer.

Parameters are read from the configured repository (YAML files, CSV files,
a SQL database or memory), compiled into indexes and queried from the command
line or over HTTP with "paramctl serve".`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override log format (json, text)")
}

// loadConfig reads cfgFile, applies environment and flag overrides and
// validates the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err), err)
	}

	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Telemetry.Logging.Format = logFormat
	}
	if err := config.Validate(cfg); err != nil {
		return nil, cli.NewConfigError("", err.Error(), err)
	}
	return cfg, nil
}

// openApp loads the configuration and assembles the engine.
func openApp(ctx context.Context, cfg *config.Config) (*app.App, error) {
	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error(), err)
	}
	return app.New(ctx, cfg, app.Options{Version: Version}, logger)
}

// loadApp is loadConfig followed by openApp.
func loadApp(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return openApp(ctx, cfg)
}

// commandContext returns the command's context, or a background context for
// commands run outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

// stdout returns the command's output writer.
func stdout(cmd *cobra.Command) io.Writer {
	if cmd != nil {
		return cmd.OutOrStdout()
	}
	return os.Stdout
}
