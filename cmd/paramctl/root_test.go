package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"mercator-hq/paramengine/pkg/cli"
)

const discountYAML = `name: discount
levels:
  - name: tier
    levelCreator: tier
  - name: region
    levelCreator: region
  - name: rate
    type: decimal
inputLevels: 2
entries:
  - [gold, EU, "0.15"]
  - [gold, "*", "0.1"]
  - ["*", "*", "0"]
`

const brokenYAML = `name: broken
levels:
  - name: amount
    type: money
  - name: fee
inputLevels: 1
entries:
  - ["10", "1"]
`

// setupRepository writes a config file pointing at a YAML parameter
// directory holding files, and selects it with --config.
func setupRepository(t *testing.T, files map[string]string) string {
	t.Helper()
	resetFlags()

	dir := t.TempDir()
	params := filepath.Join(dir, "params")
	if err := os.MkdirAll(params, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(params, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := `repository:
  kind: file
  path: ` + params + `
functions:
  tier: ctx.tier
  region: ctx.region
server:
  listen_address: 127.0.0.1:0
telemetry:
  logging:
    level: error
  metrics:
    enabled: false
`
	cfgPath := filepath.Join(dir, "paramengine.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgFile = cfgPath
	t.Cleanup(resetFlags)
	return params
}

func resetFlags() {
	cfgFile, logLevel, logFormat = "", "", ""
	getFlags.attrs, getFlags.greedy, getFlags.extraction, getFlags.format = nil, nil, "", "text"
	lintFlags.format = "text"
	inspectFlags.levels, inspectFlags.format = false, "text"
	importFlags.comma, importFlags.progress = "", false
	exportFlags.out, exportFlags.comma, exportFlags.compress, exportFlags.progress = "", "", false, false
	serveFlags.listen, serveFlags.watch = "", false
}

// testCommand returns a command whose output is captured in the buffer.
func testCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetContext(context.Background())
	return cmd, &buf
}

func TestLoadConfig(t *testing.T) {
	setupRepository(t, nil)
	logLevel = "debug"

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Telemetry.Logging.Level)
	}
	if cfg.Repository.Kind != "file" {
		t.Errorf("repository kind = %q, want file", cfg.Repository.Kind)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func()
	}{
		{name: "missing file", setup: func() { cfgFile = filepath.Join(t.TempDir(), "missing.yaml") }},
		{name: "bad log level", setup: func() { logLevel = "loud" }},
		{name: "bad log format", setup: func() { logFormat = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupRepository(t, nil)
			tt.setup()

			_, err := loadConfig()
			var cfgErr *cli.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("loadConfig() error = %v, want ConfigError", err)
			}
			if code := cli.ExitCode(err); code != cli.ExitConfig {
				t.Errorf("ExitCode() = %d, want %d", code, cli.ExitConfig)
			}
		})
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"version", "get", "lint", "inspect", "import", "export", "serve"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestCommandContext(t *testing.T) {
	if ctx := commandContext(nil); ctx == nil {
		t.Error("commandContext(nil) returned nil")
	}
	if ctx := commandContext(&cobra.Command{}); ctx == nil {
		t.Error("commandContext() without a context returned nil")
	}
}
