package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"mercator-hq/paramengine/pkg/config"
	"mercator-hq/paramengine/pkg/engine"
	"mercator-hq/paramengine/pkg/model"
	"mercator-hq/paramengine/pkg/telemetry/logging"
)

func shipping() *model.Parameter {
	return &model.Parameter{
		Name: "shipping",
		Levels: []model.Level{
			{Name: "country", LevelCreator: "country"},
			{Name: "cost", Type: "decimal"},
		},
		InputLevels: 1,
		Cacheable:   true,
		Entries: []model.Entry{
			model.NewEntry("PL", "9.5"),
			model.NewEntry("*", "25"),
		},
	}
}

func testConfig(t *testing.T, kind string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Repository.Kind = kind
	cfg.Repository.Path = filepath.Join(t.TempDir(), "params")
	cfg.Repository.SQL.DSN = filepath.Join(t.TempDir(), "params.db")
	cfg.Functions = map[string]string{"country": "ctx.country"}
	cfg.Engine.Warm = []string{"shipping"}
	return cfg
}

func TestNew_Repositories(t *testing.T) {
	for _, kind := range []string{"memory", "file", "csv", "sql"} {
		t.Run(kind, func(t *testing.T) {
			ctx := context.Background()
			a, err := New(ctx, testConfig(t, kind), Options{Version: "test"}, logging.Discard())
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer a.Close(ctx)

			if err := a.Repository.Save(ctx, shipping()); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			value, err := a.Engine.Get(ctx, "shipping", engine.NewParamContext().Set("country", "PL"))
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if cost, _ := value.AsFloat64(); cost != 9.5 {
				t.Errorf("cost = %v, want 9.5", cost)
			}
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{name: "unknown kind", modify: func(c *config.Config) { c.Repository.Kind = "git" }},
		{name: "bad comma", modify: func(c *config.Config) { c.Repository.Kind = "csv"; c.Repository.CSV.Comma = ";;" }},
		{name: "bad function", modify: func(c *config.Config) { c.Functions["broken"] = "ctx." }},
		{name: "bad extraction", modify: func(c *config.Config) { c.Engine.Extraction = "first" }},
		{name: "bad driver", modify: func(c *config.Config) { c.Repository.Kind = "sql"; c.Repository.SQL.Driver = "oracle" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, "memory")
			tt.modify(cfg)
			if _, err := New(context.Background(), cfg, Options{}, logging.Discard()); err == nil {
				t.Error("New() expected error")
			}
		})
	}
}

func TestWarmAndHealth(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t, "memory"), Options{}, logging.Discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close(ctx)

	checker := a.HealthChecker()
	if status := checker.CheckReadiness(ctx); status.Ready() {
		t.Error("should not be ready before warm-up")
	}

	if err := a.Warm(ctx); err == nil {
		t.Fatal("Warm() should fail while the parameter is missing")
	}

	if err := a.Repository.Save(ctx, shipping()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := a.Warm(ctx); err != nil {
		t.Fatalf("Warm() error = %v", err)
	}
	if status := checker.CheckReadiness(ctx); !status.Ready() {
		t.Errorf("status = %+v, want ready", status)
	}
	if got := a.Preparer.Cached(); len(got) != 1 || got[0] != "shipping" {
		t.Errorf("Cached() = %v", got)
	}
}

func TestMetricsWiring(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t, "memory"), Options{}, logging.Discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close(ctx)

	if err := a.Repository.Save(ctx, shipping()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := a.Engine.GetValues(ctx, "shipping", "DE"); err != nil {
		t.Fatalf("GetValues() error = %v", err)
	}

	expected := `
# HELP paramengine_cached_parameters Number of compiled parameters held by the preparer
# TYPE paramengine_cached_parameters gauge
paramengine_cached_parameters 1
`
	if err := testutil.GatherAndCompare(a.Metrics.Registry(), strings.NewReader(expected), "paramengine_cached_parameters"); err != nil {
		t.Error(err)
	}
	n, err := testutil.GatherAndCount(a.Metrics.Registry(), "paramengine_queries_total")
	if err != nil {
		t.Fatalf("GatherAndCount() error = %v", err)
	}
	if n != 1 {
		t.Errorf("queries_total series = %d, want 1", n)
	}
}

func TestMetricsDisabled(t *testing.T) {
	cfg := testConfig(t, "memory")
	cfg.Telemetry.Metrics.Enabled = false

	a, err := New(context.Background(), cfg, Options{}, logging.Discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close(context.Background())

	if a.Metrics != nil {
		t.Error("Metrics should be nil when disabled")
	}
}

func TestStartBackground(t *testing.T) {
	cfg := testConfig(t, "file")
	cfg.Repository.Watch = true
	cfg.Engine.RefreshSchedule = "*/5 * * * *"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := New(ctx, cfg, Options{}, logging.Discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := a.StartBackground(ctx); err != nil {
		t.Fatalf("StartBackground() error = %v", err)
	}

	cancel()
	if err := a.Close(context.Background()); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestStartBackground_UnwatchableRepository(t *testing.T) {
	cfg := testConfig(t, "sql")
	cfg.Repository.Watch = true

	a, err := New(context.Background(), cfg, Options{}, logging.Discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Close(context.Background())

	if err := a.StartBackground(context.Background()); err == nil {
		t.Error("StartBackground() expected error for sql repository")
	}
}

func TestComma(t *testing.T) {
	tests := []struct {
		input   string
		want    rune
		wantErr bool
	}{
		{input: ";", want: ';'},
		{input: "\t", want: '\t'},
		{input: "", wantErr: true},
		{input: ",,", wantErr: true},
	}
	for _, tt := range tests {
		got, err := Comma(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("Comma(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("Comma(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
