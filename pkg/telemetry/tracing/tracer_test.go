package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mercator-hq/paramengine/pkg/config"
	"mercator-hq/paramengine/pkg/engine"
	"mercator-hq/paramengine/pkg/model"
	"mercator-hq/paramengine/pkg/prepared"
	"mercator-hq/paramengine/pkg/repository"
)

func TestNew_Disabled(t *testing.T) {
	tr, err := New(context.Background(), &config.TracingConfig{}, "test")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tr.Enabled() {
		t.Error("tracer should be disabled")
	}

	ctx, span := tr.Tracer().Start(context.Background(), "noop")
	span.End()
	if TraceID(ctx) != "" {
		t.Error("noop span should carry no trace id")
	}
	if err := tr.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNew_NilConfig(t *testing.T) {
	if _, err := New(context.Background(), nil, "test"); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestNew_OTLPIsLazy(t *testing.T) {
	cfg := &config.TracingConfig{
		Enabled:     true,
		Endpoint:    "127.0.0.1:1",
		Insecure:    true,
		SampleRatio: 1,
		ServiceName: "paramengine-test",
	}
	tr, err := New(context.Background(), cfg, "test")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !tr.Enabled() {
		t.Error("tracer should be enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Nothing was recorded, so shutdown has nothing to send.
	_ = tr.Shutdown(ctx)
}

func TestEngineSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tr, err := NewWithExporter(&config.TracingConfig{SampleRatio: 1, ServiceName: "paramengine-test"}, "test", exporter)
	if err != nil {
		t.Fatalf("NewWithExporter() error = %v", err)
	}
	defer tr.Shutdown(context.Background())

	repo := repository.NewMemory(&model.Parameter{
		Name:        "fees",
		Levels:      []model.Level{{Name: "channel", LevelCreator: "channel"}, {Name: "fee"}},
		InputLevels: 1,
		Cacheable:   true,
		Entries:     []model.Entry{model.NewEntry("web", "1.5")},
	})
	preparer, err := prepared.NewPreparer(repo, prepared.NewCompiler(nil, nil, nil), prepared.DefaultPreparerConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	eng, err := engine.New(nil, preparer, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.Functions().Register("channel", func(context.Context, ...any) (any, error) { return "web", nil }); err != nil {
		t.Fatal(err)
	}
	eng.SetTracer(tr.Tracer())

	if _, err := eng.Get(context.Background(), "fees", engine.NewParamContext()); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if err := tr.ForceFlush(context.Background()); err != nil {
		t.Fatal(err)
	}

	spans := exporter.GetSpans()
	names := map[string]bool{}
	for _, s := range spans {
		names[s.Name] = true
	}
	if !names["engine.Get"] || !names["engine.function"] {
		t.Errorf("spans = %v, want engine.Get and engine.function", names)
	}
	for _, s := range spans {
		if s.Name == "engine.function" && s.Parent.SpanID() == [8]byte{} {
			t.Error("function span should be a child of engine.Get")
		}
	}
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{1, "ParentBased{root:AlwaysOnSampler"},
		{0, "ParentBased{root:AlwaysOffSampler"},
		{0.5, "ParentBased{root:TraceIDRatioBased{0.5}"},
	}
	for _, tt := range tests {
		got := newSampler(tt.ratio).Description()
		if len(got) < len(tt.want) || got[:len(tt.want)] != tt.want {
			t.Errorf("newSampler(%v) = %q, want prefix %q", tt.ratio, got, tt.want)
		}
	}
}
