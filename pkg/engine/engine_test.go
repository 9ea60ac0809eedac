package engine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"mercator-hq/paramengine/pkg/function"
	"mercator-hq/paramengine/pkg/index"
	"mercator-hq/paramengine/pkg/model"
	"mercator-hq/paramengine/pkg/prepared"
	"mercator-hq/paramengine/pkg/types"
)

type staticSource map[string]*model.Parameter

func (s staticSource) Load(_ context.Context, name string) (*model.ParameterBatch, error) {
	p, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrNotFound, name)
	}
	return &model.ParameterBatch{Parameter: p.Header(), Loader: model.NewSliceLoader(p.Entries)}, nil
}

func discount(cacheable bool) *model.Parameter {
	return &model.Parameter{
		Name: "discount",
		Levels: []model.Level{
			{Name: "region", Type: "string", LevelCreator: "region"},
			{Name: "qty", Type: "integer", Matcher: "between/ie", LevelCreator: "qty"},
			{Name: "rate", Type: "decimal"},
			{Name: "label", Type: "string"},
		},
		InputLevels: 2,
		Cacheable:   cacheable,
		Entries: []model.Entry{
			model.NewEntry("EU", "0:10", "0.05", "small-eu"),
			model.NewEntry("EU", "10:*", "0.10", "large-eu"),
			model.NewEntry("*", "*", "0.00", "none"),
		},
	}
}

func fixtures(cacheable bool) []*model.Parameter {
	return []*model.Parameter{
		discount(cacheable),
		{
			Name:        "optional",
			Levels:      []model.Level{{Name: "code"}, {Name: "out"}},
			InputLevels: 1,
			Nullable:    true,
			Cacheable:   cacheable,
			Entries:     []model.Entry{model.NewEntry("A", "x")},
		},
		{
			Name:        "handler",
			Levels:      []model.Level{{Name: "kind"}, {Name: "fn"}},
			InputLevels: 1,
			Nullable:    true,
			Cacheable:   cacheable,
			Entries:     []model.Entry{model.NewEntry("a", "double"), model.NewEntry("b", "")},
		},
		{
			Name:        "counts",
			Levels:      []model.Level{{Name: "kind"}, {Name: "count", Type: "integer"}},
			InputLevels: 1,
			Cacheable:   cacheable,
			Entries:     []model.Entry{model.NewEntry("a", "3")},
		},
		{
			Name:        "tags",
			Levels:      []model.Level{{Name: "tag", Array: true}, {Name: "temp"}},
			InputLevels: 1,
			Cacheable:   cacheable,
			Entries:     []model.Entry{model.NewEntry("red", "warm"), model.NewEntry("blue", "cold")},
		},
		{
			Name:        "constant",
			Levels:      []model.Level{{Name: "value", Type: "integer"}},
			InputLevels: 0,
			Cacheable:   cacheable,
			Entries:     []model.Entry{model.NewEntry("42")},
		},
	}
}

func newEngine(t *testing.T, cacheable bool) *Engine {
	t.Helper()

	source := staticSource{}
	for _, p := range fixtures(cacheable) {
		source[p.Name] = p
	}

	preparer, err := prepared.NewPreparer(source, prepared.NewCompiler(nil, nil, nil), prepared.DefaultPreparerConfig(), nil)
	if err != nil {
		t.Fatalf("NewPreparer() error = %v", err)
	}

	functions := function.NewRegistry()
	register := func(name string, fn function.Func) {
		if err := functions.Register(name, fn); err != nil {
			t.Fatalf("Register(%q) error = %v", name, err)
		}
	}
	register("region", func(_ context.Context, args ...any) (any, error) {
		v, _ := args[0].(*ParamContext).Get("region")
		return v, nil
	})
	register("qty", func(_ context.Context, args ...any) (any, error) {
		v, ok := args[0].(*ParamContext).Get("qty")
		if !ok {
			return nil, errors.New("qty not set")
		}
		return v, nil
	})
	register("double", func(_ context.Context, args ...any) (any, error) {
		return args[0].(int) * 2, nil
	})

	eng, err := New(nil, preparer, functions, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return eng
}

func forEachMode(t *testing.T, fn func(t *testing.T, eng *Engine)) {
	for _, cacheable := range []bool{true, false} {
		t.Run(fmt.Sprintf("cacheable=%v", cacheable), func(t *testing.T) {
			fn(t, newEngine(t, cacheable))
		})
	}
}

func labels(v *ParamValue) []string {
	var out []string
	for _, row := range v.Rows() {
		s, _ := row[1].AsString()
		out = append(out, s)
	}
	return out
}

func TestGetValues(t *testing.T) {
	tests := []struct {
		name   string
		levels []any
		want   []string
	}{
		{"small order", []any{"EU", 5}, []string{"small-eu"}},
		{"large order", []any{"EU", 15}, []string{"large-eu"}},
		{"range boundary", []any{"EU", int64(10)}, []string{"large-eu"}},
		{"text quantity", []any{"EU", "15"}, []string{"large-eu"}},
		{"fallback region", []any{"US", 5}, []string{"none"}},
		{"holder value", []any{types.StringValue("EU"), types.IntegerValue(1)}, []string{"small-eu"}},
	}

	forEachMode(t, func(t *testing.T, eng *Engine) {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				v, err := eng.GetValues(context.Background(), "discount", tt.levels...)
				if err != nil {
					t.Fatalf("GetValues() error = %v", err)
				}
				if got := labels(v); !reflect.DeepEqual(got, tt.want) {
					t.Errorf("GetValues(%v) = %v, want %v", tt.levels, got, tt.want)
				}
			})
		}
	})
}

func TestGet_TypedOutput(t *testing.T) {
	eng := newEngine(t, true)

	v, err := eng.GetValues(context.Background(), "discount", "EU", 15)
	if err != nil {
		t.Fatalf("GetValues() error = %v", err)
	}
	if rate, ok := v.AsFloat64(); !ok || rate != 0.10 {
		t.Errorf("AsFloat64() = %v, %v, want 0.10, true", rate, ok)
	}
	label, ok := v.GetByName("label")
	if !ok {
		t.Fatal("GetByName(label) not found")
	}
	if s, _ := label.AsString(); s != "large-eu" {
		t.Errorf("GetByName(label) = %q, want large-eu", s)
	}
	if _, ok := v.GetByName("region"); ok {
		t.Error("GetByName(region) should not expose input levels")
	}
	if got := v.Columns(); !reflect.DeepEqual(got, []string{"rate", "label"}) {
		t.Errorf("Columns() = %v", got)
	}

	c, err := eng.GetValues(context.Background(), "constant")
	if err != nil {
		t.Fatalf("GetValues(constant) error = %v", err)
	}
	if n, _ := c.AsInt64(); n != 42 {
		t.Errorf("constant = %d, want 42", n)
	}
}

func TestGet_OverridesAndExtraction(t *testing.T) {
	forEachMode(t, func(t *testing.T, eng *Engine) {
		ctx := context.Background()

		all, err := eng.Get(ctx, "discount", LevelValues("EU", 5).
			WithOverrides(index.NewOverrides().SetAllGreedy()))
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got, want := labels(all), []string{"small-eu", "none"}; !reflect.DeepEqual(got, want) {
			t.Errorf("all greedy = %v, want %v", got, want)
		}

		best, err := eng.Get(ctx, "discount", LevelValues("EU", 5).
			WithOverrides(index.NewOverrides().SetAllGreedy()).
			WithExtraction(index.ExtractBest))
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got, want := labels(best), []string{"small-eu"}; !reflect.DeepEqual(got, want) {
			t.Errorf("best = %v, want %v", got, want)
		}

		_, err = eng.Get(ctx, "discount", LevelValues("EU", 5).
			WithOverrides(index.NewOverrides().SetGreedy("country")))
		var qe *QueryError
		var unknown *index.UnknownLevelError
		if !errors.As(err, &qe) || !errors.As(err, &unknown) {
			t.Errorf("Get(unknown override) error = %v, want QueryError wrapping UnknownLevelError", err)
		}
	})
}

func TestGet_Nullability(t *testing.T) {
	forEachMode(t, func(t *testing.T, eng *Engine) {
		v, err := eng.GetValues(context.Background(), "optional", "B")
		if err != nil {
			t.Fatalf("GetValues(nullable) error = %v", err)
		}
		if !v.IsEmpty() || v.Len() != 0 {
			t.Errorf("GetValues(nullable) = %d rows, want empty", v.Len())
		}
		if !v.Holder().IsNull() {
			t.Error("Holder() of empty result should be null")
		}

		_, err = eng.GetValues(context.Background(), "counts", "zzz")
		var notFound *ParameterValueNotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("GetValues(non-nullable) error = %v, want ParameterValueNotFoundError", err)
		}
		if notFound.Parameter != "counts" || !reflect.DeepEqual(notFound.Values, []string{"zzz"}) {
			t.Errorf("ParameterValueNotFoundError = %+v", notFound)
		}
	})
}

func TestGet_LevelCountMismatch(t *testing.T) {
	forEachMode(t, func(t *testing.T, eng *Engine) {
		for _, levels := range [][]any{{"EU"}, {"EU", 1, 2}, {}} {
			_, err := eng.GetValues(context.Background(), "discount", levels...)
			var invalid *InvalidLevelValuesError
			if !errors.As(err, &invalid) {
				t.Errorf("GetValues(%v) error = %v, want InvalidLevelValuesError", levels, err)
				continue
			}
			if invalid.Expected != 2 || len(invalid.Values) != len(levels) {
				t.Errorf("InvalidLevelValuesError = %+v", invalid)
			}
		}
	})
}

func TestGet_LevelCreators(t *testing.T) {
	forEachMode(t, func(t *testing.T, eng *Engine) {
		ctx := context.Background()

		pctx := NewParamContext().Set("region", "EU").Set("qty", 12)
		v, err := eng.Get(ctx, "discount", pctx)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got := labels(v); !reflect.DeepEqual(got, []string{"large-eu"}) {
			t.Errorf("Get() = %v, want [large-eu]", got)
		}
		if got := pctx.LevelValues(); !reflect.DeepEqual(got, []any{"EU", 12}) {
			t.Errorf("LevelValues() = %v, want [EU 12]", got)
		}

		_, err = eng.Get(ctx, "discount", NewParamContext().Set("region", "EU"))
		var qe *QueryError
		var inv *function.InvocationError
		if !errors.As(err, &qe) || !errors.As(err, &inv) {
			t.Errorf("Get(failing creator) error = %v, want QueryError wrapping InvocationError", err)
		}

		_, err = eng.Get(ctx, "optional", nil)
		var undefined *UndefinedLevelCreatorError
		if !errors.As(err, &undefined) {
			t.Fatalf("Get(no creator) error = %v, want UndefinedLevelCreatorError", err)
		}
		if undefined.Level != "code" || undefined.Position != 0 {
			t.Errorf("UndefinedLevelCreatorError = %+v", undefined)
		}
	})
}

func TestGet_Errors(t *testing.T) {
	eng := newEngine(t, true)
	ctx := context.Background()

	_, err := eng.GetValues(ctx, "missing")
	var unknown *UnknownParameterError
	if !errors.As(err, &unknown) || unknown.Parameter != "missing" {
		t.Errorf("GetValues(missing) error = %v, want UnknownParameterError", err)
	}
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("UnknownParameterError should wrap model.ErrNotFound")
	}

	_, err = eng.GetValues(ctx, "discount", "EU", "many")
	var coercion *types.CoercionError
	if !errors.As(err, &coercion) {
		t.Errorf("GetValues(bad integer) error = %v, want CoercionError", err)
	}
}

func TestGet_ArrayLevel(t *testing.T) {
	forEachMode(t, func(t *testing.T, eng *Engine) {
		tests := []struct {
			name  string
			input any
			want  []string
		}{
			{"delimited string", "red, blue", []string{"warm", "cold"}},
			{"string slice", []string{"blue", "red"}, []string{"cold", "warm"}},
			{"single", "blue", []string{"cold"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				v, err := eng.GetValues(context.Background(), "tags", tt.input)
				if err != nil {
					t.Fatalf("GetValues() error = %v", err)
				}
				var got []string
				for _, row := range v.Rows() {
					s, _ := row[0].AsString()
					got = append(got, s)
				}
				if !reflect.DeepEqual(got, tt.want) {
					t.Errorf("GetValues(%v) = %v, want %v", tt.input, got, tt.want)
				}
			})
		}
	})
}

func TestCallFunction(t *testing.T) {
	eng := newEngine(t, true)
	ctx := context.Background()

	got, err := eng.CallFunction(ctx, "double", 4)
	if err != nil || got != 8 {
		t.Errorf("CallFunction(double, 4) = %v, %v, want 8", got, err)
	}

	_, err = eng.CallFunction(ctx, "nope")
	var unknown *function.UnknownFunctionError
	if !errors.As(err, &unknown) {
		t.Errorf("CallFunction(nope) error = %v, want UnknownFunctionError", err)
	}
}

func TestCallEvaluatedFunction(t *testing.T) {
	forEachMode(t, func(t *testing.T, eng *Engine) {
		ctx := context.Background()

		got, err := eng.CallEvaluatedFunction(ctx, "handler", LevelValues("a"), 21)
		if err != nil || got != 42 {
			t.Errorf("CallEvaluatedFunction(a) = %v, %v, want 42", got, err)
		}

		got, err = eng.CallEvaluatedFunction(ctx, "handler", LevelValues("b"), 21)
		if err != nil || got != nil {
			t.Errorf("CallEvaluatedFunction(empty name) = %v, %v, want nil", got, err)
		}

		got, err = eng.CallEvaluatedFunction(ctx, "handler", LevelValues("zzz"))
		if err != nil || got != nil {
			t.Errorf("CallEvaluatedFunction(no match) = %v, %v, want nil", got, err)
		}

		_, err = eng.CallEvaluatedFunction(ctx, "counts", LevelValues("a"))
		var invalid *InvalidFunctionReferenceError
		if !errors.As(err, &invalid) || invalid.Kind != types.KindInteger {
			t.Errorf("CallEvaluatedFunction(integer) error = %v, want InvalidFunctionReferenceError", err)
		}
	})
}

type recordingRecorder struct {
	mu        sync.Mutex
	queries   []string
	functions []string
}

func (r *recordingRecorder) RecordQuery(parameter, outcome string, _ time.Duration, rows int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, fmt.Sprintf("%s:%s:%d", parameter, outcome, rows))
}

func (r *recordingRecorder) RecordFunction(name, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions = append(r.functions, name+":"+outcome)
}

func TestRecorder(t *testing.T) {
	eng := newEngine(t, true)
	rec := &recordingRecorder{}
	eng.SetRecorder(rec)
	ctx := context.Background()

	_, _ = eng.GetValues(ctx, "discount", "EU", 5)
	_, _ = eng.GetValues(ctx, "optional", "B")
	_, _ = eng.GetValues(ctx, "missing")
	_, _ = eng.Get(ctx, "discount", NewParamContext().Set("region", "EU").Set("qty", 1))

	wantQueries := []string{"discount:hit:1", "optional:empty:0", "missing:error:0", "discount:hit:1"}
	if !reflect.DeepEqual(rec.queries, wantQueries) {
		t.Errorf("queries = %v, want %v", rec.queries, wantQueries)
	}
	wantFunctions := []string{"region:hit", "qty:hit"}
	if !reflect.DeepEqual(rec.functions, wantFunctions) {
		t.Errorf("functions = %v, want %v", rec.functions, wantFunctions)
	}
}

func TestGet_CELLevelCreator(t *testing.T) {
	source := staticSource{"zone": {
		Name: "zone",
		Levels: []model.Level{
			{Name: "country", LevelCreator: "country"},
			{Name: "zone"},
		},
		InputLevels: 1,
		Cacheable:   true,
		Entries:     []model.Entry{model.NewEntry("PL", "eu"), model.NewEntry("*", "world")},
	}}
	preparer, err := prepared.NewPreparer(source, prepared.NewCompiler(nil, nil, nil), prepared.DefaultPreparerConfig(), nil)
	if err != nil {
		t.Fatalf("NewPreparer() error = %v", err)
	}
	functions := function.NewRegistry()
	if err := functions.RegisterCEL(map[string]string{"country": `ctx.address.startsWith("PL:") ? "PL" : "other"`}); err != nil {
		t.Fatalf("RegisterCEL() error = %v", err)
	}
	eng, err := New(nil, preparer, functions, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	v, err := eng.Get(context.Background(), "zone", NewParamContext().Set("address", "PL:Warsaw"))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if s, _ := v.AsString(); s != "eu" {
		t.Errorf("Get() = %q, want eu", s)
	}
}

func TestGet_Concurrent(t *testing.T) {
	eng := newEngine(t, true)

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				qty := (g*100 + i) % 20
				v, err := eng.GetValues(context.Background(), "discount", "EU", qty)
				if err != nil {
					t.Error(err)
					return
				}
				want := "small-eu"
				if qty >= 10 {
					want = "large-eu"
				}
				if got := labels(v); len(got) != 1 || got[0] != want {
					t.Errorf("GetValues(EU, %d) = %v, want [%s]", qty, got, want)
					return
				}
			}
		}(g)
	}
	wg.Wait()
}

func TestEngineConfig_Validate(t *testing.T) {
	if err := DefaultEngineConfig().Validate(); err != nil {
		t.Errorf("DefaultEngineConfig().Validate() error = %v", err)
	}
	bad := DefaultEngineConfig().WithExtraction(index.Extraction(9))
	if err := bad.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
	}
	if _, err := New(bad, staticSource{}.provider(t), nil, nil); err == nil {
		t.Error("New(invalid config) should fail")
	}
}

func (s staticSource) provider(t *testing.T) Provider {
	t.Helper()
	p, err := prepared.NewPreparer(s, prepared.NewCompiler(nil, nil, nil), prepared.DefaultPreparerConfig(), nil)
	if err != nil {
		t.Fatalf("NewPreparer() error = %v", err)
	}
	return p
}
