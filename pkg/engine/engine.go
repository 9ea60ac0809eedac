package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"mercator-hq/paramengine/pkg/function"
	"mercator-hq/paramengine/pkg/index"
	"mercator-hq/paramengine/pkg/matcher"
	"mercator-hq/paramengine/pkg/model"
	"mercator-hq/paramengine/pkg/prepared"
	"mercator-hq/paramengine/pkg/types"
)

// Provider supplies compiled parameters. It returns an error wrapping
// model.ErrNotFound for unknown names. *prepared.Preparer implements it.
type Provider interface {
	Get(ctx context.Context, name string) (*prepared.Parameter, error)
}

// Engine answers parameter queries. It is safe for concurrent use.
type Engine struct {
	provider  Provider
	functions *function.Registry
	config    *EngineConfig
	recorder  Recorder
	tracer    trace.Tracer
	logger    *slog.Logger
}

// New creates an engine. A nil config uses DefaultEngineConfig(), a nil
// function registry an empty one and a nil logger slog.Default().
func New(config *EngineConfig, provider Provider, functions *function.Registry, logger *slog.Logger) (*Engine, error) {
	if config == nil {
		config = DefaultEngineConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("parameter provider cannot be nil")
	}
	if functions == nil {
		functions = function.NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		provider:  provider,
		functions: functions,
		config:    config,
		recorder:  noopRecorder{},
		tracer:    noop.NewTracerProvider().Tracer("paramengine"),
		logger:    logger.With("component", "engine"),
	}, nil
}

// SetRecorder registers r to receive query measurements.
func (e *Engine) SetRecorder(r Recorder) {
	if r == nil {
		r = noopRecorder{}
	}
	e.recorder = r
}

// SetTracer sets the tracer used for query spans.
func (e *Engine) SetTracer(t trace.Tracer) {
	if t != nil {
		e.tracer = t
	}
}

// Functions returns the engine's function registry.
func (e *Engine) Functions() *function.Registry {
	return e.functions
}

// GetValues resolves name with explicit level values.
func (e *Engine) GetValues(ctx context.Context, name string, levelValues ...any) (*ParamValue, error) {
	return e.Get(ctx, name, LevelValues(levelValues...))
}

// Get resolves name against pctx. Level values missing from pctx are derived
// with the level creators and stored back into pctx. A nil pctx is treated
// as an empty context.
func (e *Engine) Get(ctx context.Context, name string, pctx *ParamContext) (*ParamValue, error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "engine.Get", trace.WithAttributes(attribute.String("parameter", name)))
	defer span.End()

	e.logger.Debug("enter get", "parameter", name, "context", pctx)

	value, err := e.get(ctx, name, pctx, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.recorder.RecordQuery(name, OutcomeError, time.Since(start), 0)
		return nil, err
	}

	outcome := OutcomeHit
	if value.IsEmpty() {
		outcome = OutcomeEmpty
	}
	span.SetAttributes(attribute.Int("rows", value.Len()))
	e.recorder.RecordQuery(name, outcome, time.Since(start), value.Len())

	e.logger.Debug("leave get", "parameter", name, "rows", value.Len())
	return value, nil
}

func (e *Engine) get(ctx context.Context, name string, pctx *ParamContext, span trace.Span) (*ParamValue, error) {
	param, err := e.provider.Get(ctx, name)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, &UnknownParameterError{Parameter: name, Cause: err}
		}
		return nil, fmt.Errorf("preparing parameter %q: %w", name, err)
	}

	if pctx == nil {
		pctx = NewParamContext()
	}
	if pctx.LevelValues() == nil {
		if err := e.evaluateLevelValues(ctx, param, pctx); err != nil {
			return nil, err
		}
	}

	raw := pctx.LevelValues()
	if len(raw) != param.InputLevels {
		return nil, &InvalidLevelValuesError{Parameter: name, Expected: param.InputLevels, Values: raw}
	}

	values, err := normalize(param, raw)
	if err != nil {
		return nil, &QueryError{Parameter: name, Values: raw, Cause: err}
	}
	if e.config.TraceLevelValues {
		span.SetAttributes(attribute.StringSlice("levels", values))
	}

	cfg, err := param.Traversal().WithOverrides(pctx.Overrides())
	if err != nil {
		return nil, &QueryError{Parameter: name, Values: raw, Cause: err}
	}

	hits, err := param.Find(cfg, values)
	if err != nil {
		return nil, &QueryError{Parameter: name, Values: raw, Cause: err}
	}

	extraction := e.config.Extraction
	if pctx.extraction != nil {
		extraction = *pctx.extraction
	}
	entries := index.Extract(hits, extraction)

	if len(entries) == 0 {
		if param.Nullable {
			return emptyValue(name, outputColumns(param)), nil
		}
		return nil, &ParameterValueNotFoundError{Parameter: name, Values: values}
	}

	value, err := project(param, entries)
	if err != nil {
		return nil, &QueryError{Parameter: name, Values: raw, Cause: err}
	}
	return value, nil
}

// evaluateLevelValues derives every input level value by calling the level's
// creator with pctx.
func (e *Engine) evaluateLevelValues(ctx context.Context, param *prepared.Parameter, pctx *ParamContext) error {
	values := make([]any, param.InputLevels)
	for i := range values {
		level := param.Levels[i]
		if level.LevelCreator == "" {
			return &UndefinedLevelCreatorError{Parameter: param.Name, Level: level.Name, Position: i}
		}

		result, err := e.invoke(ctx, level.LevelCreator, pctx)
		if err != nil {
			return &QueryError{Parameter: param.Name, Cause: err}
		}
		values[i] = result
	}

	e.logger.Debug("evaluated level values", "parameter", param.Name, "values", values)
	pctx.WithLevelValues(values...)
	return nil
}

// CallFunction invokes a registered function.
func (e *Engine) CallFunction(ctx context.Context, name string, args ...any) (any, error) {
	e.logger.Debug("calling function", "function", name, "args", len(args))
	return e.invoke(ctx, name, args...)
}

// CallEvaluatedFunction resolves parameter name against pctx and calls the
// function named by the resulting holder with args. An empty or null holder
// yields a nil result.
func (e *Engine) CallEvaluatedFunction(ctx context.Context, name string, pctx *ParamContext, args ...any) (any, error) {
	value, err := e.Get(ctx, name, pctx)
	if err != nil {
		return nil, err
	}

	holder := value.Holder()
	if holder.Kind() != types.KindString {
		return nil, &InvalidFunctionReferenceError{Parameter: name, Kind: holder.Kind()}
	}

	fn, _ := holder.AsString()
	if holder.IsNull() || fn == "" {
		return nil, nil
	}
	return e.CallFunction(ctx, fn, args...)
}

func (e *Engine) invoke(ctx context.Context, name string, args ...any) (any, error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "engine.function", trace.WithAttributes(attribute.String("function", name)))
	defer span.End()

	result, err := e.functions.Invoke(ctx, name, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.recorder.RecordFunction(name, OutcomeError, time.Since(start))
		return nil, err
	}
	e.recorder.RecordFunction(name, OutcomeHit, time.Since(start))
	return result, nil
}

// normalize converts level values to the canonical text of their level types.
func normalize(param *prepared.Parameter, raw []any) ([]string, error) {
	values := make([]string, len(raw))
	for i, v := range raw {
		level := param.Levels[i]

		var (
			text string
			err  error
		)
		if level.Array {
			text, err = normalizeArray(level.Type, param.Separator, v)
		} else {
			text, err = normalizeValue(level.Type, v)
		}
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", i, err)
		}
		values[i] = text
	}
	return values, nil
}

func normalizeValue(t types.Type, v any) (string, error) {
	if s, ok := v.(string); ok && s == matcher.Wildcard {
		return s, nil
	}
	return types.Normalize(t, v)
}

func normalizeArray(t types.Type, sep rune, v any) (string, error) {
	var elems []any
	switch val := v.(type) {
	case string:
		for _, part := range strings.Split(val, string(sep)) {
			elems = append(elems, strings.TrimSpace(part))
		}
	case []string:
		for _, part := range val {
			elems = append(elems, part)
		}
	case []any:
		elems = val
	default:
		elems = []any{v}
	}

	parts := make([]string, len(elems))
	for i, elem := range elems {
		text, err := normalizeValue(t, elem)
		if err != nil {
			return "", err
		}
		parts[i] = text
	}
	return strings.Join(parts, string(sep)), nil
}

func outputColumns(param *prepared.Parameter) []string {
	columns := make([]string, 0, param.OutputLevels())
	for _, level := range param.Levels[param.InputLevels:] {
		columns = append(columns, level.Name)
	}
	return columns
}

// project parses the output values of entries into typed rows.
func project(param *prepared.Parameter, entries []model.Entry) (*ParamValue, error) {
	value := emptyValue(param.Name, outputColumns(param))
	value.rows = make([][]types.Value, len(entries))

	for r, entry := range entries {
		row := make([]types.Value, 0, param.OutputLevels())
		for i := param.InputLevels; i < len(param.Levels); i++ {
			t := param.Levels[i].Type
			if t == nil {
				t = types.String
			}
			v, err := t.Parse(entry.Value(i))
			if err != nil {
				return nil, err
			}
			row = append(row, v)
		}
		value.rows[r] = row
	}
	return value, nil
}
