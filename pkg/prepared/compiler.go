package prepared

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"mercator-hq/paramengine/pkg/index"
	"mercator-hq/paramengine/pkg/matcher"
	"mercator-hq/paramengine/pkg/model"
	"mercator-hq/paramengine/pkg/types"
)

// Observer receives one call per compilation attempt.
type Observer interface {
	ObserveCompile(parameter string, entries int, duration time.Duration, err error)
}

// Compiler turns raw parameters into compiled ones using the host's type and
// matcher registries.
type Compiler struct {
	types    *types.Registry
	matchers *matcher.Registry
	observer Observer
	logger   *slog.Logger
}

// NewCompiler creates a compiler. Nil registries are replaced by registries
// holding only the built-ins; a nil logger uses slog.Default().
func NewCompiler(typeRegistry *types.Registry, matcherRegistry *matcher.Registry, logger *slog.Logger) *Compiler {
	if typeRegistry == nil {
		typeRegistry = types.NewRegistry()
	}
	if matcherRegistry == nil {
		matcherRegistry = matcher.NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{
		types:    typeRegistry,
		matchers: matcherRegistry,
		logger:   logger.With("component", "prepared.compiler"),
	}
}

// SetObserver registers o to receive compilation results.
func (c *Compiler) SetObserver(o Observer) {
	c.observer = o
}

// Compile compiles a complete raw parameter.
func (c *Compiler) Compile(p *model.Parameter) (*Parameter, error) {
	return c.CompileBatch(context.Background(), &model.ParameterBatch{
		Parameter: p,
		Loader:    model.NewSliceLoader(p.Entries),
	}, 0)
}

// CompileBatch compiles a parameter whose entries are fed incrementally,
// batchSize entries at a time. The loader is closed before returning.
func (c *Compiler) CompileBatch(ctx context.Context, b *model.ParameterBatch, batchSize int) (_ *Parameter, err error) {
	start := time.Now()
	raw := b.Parameter
	entries := 0
	defer func() {
		if c.observer != nil {
			c.observer.ObserveCompile(raw.Name, entries, time.Since(start), err)
		}
	}()
	defer b.Loader.Close()

	if err := raw.ValidateHeader(); err != nil {
		return nil, err
	}

	p, err := c.bind(raw)
	if err != nil {
		return nil, err
	}

	var builder *index.Builder[model.Entry]
	if p.Cacheable {
		builder = index.NewBuilder[model.Entry](p.InputLevels)
	}

	err = model.Drain(ctx, b.Loader, batchSize, func(batch []model.Entry) error {
		for _, e := range batch {
			if err := raw.ValidateEntry(e); err != nil {
				return &EntryError{Parameter: p.Name, Entry: entries, Cause: err}
			}
			normalized, err := p.normalizeEntry(e)
			if err != nil {
				return &EntryError{Parameter: p.Name, Entry: entries, Cause: err}
			}

			keys := normalized.Levels[:p.InputLevels]
			if builder != nil {
				if err := builder.Add(keys, normalized); err != nil {
					return &EntryError{Parameter: p.Name, Entry: entries, Cause: err}
				}
			} else {
				p.rows = append(p.rows, index.Row[model.Entry]{Keys: keys, Leaf: normalized})
			}
			entries++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if builder != nil {
		p.index = builder.Build()
	}
	p.entries = entries

	attrs := []any{
		"parameter", p.Name,
		"version", p.Version,
		"entries", entries,
		"cacheable", p.Cacheable,
		"duration", time.Since(start),
	}
	if p.index != nil {
		attrs = append(attrs, "index_nodes", p.index.Stats().Nodes)
	}
	c.logger.Info("compiled parameter", attrs...)

	return p, nil
}

// bind resolves the level codes of raw.
func (c *Compiler) bind(raw *model.Parameter) (*Parameter, error) {
	p := &Parameter{
		Name:        raw.Name,
		Version:     uuid.New(),
		CompiledAt:  time.Now(),
		Levels:      make([]Level, len(raw.Levels)),
		InputLevels: raw.InputLevels,
		Nullable:    raw.Nullable,
		Cacheable:   raw.Cacheable,
		Separator:   raw.Separator(),
		levelNames:  make(map[string]int, len(raw.Levels)),
	}

	traversal := index.TraversalConfig{
		Levels:    make([]index.LevelConfig, raw.InputLevels),
		Separator: p.Separator,
	}

	for i, l := range raw.Levels {
		label := levelLabel(l.Name, i)
		level := Level{
			Name:         l.Name,
			MatcherCode:  l.Matcher,
			Array:        l.Array,
			LevelCreator: l.LevelCreator,
		}

		if l.Type != "" {
			t, err := c.types.Resolve(l.Type)
			if err != nil {
				return nil, &UnresolvedTypeError{Parameter: raw.Name, Level: label, Code: l.Type, Cause: err}
			}
			level.Type = t
		}

		if i < raw.InputLevels && l.Matcher != "" {
			m, err := c.matchers.Resolve(l.Matcher)
			if err != nil {
				return nil, &UnresolvedMatcherError{Parameter: raw.Name, Level: label, Code: l.Matcher, Cause: err}
			}
			level.Matcher = m
		}

		p.Levels[i] = level
		if l.Name != "" {
			p.levelNames[l.Name] = i
		}

		if i < raw.InputLevels {
			traversal.Levels[i] = index.LevelConfig{
				Name:     l.Name,
				Type:     level.Type,
				Matcher:  level.Matcher,
				Strategy: index.DefaultStrategy(level.Matcher),
				Array:    l.Array,
			}
		}
	}

	p.traversal = traversal
	return p, nil
}

// normalizeEntry rewrites literal values of exactly matched input levels to
// their canonical text, so that index keys and normalized query values agree,
// and checks that typed output values parse.
func (p *Parameter) normalizeEntry(e model.Entry) (model.Entry, error) {
	values := append([]string(nil), e.Levels...)
	for i, level := range p.Levels {
		if level.Type == nil {
			continue
		}

		if i >= p.InputLevels {
			if _, err := level.Type.Parse(values[i]); err != nil {
				return model.Entry{}, fmt.Errorf("level %s: %w", levelLabel(level.Name, i), err)
			}
			continue
		}

		if !matcher.IsExact(level.Matcher) || values[i] == matcher.Wildcard {
			continue
		}
		canonical, err := types.Normalize(level.Type, values[i])
		if err != nil {
			return model.Entry{}, fmt.Errorf("level %s: %w", levelLabel(level.Name, i), err)
		}
		values[i] = canonical
	}
	return model.Entry{Levels: values}, nil
}

func levelLabel(name string, pos int) string {
	if name != "" {
		return strconv.Quote(name)
	}
	return "#" + strconv.Itoa(pos)
}
