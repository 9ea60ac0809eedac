package prepared

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"mercator-hq/paramengine/pkg/model"
)

// Source supplies raw parameters. Load returns an error wrapping
// model.ErrNotFound for unknown names.
type Source interface {
	Load(ctx context.Context, name string) (*model.ParameterBatch, error)
}

// PreparerConfig configures a Preparer.
type PreparerConfig struct {
	// BatchSize is the number of entries requested per loader batch.
	BatchSize int

	// WarmConcurrency bounds concurrent compilations during Warm.
	WarmConcurrency int
}

// DefaultPreparerConfig returns the default configuration.
func DefaultPreparerConfig() PreparerConfig {
	return PreparerConfig{
		BatchSize:       model.DefaultBatchSize,
		WarmConcurrency: 4,
	}
}

// Validate checks the configuration.
func (c PreparerConfig) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.WarmConcurrency <= 0 {
		return fmt.Errorf("warm concurrency must be positive, got %d", c.WarmConcurrency)
	}
	return nil
}

type snapshot map[string]*Parameter

// Preparer caches compiled parameters loaded from a Source.
type Preparer struct {
	source   Source
	compiler *Compiler
	config   PreparerConfig
	logger   *slog.Logger

	// writers hold mu and replace the whole snapshot; readers only load it
	mu         sync.Mutex
	current    atomic.Pointer[snapshot]
	generation atomic.Uint64
	group      singleflight.Group
}

// NewPreparer creates a preparer. A nil logger uses slog.Default().
func NewPreparer(source Source, compiler *Compiler, config PreparerConfig, logger *slog.Logger) (*Preparer, error) {
	if source == nil {
		return nil, errors.New("source cannot be nil")
	}
	if compiler == nil {
		return nil, errors.New("compiler cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid preparer config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Preparer{
		source:   source,
		compiler: compiler,
		config:   config,
		logger:   logger.With("component", "prepared.preparer"),
	}
	p.current.Store(&snapshot{})
	return p, nil
}

// Get returns the compiled parameter called name, loading and compiling it on
// first use. Concurrent first uses share one compilation, which is not
// cancelled when the caller that started it gives up. Each caller still
// returns as soon as its own ctx is done.
func (p *Preparer) Get(ctx context.Context, name string) (*Parameter, error) {
	if param, ok := (*p.current.Load())[name]; ok {
		return param, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := p.group.DoChan(name, func() (any, error) {
		if param, ok := (*p.current.Load())[name]; ok {
			return param, nil
		}
		return p.load(loadCtx, name)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Parameter), nil
	}
}

// load compiles name from the source and publishes it unless the cache was
// invalidated in the meantime.
func (p *Preparer) load(ctx context.Context, name string) (*Parameter, error) {
	gen := p.generation.Load()

	batch, err := p.source.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	param, err := p.compiler.CompileBatch(ctx, batch, p.config.BatchSize)
	if err != nil {
		return nil, err
	}

	p.publish(name, param, gen)
	return param, nil
}

// publish stores param unless an invalidation happened after gen was read.
func (p *Preparer) publish(name string, param *Parameter, gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.generation.Load() != gen {
		p.logger.Debug("discarding compilation superseded by invalidation", "parameter", name)
		return
	}
	p.store(name, param)
}

// store must be called with mu held.
func (p *Preparer) store(name string, param *Parameter) {
	old := *p.current.Load()
	next := make(snapshot, len(old)+1)
	for k, v := range old {
		next[k] = v
	}
	if param == nil {
		delete(next, name)
	} else {
		next[name] = param
	}
	p.current.Store(&next)
}

// Invalidate drops the cached version of name. The next Get recompiles it.
func (p *Preparer) Invalidate(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation.Add(1)
	p.store(name, nil)
	p.logger.Debug("invalidated parameter", "parameter", name)
}

// InvalidateAll drops every cached parameter.
func (p *Preparer) InvalidateAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation.Add(1)
	p.current.Store(&snapshot{})
	p.logger.Debug("invalidated all parameters")
}

// Warm compiles names concurrently, bounded by WarmConcurrency. It stops at
// the first failure.
func (p *Preparer) Warm(ctx context.Context, names []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.WarmConcurrency)

	for _, name := range names {
		g.Go(func() error {
			if _, err := p.Get(ctx, name); err != nil {
				return fmt.Errorf("warming %q: %w", name, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	p.logger.Info("warmed parameters", "count", len(names))
	return nil
}

// Refresh recompiles every cached parameter and swaps each new version in.
// Parameters that disappeared from the source are dropped. A version compiled
// across an invalidation is discarded; the next Get loads it afresh.
func (p *Preparer) Refresh(ctx context.Context) error {
	var errs []error
	for _, name := range p.Cached() {
		gen := p.generation.Load()
		batch, err := p.source.Load(ctx, name)
		if errors.Is(err, model.ErrNotFound) {
			p.Invalidate(name)
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("loading %q: %w", name, err))
			continue
		}

		param, err := p.compiler.CompileBatch(ctx, batch, p.config.BatchSize)
		if err != nil {
			errs = append(errs, fmt.Errorf("compiling %q: %w", name, err))
			continue
		}

		p.publish(name, param, gen)
	}
	return errors.Join(errs...)
}

// Cached returns the names of cached parameters in sorted order.
func (p *Preparer) Cached() []string {
	current := *p.current.Load()
	names := make([]string, 0, len(current))
	for name := range current {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
