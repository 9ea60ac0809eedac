package model

import "context"

// DefaultBatchSize is the number of entries loaded per batch.
const DefaultBatchSize = 500

// EntryBatchLoader feeds the entries of one parameter incrementally so that
// large tables never have to be held in a single collection by the source.
type EntryBatchLoader interface {
	// HasMore reports whether another call to NextBatch may return entries.
	HasMore() bool

	// NextBatch returns up to size entries.
	NextBatch(ctx context.Context, size int) ([]Entry, error)

	// Close releases the loader's resources.
	Close() error
}

// ParameterBatch is a parameter header together with a loader for its entries.
type ParameterBatch struct {
	Parameter *Parameter
	Loader    EntryBatchLoader
}

// Collect drains the batch into a complete parameter and closes the loader.
func (b *ParameterBatch) Collect(ctx context.Context, size int) (*Parameter, error) {
	defer b.Loader.Close()

	p := b.Parameter.Header()
	err := Drain(ctx, b.Loader, size, func(entries []Entry) error {
		p.Entries = append(p.Entries, entries...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Drain calls fn with each batch until the loader is exhausted.
func Drain(ctx context.Context, l EntryBatchLoader, size int, fn func([]Entry) error) error {
	if size <= 0 {
		size = DefaultBatchSize
	}
	for l.HasMore() {
		if err := ctx.Err(); err != nil {
			return err
		}
		entries, err := l.NextBatch(ctx, size)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			continue
		}
		if err := fn(entries); err != nil {
			return err
		}
	}
	return nil
}

// SliceLoader serves entries from memory.
type SliceLoader struct {
	entries []Entry
	pos     int
}

// NewSliceLoader creates a loader over entries.
func NewSliceLoader(entries []Entry) *SliceLoader {
	return &SliceLoader{entries: entries}
}

func (l *SliceLoader) HasMore() bool { return l.pos < len(l.entries) }

func (l *SliceLoader) NextBatch(_ context.Context, size int) ([]Entry, error) {
	end := min(l.pos+size, len(l.entries))
	batch := l.entries[l.pos:end]
	l.pos = end
	return batch, nil
}

func (l *SliceLoader) Close() error { return nil }
