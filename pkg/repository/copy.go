package repository

import (
	"context"
	"fmt"
	"log/slog"

	"mercator-hq/paramengine/pkg/model"
)

// Copy transfers parameters from src to dst. With no names, every parameter
// listed by src is copied. It returns the number of parameters copied.
func Copy(ctx context.Context, src Reader, dst Writer, logger *slog.Logger, names ...string) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if len(names) == 0 {
		listed, err := src.List(ctx)
		if err != nil {
			return 0, fmt.Errorf("listing source: %w", err)
		}
		names = listed
	}

	for i, name := range names {
		batch, err := src.Load(ctx, name)
		if err != nil {
			return i, fmt.Errorf("loading %q: %w", name, err)
		}

		p, err := batch.Collect(ctx, model.DefaultBatchSize)
		if err != nil {
			return i, fmt.Errorf("reading entries of %q: %w", name, err)
		}

		if err := dst.Save(ctx, p); err != nil {
			return i, fmt.Errorf("saving %q: %w", name, err)
		}
		logger.Info("copied parameter", "parameter", name, "entries", len(p.Entries))
	}
	return len(names), nil
}
