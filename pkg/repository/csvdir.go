package repository

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"mercator-hq/paramengine/pkg/model"
)

// CSVDir is a repository of CSV files named <parameter>.csv or
// <parameter>.csv.zst. Entries are streamed from disk on every Load.
type CSVDir struct {
	dir      string
	comma    rune
	compress bool
	logger   *slog.Logger
}

// NewCSVDir creates a repository over dir, creating the directory if needed.
// When compress is set, Save writes zstd compressed files.
func NewCSVDir(dir string, comma rune, compress bool, logger *slog.Logger) (*CSVDir, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, newStorageError("csv", "open", err)
	}
	return &CSVDir{
		dir:      dir,
		comma:    comma,
		compress: compress,
		logger:   logger.With("component", "repository.csv"),
	}, nil
}

// Reload is a no-op; files are read on every Load.
func (c *CSVDir) Reload() error { return nil }

func parameterFromFile(name string) (string, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".csv"+ZstdExt):
		return name[:len(name)-len(".csv"+ZstdExt)], true
	case strings.HasSuffix(lower, ".csv"):
		return name[:len(name)-len(".csv")], true
	}
	return "", false
}

func (c *CSVDir) path(name string) (string, error) {
	for _, ext := range []string{".csv", ".csv" + ZstdExt} {
		p := filepath.Join(c.dir, name+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", notFound(name)
}

// Load opens the parameter's file. The returned loader owns the file and
// closes it when drained or closed.
func (c *CSVDir) Load(_ context.Context, name string) (*model.ParameterBatch, error) {
	path, err := c.path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, newStorageError("csv", "load", err)
	}

	var r io.ReadCloser = f
	if IsCompressed(path) {
		if r, err = NewCompressedReader(f); err != nil {
			f.Close()
			return nil, newStorageError("csv", "load", err)
		}
	}

	batch, err := ReadCSV(r, c.comma)
	if err != nil {
		r.Close()
		return nil, newStorageError("csv", "load", fmt.Errorf("%s: %w", path, err))
	}
	if batch.Parameter.Name == "" {
		batch.Parameter.Name = name
	}
	return batch, nil
}

// List returns the parameter names found in the directory.
func (c *CSVDir) List(_ context.Context) ([]string, error) {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, newStorageError("csv", "list", err)
	}

	var names []string
	for _, f := range files {
		if f.IsDir() || strings.HasPrefix(f.Name(), ".") {
			continue
		}
		if name, ok := parameterFromFile(f.Name()); ok && !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Save writes the parameter, replacing any existing file for it.
func (c *CSVDir) Save(ctx context.Context, p *model.Parameter) error {
	if err := p.Validate(); err != nil {
		return err
	}

	ext := ".csv"
	if c.compress {
		ext += ZstdExt
	}
	path := filepath.Join(c.dir, p.Name+ext)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return newStorageError("csv", "save", err)
	}

	var w io.WriteCloser = f
	if c.compress {
		if w, err = NewCompressedWriter(f); err != nil {
			f.Close()
			os.Remove(tmp)
			return newStorageError("csv", "save", err)
		}
	}

	batch := &model.ParameterBatch{Parameter: p.Header(), Loader: model.NewSliceLoader(p.Entries)}
	if _, err := WriteCSV(ctx, w, batch, c.comma); err != nil {
		w.Close()
		os.Remove(tmp)
		return newStorageError("csv", "save", err)
	}
	if err := w.Close(); err != nil {
		os.Remove(tmp)
		return newStorageError("csv", "save", err)
	}

	// Remove the other variant so a name maps to one file.
	if old, err := c.path(p.Name); err == nil && old != path {
		os.Remove(old)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return newStorageError("csv", "save", err)
	}

	c.logger.Info("saved parameter", "parameter", p.Name, "path", path, "entries", len(p.Entries))
	return nil
}

// Delete removes the parameter's file.
func (c *CSVDir) Delete(_ context.Context, name string) error {
	path, err := c.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return newStorageError("csv", "delete", err)
	}
	return nil
}
