package repository

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"mercator-hq/paramengine/pkg/model"
)

// document is the on-disk YAML layout of one parameter. Entries are written
// as plain string lists to keep large tables readable.
type document struct {
	Name           string        `yaml:"name"`
	Levels         []model.Level `yaml:"levels"`
	InputLevels    int           `yaml:"inputLevels"`
	Nullable       bool          `yaml:"nullable,omitempty"`
	Cacheable      *bool         `yaml:"cacheable,omitempty"`
	ArraySeparator string        `yaml:"arraySeparator,omitempty"`
	Entries        [][]string    `yaml:"entries,omitempty"`
}

func (d *document) parameter() *model.Parameter {
	p := &model.Parameter{
		Name:           d.Name,
		Levels:         d.Levels,
		InputLevels:    d.InputLevels,
		Nullable:       d.Nullable,
		Cacheable:      d.Cacheable == nil || *d.Cacheable,
		ArraySeparator: d.ArraySeparator,
		Entries:        make([]model.Entry, len(d.Entries)),
	}
	for i, row := range d.Entries {
		p.Entries[i] = model.NewEntry(row...)
	}
	return p
}

func newDocument(p *model.Parameter) *document {
	cacheable := p.Cacheable
	d := &document{
		Name:           p.Name,
		Levels:         p.Levels,
		InputLevels:    p.InputLevels,
		Nullable:       p.Nullable,
		Cacheable:      &cacheable,
		ArraySeparator: p.ArraySeparator,
		Entries:        make([][]string, len(p.Entries)),
	}
	for i, e := range p.Entries {
		d.Entries[i] = e.Levels
	}
	return d
}

// File is a repository backed by a directory of YAML files, one parameter per
// file. Files are read on construction and on Reload; Save writes through to
// disk.
type File struct {
	dir    string
	logger *slog.Logger

	mu     sync.RWMutex
	params map[string]*model.Parameter
	paths  map[string]string
}

// NewFile creates a repository over dir and loads every YAML file in it.
func NewFile(dir string, logger *slog.Logger) (*File, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f := &File{
		dir:    dir,
		logger: logger.With("component", "repository.file"),
	}
	if err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

// Dir returns the watched directory.
func (f *File) Dir() string {
	return f.dir
}

// Reload rereads the directory. On error the previously loaded parameters are
// kept.
func (f *File) Reload() error {
	params := make(map[string]*model.Parameter)
	paths := make(map[string]string)

	err := filepath.WalkDir(f.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != f.dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isYAML(path) || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		p, err := readYAML(path)
		if err != nil {
			return err
		}
		if prev, ok := paths[p.Name]; ok {
			return fmt.Errorf("parameter %q defined in both %s and %s", p.Name, prev, path)
		}
		params[p.Name] = p
		paths[p.Name] = path
		return nil
	})
	if err != nil {
		return newStorageError("file", "reload", err)
	}

	f.mu.Lock()
	f.params = params
	f.paths = paths
	f.mu.Unlock()

	f.logger.Info("loaded parameters", "dir", f.dir, "count", len(params))
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func readYAML(path string) (*model.Parameter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if doc.Name == "" {
		base := filepath.Base(path)
		doc.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	p := doc.parameter()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Load returns the named parameter.
func (f *File) Load(_ context.Context, name string) (*model.ParameterBatch, error) {
	f.mu.RLock()
	p, ok := f.params[name]
	f.mu.RUnlock()
	if !ok {
		return nil, notFound(name)
	}

	c := p.Clone()
	return &model.ParameterBatch{Parameter: c.Header(), Loader: model.NewSliceLoader(c.Entries)}, nil
}

// List returns the loaded names in sorted order.
func (f *File) List(_ context.Context) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.params))
	for name := range f.params {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Save writes p to <dir>/<name>.yaml, or to the file it was loaded from.
func (f *File) Save(_ context.Context, p *model.Parameter) error {
	if err := p.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(newDocument(p))
	if err != nil {
		return newStorageError("file", "save", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	path, ok := f.paths[p.Name]
	if !ok {
		path = filepath.Join(f.dir, p.Name+".yaml")
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return newStorageError("file", "save", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return newStorageError("file", "save", err)
	}

	f.params[p.Name] = p.Clone()
	f.paths[p.Name] = path
	return nil
}

// Delete removes the file holding the named parameter.
func (f *File) Delete(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path, ok := f.paths[name]
	if !ok {
		return notFound(name)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return newStorageError("file", "delete", err)
	}
	delete(f.params, name)
	delete(f.paths, name)
	return nil
}
