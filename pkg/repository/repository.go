package repository

import (
	"context"
	"fmt"

	"mercator-hq/paramengine/pkg/model"
)

// Reader supplies raw parameters. Load returns an error wrapping
// model.ErrNotFound for unknown names.
type Reader interface {
	Load(ctx context.Context, name string) (*model.ParameterBatch, error)
	List(ctx context.Context) ([]string, error)
}

// Writer stores raw parameters. Save replaces an existing parameter with the
// same name.
type Writer interface {
	Save(ctx context.Context, p *model.Parameter) error
	Delete(ctx context.Context, name string) error
}

// Repository reads and writes parameters.
type Repository interface {
	Reader
	Writer
}

// StorageError represents an error from a storage backend.
type StorageError struct {
	Backend   string
	Operation string
	Cause     error
}

// Error returns the error message.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

func newStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

func notFound(name string) error {
	return fmt.Errorf("%w: %q", model.ErrNotFound, name)
}
