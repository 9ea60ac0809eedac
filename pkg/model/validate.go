package model

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrInvalidParameter is wrapped by every ValidationError.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNotFound is returned by sources that do not hold a parameter.
	ErrNotFound = errors.New("parameter not found")
)

// ValidationError describes a structural defect in a raw parameter.
type ValidationError struct {
	Parameter string
	Message   string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("parameter %q: %s", e.Parameter, e.Message)
}

// Unwrap returns ErrInvalidParameter.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidParameter
}

// Validate checks the parameter's structure. It does not resolve type,
// matcher or function codes; that happens at compile time.
func (p *Parameter) Validate() error {
	if p.Name == "" {
		return &ValidationError{Message: "name cannot be empty"}
	}
	if err := p.ValidateHeader(); err != nil {
		return err
	}
	for i, e := range p.Entries {
		if err := p.ValidateEntry(e); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

// ValidateHeader checks everything except the entries.
func (p *Parameter) ValidateHeader() error {
	if p.InputLevels < 0 || p.InputLevels > len(p.Levels) {
		return p.invalid("input level count %d out of range [0, %d]", p.InputLevels, len(p.Levels))
	}
	if p.ArraySeparator != "" && utf8.RuneCountInString(p.ArraySeparator) != 1 {
		return p.invalid("array separator %q must be a single character", p.ArraySeparator)
	}

	seen := make(map[string]int, len(p.Levels))
	for i, l := range p.Levels {
		if l.Name == "" {
			continue
		}
		if prev, dup := seen[l.Name]; dup {
			return p.invalid("level %q declared at positions %d and %d", l.Name, prev, i)
		}
		seen[l.Name] = i
	}
	return nil
}

// ValidateEntry checks that e holds one value per level.
func (p *Parameter) ValidateEntry(e Entry) error {
	if len(e.Levels) != len(p.Levels) {
		return p.invalid("entry has %d values, want %d", len(e.Levels), len(p.Levels))
	}
	return nil
}

func (p *Parameter) invalid(format string, args ...any) error {
	return &ValidationError{Parameter: p.Name, Message: fmt.Sprintf(format, args...)}
}
