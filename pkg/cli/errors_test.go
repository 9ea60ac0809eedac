package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	cause := errors.New("yaml: line 3")
	tests := []struct {
		name string
		err  *ConfigError
		want string
	}{
		{
			name: "with field",
			err:  NewConfigError("repository.kind", "unsupported kind", nil),
			want: "config error in repository.kind: unsupported kind",
		},
		{
			name: "without field",
			err:  NewConfigError("", "failed to load", cause),
			want: "config error: failed to load",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}

	if !errors.Is(NewConfigError("", "x", cause), cause) {
		t.Error("ConfigError should unwrap to its cause")
	}
}

func TestCommandError(t *testing.T) {
	inner := errors.New("validation failed")
	err := NewCommandError("lint", inner)

	if got, want := err.Error(), "command lint failed: validation failed"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, inner) {
		t.Error("CommandError should unwrap to the inner error")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "generic", err: errors.New("boom"), want: ExitFailure},
		{name: "command", err: NewCommandError("get", errors.New("boom")), want: ExitFailure},
		{name: "config", err: NewConfigError("server", "bad", nil), want: ExitConfig},
		{name: "wrapped config", err: fmt.Errorf("startup: %w", NewConfigError("", "bad", nil)), want: ExitConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
