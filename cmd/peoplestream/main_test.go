package main

import (
	"errors"
	"fmt"
	"testing"

	perrors "github.com/sirseerhq/peoplestream/internal/errors"
)

func TestMapErrorToExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"general", errors.New("boom"), 1},
		{"cancelled", fmt.Errorf("x: %w", perrors.ErrCancelled), 1},
		{"validation", fmt.Errorf("x: %w", perrors.ErrValidation), 2},
		{"config", fmt.Errorf("x: %w", perrors.ErrInvalidConfig), 2},
		{"network", fmt.Errorf("x: %w", perrors.ErrNetworkFailure), 3},
		{"source", fmt.Errorf("x: %w", perrors.ErrSource), 3},
	}

	for _, tt := range tests {
		if got := mapErrorToExitCode(tt.err); got != tt.want {
			t.Errorf("mapErrorToExitCode(%s) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"serve", "fetch", "seed"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered: %v", name, err)
		}
	}
}
