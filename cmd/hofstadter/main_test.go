package main

import (
	"context"
	"fmt"
	"testing"

	herrors "github.com/qmatter/hofstadter/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"interrupt", fmt.Errorf("sweep: %w", context.Canceled), 130},
		{"bad flux", herrors.New(herrors.ErrCodeInvalidFlux, "q must be positive"), 2},
		{"bad config", fmt.Errorf("load config: %w", herrors.New(herrors.ErrCodeInvalidInput, "unknown keys")), 2},
		{"network", herrors.New(herrors.ErrCodeNetwork, "redis unreachable"), 1},
		{"plain", fmt.Errorf("disk full"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
