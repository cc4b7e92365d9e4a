// Package mocks provides testify-based mock implementations for testing
// without starting real processes.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Bibi40k/swe-agent-setup/internal/launch"
)

// Runner is a mock for launch.Runner.
type Runner struct {
	mock.Mock
}

func (m *Runner) Run(ctx context.Context, cmd launch.Command) (int, error) {
	args := m.Called(ctx, cmd)
	return args.Int(0), args.Error(1)
}

// Compile-time interface check.
var _ launch.Runner = (*Runner)(nil)
