// Package mocks provides testify-based mock implementations of the operator
// prompts.
package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/Bibi40k/swe-agent-setup/internal/prompt"
)

// Prompter is a mock for prompt.Prompter.
type Prompter struct {
	mock.Mock
}

func (m *Prompter) WaitKey(message string) error {
	args := m.Called(message)
	return args.Error(0)
}

func (m *Prompter) ReadLine(p string) (string, error) {
	args := m.Called(p)
	return args.String(0), args.Error(1)
}

func (m *Prompter) ReadSecret(p string) (string, error) {
	args := m.Called(p)
	return args.String(0), args.Error(1)
}

func (m *Prompter) Choose(message string, options []string) (string, error) {
	args := m.Called(message, options)
	return args.String(0), args.Error(1)
}

// Compile-time interface check.
var _ prompt.Prompter = (*Prompter)(nil)
