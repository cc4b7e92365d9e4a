package credential

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Bibi40k/swe-agent-setup/internal/prompt"
	"github.com/Bibi40k/swe-agent-setup/internal/ui"
	"github.com/Bibi40k/swe-agent-setup/internal/wizard"
)

// Source tells where a credential came from.
type Source string

const (
	SourceEnvironment Source = "environment"
	SourceOperator    Source = "operator"
)

// Credential is a resolved API key and the variable it lives under.
type Credential struct {
	EnvName string
	Value   string
	Source  Source
}

// String never prints the key itself.
func (c Credential) String() string {
	return fmt.Sprintf("%s=%s", c.EnvName, Mask(c.Value))
}

// Mask keeps the first 3 and last 4 characters of a key.
func Mask(v string) string {
	if len(v) <= 8 {
		return strings.Repeat("*", len(v))
	}
	return v[:3] + strings.Repeat("*", len(v)-7) + v[len(v)-4:]
}

// Resolver obtains the API key from Env or, failing that, from the operator.
type Resolver struct {
	EnvName  string
	Format   Format
	Env      Env
	Prompter prompt.Prompter
	Logger   *slog.Logger
	// MaxAttempts caps operator attempts; 0 means ask until valid.
	MaxAttempts int
}

// Resolve returns the key already present in Env without re-validating it.
// Otherwise it prompts until a well-formed key is entered, publishes it to
// Env and returns it.
func (r *Resolver) Resolve(ctx context.Context) (Credential, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if v, ok := r.Env.Lookup(r.EnvName); ok && v != "" {
		ui.Success(logger, "API key found in environment", "env", r.EnvName)
		return Credential{EnvName: r.EnvName, Value: v, Source: SourceEnvironment}, nil
	}

	logger.Info("API key not set", "env", r.EnvName)
	value, err := wizard.Until(ctx, wizard.Retry[string]{
		Ask: func(_ context.Context, _ int) (string, error) {
			return r.Prompter.ReadSecret(fmt.Sprintf("  Enter your API key (%s...): ", r.Format.Prefix))
		},
		Check: r.Format.Validate,
		OnReject: func(_ int, err error) {
			logger.Error(err.Error())
		},
		MaxAttempts: r.MaxAttempts,
	})
	if err != nil {
		return Credential{}, fmt.Errorf("resolve API key: %w", err)
	}

	if err := r.Env.Set(r.EnvName, value); err != nil {
		return Credential{}, fmt.Errorf("publish %s: %w", r.EnvName, err)
	}
	ui.Success(logger, "API key accepted", "env", r.EnvName)
	return Credential{EnvName: r.EnvName, Value: value, Source: SourceOperator}, nil
}
