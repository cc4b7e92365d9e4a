package choice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Bibi40k/swe-agent-setup/internal/prompt"
	"github.com/Bibi40k/swe-agent-setup/internal/ui"
	"github.com/Bibi40k/swe-agent-setup/internal/wizard"
)

// Selector asks the operator to pick one model.
type Selector struct {
	Menu     Menu
	Message  string
	Prompter prompt.Prompter
	Logger   *slog.Logger
	// MaxAttempts caps invalid answers; 0 means ask until valid.
	MaxAttempts int
}

// Select shows the menu until the answer resolves to a member.
func (s *Selector) Select(ctx context.Context) (Model, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	message := s.Message
	if message == "" {
		message = "Select a model:"
	}

	var picked Model
	_, err := wizard.Until(ctx, wizard.Retry[string]{
		Ask: func(_ context.Context, _ int) (string, error) {
			return s.Prompter.Choose(message, s.Menu.Labels())
		},
		Check: func(answer string) error {
			mod, ok := s.Menu.Resolve(answer)
			if !ok {
				return fmt.Errorf("invalid selection %q: enter a number between 1 and %d", answer, s.Menu.Len())
			}
			picked = mod
			return nil
		},
		OnReject: func(_ int, err error) {
			logger.Error(err.Error())
		},
		MaxAttempts: s.MaxAttempts,
	})
	if err != nil {
		return "", fmt.Errorf("select model: %w", err)
	}
	ui.Success(logger, "Model selected", "model", string(picked))
	return picked, nil
}
