package launch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Bibi40k/swe-agent-setup/internal/ui"
)

// ErrLaunchFailed is returned when the agent could not be started.
var ErrLaunchFailed = errors.New("agent launch failed")

// Outcome is how an agent run ended.
type Outcome struct {
	ExitCode int
	Started  time.Time
	Finished time.Time
}

// Success reports exit status 0.
func (o Outcome) Success() bool { return o.ExitCode == 0 }

// Duration is the wall time of the run.
func (o Outcome) Duration() time.Duration { return o.Finished.Sub(o.Started) }

// Launcher runs the agent and reports the outcome to the operator.
type Launcher struct {
	Runner Runner
	Logger *slog.Logger
	now    func() time.Time
}

// NewLauncher returns a Launcher using runner.
func NewLauncher(runner Runner, logger *slog.Logger) *Launcher {
	return &Launcher{Runner: runner, Logger: logger}
}

func (l *Launcher) clock() time.Time {
	if l.now != nil {
		return l.now()
	}
	return time.Now()
}

// Launch runs the agent synchronously; its output goes straight to the
// operator. A non-zero exit is reported in Outcome, not as an error.
func (l *Launcher) Launch(ctx context.Context, p Params) (Outcome, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := p.Validate(); err != nil {
		return Outcome{ExitCode: -1}, fmt.Errorf("%w: %w", ErrLaunchFailed, err)
	}

	logger.Info("Launching agent", "model", string(p.Model), "cost_limit", FormatCost(p.CostLimit))
	logger.Debug("agent command", "cmd", p.CommandLine())

	out := Outcome{Started: l.clock()}
	code, err := l.Runner.Run(ctx, Command{
		Name: p.Command,
		Args: p.Args(),
		Dir:  p.Dir,
		Env:  p.Env(),
	})
	out.Finished = l.clock()
	out.ExitCode = code
	if err != nil {
		logger.Error("Could not start the agent", "command", p.Command, "error", err)
		return out, fmt.Errorf("%w: %s: %w", ErrLaunchFailed, p.Command, err)
	}

	if out.Success() {
		ui.Success(logger, "Agent run completed successfully", "duration", out.Duration().Round(time.Second).String())
	} else {
		logger.Error("Agent run failed, check your configuration and connectivity", "exit_code", code)
	}
	return out, nil
}
