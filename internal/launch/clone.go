package launch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Bibi40k/swe-agent-setup/internal/ui"
)

// ErrCloneFailed is returned when the demo repository could not be cloned.
var ErrCloneFailed = errors.New("repository clone failed")

// EnsureRepo clones url into path with git unless path already exists.
func EnsureRepo(ctx context.Context, runner Runner, logger *slog.Logger, url, path string) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if _, err := os.Stat(path); err == nil {
		logger.Info("Repository already present", "path", path)
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	logger.Info("Cloning repository", "url", url, "path", path)
	code, err := runner.Run(ctx, Command{Name: "git", Args: []string{"clone", url, path}})
	if err != nil {
		logger.Error("Failed to clone repository", "error", err)
		return fmt.Errorf("%w: %w", ErrCloneFailed, err)
	}
	if code != 0 {
		logger.Error("Failed to clone repository", "exit_code", code)
		return fmt.Errorf("%w: git exited with status %d", ErrCloneFailed, code)
	}
	ui.Success(logger, "Repository cloned", "path", path)
	return nil
}
