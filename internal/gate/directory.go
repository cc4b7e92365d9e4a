// Package gate blocks the wizard until out-of-band setup has been done.
package gate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Bibi40k/swe-agent-setup/internal/prompt"
	"github.com/Bibi40k/swe-agent-setup/internal/ui"
	"github.com/Bibi40k/swe-agent-setup/internal/wizard"
)

// DirReady returns nil if path is a directory with at least one entry.
func DirReady(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s does not exist", path)
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !st.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	if _, err := f.Readdirnames(1); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s is empty", path)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// DirectoryGate waits for the operator to populate Path.
type DirectoryGate struct {
	Path        string
	Instruction string
	Prompter    prompt.Prompter
	Logger      *slog.Logger
	// MaxAttempts caps checks; 0 means wait forever.
	MaxAttempts int
}

// Await repeats instruction, keypress and check until Path is ready.
func (g *DirectoryGate) Await(ctx context.Context) error {
	logger := g.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	_, err := wizard.Until(ctx, wizard.Retry[string]{
		Ask: func(_ context.Context, _ int) (string, error) {
			logger.Info(g.Instruction, "path", g.Path)
			return g.Path, g.Prompter.WaitKey("Press any key when done...")
		},
		Check: DirReady,
		OnReject: func(_ int, err error) {
			logger.Error(err.Error())
		},
		MaxAttempts: g.MaxAttempts,
	})
	if err != nil {
		return fmt.Errorf("wait for %s: %w", g.Path, err)
	}
	ui.Success(logger, "Directory is ready", "path", g.Path)
	return nil
}
