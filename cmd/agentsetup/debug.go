package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Bibi40k/swe-agent-setup/internal/ui"
	"golang.org/x/term"
)

const debugLogPath = "tmp/agentsetup-debug.log"

var debugLogger *slog.Logger
var debugCleanup func()

func initDebugLogger() {
	if !debugLogs || debugLogger != nil {
		return
	}
	logger, cleanup, err := setupDebugLogger(debugLogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to enable debug log: %v\n", err)
		return
	}
	debugLogger = logger
	debugCleanup = cleanup
	fmt.Printf("  Debug log: %s\n", debugLogPath)
}

func getLogger() *slog.Logger {
	if debugLogs && debugLogger != nil {
		return debugLogger
	}
	return slog.New(ui.NewPrettyHandler(os.Stdout, colorOutput()))
}

// setupDebugLogger keeps the operator output on stdout and adds every record,
// debug included, to the file at path.
func setupDebugLogger(path string) (*slog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, err
	}
	handler := ui.Fanout{
		ui.NewPrettyHandler(os.Stdout, colorOutput()),
		slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}
	return slog.New(handler), func() { _ = f.Close() }, nil
}

func colorOutput() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == ""
}
