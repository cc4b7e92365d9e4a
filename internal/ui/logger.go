// Package ui renders operator-facing status lines.
package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"unicode"
)

const (
	clrReset  = "\033[0m"
	clrBold   = "\033[1m"
	clrRed    = "\033[31m"
	clrYellow = "\033[33m"
	clrGreen  = "\033[32m"
	clrCyan   = "\033[36m"
	clrGray   = "\033[90m"
	clrWhite  = "\033[97m"
)

// LevelSuccess sits between Info and Warn so it is shown whenever Info is.
const LevelSuccess = slog.Level(2)

// Success logs msg at LevelSuccess.
func Success(logger *slog.Logger, msg string, args ...any) {
	logger.Log(context.Background(), LevelSuccess, msg, args...)
}

// prettyHandler is a slog.Handler that formats log records with ANSI colors.
// Designed for CLI output: no timestamps, colored level indicators, highlighted values.
type prettyHandler struct {
	mu    *sync.Mutex
	out   io.Writer
	level slog.Level
	color bool
	attrs []slog.Attr
}

// NewPrettyLogger returns a colored operator logger writing to w.
func NewPrettyLogger(w io.Writer) *slog.Logger {
	return slog.New(NewPrettyHandler(w, true))
}

// NewPrettyHandler returns the operator handler; color=false drops ANSI codes.
func NewPrettyHandler(w io.Writer, color bool) slog.Handler {
	return &prettyHandler{mu: &sync.Mutex{}, out: w, level: slog.LevelInfo, color: color}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &prettyHandler{mu: h.mu, out: h.out, level: h.level, color: h.color, attrs: newAttrs}
}

func (h *prettyHandler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var prefix, marker, msgColor string
	switch {
	case r.Level >= slog.LevelError:
		prefix, marker, msgColor = clrRed, "  ✗ ", clrRed
	case r.Level >= slog.LevelWarn:
		prefix, marker, msgColor = clrYellow, "  ⚠ ", clrYellow
	case r.Level >= LevelSuccess:
		prefix, marker, msgColor = clrGreen, "  ✓ ", clrGreen
	case r.Level >= slog.LevelInfo:
		prefix, marker, msgColor = clrGray, "  → ", clrWhite
	default:
		prefix, marker, msgColor = clrGray, "  · ", clrGray
	}

	var sb strings.Builder
	sb.WriteString(h.paint(prefix, marker))
	if h.color {
		sb.WriteString(msgColor)
		sb.WriteString(clrBold)
	}
	sb.WriteString(r.Message)
	if h.color {
		sb.WriteString(clrReset)
	}

	writeAttr := func(a slog.Attr) bool {
		sb.WriteString("  ")
		sb.WriteString(h.paint(clrGray, a.Key+"="))
		sb.WriteString(h.paint(colorForValue(a), a.Value.String()))
		return true
	}

	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(writeAttr)

	sb.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprint(h.out, sb.String())
	return err
}

func (h *prettyHandler) paint(color, s string) string {
	if !h.color {
		return s
	}
	return color + s + clrReset
}

// colorForValue picks an ANSI color based on the attribute key and value.
func colorForValue(a slog.Attr) string {
	if a.Key == "error" {
		return clrRed
	}
	val := a.Value.String()
	if strings.Contains(val, "/") || strings.HasSuffix(val, ".yaml") || strings.HasSuffix(val, ".csv") {
		return clrCyan
	}
	if isNumericVal(val) {
		return clrYellow
	}
	return clrCyan
}

func isNumericVal(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !unicode.IsDigit(c) && c != '.' && c != '-' {
			return false
		}
	}
	return true
}

// Fanout sends each record to every handler that accepts its level.
type Fanout []slog.Handler

func (f Fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f Fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f Fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(Fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f Fanout) WithGroup(name string) slog.Handler {
	out := make(Fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
