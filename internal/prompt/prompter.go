// Package prompt reads operator input from a terminal or from a scripted answer list.
package prompt

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

// ErrInterrupted is returned when the operator presses Ctrl+C at a prompt.
var ErrInterrupted = errors.New("interrupted")

// Prompter is the operator input source used by every wizard stage.
type Prompter interface {
	// WaitKey shows message and blocks until the operator acknowledges.
	// The acknowledgement content is not inspected.
	WaitKey(message string) error
	// ReadLine shows prompt and returns one trimmed line.
	ReadLine(prompt string) (string, error)
	// ReadSecret is ReadLine without echo where the source supports it.
	ReadSecret(prompt string) (string, error)
	// Choose offers options and returns the raw answer. The answer may be a
	// label, a 1-based position, or anything else the operator typed; callers
	// must validate it.
	Choose(message string, options []string) (string, error)
}

var ansiEscapeRE = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)
var caretEscapeRE = regexp.MustCompile(`\^\[\[[0-9;?]*[ -/]*[@-~]`)

// SanitizeConsoleInput strips escape sequences and control characters left by
// terminals (cursor position reports, arrow keys) and trims surrounding space.
func SanitizeConsoleInput(raw string) string {
	raw = ansiEscapeRE.ReplaceAllString(raw, "")
	raw = caretEscapeRE.ReplaceAllString(raw, "")
	raw = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, raw)
	return strings.TrimSpace(raw)
}
