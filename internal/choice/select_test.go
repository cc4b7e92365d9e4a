package choice

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bibi40k/swe-agent-setup/internal/prompt"
	"github.com/Bibi40k/swe-agent-setup/internal/ui"
	"github.com/Bibi40k/swe-agent-setup/internal/wizard"
)

func newSelector(t *testing.T, answers ...string) (*Selector, *prompt.Script, *bytes.Buffer) {
	t.Helper()
	m, err := NewMenu(fourModels)
	require.NoError(t, err)
	var out bytes.Buffer
	script := prompt.NewScript(answers...)
	return &Selector{
		Menu:     m,
		Prompter: script,
		Logger:   slog.New(ui.NewPrettyHandler(&out, false)),
	}, script, &out
}

func TestSelectRepromptsOnNonMember(t *testing.T) {
	s, script, out := newSelector(t, "5", "2")

	got, err := s.Select(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Model("gpt-4o-mini"), got)
	assert.Equal(t, 0, script.Remaining())
	assert.Equal(t, 1, strings.Count(out.String(), "between 1 and 4"))
}

func TestSelectEveryInvalidAnswerCostsOneCycle(t *testing.T) {
	s, script, out := newSelector(t, "", "0", "abc", "99", "o3-mini", "1")

	got, err := s.Select(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Model("o3-mini"), got)
	assert.Equal(t, 1, script.Remaining())
	assert.Equal(t, 4, strings.Count(out.String(), "✗ invalid selection"))
}

func TestSelectInputClosed(t *testing.T) {
	s, _, _ := newSelector(t, "9")
	_, err := s.Select(context.Background())
	assert.ErrorIs(t, err, prompt.ErrNoMoreAnswers)
}

func TestSelectMaxAttempts(t *testing.T) {
	s, _, _ := newSelector(t, "9", "9", "1")
	s.MaxAttempts = 2
	_, err := s.Select(context.Background())
	assert.ErrorIs(t, err, wizard.ErrAttemptsExhausted)
}
