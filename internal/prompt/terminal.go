package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	survey "github.com/AlecAivazis/survey/v2"
	surveyterm "github.com/AlecAivazis/survey/v2/terminal"
	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// Terminal reads from the process stdin.
type Terminal struct {
	// ArrowMenu renders Choose as an arrow-key survey menu instead of a numbered list.
	ArrowMenu bool

	in     *os.File
	out    io.Writer
	reader *bufio.Reader
}

// NewTerminal returns a prompter bound to os.Stdin and os.Stdout.
func NewTerminal(arrowMenu bool) *Terminal {
	return &Terminal{
		ArrowMenu: arrowMenu,
		in:        os.Stdin,
		out:       os.Stdout,
		// One shared buffered reader: several readers over the same fd would
		// each buffer ahead and consume each other's input.
		reader: bufio.NewReader(os.Stdin),
	}
}

func (t *Terminal) isTTY() bool {
	return term.IsTerminal(int(t.in.Fd()))
}

// WaitKey reads a single keypress in raw mode, or one line when stdin is not a TTY.
func (t *Terminal) WaitKey(message string) error {
	fmt.Fprintf(t.out, "  %s ", message)
	if !t.isTTY() {
		_, err := t.reader.ReadString('\n')
		fmt.Fprintln(t.out)
		if err != nil {
			return fmt.Errorf("read acknowledgement: %w", err)
		}
		return nil
	}

	fd := int(t.in.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		_, err := t.reader.ReadString('\n')
		return err
	}
	buf := make([]byte, 8)
	n, readErr := t.in.Read(buf)
	_ = term.Restore(fd, oldState)
	t.reader.Reset(t.in)
	fmt.Fprint(t.out, "\r\n")

	if readErr != nil {
		return fmt.Errorf("read keypress: %w", readErr)
	}
	if n == 1 && buf[0] == 3 {
		return ErrInterrupted
	}
	return nil
}

// ReadLine uses readline for line editing and falls back to plain buffered input.
func (t *Terminal) ReadLine(prompt string) (string, error) {
	rl, err := readline.NewEx(&readline.Config{Prompt: prompt})
	if err == nil {
		defer func() {
			_ = rl.Close()
			t.reader.Reset(t.in) // resync bufio reader after readline
		}()
		line, err := rl.Readline()
		switch {
		case err == nil:
			return SanitizeConsoleInput(line), nil
		case errors.Is(err, readline.ErrInterrupt):
			return "", ErrInterrupted
		default:
			return "", fmt.Errorf("read line: %w", err)
		}
	}

	fmt.Fprint(t.out, prompt)
	line, err := t.reader.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", fmt.Errorf("read line: %w", err)
	}
	return SanitizeConsoleInput(line), nil
}

// ReadSecret reads without echo on a TTY.
func (t *Terminal) ReadSecret(prompt string) (string, error) {
	if !t.isTTY() {
		return t.ReadLine(prompt)
	}
	fmt.Fprint(t.out, prompt)
	pw, err := term.ReadPassword(int(t.in.Fd()))
	fmt.Fprintln(t.out)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return SanitizeConsoleInput(string(pw)), nil
}

// Choose shows a numbered menu and reads the answer as a line. With ArrowMenu
// on a TTY it uses a survey select, which echoes the chosen label.
func (t *Terminal) Choose(message string, options []string) (string, error) {
	if t.ArrowMenu && t.isTTY() {
		var choice string
		err := survey.AskOne(&survey.Select{Message: message, Options: options}, &choice)
		// Discard cursor position reports survey's \033[6n queries leave in stdin.
		drainStdin()
		if errors.Is(err, surveyterm.InterruptErr) {
			return "", ErrInterrupted
		}
		if err != nil {
			return "", fmt.Errorf("select: %w", err)
		}
		return choice, nil
	}

	fmt.Fprintf(t.out, "  %s\n", message)
	for i, opt := range options {
		fmt.Fprintf(t.out, "     %d. %s\n", i+1, opt)
	}
	return t.ReadLine(fmt.Sprintf("  Select [1-%d]: ", len(options)))
}
