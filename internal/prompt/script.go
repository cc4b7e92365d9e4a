package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoMoreAnswers is returned once a Script has handed out every answer.
var ErrNoMoreAnswers = errors.New("no more scripted answers")

// Script answers prompts from a fixed list, one entry per prompt, in order.
// WaitKey consumes an entry too.
type Script struct {
	answers []string
	pos     int
	out     io.Writer
}

// NewScript returns a Script that echoes nothing.
func NewScript(answers ...string) *Script {
	return &Script{answers: answers, out: io.Discard}
}

// LoadScript reads a YAML list of answers from path.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers %s: %w", path, err)
	}
	var answers []string
	if err := yaml.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("parse answers %s: %w", path, err)
	}
	return NewScript(answers...), nil
}

// Echo writes each prompt and (non-secret) answer to w as a transcript.
func (s *Script) Echo(w io.Writer) *Script {
	if w == nil {
		w = io.Discard
	}
	s.out = w
	return s
}

// Remaining reports how many answers are left.
func (s *Script) Remaining() int {
	return len(s.answers) - s.pos
}

func (s *Script) next() (string, error) {
	if s.pos >= len(s.answers) {
		return "", ErrNoMoreAnswers
	}
	a := s.answers[s.pos]
	s.pos++
	return strings.TrimSpace(a), nil
}

func (s *Script) WaitKey(message string) error {
	fmt.Fprintf(s.out, "  %s\n", message)
	_, err := s.next()
	return err
}

func (s *Script) ReadLine(prompt string) (string, error) {
	a, err := s.next()
	if err != nil {
		return "", err
	}
	fmt.Fprintf(s.out, "%s%s\n", prompt, a)
	return a, nil
}

func (s *Script) ReadSecret(prompt string) (string, error) {
	a, err := s.next()
	if err != nil {
		return "", err
	}
	fmt.Fprintf(s.out, "%s%s\n", prompt, strings.Repeat("*", len(a)))
	return a, nil
}

func (s *Script) Choose(message string, options []string) (string, error) {
	fmt.Fprintf(s.out, "  %s\n", message)
	for i, opt := range options {
		fmt.Fprintf(s.out, "     %d. %s\n", i+1, opt)
	}
	return s.ReadLine(fmt.Sprintf("  Select [1-%d]: ", len(options)))
}
