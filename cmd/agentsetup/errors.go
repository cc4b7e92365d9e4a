package main

import (
	"errors"

	"github.com/Bibi40k/swe-agent-setup/internal/launch"
	"github.com/Bibi40k/swe-agent-setup/internal/prompt"
	"github.com/Bibi40k/swe-agent-setup/internal/wizard"
)

type userError struct {
	msg  string
	hint string
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Hint() string  { return e.hint }

// explain attaches an operator hint to the stage errors that have an obvious fix.
func explain(err error) error {
	var ue *userError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ue):
		return err
	case errors.Is(err, prompt.ErrNoMoreAnswers):
		return &userError{msg: err.Error(), hint: "The --answers file ran out; add one entry per prompt (keypresses included)"}
	case errors.Is(err, launch.ErrCloneFailed):
		return &userError{msg: err.Error(), hint: "Check repo.url and your network connection, or clone it by hand into repo.path"}
	case errors.Is(err, launch.ErrLaunchFailed):
		return &userError{msg: err.Error(), hint: "Is the agent installed and on PATH? Check launch.command in your settings"}
	case errors.Is(err, wizard.ErrAttemptsExhausted):
		return &userError{msg: err.Error(), hint: "Run the wizard again once the failing step can pass"}
	}
	return err
}
