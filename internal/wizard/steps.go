// Package wizard sequences interactive setup stages.
package wizard

import "context"

// Step defines one wizard stage.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// RunSteps executes steps in order and reports transitions through onStepStart.
// The first failing step stops the sequence and its error is returned.
func RunSteps(ctx context.Context, steps []Step, onStepStart func(index, total int, name string), onStepDone func(index, total int)) error {
	total := len(steps)
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if onStepStart != nil {
			onStepStart(i+1, total, step.Name)
		}
		if step.Run != nil {
			if err := step.Run(ctx); err != nil {
				return err
			}
		}
		if onStepDone != nil {
			onStepDone(i+1, total)
		}
	}
	return nil
}
