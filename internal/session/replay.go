package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/model"
)

// Step is one command of a scripted run.
type Step struct {
	Command string
	Args    []string
}

func (s Step) String() string {
	return strings.TrimSpace(s.Command + " " + strings.Join(s.Args, " "))
}

// ParseStep parses a `command arg1 arg2` step.
func ParseStep(s string) (Step, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Step{}, fmt.Errorf("empty step: %w", model.ErrNotValid)
	}
	return Step{Command: fields[0], Args: fields[1:]}, nil
}

// Replay runs the steps in order on the active sheet, waiting for the background
// ones before the next step. It stops on the first failing step.
func (s *Session) Replay(ctx context.Context, steps []Step) error {
	for i, step := range steps {
		logger := s.logger.WithValues(log.Kv{"step": i, "cmd": step.Command})
		logger.Debugf("Replaying step")

		out, err := s.Exec(ctx, step.Command, step.Args...)
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i, step, err)
		}
		if out.Err != nil {
			return fmt.Errorf("step %d (%s): %w", i, step, out.Err)
		}
		if out.Async {
			if err := out.Task.Wait(ctx); err != nil {
				return fmt.Errorf("step %d (%s): %w", i, step, err)
			}
		}
	}

	return nil
}
