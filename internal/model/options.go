package model

import (
	"fmt"
	"time"
)

// Options are the user configurable session options.
type Options struct {
	// Debug shows debug statuses and adds the source to non-interactive statuses.
	Debug bool
	// StatusSeparator joins the live statuses on the status line.
	StatusSeparator string
	// LeftStatusMax is the maximum width of the left status, 0 disables truncation.
	LeftStatusMax int
	// TaskRetention is how long finished tasks are kept for display.
	TaskRetention time.Duration
	// Bindings maps keystrokes to command names, overriding the command defaults.
	Bindings map[string]string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		StatusSeparator: " │ ",
		TaskRetention:   5 * time.Second,
		Bindings:        map[string]string{},
	}
}

// Validate validates the options.
func (o Options) Validate() error {
	if o.LeftStatusMax < 0 {
		return fmt.Errorf("left status max can't be negative: %w", ErrNotValid)
	}
	if o.TaskRetention < 0 {
		return fmt.Errorf("task retention can't be negative: %w", ErrNotValid)
	}
	for k, v := range o.Bindings {
		if k == "" || v == "" {
			return fmt.Errorf("binding %q -> %q is incomplete: %w", k, v, ErrNotValid)
		}
	}
	return nil
}
