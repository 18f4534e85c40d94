package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/slok/vgrid/internal/command"
	"github.com/slok/vgrid/internal/model"
)

// ErrPendingKeys is returned by Resolve when the keys are the prefix of a binding.
var ErrPendingKeys = errors.New("pending keystrokes")

// Resolve adds a keystroke to the buffered ones and returns the command they are
// bound to. Starting a new key sequence clears the live statuses.
func (s *Session) Resolve(key string) (command.Command, error) {
	s.mu.Lock()
	if s.keystrokes == "" {
		s.status.Clear()
	}
	keys := s.keystrokes + key
	s.keystrokes = ""
	s.mu.Unlock()

	if cmd, ok := s.registry.ByKey(keys); ok {
		return cmd, nil
	}

	if s.registry.IsPrefix(keys) {
		s.mu.Lock()
		s.keystrokes = keys
		s.mu.Unlock()
		return command.Command{}, ErrPendingKeys
	}

	_ = s.status.Fail(fmt.Sprintf("no command on %q", keys))
	return command.Command{}, fmt.Errorf("keys %q: %w", keys, model.ErrNotFound)
}

// Keystroke resolves the key and runs the command without arguments. The
// returned bool is false when nothing was run.
func (s *Session) Keystroke(ctx context.Context, key string) (command.Outcome, bool) {
	cmd, err := s.Resolve(key)
	if err != nil {
		return command.Outcome{}, false
	}

	out, err := s.Run(ctx, cmd)
	if err != nil {
		return out, false
	}
	return out, true
}

// Keystrokes returns the buffered keystrokes.
func (s *Session) Keystrokes() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keystrokes
}

// ResetKeystrokes drops the buffered keystrokes.
func (s *Session) ResetKeystrokes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keystrokes = ""
}
