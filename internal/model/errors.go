package model

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrBusy is returned when a resource is owned by a running task.
	ErrBusy = errors.New("busy")
	// ErrCancelled is returned when a task has been cancelled.
	ErrCancelled = errors.New("cancelled")
	// ErrTimeout is returned when a task has run out of time.
	ErrTimeout = errors.New("timeout")
)
