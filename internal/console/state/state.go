// Package state models the lifecycle of one console view.
package state

import "errors"

// ErrBusy is returned when a trigger overlaps an in-flight request of the same kind.
var ErrBusy = errors.New("console_busy")

type Phase int

const (
	Idle Phase = iota
	Loading
	Success
	Error
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "idle"
	}
}

// State is a finite view state carrying the last payload and, in the Error
// phase, a user-facing message.
type State[T any] struct {
	Phase   Phase
	Data    T
	Message string
}

// Loading keeps the previous payload visible while a request is in flight.
func (s State[T]) Loading() State[T] {
	return State[T]{Phase: Loading, Data: s.Data}
}

func (s State[T]) Succeed(data T) State[T] {
	return State[T]{Phase: Success, Data: data}
}

// Fail keeps the previous payload so a failed refresh does not blank the view.
func (s State[T]) Fail(message string) State[T] {
	return State[T]{Phase: Error, Data: s.Data, Message: message}
}

func (s State[T]) IsLoading() bool { return s.Phase == Loading }
