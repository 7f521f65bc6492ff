package i3ipc

import (
	"errors"
	"fmt"
)

// ErrSocketNotFound indicates no i3 or sway socket could be located.
var ErrSocketNotFound = errors.New("no i3 socket found")

// ConnectionError represents a failure to reach the window manager or to
// exchange a message with it.
type ConnectionError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("i3 ipc %s: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// ReplyError indicates the window manager sent a reply that could not be
// understood.
type ReplyError struct {
	Type    MessageType
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ReplyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid %s reply: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid %s reply: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ReplyError) Unwrap() error {
	return e.Cause
}
