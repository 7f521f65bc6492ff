package emacsclient

import (
	"errors"
	"fmt"
)

// Sentinel errors for the Emacs server protocol.
var (
	// ErrProtocolViolation is matched by every *ProtocolError. Emacs did not
	// follow the protocol, so retrying the same request is pointless.
	ErrProtocolViolation = errors.New("emacs server protocol violation")

	// ErrResponseTooLarge indicates the response exceeded MaxResponseSize.
	ErrResponseTooLarge = errors.New("response too large")
)

// ConnectionError represents a failure to reach Emacs or to exchange bytes
// with it once connected.
type ConnectionError struct {
	Op    string // "dial", "write request" or "read response"
	Path  string // Socket path
	Cause error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("emacs server %s %s: %v", e.Path, e.Op, e.Cause)
	}
	return fmt.Sprintf("emacs server %s %s failed", e.Path, e.Op)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// EvalError is returned when Emacs evaluated the expression and signalled
// an error. Message is the unquoted error text.
type EvalError struct {
	Message string
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	return fmt.Sprintf("eval error: %s", e.Message)
}

// ProtocolErrorKind categorizes protocol violations.
type ProtocolErrorKind int

const (
	// ErrKindNoDirective indicates the response ended without a -print or
	// -error line.
	ErrKindNoDirective ProtocolErrorKind = iota
	// ErrKindTruncatedEscape indicates a quoted value ended with a lone '&'.
	ErrKindTruncatedEscape
)

// ProtocolError reports a response that does not follow the Emacs server
// protocol. Expr and Response are filled in by Client so the failure can be
// diagnosed from the error alone.
type ProtocolError struct {
	Kind     ProtocolErrorKind
	Expr     string // Expression that was sent
	Response string // Raw response received
	Input    string // Quoted value that failed to decode
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	switch e.Kind {
	case ErrKindNoDirective:
		return fmt.Sprintf("expected response to contain '-print' or '-error' on eval of: %s, got: %q",
			e.Expr, e.Response)
	case ErrKindTruncatedEscape:
		return fmt.Sprintf("unexpected end of input after escape char '&' in: %q", e.Input)
	default:
		return fmt.Sprintf("protocol violation: %q", e.Response)
	}
}

// Is reports whether target is ErrProtocolViolation.
func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocolViolation
}

// IsProtocolViolation reports whether err, or any error it wraps, is a
// protocol violation.
func IsProtocolViolation(err error) bool {
	return errors.Is(err, ErrProtocolViolation)
}

// IsRecoverable reports whether err is one of the errors a caller is
// expected to handle by falling back: a *ConnectionError or an *EvalError.
func IsRecoverable(err error) bool {
	if err == nil || IsProtocolViolation(err) {
		return false
	}
	var connErr *ConnectionError
	var evalErr *EvalError
	return errors.As(err, &connErr) || errors.As(err, &evalErr)
}
