package emacsclient

// Directive identifies the outcome line of a response.
type Directive int

const (
	// DirectiveNone marks a line without a directive of interest.
	DirectiveNone Directive = iota
	// DirectivePrint indicates a successful evaluation.
	DirectivePrint
	// DirectiveError indicates Emacs signalled an error.
	DirectiveError
	// DirectiveEmacsPID carries the process ID of the Emacs server.
	DirectiveEmacsPID
)

// String returns the directive as it appears on the wire.
func (d Directive) String() string {
	switch d {
	case DirectivePrint:
		return "-print"
	case DirectiveError:
		return "-error"
	case DirectiveEmacsPID:
		return "-emacs-pid"
	default:
		return "none"
	}
}

// Line is one classified response line. Value is still quoted.
type Line struct {
	Directive Directive
	Value     string
}

// Response is the decoded outcome of an evaluation.
type Response struct {
	Directive Directive // DirectivePrint or DirectiveError
	Value     string    // Unquoted result or error message

	// PID is the Emacs process ID if it was announced before the outcome
	// line, and 0 otherwise.
	PID int
}

// IsOK returns true if Emacs evaluated the expression successfully.
func (r Response) IsOK() bool {
	return r.Directive == DirectivePrint
}

// IsError returns true if Emacs reported an error.
func (r Response) IsError() bool {
	return r.Directive == DirectiveError
}

// Err returns an *EvalError for error responses and nil otherwise.
func (r Response) Err() error {
	if r.Directive != DirectiveError {
		return nil
	}
	return &EvalError{Message: r.Value}
}

// Format returns the response as Emacs would send it.
func (r Response) Format() string {
	switch r.Directive {
	case DirectivePrint:
		return PrintPrefix + QuoteArgument(r.Value) + "\n"
	case DirectiveError:
		return ErrorPrefix + QuoteArgument(r.Value) + "\n"
	default:
		return ""
	}
}
