package emacsclient

import "strings"

// Request is a single request line sent to the Emacs server.
type Request struct {
	// CurrentFrame evaluates in the selected frame instead of a new one.
	CurrentFrame bool

	// Expr is the Emacs Lisp expression to evaluate, unquoted.
	Expr string
}

// NewEvalRequest creates a request that evaluates expr in the current frame.
func NewEvalRequest(expr string) Request {
	return Request{CurrentFrame: true, Expr: expr}
}

// Args returns the request's wire arguments in order. Only the expression
// is quoted; flags are sent verbatim.
func (r Request) Args() []string {
	args := make([]string, 0, 3)
	if r.CurrentFrame {
		args = append(args, CurrentFrameFlag)
	}
	return append(args, EvalFlag, QuoteArgument(r.Expr))
}

// Format returns the request arguments joined by spaces, without the
// line terminator.
func (r Request) Format() string {
	return strings.Join(r.Args(), " ")
}

// FormatLine returns the request formatted as a complete protocol line.
//
// emacsclient terminates every argument with a space, so the line ends in
// " \n".
func (r Request) FormatLine() string {
	return r.Format() + " \n"
}
