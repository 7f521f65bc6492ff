// Package emacsclient provides a Go implementation of the Emacs server
// protocol for evaluating Emacs Lisp in a running Emacs.
//
// Only the part of the protocol needed for single-expression evaluation in
// the current frame is supported. Opening files, creating frames, TTY
// frames and TCP servers with authentication are not.
//
// # Protocol Overview
//
// Emacs listens on a Unix domain socket, by default
// $XDG_RUNTIME_DIR/emacs/server. A client connects, writes a single line
// of space-separated, quoted arguments and reads until Emacs closes the
// connection:
//
//	Request:   -current-frame -eval <quoted-expression> \n
//	Success:   -print <quoted-value>\n
//	Error:     -error <quoted-message>\n
//
// Arguments are quoted with '&' escapes: '&' becomes "&&", a space becomes
// "&_", a newline becomes "&n" and a leading '-' becomes "&-". See
// QuoteArgument and UnquoteArgument.
//
// # Basic Usage
//
//	client := emacsclient.NewClient(socketPath, emacsclient.WithTimeout(5*time.Second))
//
//	result, err := client.Eval(`(buffer-name)`)
//	if err != nil {
//	    var evalErr *emacsclient.EvalError
//	    if errors.As(err, &evalErr) {
//	        fmt.Println("Emacs signalled:", evalErr.Message)
//	    }
//	    log.Fatal(err)
//	}
//	fmt.Println(result)
//
// # Errors
//
// Eval returns one of three error types:
//
//   - *ConnectionError: the socket could not be reached, or reading or
//     writing failed (including deadline expiry).
//   - *EvalError: Emacs evaluated the expression and reported an error.
//   - *ProtocolError: Emacs replied with something this package does not
//     understand. It matches ErrProtocolViolation and must not be retried.
//
// # Thread Safety
//
// A Client holds only its configuration and opens a new connection for
// every call, so it may be shared between goroutines.
package emacsclient
