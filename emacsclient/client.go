package emacsclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"
)

// Client evaluates expressions in a running Emacs via its server socket.
//
// A Client only holds configuration. Every call dials a new connection,
// sends one request, reads until Emacs closes the connection and then
// closes its end, on success and on failure alike. Nothing is retried.
type Client struct {
	socketPath string
	timeout    time.Duration
	dialer     net.Dialer
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each call, from dialing to reading the last byte of
// the response. Zero, the default, waits for as long as Emacs takes.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// NewClient creates a client for the Emacs server listening on socketPath.
// It does not connect.
func NewClient(socketPath string, opts ...Option) *Client {
	c := &Client{
		socketPath: socketPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SocketPath returns the socket path the client connects to.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// Timeout returns the per-call timeout, or 0 if calls are unbounded.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Eval evaluates expr in the current frame and returns the printed result.
// Uses the client's configured timeout.
func (c *Client) Eval(expr string) (string, error) {
	return c.EvalWithContext(context.Background(), expr)
}

// EvalWithTimeout evaluates expr with a custom timeout.
func (c *Client) EvalWithTimeout(expr string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return c.EvalWithContext(ctx, expr)
}

// EvalWithContext evaluates expr with a context for cancellation/timeout.
//
// The result is the unquoted value of the first -print line. An -error line
// yields an *EvalError, I/O failures a *ConnectionError, and a response
// with neither line a *ProtocolError.
func (c *Client) EvalWithContext(ctx context.Context, expr string) (string, error) {
	resp, err := c.Send(ctx, NewEvalRequest(expr))
	if err != nil {
		return "", err
	}
	if err := resp.Err(); err != nil {
		return "", err
	}
	return resp.Value, nil
}

// Send sends req over a fresh connection and decodes the response.
//
// An error response is not an error here: it is returned as a Response with
// DirectiveError.
func (c *Client) Send(ctx context.Context, req Request) (Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	conn, err := c.dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return Response{}, &ConnectionError{Op: "dial", Path: c.socketPath, Cause: err}
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return Response{}, &ConnectionError{Op: "set deadline", Path: c.socketPath, Cause: err}
		}
	}

	// Unblock pending reads and writes as soon as ctx is done. Closing is
	// the fallback if the deadline cannot be moved.
	stop := context.AfterFunc(ctx, func() {
		if err := conn.SetDeadline(time.Now()); err != nil {
			conn.Close()
		}
	})
	defer stop()

	if _, err := io.WriteString(conn, req.FormatLine()); err != nil {
		return Response{}, c.ioError(ctx, "write request", err)
	}

	// Emacs closes the connection once it has sent the result.
	data, err := io.ReadAll(io.LimitReader(conn, MaxResponseSize+1))
	if err != nil {
		return Response{}, c.ioError(ctx, "read response", err)
	}
	if len(data) > MaxResponseSize {
		return Response{}, &ConnectionError{Op: "read response", Path: c.socketPath, Cause: ErrResponseTooLarge}
	}

	raw := string(data)
	resp, err := ParseResponse(raw)
	if err != nil {
		var protoErr *ProtocolError
		if errors.As(err, &protoErr) {
			protoErr.Expr = req.Expr
			protoErr.Response = raw
		}
		return Response{}, err
	}

	return resp, nil
}

// ioError wraps an I/O failure, attaching the context error when the
// failure was caused by cancellation or the deadline.
func (c *Client) ioError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, os.ErrDeadlineExceeded) {
		err = fmt.Errorf("%w: %w", ctxErr, err)
	}
	return &ConnectionError{Op: op, Path: c.socketPath, Cause: err}
}
