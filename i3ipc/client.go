package i3ipc

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Client talks to i3 or sway over its IPC socket.
//
// Like the Emacs client, it opens a new connection per request and closes
// it before returning.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the IPC socket at socketPath. A zero
// timeout leaves requests unbounded unless the context has a deadline.
func NewClient(socketPath string, timeout time.Duration) *Client {
	return &Client{socketPath: socketPath, timeout: timeout}
}

// SocketPath returns the socket path the client connects to.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// GetTree returns the root of the layout tree.
func (c *Client) GetTree(ctx context.Context) (*Node, error) {
	var root Node
	if err := c.request(ctx, MessageGetTree, nil, &root); err != nil {
		return nil, err
	}
	return &root, nil
}

// RunCommand runs cmd, which may hold several commands separated by ',' or
// ';', and returns one result per command.
func (c *Client) RunCommand(ctx context.Context, cmd string) ([]CommandResult, error) {
	var results []CommandResult
	if err := c.request(ctx, MessageRunCommand, []byte(cmd), &results); err != nil {
		return nil, err
	}
	return results, nil
}

// GetVersion returns the version of the running window manager.
func (c *Client) GetVersion(ctx context.Context) (*Version, error) {
	var v Version
	if err := c.request(ctx, MessageGetVersion, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// request sends one message and decodes the JSON reply into out.
func (c *Client) request(ctx context.Context, msgType MessageType, payload []byte, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return &ConnectionError{Path: c.socketPath, Cause: err}
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return &ConnectionError{Path: c.socketPath, Cause: err}
		}
	}
	// Closing the connection also unblocks I/O if the deadline cannot be
	// moved.
	stop := context.AfterFunc(ctx, func() {
		if err := conn.SetDeadline(time.Now()); err != nil {
			conn.Close()
		}
	})
	defer stop()

	if err := WriteMessage(conn, &Message{Type: msgType, Payload: payload}); err != nil {
		return c.ioError(ctx, err)
	}

	reply, err := ReadMessage(conn)
	if err != nil {
		if _, ok := err.(*ReplyError); ok {
			return err
		}
		return c.ioError(ctx, err)
	}

	if reply.Type != msgType {
		return &ReplyError{Type: msgType, Message: fmt.Sprintf("got %s reply", reply.Type)}
	}
	if err := json.Unmarshal(reply.Payload, out); err != nil {
		return &ReplyError{Type: msgType, Message: "decoding payload", Cause: err}
	}
	return nil
}

// ioError wraps a read or write failure. When ctx is done the context error
// is joined in, so callers can test for context.Canceled.
func (c *Client) ioError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = fmt.Errorf("%w: %w", ctxErr, err)
	}
	return &ConnectionError{Path: c.socketPath, Cause: err}
}

// SocketPath locates the IPC socket of the running window manager.
//
// I3SOCK is used when set, then SWAYSOCK, and finally the output of
// `i3 --get-socketpath`.
func SocketPath(ctx context.Context) (string, error) {
	if path := os.Getenv("I3SOCK"); path != "" {
		return path, nil
	}
	if path := os.Getenv("SWAYSOCK"); path != "" {
		return path, nil
	}

	out, err := exec.CommandContext(ctx, "i3", "--get-socketpath").Output()
	if err != nil {
		return "", fmt.Errorf("%w: i3 --get-socketpath: %v", ErrSocketNotFound, err)
	}
	path := strings.TrimSpace(string(out))
	if path == "" {
		return "", ErrSocketNotFound
	}
	return path, nil
}
