// Package dispatch decides whether a window manager command is handled by
// Emacs or by the window manager.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/c0deaddict/emacs-i3/emacsclient"
	"github.com/c0deaddict/emacs-i3/i3ipc"
)

// NilResult is what Emacs prints when the command function returns nil,
// meaning Emacs did not handle the command.
const NilResult = "nil"

// Evaluator evaluates Emacs Lisp. *emacsclient.Client implements it.
type Evaluator interface {
	EvalWithContext(ctx context.Context, expr string) (string, error)
}

// WindowManager is the part of the i3 IPC used for dispatching.
// *i3ipc.Client implements it.
type WindowManager interface {
	GetTree(ctx context.Context) (*i3ipc.Node, error)
	RunCommand(ctx context.Context, cmd string) ([]i3ipc.CommandResult, error)
}

// Matcher recognizes Emacs windows.
type Matcher struct {
	// Class matches the X11 window class exactly.
	Class string
	// TitlePrefix matches the window title when there is no class.
	TitlePrefix string
	// AppID matches sway's app_id for native Wayland windows.
	AppID string
}

// IsEmacs reports whether node is an Emacs frame.
//
// When the window has X11 properties with a class, only the class is
// consulted. Otherwise the sway app_id and then the title prefix are tried.
func (m Matcher) IsEmacs(node *i3ipc.Node) bool {
	if node == nil {
		return false
	}
	if class := node.Class(); class != "" {
		return class == m.Class
	}
	if m.AppID != "" && node.AppID == m.AppID {
		return true
	}
	return m.TitlePrefix != "" && strings.HasPrefix(node.Name, m.TitlePrefix)
}

// Outcome describes what Dispatch did.
type Outcome struct {
	// Focused is the focused window, or nil if none was found.
	Focused *i3ipc.Node
	// Emacs is true when the command was offered to Emacs.
	Emacs bool
	// EmacsResult is the printed result of the Emacs evaluation.
	EmacsResult string
	// EmacsErr is the recoverable error the evaluation failed with, if any.
	EmacsErr error
	// Forwarded is true when the command was sent to the window manager.
	Forwarded bool
	// Failures holds the error messages of failed window manager commands.
	Failures []string
}

// Dispatcher routes commands between Emacs and the window manager.
type Dispatcher struct {
	wm       WindowManager
	emacs    Evaluator
	matcher  Matcher
	function string
	logger   *slog.Logger
}

// New creates a Dispatcher. function is the Emacs Lisp function that
// receives the command.
func New(wm WindowManager, emacs Evaluator, matcher Matcher, function string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{
		wm:       wm,
		emacs:    emacs,
		matcher:  matcher,
		function: function,
		logger:   logger,
	}
}

// Dispatch offers emacsCommand to Emacs if an Emacs frame has focus, and
// runs i3Command in the window manager unless Emacs handled it.
//
// The command goes to the window manager when no window has focus, the
// focused window is not Emacs, Emacs returned nil, or the evaluation
// failed with a connection or evaluation error. Any other evaluation error,
// a protocol violation in particular, is returned and nothing is sent to
// the window manager.
func (d *Dispatcher) Dispatch(ctx context.Context, i3Command, emacsCommand string) (Outcome, error) {
	var out Outcome

	tree, err := d.wm.GetTree(ctx)
	if err != nil {
		return out, fmt.Errorf("getting i3 tree: %w", err)
	}

	out.Focused = tree.FindFocused()
	forward := true

	switch {
	case out.Focused == nil:
		d.logger.Debug("no focused window")

	case d.matcher.IsEmacs(out.Focused):
		out.Emacs = true
		expr := EmacsExpression(d.function, emacsCommand)
		d.logger.Debug("offering command to emacs", "expr", expr, "window", out.Focused.Name)

		result, err := d.emacs.EvalWithContext(ctx, expr)
		switch {
		case err == nil:
			out.EmacsResult = result
			forward = result == NilResult
		case emacsclient.IsRecoverable(err):
			out.EmacsErr = err
			d.logger.Warn("emacs did not handle command, falling back to i3", "expr", expr, "error", err)
		default:
			return out, fmt.Errorf("evaluating %s: %w", expr, err)
		}

	default:
		d.logger.Debug("focused window is not emacs", "window", out.Focused.Name, "class", out.Focused.Class())
	}

	if !forward {
		return out, nil
	}

	if i3Command == "" {
		return out, nil
	}

	results, err := d.wm.RunCommand(ctx, i3Command)
	if err != nil {
		return out, fmt.Errorf("running i3 command %q: %w", i3Command, err)
	}
	out.Forwarded = true

	for _, r := range results {
		if r.Success {
			continue
		}
		out.Failures = append(out.Failures, r.Error)
		d.logger.Error("i3 command failed", "command", i3Command, "error", r.Error)
	}

	return out, nil
}
