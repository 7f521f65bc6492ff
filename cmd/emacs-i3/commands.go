// =============================================================================
// commands.go - eval, repl and check Subcommands
// =============================================================================
//
//	emacs-i3 eval <expression...>   Evaluate and print, like emacsclient --eval
//	emacs-i3 repl                   Interactive Emacs Lisp REPL
//	emacs-i3 check                  Report whether Emacs and i3 answer
//
// =============================================================================

package main

// GO CONCEPT: Command Constructors
// --------------------------------
// Each subcommand is returned by a small function instead of being a
// package-level variable. Flag variables such as startDaemon are locals
// captured by the RunE closure, so two command trees built in the same
// test binary never share flag state.
import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c0deaddict/emacs-i3/emacsclient"
)

// errCheckFailed is returned by check when a component did not answer. The
// details are already on stdout.
var errCheckFailed = errors.New("check failed")

// evalCmd evaluates an expression given on the command line and prints the
// result, like `emacsclient --eval`.
func evalCmd(a *app) *cobra.Command {
	var startDaemon bool

	cmd := &cobra.Command{
		Use:   "eval <expression...>",
		Short: "Evaluate an Emacs Lisp expression and print the result",
		Example: `  emacs-i3 eval '(buffer-name)'
  emacs-i3 eval --start-daemon '(emacs-version)'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.emacsClient()
			if err != nil {
				return err
			}

			if startDaemon {
				if err := ensureDaemon(ctx, client.SocketPath(), a.logger); err != nil {
					return err
				}
			}

			expr := strings.Join(args, " ")
			a.logger.Debug("evaluating", "expr", expr, "socket", client.SocketPath())

			result, err := client.EvalWithContext(ctx, expr)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&startDaemon, "start-daemon", false, "Start an Emacs daemon if no server is listening")
	return cmd
}

// replCmd starts the interactive Emacs Lisp REPL.
func replCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive Emacs Lisp REPL against the Emacs server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.emacsClient()
			if err != nil {
				return err
			}

			editor := NewLineEditor()
			defer editor.Close()

			return runREPL(cmd.Context(), client, editor, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

// checkCmd asks Emacs for its version and pid and i3 for its version, so a
// broken key binding can be diagnosed from a terminal.
func checkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the Emacs server and i3 are reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			failed := false

			client, err := a.emacsClient()
			if err != nil {
				return err
			}
			resp, err := client.Send(ctx, emacsclient.NewEvalRequest("(emacs-version)"))
			switch {
			case emacsclient.IsProtocolViolation(err):
				return err
			case err != nil:
				fmt.Fprintf(out, "emacs: %v\n", err)
				failed = true
			case resp.IsError():
				fmt.Fprintf(out, "emacs: %s: %v\n", client.SocketPath(), resp.Err())
				failed = true
			default:
				fmt.Fprintf(out, "emacs: %s (pid %d): %s\n", client.SocketPath(), resp.PID, resp.Value)
			}

			wm, err := a.i3Client(ctx)
			if err != nil {
				fmt.Fprintf(out, "i3: %v\n", err)
				failed = true
			} else if v, err := wm.GetVersion(ctx); err != nil {
				fmt.Fprintf(out, "i3: %v\n", err)
				failed = true
			} else {
				fmt.Fprintf(out, "i3: %s: %s\n", wm.SocketPath(), v.HumanReadable)
			}

			if failed {
				return errCheckFailed
			}
			return nil
		},
	}
}
