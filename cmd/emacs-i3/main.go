// =============================================================================
// main.go - emacs-i3 CLI Entry Point
// =============================================================================
//
// emacs-i3 lets Emacs take part in i3/sway window navigation. Bind it in the
// i3 config in place of the plain command:
//
//	bindsym $mod+h exec --no-startup-id emacs-i3 focus left
//
// When the focused window is an Emacs frame, the command is first offered to
// Emacs by evaluating (my/emacs-i3-command "focus left") through the Emacs
// server socket. If that returns nil, or Emacs cannot be reached, the command
// is run by i3 as usual.
//
// Usage:
//
//	emacs-i3 [flags] <i3 command...>     Dispatch a command
//	emacs-i3 -e windmove-left focus left Send a different command to Emacs
//	emacs-i3 eval '(buffer-name)'        Evaluate an expression and print it
//	emacs-i3 repl                        Interactive Emacs Lisp REPL
//	emacs-i3 check                       Check that Emacs and i3 answer
//
// =============================================================================

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/c0deaddict/emacs-i3/emacsclient"
	"github.com/c0deaddict/emacs-i3/i3ipc"
	"github.com/c0deaddict/emacs-i3/internal/config"
	"github.com/c0deaddict/emacs-i3/internal/dispatch"
	"github.com/c0deaddict/emacs-i3/internal/logging"
)

// =============================================================================
// Version Information
// =============================================================================

const (
	// version is the current version of emacs-i3.
	version = "0.2.0"

	// appName is the application name.
	appName = "emacs-i3"
)

// Exit codes. A protocol violation gets its own code so that key bindings
// failing for that reason can be told apart in the i3 log.
const (
	exitOK                = 0
	exitError             = 1
	exitProtocolViolation = 2
)

// fullTitle returns the application name with version.
func fullTitle() string {
	return fmt.Sprintf("%s v%s", appName, version)
}

// =============================================================================
// Command-Line Options
// =============================================================================

// options holds the values of the persistent flags.
type options struct {
	// configPath is the TOML config file. Empty means config.DefaultPath().
	configPath string

	// emacsCommand overrides the command sent to Emacs. Empty means "same as
	// the i3 command".
	emacsCommand string

	// emacsSocket and i3Socket override the socket paths.
	emacsSocket string
	i3Socket    string

	// timeout bounds each Emacs evaluation and i3 request.
	timeout time.Duration

	// logLevel overrides the configured log level.
	logLevel string
}

// app carries state shared by all subcommands once the flags are parsed.
type app struct {
	opts   options
	cfg    *config.Config
	logger *slog.Logger
	stderr io.Writer
}

// GO CONCEPT: Closures Capturing Shared State
// -------------------------------------------
// Every cobra command below is built by a function that receives *app. The
// RunE closures capture that pointer, so the config loaded once in
// PersistentPreRunE is visible to whichever subcommand actually runs.
// Nothing is stored in package-level variables, which keeps the commands
// testable: a test builds a fresh root command per case.

// newRootCmd builds the command tree.
func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   appName + " [flags] <i3 command...>",
		Short: "Offer i3 commands to Emacs before running them in i3",
		Long: `emacs-i3 runs an i3 (or sway) command, unless the focused window is an
Emacs frame and Emacs handles the command itself.

Emacs is asked by evaluating (my/emacs-i3-command "<command>") through the
Emacs server socket. A nil result hands the command back to i3.`,
		Version:       version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDispatch(cmd.Context(), args)
		},
	}

	// i3 commands contain their own dashes ("exec --no-startup-id ..."), so
	// flag parsing stops at the first positional argument.
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.Flags().StringVarP(&a.opts.emacsCommand, "emacs", "e", "", "Override command to send to Emacs")

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&a.opts.configPath, "config", "c", "", "Config file (default $XDG_CONFIG_HOME/emacs-i3/config.toml)")
	pf.StringVar(&a.opts.emacsSocket, "emacs-socket", "", "Emacs server socket path")
	pf.StringVar(&a.opts.i3Socket, "i3-socket", "", "i3/sway IPC socket path")
	pf.DurationVar(&a.opts.timeout, "timeout", 0, "Timeout for Emacs evaluation and i3 requests (0 disables)")
	pf.StringVar(&a.opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		evalCmd(a),
		replCmd(a),
		checkCmd(a),
	)

	return rootCmd
}

// GO CONCEPT: Distinguishing "Unset" from "Zero" Flags
// -----------------------------------------------------
// A flag bound with DurationVar holds 0 both when the user typed
// --timeout 0 and when the flag was never given. pflag's Changed reports
// whether the flag appeared on the command line, so only flags the user
// actually set override the config file and environment. The same trick
// works for every flag type; it avoids sentinel defaults like -1.

// setup loads the configuration, applies flag overrides and creates the
// logger.
func (a *app) setup(cmd *cobra.Command) error {
	path := a.opts.configPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("emacs-socket") {
		cfg.Emacs.Socket = a.opts.emacsSocket
	}
	if flags.Changed("i3-socket") {
		cfg.I3.Socket = a.opts.i3Socket
	}
	if flags.Changed("timeout") {
		cfg.Emacs.Timeout = a.opts.timeout.String()
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logging.New(a.stderr, level)
	return nil
}

// GO CONCEPT: Functional Options
// ------------------------------
// emacsclient.NewClient takes the socket path plus any number of Option
// values, each a function that sets one field on the new client. A caller
// names only what it changes (WithTimeout here), new options can be added
// without breaking existing calls, and NewClient(path) alone still gives a
// usable client with defaults.

// emacsClient creates the Emacs server client from the configuration.
func (a *app) emacsClient() (*emacsclient.Client, error) {
	timeout, err := a.cfg.EmacsTimeout()
	if err != nil {
		return nil, err
	}
	return emacsclient.NewClient(a.cfg.EmacsSocketPath(), emacsclient.WithTimeout(timeout)), nil
}

// GO CONCEPT: context.AfterFunc
// ------------------------------
// Both clients turn the context into a socket deadline. A deadline alone
// does not notice Ctrl-C, so they also register a function with
// context.AfterFunc that moves the connection deadline to time.Now().
// AfterFunc runs the function in its own goroutine once ctx is done, which
// makes a blocked Read return immediately. The returned stop unregisters
// it when the request finished first; the clients defer it.

// i3Client creates the i3 IPC client, locating the socket if needed.
func (a *app) i3Client(ctx context.Context) (*i3ipc.Client, error) {
	timeout, err := a.cfg.EmacsTimeout()
	if err != nil {
		return nil, err
	}

	path := a.cfg.I3.Socket
	if path == "" {
		if path, err = i3ipc.SocketPath(ctx); err != nil {
			return nil, err
		}
	}
	return i3ipc.NewClient(path, timeout), nil
}

// runDispatch implements the root command.
func (a *app) runDispatch(ctx context.Context, args []string) error {
	i3Command := strings.Join(args, " ")
	emacsCommand := i3Command
	if a.opts.emacsCommand != "" {
		emacsCommand = a.opts.emacsCommand
	}

	wm, err := a.i3Client(ctx)
	if err != nil {
		return err
	}
	emacs, err := a.emacsClient()
	if err != nil {
		return err
	}

	matcher := dispatch.Matcher{
		Class:       a.cfg.I3.WindowClass,
		TitlePrefix: a.cfg.I3.TitlePrefix,
		AppID:       a.cfg.I3.AppID,
	}
	d := dispatch.New(wm, emacs, matcher, a.cfg.Emacs.Function, a.logger)

	out, err := d.Dispatch(ctx, i3Command, emacsCommand)
	if err != nil {
		return err
	}

	a.logger.Debug("dispatched",
		"command", i3Command,
		"emacs", out.Emacs,
		"result", out.EmacsResult,
		"forwarded", out.Forwarded)
	return nil
}

// =============================================================================
// Error Reporting
// =============================================================================

// exitCode maps the error returned by the command tree to a process exit
// status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case emacsclient.IsProtocolViolation(err):
		return exitProtocolViolation
	default:
		return exitError
	}
}

// GO CONCEPT: errors.As for Typed Errors
// ---------------------------------------
// By the time an error reaches here it has been wrapped several times
// ("evaluating ...: %w"). errors.As walks the Unwrap chain and, if it finds
// a *emacsclient.ProtocolError, stores it in protoErr so its fields (the
// expression and the raw response) can be logged. A plain type assertion
// err.(*emacsclient.ProtocolError) would only look at the outermost error
// and miss it.

// reportError prints err. Protocol violations are logged with the
// expression and the raw response so the misbehaving server can be
// diagnosed.
func reportError(logger *slog.Logger, stderr io.Writer, err error) {
	var protoErr *emacsclient.ProtocolError
	if logger != nil && errors.As(err, &protoErr) {
		logger.Error("emacs server protocol violation",
			"expr", protoErr.Expr,
			"response", protoErr.Response,
			"error", err)
		return
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
}

// run executes the CLI with args and returns the exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stderr: stderr}

	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		reportError(a.logger, stderr, err)
	}
	return exitCode(err)
}

// GO CONCEPT: signal.NotifyContext and os.Exit
// ---------------------------------------------
// signal.NotifyContext returns a context that is cancelled when one of the
// listed signals arrives. Passing it down through cobra's ExecuteContext
// makes Ctrl-C reach the socket reads in the clients, which return at once
// instead of blocking until the timeout.
//
// os.Exit terminates immediately and does NOT run deferred calls. That is
// why main calls stop() explicitly and keeps all real work in run(), which
// returns an exit code instead of exiting itself. Tests call run() directly.

func main() {
	// SIGINT/SIGTERM cancel the context, which aborts a pending Emacs
	// evaluation instead of leaving a stuck process behind the key binding.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
