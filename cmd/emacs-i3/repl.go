// =============================================================================
// repl.go - Emacs Lisp REPL
// =============================================================================
//
// `emacs-i3 repl` evaluates Emacs Lisp expressions in the running Emacs
// server, one connection per expression, exactly like a key binding would.
// It is meant for trying out the command function without reloading the i3
// config.
//
// Input is read until the parentheses balance, so a defun can be typed over
// several lines. Lines starting with a dot are local commands (.help).
//
// =============================================================================

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/c0deaddict/emacs-i3/emacsclient"
)

const (
	// primaryPrompt is shown when a new expression starts.
	primaryPrompt = "elisp> "

	// continuationPrompt is shown while parentheses are still open.
	continuationPrompt = "  ...> "
)

// GO CONCEPT: Sentinel Errors for Control Flow
// ---------------------------------------------
// errQuit is a package-level error value that carries no details. dotCommand
// returns it for .quit and the loop compares with ==, which works because
// the value is never wrapped. This keeps dotCommand's signature a plain
// `error` instead of adding a separate "should exit" boolean. Once an error
// may be wrapped with %w, the comparison must become errors.Is.

// errQuit ends the REPL loop without reporting an error.
var errQuit = errors.New("quit")

// GO CONCEPT: Pointer Receivers for Mutable State
// -----------------------------------------------
// The methods below use a *repl receiver. .timeout replaces r.client, and
// with a value receiver that assignment would land on a copy and be lost
// as soon as the method returned.

// repl holds the state of an interactive session.
type repl struct {
	client *emacsclient.Client
	editor *LineEditor
	stdout io.Writer
	stderr io.Writer
}

// runREPL reads expressions from editor until EOF or .quit and evaluates
// them with client.
//
// Evaluation and connection errors are printed and the loop continues. A
// protocol violation ends the session with an error, since every further
// exchange with that server is suspect.
func runREPL(ctx context.Context, client *emacsclient.Client, editor *LineEditor, stdout, stderr io.Writer) error {
	r := &repl{
		client: client,
		editor: editor,
		stdout: stdout,
		stderr: stderr,
	}

	if editor.IsInteractive() {
		fmt.Fprintf(stdout, "%s - connected to %s\n", fullTitle(), client.SocketPath())
		fmt.Fprintln(stdout, "Type .help for help, .quit to exit.")
	}

	for {
		expr, err := r.readExpression()
		if err == io.EOF {
			fmt.Fprintln(stdout)
			return nil
		}
		if err != nil {
			return err
		}
		if expr == "" {
			continue
		}

		if strings.HasPrefix(expr, ".") {
			if err := r.dotCommand(ctx, expr); err != nil {
				if err == errQuit {
					return nil
				}
				fmt.Fprintf(stderr, "Error: %v\n", err)
			}
			continue
		}

		if err := r.eval(ctx, expr); err != nil {
			return err
		}
	}
}

// readExpression reads lines until the parentheses of the collected input
// balance. Dot-commands are always a single line.
func (r *repl) readExpression() (string, error) {
	var lines []string
	prompt := primaryPrompt

	for {
		line, err := r.editor.GetLine(prompt)
		if err != nil {
			if err == io.EOF && len(lines) > 0 {
				// Unterminated input at EOF is sent as is; Emacs reports
				// the syntax error.
				return strings.Join(lines, "\n"), nil
			}
			return "", err
		}

		if len(lines) == 0 {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, ".") {
				return line, nil
			}
		}

		lines = append(lines, line)
		expr := strings.Join(lines, "\n")
		if parenDepth(expr) <= 0 {
			return strings.TrimSpace(expr), nil
		}
		prompt = continuationPrompt
	}
}

// eval evaluates expr and prints the result or the error.
func (r *repl) eval(ctx context.Context, expr string) error {
	result, err := r.client.EvalWithContext(ctx, expr)
	if err == nil {
		fmt.Fprintln(r.stdout, result)
		return nil
	}

	if emacsclient.IsProtocolViolation(err) {
		return err
	}

	// GO CONCEPT: Choosing What to Print From a Typed Error
	// ------------------------------------------------------
	// EvalError.Error() prefixes "eval error: ". At the prompt only the
	// message Emacs produced is interesting, so errors.As extracts the
	// struct and prints its Message field. Every other error falls through
	// to %v, which prints the full chain.
	var evalErr *emacsclient.EvalError
	if errors.As(err, &evalErr) {
		fmt.Fprintf(r.stderr, "Error: %s\n", evalErr.Message)
		return nil
	}
	fmt.Fprintf(r.stderr, "Error: %v\n", err)
	return nil
}

// dotCommand executes a local command.
func (r *repl) dotCommand(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case ".quit", ".exit":
		return errQuit

	case ".help":
		topic := ""
		if len(args) > 0 {
			topic = args[0]
		}
		return printHelp(r.stdout, topic)

	case ".socket":
		fmt.Fprintln(r.stdout, r.client.SocketPath())
		return nil

	case ".timeout":
		if len(args) == 0 {
			fmt.Fprintln(r.stdout, formatTimeout(r.client.Timeout()))
			return nil
		}
		timeout, err := time.ParseDuration(args[0])
		if err != nil || timeout < 0 {
			return fmt.Errorf("invalid timeout %q", args[0])
		}
		r.client = emacsclient.NewClient(r.client.SocketPath(), emacsclient.WithTimeout(timeout))
		fmt.Fprintf(r.stdout, "Timeout set to %s\n", formatTimeout(timeout))
		return nil

	case ".pid":
		resp, err := r.client.Send(ctx, emacsclient.NewEvalRequest("nil"))
		if err != nil {
			return err
		}
		if resp.PID == 0 {
			return errors.New("server did not report its pid")
		}
		fmt.Fprintln(r.stdout, resp.PID)
		return nil

	default:
		return fmt.Errorf("unknown command %s. Type .help to see available commands", cmd)
	}
}

// formatTimeout renders a per-call timeout for display.
func formatTimeout(d time.Duration) string {
	if d == 0 {
		return "none"
	}
	return d.String()
}

// GO CONCEPT: Iterating Over Bytes vs Runes
// -----------------------------------------
// Ranging over a string yields runes, but every character parenDepth cares
// about is ASCII. Indexing bytes is enough: the continuation bytes of a
// multi-byte UTF-8 sequence are always >= 0x80 and never match '(' or '"'.

// parenDepth returns the number of unclosed parentheses and brackets in
// src. Strings, comments and character literals such as ?\( are skipped.
// A negative result means there are more closing than opening ones.
func parenDepth(src string) int {
	depth := 0
	inString := false

	for i := 0; i < len(src); i++ {
		c := src[i]

		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case ';':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case '?':
			// ?( ?\( ?\) are characters, not parentheses. Inside a symbol
			// such as string-empty? the ? is an ordinary constituent.
			if i > 0 && !isDelimiter(src[i-1]) {
				continue
			}
			if i+1 < len(src) && src[i+1] == '\\' {
				i += 2
			} else {
				i++
			}
		case '\\':
			i++
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		}
	}
	return depth
}

// isDelimiter reports whether c can precede the start of a new token.
func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '(', ')', '[', ']', '\'', '`', ',':
		return true
	}
	return false
}
