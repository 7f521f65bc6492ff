// =============================================================================
// lineeditor.go - Line Editor for the Emacs Lisp REPL
// =============================================================================
//
// The REPL reads input through a LineEditor that works in two modes:
//
//   - Interactive mode: stdin is a terminal. ergochat/readline provides
//     Emacs keybindings, persistent history and Ctrl-R history search.
//   - Non-interactive mode: stdin is piped or the REPL runs inside Emacs
//     (M-x shell, comint). Lines are read with bufio.Scanner and the prompt
//     is printed by hand so comint can still find it.
//
// History is stored at ~/.emacs_i3_history, 500 entries, blank lines
// skipped.
//
// =============================================================================

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"golang.org/x/term"
)

const (
	// historyFileName is the history file in the user's home directory.
	historyFileName = ".emacs_i3_history"

	// historySize is the maximum number of history entries to retain.
	historySize = 500
)

// GO CONCEPT: One Type, Two Modes
// -------------------------------
// Go has no inheritance, and an interface with two implementations would be
// more ceremony than this needs. LineEditor keeps a flag and the fields of
// both modes, and GetLine switches on the flag. The zero value of the
// unused fields (nil) costs nothing.

// LineEditor reads REPL input from a terminal or a pipe.
type LineEditor struct {
	// interactive is true when stdin is a TTY and not inside Emacs.
	interactive bool

	// rl is the readline instance in interactive mode, nil otherwise.
	rl *readline.Instance

	// scanner and out serve non-interactive mode. Prompts go to out.
	scanner *bufio.Scanner
	out     io.Writer
}

// NewLineEditor creates a LineEditor for os.Stdin, choosing the mode
// automatically.
//
// INSIDE_EMACS forces non-interactive mode: Emacs does its own line editing
// and readline's escape sequences would only garble the buffer.
func NewLineEditor() *LineEditor {
	isInteractive := term.IsTerminal(int(os.Stdin.Fd())) &&
		os.Getenv("INSIDE_EMACS") == ""

	if !isInteractive {
		return newScannerLineEditor(os.Stdin, os.Stdout)
	}

	// GO CONCEPT: Graceful Degradation
	// --------------------------------
	// readline can fail to initialize on an unusual terminal. Rather than
	// refusing to start, the editor falls back to the scanner mode, which
	// works everywhere. The user loses history and key bindings, not the
	// REPL.
	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:            filepath.Join(homeDir(), historyFileName),
		HistoryLimit:           historySize,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: readline init failed (%v), using basic input\n", err)
		return newScannerLineEditor(os.Stdin, os.Stdout)
	}

	return &LineEditor{
		interactive: true,
		rl:          rl,
	}
}

// newScannerLineEditor creates a non-interactive LineEditor reading lines
// from r and writing prompts to out.
func newScannerLineEditor(r io.Reader, out io.Writer) *LineEditor {
	return &LineEditor{
		scanner: bufio.NewScanner(r),
		out:     out,
	}
}

// GetLine reads a line of input after showing prompt.
//
// It returns io.EOF when input is exhausted. In interactive mode Ctrl-D and
// Ctrl-C both end the session.
func (le *LineEditor) GetLine(prompt string) (string, error) {
	if le.interactive {
		return le.getInteractiveLine(prompt)
	}
	return le.getNonInteractiveLine(prompt)
}

func (le *LineEditor) getInteractiveLine(prompt string) (string, error) {
	le.rl.SetPrompt(prompt)

	line, err := le.rl.Readline()
	if err != nil {
		// GO CONCEPT: Translating Library Errors
		// ---------------------------------------
		// readline reports Ctrl-C as its own sentinel, ErrInterrupt. Mapping
		// it to io.EOF here means callers only ever check for io.EOF, the
		// standard "no more input" signal, and never import readline.
		if err == readline.ErrInterrupt {
			return "", io.EOF
		}
		return "", err
	}

	if trimmed := strings.TrimSpace(line); trimmed != "" {
		le.rl.SaveToHistory(trimmed)
	}
	return line, nil
}

func (le *LineEditor) getNonInteractiveLine(prompt string) (string, error) {
	fmt.Fprint(le.out, prompt)

	// GO CONCEPT: bufio.Scanner Error Handling
	// -----------------------------------------
	// Scan returns false both at end of input and on a read error. Err
	// tells them apart: it is nil at a clean EOF. Scanner never returns
	// io.EOF itself, so the method produces it for callers.
	if !le.scanner.Scan() {
		if err := le.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return le.scanner.Text(), nil
}

// Close saves history and releases the terminal. It is safe to call more
// than once.
func (le *LineEditor) Close() {
	if le.rl != nil {
		le.rl.Close()
		le.rl = nil
	}
}

// IsInteractive reports whether the editor reads from a terminal.
func (le *LineEditor) IsInteractive() bool {
	return le.interactive
}
