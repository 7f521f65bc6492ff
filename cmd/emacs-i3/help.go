// =============================================================================
// help.go - REPL Help Text
// =============================================================================
//
//   - ".help"         overview of dot-commands
//   - ".help <topic>" detailed help for one command or topic
//
// =============================================================================

package main

import (
	"fmt"
	"io"
	"strings"
)

// helpOverview is printed by ".help" without a topic.
const helpOverview = `Enter an Emacs Lisp expression to evaluate it in the current frame.
Expressions may span several lines; input ends when the parentheses balance.

Commands:
  .help [topic]     Show help (or help for a specific command)
  .socket           Show the Emacs server socket path
  .timeout [dur]    Show or set the evaluation timeout (e.g. 2s, 0 for none)
  .pid              Show the process id of the Emacs server
  .quit             Exit the REPL

Topics: dispatch, errors
`

// topicHelp holds the detailed help, keyed by topic without leading dot.
var topicHelp = map[string]string{
	"help": `.help [topic]
  Without a topic, list all commands. With a topic, show details.`,

	"socket": `.socket
  Print the path of the Emacs server socket this session talks to.
  Set it with --emacs-socket, EMACS_SOCKET_NAME or emacs.socket in the
  config file.`,

	"timeout": `.timeout [duration]
  Without an argument, print the current evaluation timeout.
  With an argument, set it for the rest of the session. Durations use Go
  syntax: 500ms, 2s, 1m. 0 disables the timeout.`,

	"pid": `.pid
  Print the process id the Emacs server reports with every response.`,

	"quit": `.quit
  Exit the REPL. Ctrl-D does the same. .exit is an alias.`,

	"dispatch": `Dispatching
  When an Emacs frame has focus, "emacs-i3 focus left" evaluates
    (my/emacs-i3-command "focus left")
  A nil result hands the command back to i3. Try your command function
  here by evaluating that call directly.`,

	"errors": `Errors
  Error: <message>
      Emacs signalled an error while evaluating.
  Error: emacs server <path> dial: ...
      The server socket could not be reached. Start Emacs with
      (server-start) or run emacs-i3 eval --start-daemon.
  Error: emacs server <path> read response: ... i/o timeout
      Emacs did not answer within the timeout (see .timeout).
  A malformed server response ends the session.`,
}

// GO CONCEPT: init Functions
// --------------------------
// Each file may declare init functions; they run once, after all
// package-level variables are initialized and before main. A map literal
// cannot refer to its own entries, so the .exit alias is filled in here
// from the already-built .quit entry.
func init() {
	topicHelp["exit"] = topicHelp["quit"]
}

// printHelp writes the overview, or the detailed help for topic.
func printHelp(w io.Writer, topic string) error {
	if topic == "" {
		fmt.Fprint(w, helpOverview)
		return nil
	}

	// GO CONCEPT: The "comma ok" Idiom
	// ---------------------------------
	// Indexing a map with a missing key returns the zero value (""), which
	// cannot be told apart from an empty help text. The two-value form
	// `text, ok := m[key]` reports whether the key was present.
	key := strings.TrimPrefix(strings.ToLower(topic), ".")
	text, ok := topicHelp[key]
	if !ok {
		return fmt.Errorf("no help for '%s'. Type .help to see available commands", topic)
	}
	fmt.Fprintln(w, text)
	return nil
}
