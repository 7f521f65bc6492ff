// =============================================================================
// translate.go - Command Translation (Window Manager Command → Emacs Lisp)
// =============================================================================
//
// This file translates the window manager command the user bound to a key
// (e.g. "focus left") into the Emacs Lisp expression that is sent to the
// Emacs server when an Emacs frame has focus.
//
// The command is passed as a single string argument to a user-defined
// function, by default my/emacs-i3-command:
//
//	"focus left"          → (my/emacs-i3-command "focus left")
//	`exec "emacsclient"`  → (my/emacs-i3-command "exec \"emacsclient\"")
//
// The function decides whether Emacs handles the command. Returning nil
// hands it back to the window manager.
//
// =============================================================================

package dispatch

// GO CONCEPT: strings.Replacer
// ----------------------------
// strings.NewReplacer builds a replacer that applies all substitutions in a
// single pass, so replacing `\` with `\\` never re-escapes the backslash
// that was just inserted in front of a `"`. Chaining two ReplaceAll calls
// only works if the backslashes are done first.
import (
	"fmt"
	"strings"
)

// elispStringEscaper escapes text for use inside an Emacs Lisp string literal.
var elispStringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// EmacsExpression returns the expression that calls function with command
// as its only argument.
func EmacsExpression(function, command string) string {
	return fmt.Sprintf(`(%s "%s")`, function, elispStringEscaper.Replace(command))
}
