// Package emacsclient implements the subset of the Emacs server protocol
// needed to evaluate a single expression in the current frame.
//
// This is the protocol spoken by emacsclient(1) over the Unix domain socket
// created by (server-start). Every argument on the wire is quoted so that
// it contains no raw spaces or newlines.
//
// Protocol Format:
//
//	Request (client -> Emacs):  -current-frame -eval <quoted-expression> \n
//	Success Response:           -print <quoted-value>\n
//	Error Response:             -error <quoted-message>\n
//	Process ID:                 -emacs-pid <pid>\n
//
// Example Session:
//
//	CLI: -current-frame -eval (+&_1&_2) \n
//	SRV: -emacs-pid 4242
//	SRV: -print 3
package emacsclient

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Protocol constants matching emacsclient.c and server.el.
const (
	// CurrentFrameFlag asks Emacs to use the selected frame instead of
	// creating a new one.
	CurrentFrameFlag = "-current-frame"

	// EvalFlag marks the following argument as an expression to evaluate.
	EvalFlag = "-eval"

	// PrintPrefix is the prefix for a successful evaluation result.
	PrintPrefix = "-print "

	// ErrorPrefix is the prefix for an evaluation error.
	ErrorPrefix = "-error "

	// EmacsPIDPrefix is the prefix of the line announcing the server's PID.
	EmacsPIDPrefix = "-emacs-pid "

	// DefaultServerName is the value of server-name when it is not customized.
	DefaultServerName = "server"

	// MaxResponseSize bounds how much of a response Eval will buffer.
	MaxResponseSize = 16 * 1024 * 1024
)

// SocketPath returns the socket path emacsclient would use for the given
// server name.
//
// A name containing a path separator is returned as-is. Otherwise the socket
// lives in runtimeDir/emacs when runtimeDir is set, and in tmpDir/emacs<uid>
// when it is not (tmpDir defaults to /tmp).
func SocketPath(name, runtimeDir, tmpDir string, uid int) string {
	if name == "" {
		name = DefaultServerName
	}
	if strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	if runtimeDir != "" {
		return filepath.Join(runtimeDir, "emacs", name)
	}
	if tmpDir == "" {
		tmpDir = "/tmp"
	}
	return filepath.Join(tmpDir, fmt.Sprintf("emacs%d", uid), name)
}
