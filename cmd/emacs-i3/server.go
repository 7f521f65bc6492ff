// =============================================================================
// server.go - Emacs Daemon Discovery and Launch
// =============================================================================
//
// `emacs-i3 eval --start-daemon` makes sure an Emacs server is listening
// before evaluating. If the socket is missing, an `emacs --daemon` process is
// started and the CLI waits for the socket to appear.
//
// The search order for the emacs executable:
//   1. PATH environment variable
//   2. Common locations: /usr/local/bin, /usr/bin, ~/.local/bin,
//      ~/.nix-profile/bin
//
// The daemon is left running when the CLI exits; that is the point of
// starting it.
//
// =============================================================================

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

const (
	// emacsExecutableName is the name of the Emacs binary.
	emacsExecutableName = "emacs"

	// daemonSocketTimeout is how long to wait for the server socket after
	// launching the daemon. Loading a large init file takes a while.
	daemonSocketTimeout = 30 * time.Second

	// daemonSocketPollInterval is how often to check for the socket during
	// the startup wait.
	daemonSocketPollInterval = 100 * time.Millisecond
)

// GO CONCEPT: Wrapping Errors With %w
// -----------------------------------
// fmt.Errorf with the %w verb builds a new message around err and keeps a
// link to it. errors.Is and errors.As follow that link, so a caller can
// still detect context.DeadlineExceeded from waitForSocket even though the
// message now mentions the daemon pid. %v would keep only the text.

// ensureDaemon starts an Emacs daemon serving socketPath unless a socket
// already exists there.
func ensureDaemon(ctx context.Context, socketPath string, logger *slog.Logger) error {
	if isSocket(socketPath) {
		return nil
	}

	exePath, err := findEmacsExecutable()
	if err != nil {
		return fmt.Errorf("could not find %s executable: %w", emacsExecutableName, err)
	}

	pid, err := launchDaemon(exePath, socketPath)
	if err != nil {
		return err
	}
	logger.Info("started emacs daemon", "pid", pid, "socket", socketPath)

	if err := waitForSocket(ctx, socketPath, daemonSocketTimeout); err != nil {
		return fmt.Errorf("%s daemon started (PID: %d) but socket not found: %w", emacsExecutableName, pid, err)
	}
	return nil
}

// launchDaemon starts `emacs --daemon=<socketPath>`. An absolute
// server-name makes Emacs create its socket at exactly that path.
//
// The daemon's output is discarded. The foreground process exits once the
// daemon is initialized; it is reaped in the background so it does not
// linger as a zombie.
func launchDaemon(exePath, socketPath string) (int, error) {
	cmd := exec.Command(exePath, "--daemon="+socketPath)
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to launch %s: %w", emacsExecutableName, err)
	}

	// GO CONCEPT: Reaping Child Processes
	// ------------------------------------
	// A started process must be waited for, or it stays a zombie until the
	// parent exits. Waiting in a goroutine lets launchDaemon return the pid
	// at once; the explicit `_ =` shows the error is ignored on purpose,
	// since `emacs --daemon` exits non-zero when a server already runs.
	go func() { _ = cmd.Wait() }()
	return cmd.Process.Pid, nil
}

// findEmacsExecutable searches for the emacs binary in standard locations.
func findEmacsExecutable() (string, error) {
	if path, err := exec.LookPath(emacsExecutableName); err == nil {
		return path, nil
	}

	commonPaths := []string{
		"/usr/local/bin",
		"/usr/bin",
		filepath.Join(homeDir(), ".local", "bin"),
		filepath.Join(homeDir(), ".nix-profile", "bin"),
	}
	for _, dir := range commonPaths {
		candidate := filepath.Join(dir, emacsExecutableName)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%s not found in PATH or common locations", emacsExecutableName)
}

// GO CONCEPT: time.Ticker and select
// -----------------------------------
// A Ticker delivers the current time on its channel C at a fixed interval.
// select waits on several channels at once and proceeds with whichever is
// ready first, so the loop wakes either to poll again or because ctx was
// cancelled. Ctrl-C therefore stops the wait at once instead of after the
// full 30 seconds. Stop the ticker when done to release its timer.

// waitForSocket polls until a Unix socket exists at path, timeout expires,
// or ctx is cancelled.
func waitForSocket(ctx context.Context, path string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(daemonSocketPollInterval)
	defer ticker.Stop()

	for {
		if isSocket(path) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for socket %s: %w", path, ctx.Err())
		case <-ticker.C:
		}
	}
}

// isSocket reports whether path exists and is a Unix socket.
func isSocket(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	// GO CONCEPT: File Mode Bits
	// ---------------------------
	// os.FileMode packs the file type and the permission bits into one
	// integer. Masking with os.ModeSocket tests the type; Perm()&0111 in
	// isExecutable tests the execute bits.
	return info.Mode()&os.ModeSocket != 0
}

// isExecutable checks if a file exists and is executable.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Mode().Perm()&0111 != 0
}

// homeDir returns the current user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
