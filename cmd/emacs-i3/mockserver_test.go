// =============================================================================
// mockserver_test.go - Mock Emacs and i3 Servers for CLI Tests
// =============================================================================
//
// The CLI tests run the real command tree against two fake servers on Unix
// sockets:
//
//   - mockEmacs answers `-eval` requests, one per connection, like
//     server.el does.
//   - mockWM answers i3 IPC requests with a canned tree and records the
//     commands it is asked to run.
//
// =============================================================================

package main

import (
	"bufio"
	"encoding/json"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/c0deaddict/emacs-i3/emacsclient"
	"github.com/c0deaddict/emacs-i3/i3ipc"
)

// shortTempDir creates a temporary directory under /tmp. Unix socket paths
// are limited to ~104 bytes on some platforms and t.TempDir() can exceed it.
func shortTempDir(t *testing.T, prefix string) string {
	t.Helper()
	dir, err := os.MkdirTemp("/tmp", prefix)
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// =============================================================================
// Mock Emacs Server
// =============================================================================

// mockEmacs evaluates nothing: handler maps the unquoted expression to the
// raw response.
type mockEmacs struct {
	socketPath string
	listener   net.Listener
	handler    func(expr string) string

	mu    sync.Mutex
	exprs []string

	wg sync.WaitGroup
}

func startMockEmacs(t *testing.T, handler func(expr string) string) *mockEmacs {
	t.Helper()

	socketPath := filepath.Join(shortTempDir(t, "emacs-cli-"), "server")
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("failed to create mock emacs socket: %v", err)
	}

	m := &mockEmacs{socketPath: socketPath, listener: listener, handler: handler}
	m.wg.Add(1)
	go m.acceptLoop(t)

	t.Cleanup(func() {
		m.listener.Close()
		m.wg.Wait()
	})
	return m
}

// GO CONCEPT: sync.WaitGroup for Clean Shutdown
// ----------------------------------------------
// The accept loop and every connection handler run in goroutines. Each one
// is counted with wg.Add before it starts and calls wg.Done when it
// returns. The cleanup closes the listener, which makes Accept fail and
// the loop exit, then wg.Wait blocks until every handler is finished. No
// goroutine outlives the test that started it.

func (m *mockEmacs) acceptLoop(t *testing.T) {
	defer m.wg.Done()
	for {
		conn, err := m.listener.Accept()
		if err != nil {
			return
		}
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			defer conn.Close()

			line, err := bufio.NewReader(conn).ReadString('\n')
			if err != nil {
				return
			}

			expr, ok := parseEvalRequest(line)
			if !ok {
				t.Errorf("malformed request %q", line)
				return
			}

			m.mu.Lock()
			m.exprs = append(m.exprs, expr)
			m.mu.Unlock()

			io.WriteString(conn, m.handler(expr))
		}()
	}
}

// GO CONCEPT: Returning a Copy of Guarded Data
// --------------------------------------------
// Handlers append to m.exprs under the mutex. Returning the slice itself
// would let the caller read it while a handler appends; the append to a
// nil slice copies the elements so the caller owns its result.

// Exprs returns the expressions received so far.
func (m *mockEmacs) Exprs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.exprs...)
}

// parseEvalRequest extracts the expression from
// "-current-frame -eval <quoted> \n".
func parseEvalRequest(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) != 3 || fields[0] != "-current-frame" || fields[1] != "-eval" {
		return "", false
	}
	expr, err := emacsclient.UnquoteArgument(fields[2])
	if err != nil {
		return "", false
	}
	return expr, true
}

// printReply returns a handler answering every expression with value.
func printReply(value string) func(string) string {
	return func(string) string {
		return "-emacs-pid 4242\n-print " + emacsclient.QuoteArgument(value) + "\n"
	}
}

// =============================================================================
// Mock Window Manager
// =============================================================================

// mockWM serves GET_TREE with tree, GET_VERSION with a fixed version and
// RUN_COMMAND with success.
type mockWM struct {
	socketPath string
	listener   net.Listener
	tree       *i3ipc.Node

	mu       sync.Mutex
	commands []string

	wg sync.WaitGroup
}

func startMockWM(t *testing.T, tree *i3ipc.Node) *mockWM {
	t.Helper()

	socketPath := filepath.Join(shortTempDir(t, "i3-cli-"), "ipc.sock")
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("failed to create mock i3 socket: %v", err)
	}

	m := &mockWM{socketPath: socketPath, listener: listener, tree: tree}
	m.wg.Add(1)
	go m.acceptLoop()

	t.Cleanup(func() {
		m.listener.Close()
		m.wg.Wait()
	})
	return m
}

func (m *mockWM) acceptLoop() {
	defer m.wg.Done()
	for {
		conn, err := m.listener.Accept()
		if err != nil {
			return
		}
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			defer conn.Close()

			for {
				req, err := i3ipc.ReadMessage(conn)
				if err != nil {
					return
				}

				var payload any
				switch req.Type {
				case i3ipc.MessageGetTree:
					payload = m.tree
				case i3ipc.MessageGetVersion:
					payload = i3ipc.Version{Major: 4, Minor: 23, HumanReadable: "4.23 (mock)"}
				case i3ipc.MessageRunCommand:
					m.mu.Lock()
					m.commands = append(m.commands, string(req.Payload))
					m.mu.Unlock()
					payload = []i3ipc.CommandResult{{Success: true}}
				default:
					return
				}

				data, _ := json.Marshal(payload)
				if err := i3ipc.WriteMessage(conn, &i3ipc.Message{Type: req.Type, Payload: data}); err != nil {
					return
				}
			}
		}()
	}
}

// Commands returns the commands the CLI asked i3 to run.
func (m *mockWM) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.commands...)
}

// focusedTree returns a tree with window focused on a single workspace.
func focusedTree(window *i3ipc.Node) *i3ipc.Node {
	window.Focused = true
	return &i3ipc.Node{
		Type: "root",
		Nodes: []*i3ipc.Node{{
			Type:  "workspace",
			Nodes: []*i3ipc.Node{window},
		}},
	}
}
