package emacsclient

import (
	"bufio"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// mockServer is a lightweight stand-in for an Emacs server.
//
// It listens on a Unix domain socket, reads one request line per
// connection, records it, replies with whatever handler returns and closes
// the connection, just like server.el does after an -eval.
type mockServer struct {
	listener   net.Listener
	socketPath string

	// handler receives the raw request line (without the trailing newline)
	// and returns the bytes to send back.
	handler func(request string) string

	// hold keeps the connection open after replying until the server stops.
	hold bool

	mu          sync.Mutex
	requests    []string
	connections []net.Conn

	wg sync.WaitGroup
}

// startMockServer creates a mock Emacs server on a temporary socket. The
// server is stopped when the test finishes.
func startMockServer(t *testing.T, handler func(request string) string) *mockServer {
	t.Helper()

	// Unix socket paths are limited to ~104 bytes on some platforms, so
	// keep the directory short instead of using t.TempDir().
	tmpDir, err := os.MkdirTemp("/tmp", "emacs-test-")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })
	socketPath := filepath.Join(tmpDir, "server")

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("failed to create mock server socket: %v", err)
	}

	ms := &mockServer{
		listener:   listener,
		socketPath: socketPath,
		handler:    handler,
	}

	ms.wg.Add(1)
	go ms.acceptLoop()

	t.Cleanup(ms.stop)

	return ms
}

// startHangingServer creates a mock server that reads the request and then
// never replies nor closes the connection.
func startHangingServer(t *testing.T) *mockServer {
	t.Helper()
	ms := startMockServer(t, func(string) string { return "" })
	ms.mu.Lock()
	ms.hold = true
	ms.mu.Unlock()
	return ms
}

func (ms *mockServer) acceptLoop() {
	defer ms.wg.Done()

	for {
		conn, err := ms.listener.Accept()
		if err != nil {
			return
		}

		ms.mu.Lock()
		ms.connections = append(ms.connections, conn)
		ms.mu.Unlock()

		ms.wg.Add(1)
		go ms.handleConnection(conn)
	}
}

func (ms *mockServer) handleConnection(conn net.Conn) {
	defer ms.wg.Done()

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && err != io.EOF {
		conn.Close()
		return
	}

	ms.mu.Lock()
	ms.requests = append(ms.requests, line)
	hold := ms.hold
	ms.mu.Unlock()

	io.WriteString(conn, ms.handler(line))
	if !hold {
		conn.Close()
	}
}

// Requests returns every request line received so far.
func (ms *mockServer) Requests() []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]string(nil), ms.requests...)
}

func (ms *mockServer) stop() {
	ms.listener.Close()

	ms.mu.Lock()
	for _, conn := range ms.connections {
		conn.Close()
	}
	ms.connections = nil
	ms.mu.Unlock()

	ms.wg.Wait()
	os.Remove(ms.socketPath)
}

// reply returns a handler that always answers with response.
func reply(response string) func(string) string {
	return func(string) string { return response }
}
