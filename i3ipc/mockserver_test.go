package i3ipc

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// mockI3 answers IPC requests on a Unix socket with canned replies.
type mockI3 struct {
	listener   net.Listener
	socketPath string

	// handler returns the reply for a request. Returning nil closes the
	// connection without replying.
	handler func(req *Message) *Message

	mu       sync.Mutex
	requests []*Message

	wg sync.WaitGroup
}

func startMockI3(t *testing.T, handler func(req *Message) *Message) *mockI3 {
	t.Helper()

	tmpDir, err := os.MkdirTemp("/tmp", "i3-test-")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })
	socketPath := filepath.Join(tmpDir, "ipc.sock")

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("failed to create mock i3 socket: %v", err)
	}

	m := &mockI3{listener: listener, socketPath: socketPath, handler: handler}
	m.wg.Add(1)
	go m.acceptLoop()

	t.Cleanup(func() {
		m.listener.Close()
		m.wg.Wait()
	})
	return m
}

func (m *mockI3) acceptLoop() {
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

			req, err := ReadMessage(conn)
			if err != nil {
				return
			}
			m.mu.Lock()
			m.requests = append(m.requests, req)
			m.mu.Unlock()

			if reply := m.handler(req); reply != nil {
				WriteMessage(conn, reply)
			}
		}()
	}
}

func (m *mockI3) Requests() []*Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Message(nil), m.requests...)
}

// jsonReply encodes v as the reply to req.
func jsonReply(t *testing.T, v any) func(req *Message) *Message {
	t.Helper()
	payload, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal reply: %v", err)
	}
	return func(req *Message) *Message {
		return &Message{Type: req.Type, Payload: payload}
	}
}

// startStalledI3 starts a server that reads requests and never replies
// until the test ends.
func startStalledI3(t *testing.T) *mockI3 {
	t.Helper()
	release := make(chan struct{})
	m := startMockI3(t, func(*Message) *Message {
		<-release
		return nil
	})
	t.Cleanup(func() { close(release) })
	return m
}
