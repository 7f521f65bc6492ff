// Package i3ipc is a small client for the i3 (and sway) IPC interface.
//
// Only the messages emacs-i3 needs are implemented: RUN_COMMAND, GET_TREE
// and GET_VERSION.
//
// Wire format (https://i3wm.org/docs/ipc.html):
//
//	"i3-ipc" <payload length:u32> <message type:u32> <payload>
//
// Integers use the host byte order, which is little endian on every
// platform i3 and sway run on.
package i3ipc

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Magic is the string every message starts with.
const Magic = "i3-ipc"

// MaxPayload bounds the size of a reply payload. A full layout tree is
// typically well below 1 MB.
const MaxPayload uint32 = 64 * 1024 * 1024

// MessageType identifies an IPC request or reply.
type MessageType uint32

// Message types used by this package.
const (
	MessageRunCommand MessageType = 0
	MessageGetTree    MessageType = 4
	MessageGetVersion MessageType = 7
)

// String returns the i3 name of the message type.
func (t MessageType) String() string {
	switch t {
	case MessageRunCommand:
		return "RUN_COMMAND"
	case MessageGetTree:
		return "GET_TREE"
	case MessageGetVersion:
		return "GET_VERSION"
	default:
		return fmt.Sprintf("MESSAGE_%d", uint32(t))
	}
}

const headerSize = len(Magic) + 8

// Message is a framed IPC message.
type Message struct {
	Type    MessageType
	Payload []byte
}

// WriteMessage writes a single message to w.
func WriteMessage(w io.Writer, m *Message) error {
	buf := make([]byte, headerSize+len(m.Payload))
	copy(buf, Magic)
	binary.LittleEndian.PutUint32(buf[len(Magic):], uint32(len(m.Payload)))
	binary.LittleEndian.PutUint32(buf[len(Magic)+4:], uint32(m.Type))
	copy(buf[headerSize:], m.Payload)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("writing %s message: %w", m.Type, err)
	}
	return nil
}

// ReadMessage reads a single message from r.
func ReadMessage(r io.Reader) (*Message, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("reading message header: %w", err)
	}

	if string(header[:len(Magic)]) != Magic {
		return nil, &ReplyError{Message: fmt.Sprintf("bad magic %q", header[:len(Magic)])}
	}

	length := binary.LittleEndian.Uint32(header[len(Magic):])
	msgType := MessageType(binary.LittleEndian.Uint32(header[len(Magic)+4:]))

	if length > MaxPayload {
		return nil, &ReplyError{Type: msgType, Message: fmt.Sprintf("payload too large: %d bytes", length)}
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("reading %s payload: %w", msgType, err)
	}

	return &Message{Type: msgType, Payload: payload}, nil
}
