// Package hub provides a thread-safe websocket broadcast hub
// using the idiomatic Go channel-based fan-out pattern.
package hub

import (
	"encoding/json"

	"github.com/togedaeng/go-togedaeng/pkg/protocol"
)

// Message is one pre-encoded text frame queued for clients
type Message struct {
	Data []byte
}

// NewJSONMessage creates a message from pre-encoded JSON bytes
func NewJSONMessage(data []byte) Message {
	return Message{Data: data}
}

// EncodeJSON marshals v into a message
func EncodeJSON(v any) (Message, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Message{}, err
	}
	return NewJSONMessage(data), nil
}

// FromProtocol encodes a protocol envelope
func FromProtocol(msg *protocol.Message) (Message, error) {
	data, err := msg.Bytes()
	if err != nil {
		return Message{}, err
	}
	return NewJSONMessage(data), nil
}
