// Package protocol defines the WebSocket message types exchanged between the
// simulation server and dashboard or remote-control clients.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Server → Client messages
	TypeState  MessageType = "state"  // World snapshot
	TypeEvent  MessageType = "event"  // Navigation or trick event
	TypeResult MessageType = "result" // Outcome of a client command
	TypeError  MessageType = "error"  // Command rejected

	// Client → Server messages
	TypeVoice MessageType = "voice" // Voice transcript for a dog
	TypeTrick MessageType = "trick" // Trick button
	TypeSpawn MessageType = "spawn" // Add a dog

	TypeRecord  MessageType = "record"  // Press-to-talk start or stop
	TypePointer MessageType = "pointer" // Pointer down, move or up over a dog

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("failed to parse message: missing type")
	}
	return &msg, nil
}

// =============================================================================
// Server → Client Message Types
// =============================================================================

// Point is a world position. Y is up.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DogState is one dog in a world snapshot
type DogState struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Position    Point   `json:"position"`
	Forward     Point   `json:"forward"`
	Speed       float64 `json:"speed"`
	Destination *Point  `json:"destination,omitempty"`
	Remaining   float64 `json:"remaining"` // Path distance left, -1 while pending

	State     string  `json:"state"` // "moving" or "waiting"
	WaitTimer float64 `json:"wait_timer"`
	Walking   bool    `json:"walking"`

	Stuck      bool    `json:"stuck"`
	StuckTimer float64 `json:"stuck_timer"`
	Escapes    int     `json:"escapes"`
	Pinned     bool    `json:"pinned,omitempty"`

	Clip      string `json:"clip,omitempty"` // Trigger of the playing trick clip
	Recording bool   `json:"recording,omitempty"`
}

// WorldState is a full world snapshot
type WorldState struct {
	Tick uint64     `json:"tick"`
	Time float64    `json:"time"` // Simulated seconds
	Dogs []DogState `json:"dogs"`
}

// EventData describes a navigation or trick event
type EventData struct {
	DogID    string  `json:"dog_id"`
	Type     string  `json:"type"` // e.g. "stuck", "escaped", "trick"
	Time     float64 `json:"time"` // Simulated seconds
	Position Point   `json:"position"`
	Target   *Point  `json:"target,omitempty"`
	Attempt  int     `json:"attempt,omitempty"`
	Wait     float64 `json:"wait,omitempty"`
	Trick    string  `json:"trick,omitempty"`
	Clip     string  `json:"clip,omitempty"`
}

// ResultData reports the outcome of a client command
type ResultData struct {
	Command  MessageType `json:"command"` // Message type that was handled
	DogID    string      `json:"dog_id,omitempty"`
	Trick    string      `json:"trick,omitempty"`
	Match    string      `json:"match,omitempty"` // Canonical voice command
	Word     string      `json:"word,omitempty"`  // Transcript word that matched
	Distance int         `json:"distance,omitempty"`
	Duration float64     `json:"duration,omitempty"` // Recording length in seconds
	Drag     bool        `json:"drag,omitempty"`     // Pointer release was a drag, not a click
}

// ErrorData reports a rejected command
type ErrorData struct {
	Command MessageType `json:"command,omitempty"`
	Message string      `json:"message"`
}

// =============================================================================
// Client → Server Message Types
// =============================================================================

// VoiceCommand carries a speech-to-text transcript
type VoiceCommand struct {
	DogID string `json:"dog_id"`
	Text  string `json:"text"`
}

// TrickCommand requests a trick by name ("hand", "sit", "down")
type TrickCommand struct {
	DogID string `json:"dog_id"`
	Trick string `json:"trick"`
}

// SpawnCommand adds a dog
type SpawnCommand struct {
	Name string `json:"name,omitempty"`
}

// Record actions
const (
	RecordStart = "start"
	RecordStop  = "stop"
)

// RecordCommand presses or releases the talk button for a dog
type RecordCommand struct {
	DogID  string `json:"dog_id"`
	Action string `json:"action"` // "start" or "stop"
}

// Pointer actions
const (
	PointerDown = "down"
	PointerMove = "move"
	PointerUp   = "up"
)

// PointerCommand is one pointer event in screen pixels. Trick names the
// button under the pointer, if any; a click on it plays the trick.
type PointerCommand struct {
	DogID  string  `json:"dog_id"`
	Action string  `json:"action"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Trick  string  `json:"trick,omitempty"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
