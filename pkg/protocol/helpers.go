package protocol

import "time"

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewStateMessage creates a world snapshot message
func NewStateMessage(state WorldState) (*Message, error) {
	return NewMessage(TypeState, state)
}

// NewEventMessage creates an event message
func NewEventMessage(ev EventData) (*Message, error) {
	return NewMessage(TypeEvent, ev)
}

// NewResultMessage creates a command result message
func NewResultMessage(res ResultData) (*Message, error) {
	return NewMessage(TypeResult, res)
}

// NewErrorMessage creates an error message for a rejected command
func NewErrorMessage(command MessageType, err error) (*Message, error) {
	return NewMessage(TypeError, ErrorData{
		Command: command,
		Message: err.Error(),
	})
}

// NewVoiceMessage creates a voice transcript message
func NewVoiceMessage(dogID, text string) (*Message, error) {
	return NewMessage(TypeVoice, VoiceCommand{
		DogID: dogID,
		Text:  text,
	})
}

// NewTrickMessage creates a trick request message
func NewTrickMessage(dogID, trick string) (*Message, error) {
	return NewMessage(TypeTrick, TrickCommand{
		DogID: dogID,
		Trick: trick,
	})
}

// NewSpawnMessage creates a spawn request message
func NewSpawnMessage(name string) (*Message, error) {
	return NewMessage(TypeSpawn, SpawnCommand{Name: name})
}

// NewRecordMessage creates a press-to-talk message
func NewRecordMessage(dogID, action string) (*Message, error) {
	return NewMessage(TypeRecord, RecordCommand{
		DogID:  dogID,
		Action: action,
	})
}

// NewPointerMessage creates a pointer message
func NewPointerMessage(cmd PointerCommand) (*Message, error) {
	return NewMessage(TypePointer, cmd)
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: time.Now().UnixMilli(),
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetStateData extracts a world snapshot from a message
func (m *Message) GetStateData() (*WorldState, error) {
	var data WorldState
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetEventData extracts event data from a message
func (m *Message) GetEventData() (*EventData, error) {
	var data EventData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetResultData extracts a command result from a message
func (m *Message) GetResultData() (*ResultData, error) {
	var data ResultData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetErrorData extracts error data from a message
func (m *Message) GetErrorData() (*ErrorData, error) {
	var data ErrorData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetVoiceCommand extracts a voice command from a message
func (m *Message) GetVoiceCommand() (*VoiceCommand, error) {
	var data VoiceCommand
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetTrickCommand extracts a trick command from a message
func (m *Message) GetTrickCommand() (*TrickCommand, error) {
	var data TrickCommand
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetSpawnCommand extracts a spawn command from a message
func (m *Message) GetSpawnCommand() (*SpawnCommand, error) {
	var data SpawnCommand
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetRecordCommand extracts a press-to-talk command from a message
func (m *Message) GetRecordCommand() (*RecordCommand, error) {
	var data RecordCommand
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPointerCommand extracts a pointer command from a message
func (m *Message) GetPointerCommand() (*PointerCommand, error) {
	var data PointerCommand
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
