package server

import (
	"encoding/json"
	"fmt"
)

// BridgeMessage is the envelope for every WebSocket message.
type BridgeMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage constructs a BridgeMessage by marshaling the given payload.
func NewMessage[T any](msgType, id string, payload T) (BridgeMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return BridgeMessage{}, fmt.Errorf("marshal payload: %w", err)
	}
	return BridgeMessage{Type: msgType, ID: id, Payload: raw}, nil
}

// ParsePayload unmarshals the raw payload of a BridgeMessage into T.
func ParsePayload[T any](msg BridgeMessage) (T, error) {
	var v T
	if len(msg.Payload) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("unmarshal payload: %w", err)
	}
	return v, nil
}

// Client → Server message types.
const (
	MsgCreateSession = "create_session"
	MsgChat          = "chat"
	MsgGetHistory    = "get_history"
)

// Server → Client message types.
const (
	MsgSessionCreated = "session_created"
	MsgChatResult     = "chat_result"
	MsgHistory        = "history"
	MsgError          = "error"
)

// ChatPayload is the payload of a chat message.
type ChatPayload struct {
	SessionID string `json:"session_id"`
	ChatRequest
}

// HistoryRequestPayload asks for a session's turns.
type HistoryRequestPayload struct {
	SessionID string `json:"session_id"`
}

// ChatResultPayload answers a chat message.
type ChatResultPayload struct {
	SessionID string `json:"session_id"`
	ChatResponse
}

// HistoryPayload carries a session's turns.
type HistoryPayload struct {
	SessionID string `json:"session_id"`
	Turns     any    `json:"turns"`
}

// ErrorPayload reports a failed client message.
type ErrorPayload struct {
	Code   int    `json:"code"`
	Detail string `json:"detail"`
}
