package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	MessageTypeMove       MessageType = "move"
	MessageTypeLegalMoves MessageType = "legalMoves"
	MessageTypeGameState  MessageType = "gameState"
	MessageTypeTurn       MessageType = "turn"
	MessageTypeCheck      MessageType = "check"
	MessageTypeGameOver   MessageType = "gameOver"
	MessageTypeError      MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// LegalMovesRequest asks for the legal destinations of the piece on Square.
type LegalMovesRequest struct {
	Square string `json:"square"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// NewMessage marshals payload into a message of the given type.
func NewMessage(t MessageType, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}
