package events

import (
	"ctchen222/tictactoe-web/internal/game"
	"encoding/json"
	"fmt"
)

// Pub/Sub channel constants
const (
	EventsChannel = "channel:events"
)

// Event types
const (
	TypeGameOver    = "game_over"
	TypeGameReset   = "game_reset"
	TypeModeChanged = "mode_changed"
)

// Event represents a session message published via Pub/Sub.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// GameOverPayload is the payload for the "game_over" event.
type GameOverPayload struct {
	SessionID   string       `json:"session_id"`
	Mode        game.Mode    `json:"mode"`
	Outcome     game.Outcome `json:"outcome"`
	WinningLine []int        `json:"winning_line,omitempty"`
	Score       game.Score   `json:"score"`
}

// GameResetPayload is the payload for the "game_reset" and "mode_changed" events.
type GameResetPayload struct {
	SessionID    string    `json:"session_id"`
	PreviousMode game.Mode `json:"previous_mode"`
	Mode         game.Mode `json:"mode"`
}

// New wraps payload into an Event of the given type.
func New(eventType string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{Type: eventType, Payload: raw}, nil
}
