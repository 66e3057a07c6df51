package proto

import (
	"ctchen222/tictactoe-web/internal/game"
	"fmt"
)

// Message types
const (
	TypeMove   = "move"
	TypeReset  = "reset"
	TypeUpdate = "update"
	TypeError  = "error"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type     string `json:"type" validate:"required,oneof=move reset"`
	Position *int   `json:"position,omitempty" validate:"required_if=Type move"`
	Mode     string `json:"mode,omitempty" validate:"omitempty,game_mode"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type        string            `json:"type" validate:"required"`
	Reason      string            `json:"reason,omitempty"`
	SessionID   string            `json:"session_id,omitempty"`
	Board       []game.PlayerMark `json:"board,omitempty"`
	Next        game.PlayerMark   `json:"next,omitempty"`
	Mode        game.Mode         `json:"mode,omitempty"`
	Outcome     game.Outcome      `json:"outcome,omitempty"`
	Winner      game.PlayerMark   `json:"winner,omitempty"`
	WinningLine []int             `json:"winning_line,omitempty"`
	Score       *game.Score       `json:"score,omitempty"`
	Status      string            `json:"status,omitempty"`
}

// NewUpdateMessage builds the "update" message sent after every state change.
func NewUpdateMessage(sessionID string, state game.State) *ServerToClientMessage {
	score := state.Score
	return &ServerToClientMessage{
		Type:        TypeUpdate,
		SessionID:   sessionID,
		Board:       game.BoardAsSlice(state.Board),
		Next:        state.Turn,
		Mode:        state.Mode,
		Outcome:     state.Outcome,
		Winner:      state.Outcome.Winner(),
		WinningLine: state.WinningLine,
		Score:       &score,
		Status:      StatusText(state),
	}
}

// StatusText is the one-line status shown above the board.
func StatusText(state game.State) string {
	switch state.Outcome {
	case game.XWins, game.OWins:
		return fmt.Sprintf("Winner: %s", state.Outcome.Winner())
	case game.Draw:
		return "Draw!"
	}

	if state.Mode == game.ModeVsComputer {
		if state.Turn == game.PlayerX {
			return "Your turn (X)"
		}
		return "Computer's turn (O)"
	}
	return fmt.Sprintf("Turn: %s", state.Turn)
}
