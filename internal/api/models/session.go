package models

import (
	"ctchen222/tictactoe-web/internal/game"
	"ctchen222/tictactoe-web/internal/repository"
)

// CreateSessionRequest defines the structure for opening a session.
type CreateSessionRequest struct {
	Mode string `json:"mode" binding:"omitempty,oneof=two_player vs_computer"`
}

// MoveRequest defines the structure for a move. Index is a pointer so that cell 0
// passes the required check.
type MoveRequest struct {
	Index *int `json:"index" binding:"required"`
}

// ResetRequest defines the structure for a restart or mode change.
type ResetRequest struct {
	Mode string `json:"mode" binding:"omitempty,oneof=two_player vs_computer"`
}

// GameState is the JSON view of a game.
type GameState struct {
	Board       []game.PlayerMark `json:"board"`
	Next        game.PlayerMark   `json:"next"`
	Mode        game.Mode         `json:"mode"`
	Outcome     game.Outcome      `json:"outcome"`
	Winner      game.PlayerMark   `json:"winner,omitempty"`
	WinningLine []int             `json:"winning_line,omitempty"`
	Score       game.Score        `json:"score"`
	Status      string            `json:"status"`
}

// SessionResponse is returned when a session is opened.
type SessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	State     GameState `json:"state"`
}

// MoveResponse reports whether the move was taken and the resulting state.
type MoveResponse struct {
	Accepted bool      `json:"accepted"`
	State    GameState `json:"state"`
}

// HistoryResponse lists finished games, newest first.
type HistoryResponse struct {
	Games []repository.GameRecord `json:"games"`
}
