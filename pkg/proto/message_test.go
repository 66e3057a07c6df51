package proto

import (
	"ctchen222/tictactoe-web/internal/game"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusText(t *testing.T) {
	tests := []struct {
		name  string
		state game.State
		want  string
	}{
		{"Two player X", game.State{Mode: game.ModeTwoPlayer, Turn: game.PlayerX, Outcome: game.InProgress}, "Turn: X"},
		{"Two player O", game.State{Mode: game.ModeTwoPlayer, Turn: game.PlayerO, Outcome: game.InProgress}, "Turn: O"},
		{"Vs computer human", game.State{Mode: game.ModeVsComputer, Turn: game.PlayerX, Outcome: game.InProgress}, "Your turn (X)"},
		{"Vs computer bot", game.State{Mode: game.ModeVsComputer, Turn: game.PlayerO, Outcome: game.InProgress}, "Computer's turn (O)"},
		{"Winner", game.State{Mode: game.ModeTwoPlayer, Turn: game.PlayerO, Outcome: game.XWins}, "Winner: X"},
		{"Draw", game.State{Mode: game.ModeVsComputer, Turn: game.PlayerO, Outcome: game.Draw}, "Draw!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusText(tt.state))
		})
	}
}

func TestNewUpdateMessage(t *testing.T) {
	g := game.NewGame(game.ModeTwoPlayer)
	for _, cell := range []int{0, 3, 1, 4, 2} {
		g.Move(cell)
	}

	msg := NewUpdateMessage("s1", g.State())

	assert.Equal(t, TypeUpdate, msg.Type)
	assert.Equal(t, "s1", msg.SessionID)
	assert.Len(t, msg.Board, game.BoardSize)
	assert.Equal(t, game.PlayerX, msg.Winner)
	assert.Equal(t, []int{0, 1, 2}, msg.WinningLine)
	assert.Equal(t, game.Score{X: 1}, *msg.Score)
	assert.Equal(t, "Winner: X", msg.Status)
}
