package bot

import (
	"ctchen222/tictactoe-web/internal/game"
	"math/rand/v2"
	"sync"
)

// Source supplies the randomness behind move selection.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int {
	return rand.IntN(n)
}

// BotMoveCalculator implements the room.MoveCalculator interface.
type BotMoveCalculator struct {
	mu  sync.Mutex
	src Source
}

// NewBotMoveCalculator creates a calculator drawing from src. A nil src uses the
// process-wide generator.
func NewBotMoveCalculator(src Source) *BotMoveCalculator {
	if src == nil {
		src = globalSource{}
	}
	return &BotMoveCalculator{src: src}
}

// CalculateNextMove calls ChooseMove under a lock so the calculator can be shared
// between rooms even when src is not safe for concurrent use.
func (c *BotMoveCalculator) CalculateNextMove(board game.Board) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ChooseMove(board, c.src)
}

// ChooseMove picks an empty cell uniformly at random. It returns false when the
// board is full. There is no lookahead: a winning or blocking cell is as likely as
// any other.
func ChooseMove(board game.Board, src Source) (int, bool) {
	availableMoves := game.EmptyCells(board)
	if len(availableMoves) == 0 {
		return -1, false // No moves left
	}
	return availableMoves[src.IntN(len(availableMoves))], true
}
