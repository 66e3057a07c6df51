package bot

import (
	"ctchen222/tictactoe-web/internal/game"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSource always returns the same offset and remembers the last bound it saw.
type fixedSource struct {
	offset  int
	lastMax int
}

func (s *fixedSource) IntN(n int) int {
	s.lastMax = n
	return s.offset
}

func TestChooseMove(t *testing.T) {
	t.Run("Only one spot left", func(t *testing.T) {
		board := game.Board{
			game.PlayerX, game.PlayerO, game.PlayerX,
			game.PlayerO, game.PlayerX, game.PlayerO,
			game.PlayerO, game.None, game.PlayerX,
		}
		src := rand.New(rand.NewPCG(1, 2))
		for range 20 {
			idx, ok := ChooseMove(board, src)
			require.True(t, ok)
			assert.Equal(t, 7, idx)
		}
	})

	t.Run("Full board", func(t *testing.T) {
		board := game.Board{
			game.PlayerX, game.PlayerO, game.PlayerX,
			game.PlayerX, game.PlayerO, game.PlayerO,
			game.PlayerO, game.PlayerX, game.PlayerX,
		}
		idx, ok := ChooseMove(board, &fixedSource{})
		assert.False(t, ok)
		assert.Equal(t, -1, idx)
	})

	t.Run("Draws over empty cells only", func(t *testing.T) {
		board := game.Board{game.PlayerX, game.None, game.PlayerO, game.None, game.PlayerX}
		// Empty cells are 1, 3, 5, 6, 7, 8.
		src := &fixedSource{offset: 2}
		idx, ok := ChooseMove(board, src)
		require.True(t, ok)
		assert.Equal(t, 5, idx)
		assert.Equal(t, 6, src.lastMax)
	})

	t.Run("Does not prefer a winning cell", func(t *testing.T) {
		// O could win at 2, the pick still follows the source.
		board := game.Board{
			game.PlayerO, game.PlayerO, game.None,
			game.PlayerX, game.PlayerX, game.None,
			game.PlayerX, game.None, game.None,
		}
		idx, ok := ChooseMove(board, &fixedSource{offset: 3})
		require.True(t, ok)
		assert.Equal(t, 8, idx)
	})

	t.Run("Every empty cell is reachable", func(t *testing.T) {
		src := rand.New(rand.NewPCG(42, 7))
		seen := make(map[int]bool)
		for range 500 {
			idx, ok := ChooseMove(game.Board{}, src)
			require.True(t, ok)
			require.GreaterOrEqual(t, idx, 0)
			require.Less(t, idx, game.BoardSize)
			seen[idx] = true
		}
		assert.Len(t, seen, game.BoardSize)
	})
}

func TestBotMoveCalculator(t *testing.T) {
	calc := NewBotMoveCalculator(&fixedSource{offset: 0})
	idx, ok := calc.CalculateNextMove(game.Board{0: game.PlayerX})
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	def := NewBotMoveCalculator(nil)
	idx, ok = def.CalculateNextMove(game.Board{})
	require.True(t, ok)
	assert.Contains(t, game.EmptyCells(game.Board{}), idx)
}
