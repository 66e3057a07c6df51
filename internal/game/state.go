package game

// Game is the mutable state of one session: board, turn, mode and score.
// It is not safe for concurrent use; callers serialise access.
type Game struct {
	board  Board
	turn   PlayerMark
	mode   Mode
	score  Score
	moves  []int
	scored bool
}

// NewGame starts a session in the given mode with an empty board and a zero score.
func NewGame(mode Mode) *Game {
	return &Game{
		turn: PlayerX,
		mode: mode,
	}
}

// Move applies a move for the player whose turn it is. It returns false when the
// move is rejected. Reaching a terminal outcome updates the score exactly once.
func (g *Game) Move(index int) bool {
	board, turn, ok := ApplyMove(g.board, g.turn, index)
	if !ok {
		return false
	}
	g.board = board
	g.turn = turn
	g.moves = append(g.moves, index)

	if outcome := GetOutcome(g.board); outcome.IsTerminal() && !g.scored {
		g.score = RecordOutcome(g.score, outcome)
		g.scored = true
	}
	return true
}

// Reset clears the board for a new game in mode. Switching modes zeroes the score.
func (g *Game) Reset(mode Mode) {
	g.board, g.turn, g.score = ResetGame(g.mode, mode, g.score)
	g.mode = mode
	g.moves = nil
	g.scored = false
}

func (g *Game) Board() Board {
	return g.board
}

func (g *Game) Turn() PlayerMark {
	return g.turn
}

func (g *Game) Mode() Mode {
	return g.mode
}

func (g *Game) Score() Score {
	return g.score
}

// Outcome is recomputed from the board on every call.
func (g *Game) Outcome() Outcome {
	return GetOutcome(g.board)
}

// WinningLine returns the winning line as a slice, or nil.
func (g *Game) WinningLine() []int {
	line, ok := DetectWinningLine(g.board)
	if !ok {
		return nil
	}
	return line[:]
}

// IsOver reports whether the current game has finished.
func (g *Game) IsOver() bool {
	return g.Outcome().IsTerminal()
}

// IsComputerTurn reports whether the computer is due to play O.
func (g *Game) IsComputerTurn() bool {
	return g.mode == ModeVsComputer && g.turn == PlayerO && !g.IsOver()
}

// State returns a copy of the game that does not share memory with g.
func (g *Game) State() State {
	moves := make([]int, len(g.moves))
	copy(moves, g.moves)
	return State{
		Board:       g.board,
		Turn:        g.turn,
		Mode:        g.mode,
		Score:       g.score,
		Outcome:     g.Outcome(),
		WinningLine: g.WinningLine(),
		Moves:       moves,
	}
}
