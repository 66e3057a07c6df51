package game

// PlayerMark represents the mark of a player (X, O) or an empty cell.
type PlayerMark string

// Mode selects who plays O.
type Mode string

// Outcome is derived from a board and never stored.
type Outcome string

const (
	// Player marks
	None    PlayerMark = ""
	PlayerX PlayerMark = "X"
	PlayerO PlayerMark = "O"

	// Game modes
	ModeTwoPlayer  Mode = "two_player"
	ModeVsComputer Mode = "vs_computer"

	// Outcomes
	InProgress Outcome = "in_progress"
	XWins      Outcome = "x_wins"
	OWins      Outcome = "o_wins"
	Draw       Outcome = "draw"

	// BoardSize is the number of cells on the board.
	BoardSize = 9
)

// Board holds the nine cells; index i maps to row i/3, column i%3.
type Board [BoardSize]PlayerMark

// Lines lists every winning line in canonical order: rows, then columns, then diagonals.
var Lines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m == ModeTwoPlayer || m == ModeVsComputer
}

// IsTerminal reports whether the game can no longer accept moves.
func (o Outcome) IsTerminal() bool {
	return o != InProgress
}

// Winner returns the mark that won, or None for a draw or unfinished game.
func (o Outcome) Winner() PlayerMark {
	switch o {
	case XWins:
		return PlayerX
	case OWins:
		return PlayerO
	}
	return None
}

// Opponent returns the other player's mark.
func (m PlayerMark) Opponent() PlayerMark {
	if m == PlayerX {
		return PlayerO
	}
	return PlayerX
}

// Score counts finished games per result.
type Score struct {
	X    int `json:"x"`
	O    int `json:"o"`
	Draw int `json:"draw"`
}

// ApplyMove writes turn into the cell at index and flips the turn.
// The move is rejected, and the inputs returned unchanged, when the index is off the
// board, the cell is taken or the game is already over.
func ApplyMove(board Board, turn PlayerMark, index int) (Board, PlayerMark, bool) {
	if index < 0 || index >= BoardSize {
		return board, turn, false
	}
	if board[index] != None {
		return board, turn, false
	}
	if GetOutcome(board).IsTerminal() {
		return board, turn, false
	}

	board[index] = turn
	return board, turn.Opponent(), true
}

// DetectWinningLine returns the first line fully owned by one mark.
func DetectWinningLine(board Board) ([3]int, bool) {
	for _, line := range Lines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != None && a == b && b == c {
			return line, true
		}
	}
	return [3]int{}, false
}

// GetOutcome derives the outcome of the board.
func GetOutcome(board Board) Outcome {
	if line, ok := DetectWinningLine(board); ok {
		if board[line[0]] == PlayerX {
			return XWins
		}
		return OWins
	}
	if IsBoardFull(board) {
		return Draw
	}
	return InProgress
}

// IsBoardFull checks if every cell is marked.
func IsBoardFull(board Board) bool {
	for _, cell := range board {
		if cell == None {
			return false
		}
	}
	return true
}

// EmptyCells returns the indices of the unmarked cells in ascending order.
func EmptyCells(board Board) []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range board {
		if cell == None {
			cells = append(cells, i)
		}
	}
	return cells
}

// ResetGame returns a fresh board with X to move. The score is carried over unless
// the mode changes.
func ResetGame(previousMode, newMode Mode, score Score) (Board, PlayerMark, Score) {
	if newMode != previousMode {
		score = Score{}
	}
	return Board{}, PlayerX, score
}

// RecordOutcome increments the counter matching a terminal outcome.
func RecordOutcome(score Score, outcome Outcome) Score {
	switch outcome {
	case XWins:
		score.X++
	case OWins:
		score.O++
	case Draw:
		score.Draw++
	}
	return score
}
