package games

import (
	"errors"
	"sync"
)

// Mark is the content of one board cell.
type Mark string

const (
	Empty Mark = ""
	X     Mark = "X"
	O     Mark = "O"
)

// BoardStatus is the board's lifecycle state. Won and Draw are terminal.
type BoardStatus string

const (
	BoardInProgress BoardStatus = "in_progress"
	BoardWon        BoardStatus = "won"
	BoardDraw       BoardStatus = "draw"
)

// ErrIllegalMove is returned for a move on a filled cell, outside the board,
// or after the game ended. The board is unchanged.
var ErrIllegalMove = errors.New("games: illegal move")

// lines lists the winning triples: rows, then columns, then diagonals.
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Evaluate scores a board. The first completed line in fixed order decides
// the winner; a full board with no line is a draw.
func Evaluate(cells [9]Mark) (status BoardStatus, winner Mark, line []int) {
	for _, l := range lines {
		a := cells[l[0]]
		if a != Empty && a == cells[l[1]] && a == cells[l[2]] {
			return BoardWon, a, []int{l[0], l[1], l[2]}
		}
	}
	for _, c := range cells {
		if c == Empty {
			return BoardInProgress, Empty, nil
		}
	}
	return BoardDraw, Empty, nil
}

// Board is a two-player tic-tac-toe game on one screen. X always opens.
type Board struct {
	mu      sync.Mutex
	cells   [9]Mark
	current Mark
	status  BoardStatus
	winner  Mark
	line    []int
}

// NewBoard returns an empty board with X to move.
func NewBoard() *Board {
	b := &Board{}
	b.Reset()
	return b
}

// Move writes the current player's mark at cell, passes the turn and
// re-evaluates the board.
func (b *Board) Move(cell int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.status != BoardInProgress || cell < 0 || cell >= len(b.cells) || b.cells[cell] != Empty {
		return ErrIllegalMove
	}
	b.cells[cell] = b.current
	if b.current == X {
		b.current = O
	} else {
		b.current = X
	}
	b.status, b.winner, b.line = Evaluate(b.cells)
	return nil
}

// Reset clears the board and gives X the move.
func (b *Board) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cells = [9]Mark{}
	b.current = X
	b.status = BoardInProgress
	b.winner = Empty
	b.line = nil
}

// BoardSnapshot is a read-only copy for rendering.
type BoardSnapshot struct {
	Cells   [9]Mark
	Current Mark
	Status  BoardStatus
	Winner  Mark
	// Line holds the winning cells when Status is BoardWon.
	Line []int
}

// Snapshot returns the current board.
func (b *Board) Snapshot() BoardSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BoardSnapshot{
		Cells:   b.cells,
		Current: b.current,
		Status:  b.status,
		Winner:  b.winner,
		Line:    append([]int(nil), b.line...),
	}
}
