package games

import (
	"errors"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInputLocked is returned when input is edited after a correct check and
// before the next puzzle.
var ErrInputLocked = errors.New("games: input locked until advance")

// Puzzle is one emoji clue and the title it spells.
type Puzzle struct {
	Clue   string `yaml:"emoji"`
	Answer string `yaml:"answer"`
}

// Matches reports whether input names answer. Both sides are trimmed and
// lower-cased; anything short of full equality is a miss.
func Matches(input, answer string) bool {
	return normalizeAnswer(input) == normalizeAnswer(answer)
}

func normalizeAnswer(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// PuzzleGame is the text-matching puzzle state machine.
type PuzzleGame struct {
	mu       sync.Mutex
	puzzles  []Puzzle
	index    int
	input    string
	correct  bool
	attempts int
}

// NewPuzzleGame shuffles the bank once.
func NewPuzzleGame(bank []Puzzle, shuffle Shuffler) *PuzzleGame {
	return &PuzzleGame{puzzles: shuffled(bank, shuffle)}
}

// SetInput replaces the typed answer.
func (p *PuzzleGame) SetInput(input string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.correct {
		return ErrInputLocked
	}
	p.input = input
	return nil
}

// Check records input and compares it with the current answer. A correct
// check locks input until Advance; a wrong one leaves it editable. Retries
// are unbounded.
func (p *PuzzleGame) Check(input string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.correct {
		return true, ErrInputLocked
	}
	if len(p.puzzles) == 0 {
		return false, nil
	}
	p.input = input
	p.attempts++
	p.correct = Matches(input, p.puzzles[p.index].Answer)
	return p.correct, nil
}

// Advance moves to the next puzzle. It is effective only after a correct
// check and never past the last puzzle.
func (p *PuzzleGame) Advance() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.correct || p.index+1 >= len(p.puzzles) {
		return false
	}
	p.index++
	p.input = ""
	p.correct = false
	p.attempts = 0
	return true
}

// Solved reports whether the last puzzle has been answered correctly.
func (p *PuzzleGame) Solved() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.correct && p.index == len(p.puzzles)-1
}

// PuzzleSnapshot is a read-only copy for rendering.
type PuzzleSnapshot struct {
	Index    int
	Total    int
	Clue     string
	Input    string
	Correct  bool
	Attempts int
	Last     bool
	Solved   bool
}

// Snapshot returns the current puzzle state.
func (p *PuzzleGame) Snapshot() PuzzleSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := PuzzleSnapshot{
		Index:    p.index,
		Total:    len(p.puzzles),
		Input:    p.input,
		Correct:  p.correct,
		Attempts: p.attempts,
		Last:     p.index == len(p.puzzles)-1,
	}
	if len(p.puzzles) > 0 {
		s.Clue = p.puzzles[p.index].Clue
		s.Solved = p.correct && s.Last
	}
	return s
}
