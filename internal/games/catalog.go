package games

import "fmt"

// Kind names an offline game.
type Kind string

const (
	KindTicTacToe Kind = "tictactoe"
	KindQuiz      Kind = "quiz"
	KindPuzzle    Kind = "puzzle"
)

// ParseKind validates a kind taken from a URL.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindTicTacToe, KindQuiz, KindPuzzle:
		return k, nil
	}
	return "", fmt.Errorf("games: unknown game %q", s)
}

// OfflineGame is a game played inside the app.
type OfflineGame struct {
	Kind  Kind
	Title string
}

// OnlineGame is an external link opened in a new tab.
type OnlineGame struct {
	Title string
	URL   string
}

// Catalog is everything the games page offers.
type Catalog struct {
	Offline []OfflineGame
	Online  []OnlineGame
}

// DefaultCatalog returns the built-in game list in display order.
func DefaultCatalog() Catalog {
	return Catalog{
		Offline: []OfflineGame{
			{Kind: KindTicTacToe, Title: "❌⭕ Tic Tac Toe"},
			{Kind: KindQuiz, Title: "❓🎓 Campus Chronicles: The Quiz"},
			{Kind: KindPuzzle, Title: "🎬🧩 Movie Emoji Puzzle"},
		},
		Online: []OnlineGame{
			{Title: "🐍 Slither.io", URL: "https://www.slither.io/"},
			{Title: "💣 Minesweeper", URL: "https://minesweeperonline.com/"},
			{Title: "👾 Pac-Man Doodle", URL: "https://www.google.com/logos/2010/pacman10-i.html"},
			{Title: "🔢 2048 Puzzle", URL: "https://play2048.co/"},
			{Title: "🦖 Dinosaur T-Rex Game", URL: "https://trex-runner.com"},
			{Title: "🏏 Doodle Cricket", URL: "https://doodlecricket.github.io/"},
		},
	}
}
