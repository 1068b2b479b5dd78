package viewmodel

// Layout holds data shared by every full page.
type Layout struct {
	Title string
	Theme string
}

// DetectorPage holds data for the mood-check page.
type DetectorPage struct {
	Layout
	ViewID   string
	Session  SessionFragment
	Presence PresenceFragment
	// FrameIntervalMs is how often the page sends a camera frame.
	FrameIntervalMs int
}

// SessionFragment holds data for the capture result panel.
type SessionFragment struct {
	ViewID       string
	Loading      bool
	EmotionLabel string
	ErrorMessage string
	Glyph        string
	Suggestions  []string
	ShowGames    bool
}

// PresenceFragment holds data for the face indicator.
type PresenceFragment struct {
	State string
	Label string
}

// GameLink is one entry of the games catalog.
type GameLink struct {
	Kind   string
	Title  string
	URL    string
	Active bool
}

// GamesPage holds data for the games page. SessionID and Kind are empty
// when no offline game is selected.
type GamesPage struct {
	Layout
	Offline   []GameLink
	Online    []GameLink
	SessionID string
	Kind      string
	Board     BoardFragment
	Quiz      QuizFragment
	Puzzle    PuzzleFragment
}

// BoardFragment holds data for the tic-tac-toe board.
type BoardFragment struct {
	SessionID string
	Cells     [9]string
	Winning   [9]bool
	Status    string
	Message   string
	Playable  bool
}

// QuizOption is one answer button.
type QuizOption struct {
	Text     string
	Selected bool
	// State is "correct" or "wrong" once the question is answered.
	State string
}

// QuizFragment holds data for the quiz panel.
type QuizFragment struct {
	SessionID string
	Number    int
	Total     int
	Prompt    string
	Options   []QuizOption
	Answered  bool
	Countdown int
	Score     int
	Completed bool
}

// PuzzleFragment holds data for the emoji puzzle panel.
type PuzzleFragment struct {
	SessionID  string
	Number     int
	Total      int
	Clue       string
	Input      string
	Result     string
	Locked     bool
	CanAdvance bool
	Solved     bool
}
