package games

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"moodlift/pkg/realtime"
)

// Events published on a game session's broadcaster.
const (
	EventBoard  = "board"
	EventQuiz   = "quiz"
	EventPuzzle = "puzzle"
)

// Settings configures new game sessions.
type Settings struct {
	QuizCountdown int
	QuizTick      time.Duration
	FeedbackDelay time.Duration
	// NewShuffler returns the shuffler for one session. Nil shuffles randomly.
	NewShuffler func() Shuffler
	// Banks overrides the embedded content when it has any questions or
	// puzzles.
	Banks Banks
}

func (s Settings) withDefaults() Settings {
	if s.QuizCountdown <= 0 {
		s.QuizCountdown = DefaultCountdown
	}
	if s.QuizTick <= 0 {
		s.QuizTick = time.Second
	}
	if s.FeedbackDelay <= 0 {
		s.FeedbackDelay = time.Second
	}
	if s.NewShuffler == nil {
		s.NewShuffler = Random
	}
	if len(s.Banks.Questions) == 0 && len(s.Banks.Puzzles) == 0 {
		s.Banks = DefaultBanks()
	}
	return s
}

// Session is one selected offline game. Exactly one of Board, Quiz and
// Puzzle is set, matching Kind.
type Session struct {
	ID        string
	Kind      Kind
	CreatedAt time.Time

	Board  *Board
	Quiz   *QuizSession
	Puzzle *PuzzleGame

	lastSeen atomic.Int64
}

// Touch records client activity for idle reaping.
func (s *Session) Touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// LastSeen returns the time of the last client activity.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Store holds live game sessions and delegates to realtime.RoomStore for
// lookup, broadcast and the quiz timing loop.
type Store struct {
	r        *realtime.RoomStore[*Session]
	settings Settings
	log      *slog.Logger
}

// NewStore creates an empty session store.
func NewStore(settings Settings, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		r:        realtime.NewRoomStore[*Session](),
		settings: settings.withDefaults(),
		log:      log,
	}
}

// Create starts a session for kind. A quiz session starts its countdown
// loop right away.
func (s *Store) Create(kind Kind) *Session {
	now := time.Now().UTC()
	sess := &Session{
		ID:        uuid.NewString(),
		Kind:      kind,
		CreatedAt: now,
	}
	sess.Touch(now)
	switch kind {
	case KindTicTacToe:
		sess.Board = NewBoard()
	case KindQuiz:
		q := NewQuiz(s.settings.Banks.Questions, s.settings.QuizCountdown, s.settings.NewShuffler())
		sess.Quiz = newQuizSession(q, s.settings.QuizTick, s.settings.FeedbackDelay, now)
	case KindPuzzle:
		sess.Puzzle = NewPuzzleGame(s.settings.Banks.Puzzles, s.settings.NewShuffler())
	}
	s.r.Create(sess.ID, sess)
	if sess.Quiz != nil {
		s.r.RunLoop(sess.ID, quizTick)
	}
	s.log.Debug("game session created", "session", sess.ID, "kind", string(kind))
	return sess
}

func quizTick(sess *Session, now time.Time) (time.Time, []string, bool) {
	next, changed, done := sess.Quiz.step(now)
	var events []string
	if changed {
		events = []string{EventQuiz}
	}
	return next, events, done
}

// Get returns a session by ID.
func (s *Store) Get(id string) (*Session, bool) {
	room, ok := s.r.Get(id)
	if !ok {
		return nil, false
	}
	return room.State, true
}

// Broadcaster returns the SSE broadcaster for a session.
func (s *Store) Broadcaster(id string) (*realtime.Broadcaster, bool) {
	return s.r.Broadcaster(id)
}

// Publish notifies subscribers of a session update.
func (s *Store) Publish(id, event string) {
	s.r.Publish(id, event)
}

// Wake makes the session's timing loop recompute now, e.g. after a quiz
// selection scheduled its feedback advance.
func (s *Store) Wake(id string) {
	s.r.Wake(id)
}

// Running reports whether the session's timing loop is active.
func (s *Store) Running(id string) bool {
	return s.r.Running(id)
}

// Remove discards a session. Its timing loop is stopped before Remove
// returns and its streams end.
func (s *Store) Remove(id string) bool {
	_, ok := s.r.Remove(id)
	if ok {
		s.log.Debug("game session removed", "session", id)
	}
	return ok
}

// ReapIdle removes sessions with no client activity for longer than maxIdle
// and returns how many were removed.
func (s *Store) ReapIdle(now time.Time, maxIdle time.Duration) int {
	removed := 0
	for _, id := range s.r.IDs() {
		sess, ok := s.Get(id)
		if !ok || now.Sub(sess.LastSeen()) <= maxIdle {
			continue
		}
		if s.Remove(id) {
			removed++
		}
	}
	return removed
}

// CloseAll discards every session.
func (s *Store) CloseAll() {
	for _, id := range s.r.IDs() {
		s.Remove(id)
	}
}

// Len reports how many sessions are live.
func (s *Store) Len() int {
	return s.r.Len()
}
