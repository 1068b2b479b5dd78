package games

import (
	"sync"
	"time"

	"moodlift/pkg/realtime"
)

// QuizSession drives a Quiz against wall-clock time: one countdown tick per
// interval, and the post-selection advance once the feedback delay is over.
// All engine mutations go through the session lock, so a tick and a
// selection never interleave.
type QuizSession struct {
	mu            sync.Mutex
	quiz          *Quiz
	cadence       realtime.Cadence
	feedbackDelay time.Duration

	feedbackPending bool
	feedbackIndex   int
	feedbackDue     time.Time
}

func newQuizSession(q *Quiz, tick, feedbackDelay time.Duration, now time.Time) *QuizSession {
	s := &QuizSession{
		quiz:          q,
		cadence:       realtime.Cadence{Interval: tick},
		feedbackDelay: feedbackDelay,
	}
	if !q.Completed() {
		s.cadence.Start(now)
	}
	return s
}

// Select answers the current question and schedules the advance for
// now plus the feedback delay.
func (s *QuizSession) Select(option string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := s.quiz.Index()
	correct, err := s.quiz.Select(option)
	if err != nil {
		return false, err
	}
	s.feedbackPending = true
	s.feedbackIndex = index
	s.feedbackDue = now.Add(s.feedbackDelay)
	return correct, nil
}

// step applies every transition due by now and returns when it wants to run
// again. done is true once the quiz is completed.
func (s *QuizSession) step(now time.Time) (next time.Time, changed, done bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.feedbackPending && !now.Before(s.feedbackDue) {
		s.feedbackPending = false
		if s.quiz.AdvanceAfterFeedback(s.feedbackIndex) {
			s.cadence.Start(now)
		}
		changed = true
	}
	for n := s.cadence.Due(now); n > 0; n-- {
		changed = true
		if s.quiz.Tick() {
			// New question: its countdown starts from now.
			s.cadence.Start(now)
			break
		}
	}
	if s.quiz.Completed() {
		s.cadence.Stop()
		return time.Time{}, changed, true
	}
	next, _ = s.cadence.Next()
	if s.feedbackPending && s.feedbackDue.Before(next) {
		next = s.feedbackDue
	}
	return next, changed, false
}

// Snapshot returns the quiz state.
func (s *QuizSession) Snapshot() QuizSnapshot {
	return s.quiz.Snapshot()
}

// Result returns the score out of the number of questions.
func (s *QuizSession) Result() (score, total int) {
	return s.quiz.Result()
}
