package games

import (
	"errors"
	"slices"
	"sync"

	"moodlift/pkg/realtime"
)

// DefaultCountdown is the per-question countdown length in ticks.
const DefaultCountdown = 15

var (
	ErrQuizCompleted   = errors.New("games: quiz completed")
	ErrAlreadyAnswered = errors.New("games: question already answered")
	ErrUnknownOption   = errors.New("games: option not offered")
)

// Question is one multiple-choice entry of the quiz bank.
type Question struct {
	Prompt  string   `yaml:"question"`
	Options []string `yaml:"options"`
	Answer  string   `yaml:"answer"`
}

// AnswerRecord is the outcome of one question.
type AnswerRecord struct {
	Prompt   string
	Selected string // empty when the countdown ran out
	Correct  bool
	TimedOut bool
}

// Quiz is the timed quiz state machine. It has no clock: Tick is called once
// per time unit by its driver, and the advance after a selection happens only
// through AdvanceAfterFeedback once the feedback delay has passed.
//
// A pending selection suppresses the countdown expiry path, so a selection
// and an expiry in the same instant advance the question once.
type Quiz struct {
	mu        sync.Mutex
	questions []Question
	index     int
	score     int
	selected  string
	pending   bool
	countdown realtime.Countdown
	completed bool
	answers   []AnswerRecord
}

// NewQuiz shuffles the bank once and starts the first question's countdown.
// A non-positive countdown uses DefaultCountdown.
func NewQuiz(bank []Question, countdown int, shuffle Shuffler) *Quiz {
	if countdown <= 0 {
		countdown = DefaultCountdown
	}
	q := &Quiz{
		questions: shuffled(bank, shuffle),
		countdown: realtime.NewCountdown(countdown),
	}
	q.completed = len(q.questions) == 0
	return q
}

// Tick removes one unit from the countdown. When it reaches zero with no
// selection the question is recorded as timed out and the quiz advances.
// It reports whether the quiz advanced.
func (q *Quiz) Tick() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.completed {
		return false
	}
	if !q.countdown.Tick() || q.pending {
		return false
	}
	q.answers = append(q.answers, AnswerRecord{
		Prompt:   q.questions[q.index].Prompt,
		TimedOut: true,
	})
	q.advanceLocked()
	return true
}

// Select answers the current question. Further input for the question is
// locked and the score goes up by one iff option is the recorded answer. The
// quiz stays on the question until AdvanceAfterFeedback.
func (q *Quiz) Select(option string) (correct bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.completed {
		return false, ErrQuizCompleted
	}
	if q.pending {
		return false, ErrAlreadyAnswered
	}
	cur := q.questions[q.index]
	if !slices.Contains(cur.Options, option) {
		return false, ErrUnknownOption
	}
	correct = option == cur.Answer
	if correct {
		q.score++
	}
	q.selected = option
	q.pending = true
	q.answers = append(q.answers, AnswerRecord{
		Prompt:   cur.Prompt,
		Selected: option,
		Correct:  correct,
	})
	return correct, nil
}

// AdvanceAfterFeedback moves past question index once its feedback has been
// shown. It does nothing unless index is current and has a selection, so a
// feedback timer outliving its question is harmless.
func (q *Quiz) AdvanceAfterFeedback(index int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.completed || !q.pending || index != q.index {
		return false
	}
	q.advanceLocked()
	return true
}

func (q *Quiz) advanceLocked() {
	q.selected = ""
	q.pending = false
	if q.index+1 >= len(q.questions) {
		q.completed = true
		return
	}
	q.index++
	q.countdown.Reset()
}

// Index returns the current question index.
func (q *Quiz) Index() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.index
}

// Completed reports whether the last question has been passed.
func (q *Quiz) Completed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.completed
}

// Result returns the score out of the number of questions.
func (q *Quiz) Result() (score, total int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.score, len(q.questions)
}

// QuizSnapshot is a read-only copy for rendering.
type QuizSnapshot struct {
	Index    int
	Total    int
	Prompt   string
	Options  []string
	Selected string
	Answered bool
	Correct  bool
	// Answer is revealed only once the question is answered.
	Answer    string
	Countdown int
	Score     int
	Completed bool
	Answers   []AnswerRecord
}

// Snapshot returns the current quiz state.
func (q *Quiz) Snapshot() QuizSnapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	s := QuizSnapshot{
		Index:     q.index,
		Total:     len(q.questions),
		Countdown: q.countdown.Remaining,
		Score:     q.score,
		Completed: q.completed,
		Answers:   slices.Clone(q.answers),
	}
	if q.completed {
		return s
	}
	cur := q.questions[q.index]
	s.Prompt = cur.Prompt
	s.Options = slices.Clone(cur.Options)
	if q.pending {
		s.Selected = q.selected
		s.Answered = true
		s.Correct = q.selected == cur.Answer
		s.Answer = cur.Answer
	}
	return s
}
