package games

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(Settings{
		QuizCountdown: 20,
		QuizTick:      5 * time.Millisecond,
		FeedbackDelay: 10 * time.Millisecond,
		NewShuffler:   func() Shuffler { return Identity },
		Banks:         Banks{Questions: testQuestions()[:2], Puzzles: testPuzzles()},
	}, nil)
	t.Cleanup(s.CloseAll)
	return s
}

func TestStore_CreatePerKind(t *testing.T) {
	s := testStore(t)

	board := s.Create(KindTicTacToe)
	require.NotNil(t, board.Board)
	assert.Nil(t, board.Quiz)
	assert.False(t, s.Running(board.ID))

	puzzle := s.Create(KindPuzzle)
	require.NotNil(t, puzzle.Puzzle)
	assert.Equal(t, "The 🦁👑", puzzle.Puzzle.Snapshot().Clue)

	quiz := s.Create(KindQuiz)
	require.NotNil(t, quiz.Quiz)
	assert.True(t, s.Running(quiz.ID))

	got, ok := s.Get(quiz.ID)
	require.True(t, ok)
	assert.Same(t, quiz, got)
	assert.Equal(t, 3, s.Len())
}

func TestStore_QuizRunsToCompletion(t *testing.T) {
	s := testStore(t)
	sess := s.Create(KindQuiz)
	hub, ok := s.Broadcaster(sess.ID)
	require.True(t, ok)
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	_, err := sess.Quiz.Select("a", time.Now().UTC())
	require.NoError(t, err)
	s.Wake(sess.ID)

	select {
	case ev := <-ch:
		assert.Equal(t, EventQuiz, ev)
	case <-time.After(time.Second):
		t.Fatal("no quiz event")
	}

	require.Eventually(t, func() bool { return !s.Running(sess.ID) }, 2*time.Second, time.Millisecond)
	snap := sess.Quiz.Snapshot()
	assert.True(t, snap.Completed)
	assert.Equal(t, 1, snap.Score)
	require.Len(t, snap.Answers, 2)
	assert.True(t, snap.Answers[1].TimedOut)
}

func TestStore_RemoveStopsQuizLoop(t *testing.T) {
	s := NewStore(Settings{QuizTick: time.Hour, NewShuffler: func() Shuffler { return Identity }}, nil)
	sess := s.Create(KindQuiz)
	hub, _ := s.Broadcaster(sess.ID)
	ch := hub.Subscribe()
	require.True(t, s.Running(sess.ID))

	require.True(t, s.Remove(sess.ID))
	assert.False(t, s.Running(sess.ID))
	_, open := <-ch
	assert.False(t, open)

	before := sess.Quiz.Snapshot()
	assert.Equal(t, DefaultCountdown, before.Countdown)
	assert.False(t, s.Remove(sess.ID))
	_, ok := s.Get(sess.ID)
	assert.False(t, ok)
}

func TestStore_ReapIdle(t *testing.T) {
	s := testStore(t)
	stale := s.Create(KindTicTacToe)
	quiz := s.Create(KindQuiz)
	fresh := s.Create(KindPuzzle)

	now := time.Now().Add(time.Hour)
	fresh.Touch(now)

	assert.Equal(t, 2, s.ReapIdle(now, time.Minute))
	assert.Equal(t, 1, s.Len())
	_, ok := s.Get(stale.ID)
	assert.False(t, ok)
	assert.False(t, s.Running(quiz.ID))
	_, ok = s.Get(fresh.ID)
	assert.True(t, ok)

	assert.Zero(t, s.ReapIdle(now, time.Minute))
}
