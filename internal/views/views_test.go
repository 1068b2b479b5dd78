package views

import (
	"context"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodlift/internal/viewmodel"
)

func TestSessionFragment_EscapesLabel(t *testing.T) {
	out, err := String(context.Background(), SessionFragment(viewmodel.SessionFragment{
		EmotionLabel: "<script>x</script>",
		Glyph:        "🙂",
	}))
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>x</script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestSessionFragment_States(t *testing.T) {
	tests := []struct {
		name    string
		vm      viewmodel.SessionFragment
		want    []string
		notWant []string
	}{
		{
			name: "loading",
			vm:   viewmodel.SessionFragment{Loading: true, EmotionLabel: "sad"},
			want: []string{"Detecting"}, notWant: []string{"sad"},
		},
		{
			name: "no face",
			vm:   viewmodel.SessionFragment{ErrorMessage: "Please position your face properly in the frame."},
			want: []string{"position your face"}, notWant: []string{"Detected Emotion"},
		},
		{
			name: "eligible",
			vm:   viewmodel.SessionFragment{EmotionLabel: "sad", Glyph: "😢", Suggestions: []string{"Take a walk"}, ShowGames: true},
			want: []string{"sad", "😢", "Take a walk", `href="/games"`},
		},
		{
			name: "happy",
			vm:   viewmodel.SessionFragment{EmotionLabel: "happy", Glyph: "😊"},
			want: []string{"happy"}, notWant: []string{`href="/games"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := String(context.Background(), SessionFragment(tt.vm))
			require.NoError(t, err)
			for _, s := range tt.want {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestDetectorPage(t *testing.T) {
	out, err := String(context.Background(), DetectorPage(viewmodel.DetectorPage{
		Layout:          viewmodel.Layout{Title: "Moodlift", Theme: "dark"},
		ViewID:          "abc",
		Presence:        viewmodel.PresenceFragment{State: "unknown", Label: "Looking"},
		FrameIntervalMs: 1000,
	}))
	require.NoError(t, err)
	assert.Contains(t, out, `data-view="abc"`)
	assert.Contains(t, out, `action="/view/abc/capture"`)
	assert.Contains(t, out, `data-theme="dark"`)
	assert.Contains(t, out, `/static/theme.js`)
	assert.Contains(t, out, `/static/detector.js`)
	assert.Contains(t, out, "presence-unknown")
}

func TestBoardFragment_DisablesFilledCells(t *testing.T) {
	vm := viewmodel.BoardFragment{SessionID: "s", Playable: true, Message: "Player Turn: O"}
	vm.Cells[0] = "X"
	out, err := String(context.Background(), BoardFragment(vm))
	require.NoError(t, err)
	assert.Contains(t, out, `action="/games/session/s/move"`)
	assert.Contains(t, out, `disabled>X</button>`)
	assert.Contains(t, out, "Player Turn: O")
}

func TestQuizFragment_Completed(t *testing.T) {
	out, err := String(context.Background(), QuizFragment(viewmodel.QuizFragment{Completed: true, Score: 5, Total: 7}))
	require.NoError(t, err)
	assert.Contains(t, out, "Quiz Completed")
	assert.Contains(t, out, "<strong>5</strong> out of 7")
}

func TestPuzzleFragment_LockedAfterCorrect(t *testing.T) {
	out, err := String(context.Background(), PuzzleFragment(viewmodel.PuzzleFragment{
		SessionID: "s", Number: 1, Total: 7, Clue: "The 🦁👑", Input: "the lion king",
		Result: "✅ Correct!", Locked: true, CanAdvance: true,
	}))
	require.NoError(t, err)
	assert.Contains(t, out, `value="the lion king" disabled`)
	assert.Contains(t, out, "✅ Correct!")
}

func TestStatic(t *testing.T) {
	for _, name := range []string{"detector.js", "games.js", "theme.js", "app.css"} {
		_, err := fs.Stat(Static(), name)
		assert.NoError(t, err, name)
	}
}
