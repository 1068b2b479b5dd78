package views

import (
	"context"

	"github.com/a-h/templ"

	"moodlift/internal/viewmodel"
)

// GamesPage lists the catalog and, when one is selected, the active offline
// game.
func GamesPage(vm viewmodel.GamesPage) templ.Component {
	body := component(func(ctx context.Context, h *html) {
		h.raw(`<h1 class="title">🎮 Uplift Your Mood with Games!</h1>`)
		h.raw(`<p class="subtitle">Here are some fun and stress-relieving games you can enjoy to brighten your day!</p>`)

		h.raw(`<h2 class="title is-4">🌐 Online Games</h2><div class="buttons">`)
		for _, g := range vm.Online {
			h.raw(`<a class="button is-info" target="_blank" rel="noreferrer"`)
			h.attr("href", g.URL)
			h.raw(`>`)
			h.text(g.Title)
			h.raw(`</a>`)
		}
		h.raw(`</div>`)

		h.raw(`<h2 class="title is-4">📴 Offline Games</h2><div class="buttons">`)
		for _, g := range vm.Offline {
			h.raw(`<form method="POST"`)
			if g.Active {
				// Selecting the active game again deselects it.
				h.attr("action", "/games/session/"+vm.SessionID+"/close")
			} else {
				h.attr("action", "/games/"+g.Kind)
			}
			h.raw(`>`)
			if vm.SessionID != "" {
				h.raw(`<input type="hidden" name="replace"`)
				h.attr("value", vm.SessionID)
				h.raw(`>`)
			}
			h.raw(`<button type="submit"`)
			if g.Active {
				h.attr("class", "button is-warning is-selected")
			} else {
				h.attr("class", "button is-warning is-outlined")
			}
			h.raw(`>`)
			h.text(g.Title)
			h.raw(`</button></form>`)
		}
		h.raw(`</div>`)

		if vm.SessionID == "" {
			return
		}
		h.raw(`<div id="game" class="box"`)
		h.attr("data-session", vm.SessionID)
		h.raw(`>`)
		switch vm.Kind {
		case "tictactoe":
			h.render(ctx, BoardFragment(vm.Board))
		case "quiz":
			h.render(ctx, QuizFragment(vm.Quiz))
		case "puzzle":
			h.render(ctx, PuzzleFragment(vm.Puzzle))
		}
		h.raw(`</div>`)
	})
	if vm.SessionID == "" {
		return Page(vm.Layout, body)
	}
	return Page(vm.Layout, body, "games.js")
}

func actionForm(h *html, sessionID, action string) {
	h.raw(`<form class="game-action" method="POST"`)
	h.attr("action", "/games/session/"+sessionID+"/"+action)
	h.raw(`>`)
}

// BoardFragment renders the tic-tac-toe board.
func BoardFragment(vm viewmodel.BoardFragment) templ.Component {
	return component(func(_ context.Context, h *html) {
		h.raw(`<h2 class="title is-4">❌⭕ Tic Tac Toe</h2><div class="board">`)
		for i, cell := range vm.Cells {
			actionForm(h, vm.SessionID, "move")
			h.raw(`<input type="hidden" name="cell"`)
			h.attr("value", itoa(i))
			h.raw(`><button type="submit"`)
			class := "button cell"
			if vm.Winning[i] {
				class += " is-success"
			}
			h.attr("class", class)
			if !vm.Playable || cell != "" {
				h.raw(` disabled`)
			}
			h.raw(`>`)
			h.text(cell)
			h.raw(`</button></form>`)
		}
		h.raw(`</div><p class="is-size-5 mt-3 board-status">`)
		h.text(vm.Message)
		h.raw(`</p>`)
		actionForm(h, vm.SessionID, "reset")
		h.raw(`<button class="button is-link mt-3" type="submit">🔄 Restart</button></form>`)
	})
}

// QuizFragment renders the current quiz question or the final score.
func QuizFragment(vm viewmodel.QuizFragment) templ.Component {
	return component(func(_ context.Context, h *html) {
		h.raw(`<h2 class="title is-4">❓🎓 Campus Chronicles: The Quiz</h2>`)
		if vm.Completed {
			h.raw(`<p class="title is-3">🎉 Quiz Completed!</p><p class="quiz-result">You scored <strong>`)
			h.text(itoa(vm.Score))
			h.raw(`</strong> out of `)
			h.text(itoa(vm.Total))
			h.raw(`</p>`)
			return
		}
		h.raw(`<p class="has-text-right quiz-timer">⏱️ Time left: <strong>`)
		h.text(itoa(vm.Countdown))
		h.raw(`s</strong></p><p class="has-text-grey">Question `)
		h.text(itoa(vm.Number) + "/" + itoa(vm.Total))
		h.raw(`</p><p class="is-size-5 mb-3">`)
		h.text(vm.Prompt)
		h.raw(`</p>`)
		for _, opt := range vm.Options {
			actionForm(h, vm.SessionID, "select")
			h.raw(`<input type="hidden" name="option"`)
			h.attr("value", opt.Text)
			h.raw(`><button type="submit"`)
			class := "button is-fullwidth mb-2"
			switch opt.State {
			case "correct":
				class += " is-success"
			case "wrong":
				class += " is-danger"
			}
			h.attr("class", class)
			if vm.Answered {
				h.raw(` disabled`)
			}
			h.raw(`>`)
			h.text(opt.Text)
			h.raw(`</button></form>`)
		}
		h.raw(`<p class="mt-2">Score: `)
		h.text(itoa(vm.Score))
		h.raw(`</p>`)
	})
}

// PuzzleFragment renders the emoji puzzle.
func PuzzleFragment(vm viewmodel.PuzzleFragment) templ.Component {
	return component(func(_ context.Context, h *html) {
		h.raw(`<h2 class="title is-4">🎬 Guess the Movie Name from Emoji</h2>`)
		if vm.Total == 0 {
			h.raw(`<p>No puzzles available.</p>`)
			return
		}
		h.raw(`<p class="has-text-grey">Puzzle `)
		h.text(itoa(vm.Number) + "/" + itoa(vm.Total))
		h.raw(`</p><p class="is-size-2 mb-3">`)
		h.text(vm.Clue)
		h.raw(`</p>`)
		actionForm(h, vm.SessionID, "check")
		h.raw(`<input class="input mb-2" name="input" placeholder="Type the movie name..." autocomplete="off"`)
		h.attr("value", vm.Input)
		if vm.Locked {
			h.raw(` disabled`)
		}
		h.raw(`><button class="button is-link" type="submit"`)
		if vm.Locked {
			h.raw(` disabled`)
		}
		h.raw(`>Check</button></form>`)
		actionForm(h, vm.SessionID, "advance")
		h.raw(`<button class="button is-success mt-2" type="submit"`)
		if !vm.CanAdvance {
			h.raw(` disabled`)
		}
		h.raw(`>Next</button></form>`)
		if vm.Result != "" {
			h.raw(`<p class="is-size-5 has-text-weight-bold mt-3 puzzle-result">`)
			h.text(vm.Result)
			h.raw(`</p>`)
		}
		if vm.Solved {
			h.raw(`<p class="mt-2">🏁 All puzzles solved!</p>`)
		}
	})
}
