package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"moodlift/internal/games"
	"moodlift/internal/theme"
	"moodlift/internal/viewmodel"
	"moodlift/internal/views"
)

// GamesHandler serves the games page and the offline game actions. Every
// action answers with the game's fresh fragment and publishes it to the
// session stream.
type GamesHandler struct {
	store   *games.Store
	theme   *theme.Preference
	catalog games.Catalog
	log     *slog.Logger
}

func NewGamesHandler(store *games.Store, pref *theme.Preference, log *slog.Logger) *GamesHandler {
	if log == nil {
		log = slog.Default()
	}
	return &GamesHandler{store: store, theme: pref, catalog: games.DefaultCatalog(), log: log}
}

func (h *GamesHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Get("/games", h.index)
		r.Post("/games/{kind}", h.start)
		r.Get("/games/session/{id}", h.page)
		r.Get("/games/session/{id}/fragment", h.fragment)
		r.Post("/games/session/{id}/move", h.move)
		r.Post("/games/session/{id}/reset", h.reset)
		r.Post("/games/session/{id}/select", h.selectOption)
		r.Post("/games/session/{id}/input", h.input)
		r.Post("/games/session/{id}/check", h.check)
		r.Post("/games/session/{id}/advance", h.advance)
		r.Post("/games/session/{id}/close", h.closeSession)
	})
	r.Get("/games/session/{id}/stream", h.stream)
}

func (h *GamesHandler) index(w http.ResponseWriter, r *http.Request) {
	render(w, r, views.GamesPage(h.pageModel(nil)))
}

func (h *GamesHandler) start(w http.ResponseWriter, r *http.Request) {
	kind, err := games.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	// Only one offline game is active per page; switching discards the old one.
	if prev := r.FormValue("replace"); prev != "" {
		h.store.Remove(prev)
	}
	sess := h.store.Create(kind)
	http.Redirect(w, r, "/games/session/"+sess.ID, http.StatusSeeOther)
}

func (h *GamesHandler) page(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.store.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Redirect(w, r, "/games", http.StatusSeeOther)
		return
	}
	sess.Touch(time.Now())
	render(w, r, views.GamesPage(h.pageModel(sess)))
}

func (h *GamesHandler) pageModel(sess *games.Session) viewmodel.GamesPage {
	vm := viewmodel.GamesPage{
		Layout: viewmodel.Layout{Title: "Moodlift games", Theme: string(h.theme.Mode())},
	}
	for _, g := range h.catalog.Online {
		vm.Online = append(vm.Online, viewmodel.GameLink{Title: g.Title, URL: g.URL})
	}
	for _, g := range h.catalog.Offline {
		vm.Offline = append(vm.Offline, viewmodel.GameLink{
			Kind:   string(g.Kind),
			Title:  g.Title,
			Active: sess != nil && sess.Kind == g.Kind,
		})
	}
	if sess == nil {
		return vm
	}
	vm.SessionID = sess.ID
	vm.Kind = string(sess.Kind)
	switch sess.Kind {
	case games.KindTicTacToe:
		vm.Board = toBoardFragment(sess.ID, sess.Board.Snapshot())
	case games.KindQuiz:
		vm.Quiz = toQuizFragment(sess.ID, sess.Quiz.Snapshot())
	case games.KindPuzzle:
		vm.Puzzle = toPuzzleFragment(sess.ID, sess.Puzzle.Snapshot())
	}
	return vm
}

func (h *GamesHandler) lookup(w http.ResponseWriter, r *http.Request, kind games.Kind) (*games.Session, bool) {
	sess, ok := h.store.Get(chi.URLParam(r, "id"))
	if !ok || (kind != "" && sess.Kind != kind) {
		http.NotFound(w, r)
		return nil, false
	}
	sess.Touch(time.Now())
	return sess, true
}

func (h *GamesHandler) fragment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r, "")
	if !ok {
		return
	}
	c, _ := sessionFragment(sess)
	render(w, r, c)
}

// respond publishes the session's event and answers with its fragment.
func (h *GamesHandler) respond(w http.ResponseWriter, r *http.Request, sess *games.Session) {
	c, event := sessionFragment(sess)
	h.store.Publish(sess.ID, event)
	render(w, r, c)
}

func (h *GamesHandler) move(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r, games.KindTicTacToe)
	if !ok {
		return
	}
	cell, err := strconv.Atoi(r.FormValue("cell"))
	if err != nil {
		http.Error(w, "invalid cell", http.StatusBadRequest)
		return
	}
	if err := sess.Board.Move(cell); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	h.respond(w, r, sess)
}

func (h *GamesHandler) reset(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r, games.KindTicTacToe)
	if !ok {
		return
	}
	sess.Board.Reset()
	h.respond(w, r, sess)
}

func (h *GamesHandler) selectOption(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r, games.KindQuiz)
	if !ok {
		return
	}
	_, err := sess.Quiz.Select(r.FormValue("option"), time.Now().UTC())
	switch {
	case errors.Is(err, games.ErrUnknownOption):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	// The loop has to pick up the feedback deadline.
	h.store.Wake(sess.ID)
	h.respond(w, r, sess)
}

func (h *GamesHandler) input(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r, games.KindPuzzle)
	if !ok {
		return
	}
	if err := sess.Puzzle.SetInput(r.FormValue("input")); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GamesHandler) check(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r, games.KindPuzzle)
	if !ok {
		return
	}
	if _, err := sess.Puzzle.Check(r.FormValue("input")); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	h.respond(w, r, sess)
}

func (h *GamesHandler) advance(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r, games.KindPuzzle)
	if !ok {
		return
	}
	sess.Puzzle.Advance()
	h.respond(w, r, sess)
}

func (h *GamesHandler) closeSession(w http.ResponseWriter, r *http.Request) {
	h.store.Remove(chi.URLParam(r, "id"))
	http.Redirect(w, r, "/games", http.StatusSeeOther)
}

func (h *GamesHandler) stream(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r, "")
	if !ok {
		return
	}
	hub, ok := h.store.Broadcaster(sess.ID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, event := sessionFragment(sess)
	stream(w, r, hub, []string{event}, func(e string) (templ.Component, bool) {
		c, own := sessionFragment(sess)
		return c, e == own
	}, sess.Touch)
}

// sessionFragment renders the session's game and names the event its
// updates are published under.
func sessionFragment(sess *games.Session) (templ.Component, string) {
	switch sess.Kind {
	case games.KindTicTacToe:
		return views.BoardFragment(toBoardFragment(sess.ID, sess.Board.Snapshot())), games.EventBoard
	case games.KindQuiz:
		return views.QuizFragment(toQuizFragment(sess.ID, sess.Quiz.Snapshot())), games.EventQuiz
	default:
		return views.PuzzleFragment(toPuzzleFragment(sess.ID, sess.Puzzle.Snapshot())), games.EventPuzzle
	}
}

func toBoardFragment(id string, snap games.BoardSnapshot) viewmodel.BoardFragment {
	vm := viewmodel.BoardFragment{
		SessionID: id,
		Status:    string(snap.Status),
		Playable:  snap.Status == games.BoardInProgress,
	}
	for i, c := range snap.Cells {
		vm.Cells[i] = string(c)
	}
	for _, i := range snap.Line {
		vm.Winning[i] = true
	}
	switch snap.Status {
	case games.BoardWon:
		vm.Message = "🎉 Winner: " + string(snap.Winner)
	case games.BoardDraw:
		vm.Message = "🤝 It's a draw!"
	default:
		vm.Message = "Player Turn: " + string(snap.Current)
	}
	return vm
}

func toQuizFragment(id string, snap games.QuizSnapshot) viewmodel.QuizFragment {
	vm := viewmodel.QuizFragment{
		SessionID: id,
		Number:    snap.Index + 1,
		Total:     snap.Total,
		Prompt:    snap.Prompt,
		Answered:  snap.Answered,
		Countdown: snap.Countdown,
		Score:     snap.Score,
		Completed: snap.Completed,
	}
	for _, o := range snap.Options {
		opt := viewmodel.QuizOption{Text: o, Selected: snap.Answered && o == snap.Selected}
		if snap.Answered {
			switch {
			case o == snap.Answer:
				opt.State = "correct"
			case opt.Selected:
				opt.State = "wrong"
			}
		}
		vm.Options = append(vm.Options, opt)
	}
	return vm
}

func toPuzzleFragment(id string, snap games.PuzzleSnapshot) viewmodel.PuzzleFragment {
	vm := viewmodel.PuzzleFragment{
		SessionID:  id,
		Number:     snap.Index + 1,
		Total:      snap.Total,
		Clue:       snap.Clue,
		Input:      snap.Input,
		Locked:     snap.Correct,
		CanAdvance: snap.Correct && !snap.Last,
		Solved:     snap.Solved,
	}
	switch {
	case snap.Correct:
		vm.Result = "✅ Correct!"
	case snap.Attempts > 0:
		vm.Result = "❌ Try Again!"
	}
	return vm
}
