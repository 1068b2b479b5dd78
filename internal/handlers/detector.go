package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"moodlift/internal/detect"
	"moodlift/internal/frames"
	"moodlift/internal/theme"
	"moodlift/internal/viewmodel"
	"moodlift/internal/views"
)

// maxFrameBytes caps one uploaded frame, data URI or raw JPEG.
const maxFrameBytes = 4 << 20

// DetectorHandler serves the mood-check page and its frame, capture and
// stream endpoints.
type DetectorHandler struct {
	views         *detect.Store
	theme         *theme.Preference
	frameInterval time.Duration
	log           *slog.Logger
}

// NewDetectorHandler wires the handler. frameInterval is how often the page
// pushes a camera frame.
func NewDetectorHandler(store *detect.Store, pref *theme.Preference, frameInterval time.Duration, log *slog.Logger) *DetectorHandler {
	if log == nil {
		log = slog.Default()
	}
	return &DetectorHandler{views: store, theme: pref, frameInterval: frameInterval, log: log}
}

func (h *DetectorHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Get("/", h.home)
		r.Get("/view/{id}", h.page)
		r.Post("/view/{id}/frame", h.postFrame)
		r.Post("/view/{id}/capture", h.capture)
		r.Get("/view/{id}/session", h.sessionFragment)
		r.Get("/view/{id}/presence", h.presenceFragment)
		r.Post("/view/{id}/close", h.closeView)
	})
	// Long-lived connections stay outside the request timeout.
	r.Get("/view/{id}/frames", h.frames)
	r.Get("/view/{id}/stream", h.stream)
}

func (h *DetectorHandler) home(w http.ResponseWriter, r *http.Request) {
	v := h.views.CreateView()
	h.log.Info("view opened", "view", v.ID)
	http.Redirect(w, r, "/view/"+v.ID, http.StatusSeeOther)
}

func (h *DetectorHandler) lookup(w http.ResponseWriter, r *http.Request) (*detect.View, bool) {
	v, ok := h.views.GetView(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
	}
	return v, ok
}

func (h *DetectorHandler) page(w http.ResponseWriter, r *http.Request) {
	v, ok := h.views.GetView(chi.URLParam(r, "id"))
	if !ok {
		// Views do not survive a reload; start a fresh one.
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	v.Touch(time.Now())
	snap := v.Snapshot()
	render(w, r, views.DetectorPage(viewmodel.DetectorPage{
		Layout:          viewmodel.Layout{Title: "Moodlift", Theme: string(h.theme.Mode())},
		ViewID:          v.ID,
		Session:         toSessionFragment(snap),
		Presence:        toPresenceFragment(snap.Presence),
		FrameIntervalMs: int(h.frameInterval.Milliseconds()),
	}))
}

type frameRequest struct {
	Image string `json:"image"`
}

func (h *DetectorHandler) postFrame(w http.ResponseWriter, r *http.Request) {
	v, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req frameRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFrameBytes)).Decode(&req); err != nil {
		http.Error(w, "invalid frame", http.StatusBadRequest)
		return
	}
	f, err := frames.ParseDataURI(req.Image, time.Now())
	if err != nil {
		http.Error(w, "invalid frame", http.StatusBadRequest)
		return
	}
	v.PublishFrame(f)
	w.WriteHeader(http.StatusNoContent)
}

// frames accepts a websocket carrying one frame per message: binary messages
// are raw image bytes, text messages are data URIs.
func (h *DetectorHandler) frames(w http.ResponseWriter, r *http.Request) {
	v, ok := h.lookup(w, r)
	if !ok {
		return
	}
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.log.Debug("frame socket rejected", "view", v.ID, "error", err)
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(maxFrameBytes)

	ctx := r.Context()
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				h.log.Debug("frame socket ended", "view", v.ID, "error", err)
			}
			return
		}
		if _, open := h.views.GetView(v.ID); !open {
			_ = conn.Close(websocket.StatusGoingAway, "view closed")
			return
		}
		var f frames.Frame
		if typ == websocket.MessageBinary {
			f = frames.FromBytes(data, time.Now())
		} else if f, err = frames.ParseDataURI(string(data), time.Now()); err != nil {
			_ = conn.Close(websocket.StatusUnsupportedData, "invalid data URI")
			return
		}
		v.PublishFrame(f)
	}
}

func (h *DetectorHandler) capture(w http.ResponseWriter, r *http.Request) {
	v, ok := h.lookup(w, r)
	if !ok {
		return
	}
	_, err := v.Capture(r.Context())
	switch {
	case errors.Is(err, detect.ErrNoFrame), errors.Is(err, detect.ErrConcurrentCapture):
		w.WriteHeader(http.StatusNoContent)
		return
	case errors.Is(err, detect.ErrClosed):
		http.Error(w, "view closed", http.StatusGone)
		return
	case err != nil:
		// Recorded in the session; the fragment shows it.
		h.log.Warn("capture failed", "view", v.ID, "error", err)
	}
	render(w, r, views.SessionFragment(toSessionFragment(v.Snapshot())))
}

func (h *DetectorHandler) sessionFragment(w http.ResponseWriter, r *http.Request) {
	v, ok := h.lookup(w, r)
	if !ok {
		return
	}
	render(w, r, views.SessionFragment(toSessionFragment(v.Snapshot())))
}

func (h *DetectorHandler) presenceFragment(w http.ResponseWriter, r *http.Request) {
	v, ok := h.lookup(w, r)
	if !ok {
		return
	}
	render(w, r, views.PresenceFragment(toPresenceFragment(v.Presence())))
}

func (h *DetectorHandler) stream(w http.ResponseWriter, r *http.Request) {
	v, ok := h.lookup(w, r)
	if !ok {
		return
	}
	hub, ok := h.views.Broadcaster(v.ID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	initial := []string{detect.EventPresence, detect.EventSession}
	stream(w, r, hub, initial, func(event string) (templ.Component, bool) {
		switch event {
		case detect.EventPresence:
			return views.PresenceFragment(toPresenceFragment(v.Presence())), true
		case detect.EventSession:
			return views.SessionFragment(toSessionFragment(v.Snapshot())), true
		}
		return nil, false
	}, v.Touch)
}

func (h *DetectorHandler) closeView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.views.CloseView(id) {
		h.log.Info("view closed", "view", id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func toSessionFragment(snap detect.Snapshot) viewmodel.SessionFragment {
	s := snap.Session
	vm := viewmodel.SessionFragment{
		ViewID:       snap.ID,
		Loading:      s.Loading,
		EmotionLabel: s.EmotionLabel,
		ErrorMessage: s.ErrorMessage,
	}
	if s.EmotionLabel == "" {
		return vm
	}
	vm.Glyph = snap.Suggestions.Glyph
	if s.EmotionLabel != detect.LabelFailed {
		vm.Suggestions = snap.Suggestions.Items
		vm.ShowGames = snap.Eligible
	}
	return vm
}

func toPresenceFragment(p detect.Presence) viewmodel.PresenceFragment {
	label := "⏳ Looking for a face..."
	switch p {
	case detect.PresencePresent:
		label = "🟢 Face detected"
	case detect.PresenceAbsent:
		label = "🔴 No face detected"
	}
	return viewmodel.PresenceFragment{State: p.String(), Label: label}
}
