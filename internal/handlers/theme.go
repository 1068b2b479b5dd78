package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"moodlift/internal/theme"
)

// ThemeHandler flips the light/dark preference.
type ThemeHandler struct {
	pref *theme.Preference
}

func NewThemeHandler(pref *theme.Preference) *ThemeHandler {
	return &ThemeHandler{pref: pref}
}

func (h *ThemeHandler) RegisterRoutes(r chi.Router) {
	r.Post("/theme/toggle", h.toggle)
}

// toggle answers a script request (async=1) with the new mode as text, and a
// plain form post with a redirect back to the page.
func (h *ThemeHandler) toggle(w http.ResponseWriter, r *http.Request) {
	mode := h.pref.Toggle()
	if r.FormValue("async") == "1" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(mode))
		return
	}
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

// backTo returns the local path of the referring page, or "/". Only the path
// is kept so the redirect never leaves the site.
func backTo(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || ref.Path[0] != '/' {
		return "/"
	}
	// "//host" would be read as a network path.
	if len(ref.Path) > 1 && ref.Path[1] == '/' {
		return "/"
	}
	return ref.Path
}
