package handlers

import (
	"net/http"
	"time"

	"github.com/a-h/templ"
)

// requestTimeout bounds every non-streaming request. It covers a capture
// waiting on the classification service.
const requestTimeout = 30 * time.Second

func render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		http.Error(w, "failed to render", http.StatusInternalServerError)
	}
}
