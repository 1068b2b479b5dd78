package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"

	"moodlift/internal/views"
	"moodlift/pkg/realtime"
)

const keepAliveInterval = 25 * time.Second

// fragmentFunc returns the component to push for an event, or false to skip
// the event.
type fragmentFunc func(event string) (templ.Component, bool)

// stream relays hub events as SSE until the client leaves or the room is
// closed. initial events are sent right away so the page starts current.
// alive, if set, is called on every keepalive while the client is connected.
func stream(w http.ResponseWriter, r *http.Request, hub *realtime.Broadcaster, initial []string, fragment fragmentFunc, alive func(time.Time)) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	ctx := r.Context()
	send := func(event string) {
		c, ok := fragment(event)
		if !ok {
			return
		}
		data, err := views.String(ctx, c)
		if err != nil {
			return
		}
		writeSSE(w, event, data)
	}

	for _, event := range initial {
		send(event)
	}
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub:
			if !ok {
				writeSSE(w, "closed", "")
				flusher.Flush()
				return
			}
			send(event)
			flusher.Flush()
		case now := <-keepAlive.C:
			if alive != nil {
				alive(now)
			}
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, event string, data string) {
	_, _ = w.Write([]byte("event: " + event + "\n"))
	for _, line := range strings.Split(data, "\n") {
		_, _ = w.Write([]byte("data: " + line + "\n"))
	}
	_, _ = w.Write([]byte("\n"))
}
