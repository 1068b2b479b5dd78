package detect

import (
	"time"

	"github.com/google/uuid"

	"moodlift/pkg/realtime"
)

// Store holds open views and delegates to realtime.RoomStore for lookup and
// broadcast.
type Store struct {
	r    *realtime.RoomStore[*View]
	opts Options
}

// NewStore creates an empty view store.
func NewStore(opts Options) *Store {
	return &Store{r: realtime.NewRoomStore[*View](), opts: opts}
}

// CreateView mounts a new view and starts its presence poller.
func (s *Store) CreateView() *View {
	id := uuid.NewString()
	v := newView(id, s.opts, time.Now().UTC(), func(event string) {
		s.r.Publish(id, event)
	})
	s.r.Create(id, v)
	v.start()
	return v
}

// GetView returns a view by ID if it is open.
func (s *Store) GetView(id string) (*View, bool) {
	room, ok := s.r.Get(id)
	if !ok {
		return nil, false
	}
	return room.State, true
}

// Broadcaster returns the SSE broadcaster for an open view.
func (s *Store) Broadcaster(id string) (*realtime.Broadcaster, bool) {
	return s.r.Broadcaster(id)
}

// CloseView unmounts a view: its streams end and its poller stops.
func (s *Store) CloseView(id string) bool {
	v, ok := s.r.Remove(id)
	if !ok {
		return false
	}
	v.Close()
	return true
}

// ReapIdle closes views with no client activity for longer than maxIdle and
// returns how many were closed.
func (s *Store) ReapIdle(now time.Time, maxIdle time.Duration) int {
	closed := 0
	for _, id := range s.r.IDs() {
		v, ok := s.GetView(id)
		if !ok || now.Sub(v.LastSeen()) <= maxIdle {
			continue
		}
		if s.CloseView(id) {
			closed++
		}
	}
	return closed
}

// CloseAll closes every open view.
func (s *Store) CloseAll() {
	for _, id := range s.r.IDs() {
		s.CloseView(id)
	}
}

// Len reports how many views are open.
func (s *Store) Len() int {
	return s.r.Len()
}
