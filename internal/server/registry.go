package server

import (
	"sync"
	"time"

	"github.com/vancomm/minesweeper/internal/metrics"
	"github.com/vancomm/minesweeper/internal/session"
)

type entry struct {
	session  *session.Session
	lastSeen time.Time
}

// Registry holds the live sessions of the server.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

func (r *Registry) Add(s *session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = &entry{session: s, lastSeen: r.now()}
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
}

// Get returns the session and marks it as recently used.
func (r *Registry) Get(id string) (*session.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.session, true
}

// Touch marks the session as used without fetching it.
func (r *Registry) Touch(id string) {
	r.Get(id)
}

func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	if ok {
		e.session.Dispose()
	}
	return ok
}

// Reap disposes sessions idle for longer than idle and returns how many
// were removed.
func (r *Registry) Reap(idle time.Duration) int {
	r.mu.Lock()
	cutoff := r.now().Add(-idle)
	var stale []*session.Session
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			stale = append(stale, e.session)
			delete(r.sessions, id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	for _, s := range stale {
		s.Dispose()
	}
	return len(stale)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close disposes every session.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*entry)
	metrics.ActiveSessions.Set(0)
	r.mu.Unlock()

	for _, e := range sessions {
		e.session.Dispose()
	}
}
