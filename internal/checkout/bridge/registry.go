package bridge

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry holds open sessions so the HTTP layer can route a page load or an
// outcome message to the right one.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

func (r *Registry) Open(cfg Config, timeout time.Duration) *Session {
	s := NewSession(uuid.NewString(), cfg, timeout)
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
