package service

import (
	"fmt"
	"sync"
	"time"

	"studykit/internal/domain"
)

type registryEntry[T any] struct {
	session  T
	lastSeen time.Time
}

// registry holds the live sessions of one kind, keyed by ULID.
// Every successful lookup counts as activity for idle expiry.
type registry[T any] struct {
	mu       sync.Mutex
	kind     string
	now      func() time.Time
	sessions map[string]*registryEntry[T]
}

func newRegistry[T any](kind string) *registry[T] {
	return &registry[T]{kind: kind, now: time.Now, sessions: make(map[string]*registryEntry[T])}
}

func (r *registry[T]) put(id string, s T) {
	r.mu.Lock()
	r.sessions[id] = &registryEntry[T]{session: s, lastSeen: r.now()}
	r.mu.Unlock()
}

func (r *registry[T]) get(id string) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		var zero T
		return zero, r.notFound(id)
	}
	e.lastSeen = r.now()
	return e.session, nil
}

func (r *registry[T]) remove(id string) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		var zero T
		return zero, r.notFound(id)
	}
	delete(r.sessions, id)
	return e.session, nil
}

func (r *registry[T]) drain() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, 0, len(r.sessions))
	for id, e := range r.sessions {
		out = append(out, e.session)
		delete(r.sessions, id)
	}
	return out
}

// removeIdle drops and returns the sessions not looked up for at least ttl.
func (r *registry[T]) removeIdle(ttl time.Duration) []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	var out []T
	for id, e := range r.sessions {
		if now.Sub(e.lastSeen) >= ttl {
			out = append(out, e.session)
			delete(r.sessions, id)
		}
	}
	return out
}

func (r *registry[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *registry[T]) notFound(id string) error {
	return domain.NewNotFoundError(fmt.Sprintf("%s session not found: %s", r.kind, id)).
		WithContext("session_id", id)
}
