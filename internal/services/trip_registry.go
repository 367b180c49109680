package services

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrTripNotFound = errors.New("trip not found")

// TripRegistry owns every live trip session, one per trip id.
type TripRegistry struct {
	deps TripDeps
	cfg  SessionConfig

	mu       sync.RWMutex
	sessions map[string]*TripSession
}

func NewTripRegistry(deps TripDeps, cfg SessionConfig) *TripRegistry {
	return &TripRegistry{
		deps:     deps,
		cfg:      cfg.withDefaults(),
		sessions: make(map[string]*TripSession),
	}
}

// Create starts an idle session under a fresh id.
func (r *TripRegistry) Create() *TripSession {
	s := NewTripSession(uuid.NewString(), r.deps, r.cfg)

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	return s
}

func (r *TripRegistry) Get(id string) (*TripSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrTripNotFound
	}
	return s, nil
}

// Delete closes the session, cancelling its timer and in-flight pass.
func (r *TripRegistry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return ErrTripNotFound
	}
	s.Close()
	return nil
}

// Sweep closes sessions idle since before now-idle and returns how many
// were removed.
func (r *TripRegistry) Sweep(now time.Time, idle time.Duration) int {
	r.mu.Lock()
	expired := make([]*TripSession, 0)
	for id, s := range r.sessions {
		if now.Sub(s.LastActivity()) > idle {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
		log.Printf("trip=%s expired after idle=%s", s.ID, idle)
	}
	return len(expired)
}

func (r *TripRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close tears down every session.
func (r *TripRegistry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*TripSession)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
