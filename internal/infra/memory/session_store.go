package memory

import (
	"context"
	"log"
	"sync"
	"time"

	"cat-trivia-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore.
// Sessions expire after ttl without a write; a zero ttl keeps them forever.
type SessionStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.RWMutex
	sessions map[string]sessionEntry
}

type sessionEntry struct {
	state     domain.GameState
	expiresAt time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return NewSessionStoreWithClock(ttl, time.Now)
}

// NewSessionStoreWithClock allows deterministic expiry in tests.
func NewSessionStoreWithClock(ttl time.Duration, now func() time.Time) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		clock:    now,
		sessions: make(map[string]sessionEntry),
	}
}

func (s *SessionStore) Get(_ context.Context, sessionID string) (domain.GameState, error) {
	now := s.clock()

	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return domain.GameState{}, domain.ErrSessionNotFound
	}
	if entry.expired(now) {
		s.mu.Lock()
		if current, ok := s.sessions[sessionID]; ok && current.expired(now) {
			delete(s.sessions, sessionID)
		}
		s.mu.Unlock()
		return domain.GameState{}, domain.ErrSessionNotFound
	}
	return entry.state.Clone(), nil
}

func (s *SessionStore) Set(_ context.Context, state domain.GameState) error {
	entry := sessionEntry{state: state.Clone()}
	if s.ttl > 0 {
		entry.expiresAt = s.clock().Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[state.SessionID] = entry
	return nil
}

// Update runs fn and stores the result while holding the write lock.
func (s *SessionStore) Update(_ context.Context, sessionID string, fn func(*domain.GameState) error) (domain.GameState, error) {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		return domain.GameState{}, domain.ErrSessionNotFound
	}
	if entry.expired(now) {
		delete(s.sessions, sessionID)
		return domain.GameState{}, domain.ErrSessionNotFound
	}

	state := entry.state.Clone()
	if err := fn(&state); err != nil {
		return domain.GameState{}, err
	}
	entry = sessionEntry{state: state.Clone()}
	if s.ttl > 0 {
		entry.expiresAt = now.Add(s.ttl)
	}
	s.sessions[sessionID] = entry
	return state, nil
}

func (s *SessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Len reports how many sessions are held, expired or not.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops expired sessions and returns how many were removed.
func (s *SessionStore) Sweep() int {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, entry := range s.sessions {
		if entry.expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Printf("session janitor: evicted %d expired sessions", n)
			}
		}
	}
}

func (e sessionEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !e.expiresAt.After(now)
}
