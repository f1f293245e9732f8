package state

import (
	"sync"
	"time"
)

type session struct {
	store    *Store
	lastSeen time.Time
}

// Sessions keeps one Store per visitor and forgets visitors idle for longer
// than ttl. Create it with NewSessions and stop its eviction loop with Stop.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
	done     chan struct{}
	once     sync.Once
}

// NewSessions starts an eviction loop that runs every ttl.
func NewSessions(ttl time.Duration) *Sessions {
	s := &Sessions{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	go s.evictLoop()
	return s
}

// Store returns the visitor's store, creating an empty one on first use.
func (s *Sessions) Store(visitorID string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[visitorID]
	if !ok {
		sess = &session{store: NewStore()}
		s.sessions[visitorID] = sess
	}
	sess.lastSeen = s.now()
	return sess.store
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Sessions) evictIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

func (s *Sessions) evictLoop() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.evictIdle()
		case <-s.done:
			return
		}
	}
}

// Stop ends the eviction loop.
func (s *Sessions) Stop() {
	s.once.Do(func() { close(s.done) })
}
