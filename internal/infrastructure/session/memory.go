package session

import (
	"context"
	"maps"
	"sync"
	"time"
)

type memorySession struct {
	token     string
	cookies   map[string]string
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Every write slides the expiry.
type MemoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]*memorySession
	now      func() time.Time
}

// NewMemoryStore returns an empty store whose sessions live for ttl after
// their last write.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, sessions: make(map[string]*memorySession), now: time.Now}
}

func (s *MemoryStore) get(id string) *memorySession {
	sess, ok := s.sessions[id]
	if !ok || s.now().After(sess.expiresAt) {
		return nil
	}
	return sess
}

// touch returns the live session for id, creating it when needed. Callers hold mu.
func (s *MemoryStore) touch(id string) *memorySession {
	sess := s.get(id)
	if sess == nil {
		sess = &memorySession{cookies: map[string]string{}}
		s.sessions[id] = sess
	}
	sess.expiresAt = s.now().Add(s.ttl)
	return sess
}

func (s *MemoryStore) Token(_ context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess := s.get(id); sess != nil {
		return sess.token, nil
	}
	return "", nil
}

func (s *MemoryStore) SetToken(_ context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(id).token = token
	return nil
}

func (s *MemoryStore) ClearToken(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess := s.get(id); sess != nil {
		sess.token = ""
	}
	return nil
}

func (s *MemoryStore) Cookies(_ context.Context, id string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess := s.get(id)
	if sess == nil {
		return map[string]string{}, nil
	}
	return maps.Clone(sess.cookies), nil
}

func (s *MemoryStore) SetCookies(_ context.Context, id string, cookies map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.touch(id)
	for k, v := range cookies {
		if v == "" {
			delete(sess.cookies, k)
			continue
		}
		sess.cookies[k] = v
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// Sweep drops expired sessions. Call it periodically on long-running servers.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}
