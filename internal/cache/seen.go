package cache

import (
	"sync"
	"time"
)

// Seen is a set of keys that forget themselves after a TTL. It is used to
// avoid announcing the same thing twice within a window. Safe for
// concurrent use.
type Seen[K comparable] struct {
	mu      sync.Mutex
	ttl     time.Duration
	expires map[K]time.Time
}

// now is a small indirection to allow test stubbing.
var now = time.Now

// NewSeen creates a set whose entries expire ttl after being marked.
// ttl <= 0 keeps entries forever.
func NewSeen[K comparable](ttl time.Duration) *Seen[K] {
	return &Seen[K]{ttl: ttl, expires: make(map[K]time.Time)}
}

// Mark records key and reports whether it was absent (or expired) before.
func (s *Seen[K]) Mark(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := now()
	if exp, ok := s.expires[key]; ok && (exp.IsZero() || ts.Before(exp)) {
		return false
	}
	var exp time.Time
	if s.ttl > 0 {
		exp = ts.Add(s.ttl)
	}
	s.expires[key] = exp
	return true
}

// Has reports whether key is marked and not expired.
func (s *Seen[K]) Has(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.expires[key]
	return ok && (exp.IsZero() || now().Before(exp))
}

// Len counts live entries.
func (s *Seen[K]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := now()
	n := 0
	for _, exp := range s.expires {
		if exp.IsZero() || ts.Before(exp) {
			n++
		}
	}
	return n
}

// PurgeExpired drops expired entries.
func (s *Seen[K]) PurgeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := now()
	for k, exp := range s.expires {
		if !exp.IsZero() && !ts.Before(exp) {
			delete(s.expires, k)
		}
	}
}
