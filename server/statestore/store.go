// Package statestore holds the one-time CSRF states binding an OAuth2
// login redirect to its callback.
package statestore

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Store is a bounded, TTL-limited set of single-use state tokens.
type Store struct {
	mu            sync.Mutex
	entries       map[string]time.Time // token -> expiry
	order         []string             // insertion order, for overflow eviction
	ttl           time.Duration
	capacity      int
	evictFraction float64

	stop chan struct{}
	once sync.Once
}

// New creates the store and starts its sweep loop. sweepInterval <= 0
// disables the loop. evictFraction outside (0,1] falls back to 10%.
func New(ttl time.Duration, capacity int, evictFraction float64, sweepInterval time.Duration) *Store {
	if evictFraction <= 0 || evictFraction > 1 {
		evictFraction = 0.1
	}
	s := &Store{
		entries:       make(map[string]time.Time),
		ttl:           ttl,
		capacity:      capacity,
		evictFraction: evictFraction,
		stop:          make(chan struct{}),
	}
	if sweepInterval > 0 {
		go s.sweepLoop(sweepInterval)
	}
	return s
}

// Generate creates, stores, and returns a fresh state token.
func (s *Store) Generate() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	state := base64.RawURLEncoding.EncodeToString(b)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capacity > 0 && len(s.entries) >= s.capacity {
		s.evictOldestLocked()
	}
	s.entries[state] = NowTimeFunc().Add(s.ttl)
	s.order = append(s.order, state)
	return state, nil
}

// ValidateAndConsume atomically checks and deletes the state. Missing,
// expired, and already-consumed states all report false; under a racing
// double callback exactly one caller wins.
func (s *Store) ValidateAndConsume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.entries[state]
	if !ok {
		return false
	}
	delete(s.entries, state)
	return NowTimeFunc().Before(expiresAt)
}

// Len reports the number of stored (not yet consumed or swept) states.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops the sweep loop. Safe to call more than once.
func (s *Store) Close() {
	s.once.Do(func() { close(s.stop) })
}

// evictOldestLocked drops the oldest evictFraction of live entries by
// insertion order. The order slice can hold tokens already consumed or
// swept; those are skipped and do not count against the batch.
func (s *Store) evictOldestLocked() {
	n := int(float64(s.capacity) * s.evictFraction)
	if n < 1 {
		n = 1
	}
	evicted := 0
	for len(s.order) > 0 && evicted < n {
		oldest := s.order[0]
		s.order = s.order[1:]
		if _, ok := s.entries[oldest]; ok {
			delete(s.entries, oldest)
			evicted++
		}
	}
}

func (s *Store) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.stop:
			return
		}
	}
}

// Sweep removes every expired entry regardless of capacity pressure.
func (s *Store) Sweep() {
	now := NowTimeFunc()

	s.mu.Lock()
	defer s.mu.Unlock()

	for state, expiresAt := range s.entries {
		if now.After(expiresAt) {
			delete(s.entries, state)
		}
	}
	// Compact the order slice so consumed and swept tokens do not pile up.
	live := s.order[:0]
	for _, state := range s.order {
		if _, ok := s.entries[state]; ok {
			live = append(live, state)
		}
	}
	s.order = live
}
