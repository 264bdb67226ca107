package session

import (
	"context"
	"sync"
)

// memrepo is a development-only in-memory Repository used when no
// database is configured. Tests also lean on it to count rating
// writes.
type memrepo struct {
	mu      sync.RWMutex
	results map[string]*Session
	ratings map[string]int
	writes  int
}

func NewMemoryRepository() Repository {
	return &memrepo{
		results: make(map[string]*Session),
		ratings: make(map[string]int),
	}
}

func (m *memrepo) InsertResult(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Status != StatusCompleted {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.results[sess.ID]; exists {
		return nil
	}
	m.results[sess.ID] = sess.Clone()
	return nil
}

func (m *memrepo) GetResult(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.results[id]; ok {
		return sess.Clone(), nil
	}
	return nil, nil
}

func (m *memrepo) GetRating(ctx context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.ratings[userID]; ok {
		return r, nil
	}
	return DefaultRating, nil
}

func (m *memrepo) UpsertRating(ctx context.Context, userID string, rating int) error {
	m.mu.Lock()
	m.ratings[userID] = rating
	m.writes++
	m.mu.Unlock()
	return nil
}

func (m *memrepo) Close() error { return nil }

// RatingWrites reports how many rating upserts happened; test hook for
// the double-completion race.
func (m *memrepo) RatingWrites() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
