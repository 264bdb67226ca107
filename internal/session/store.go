package session

import (
	"context"
	"sync"
	"time"
)

// Store is the in-memory registry of live sessions. Each session owns
// a mutex that serializes every coordinator operation on it; distinct
// sessions proceed fully in parallel. Entries load lazily from Redis
// on first touch and write back before a mutation becomes visible, so
// a session can never be observed half-applied.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	durable *RedisStore
}

type entry struct {
	mu     sync.Mutex
	loaded bool
	sess   *Session
}

func NewStore(durable *RedisStore) *Store {
	return &Store{entries: make(map[string]*entry), durable: durable}
}

// Create registers a fresh Waiting session. The durable write happens
// first; the memory entry only appears once the record is durable.
func (st *Store) Create(ctx context.Context, sess *Session) error {
	now := time.Now()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now
	if err := st.durable.Create(ctx, sess); err != nil {
		return err
	}
	e := st.entryFor(sess.ID)
	e.mu.Lock()
	e.sess = sess.Clone()
	e.loaded = true
	e.mu.Unlock()
	return nil
}

// Update runs fn on a working copy of the session while holding its
// lock. When fn reports a mutation the copy is persisted and then
// swapped in; on fn error or persistence failure the visible session
// is byte-for-byte unchanged.
func (st *Store) Update(ctx context.Context, id string, fn func(*Session) (bool, error)) error {
	e := st.entryFor(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := st.ensureLoaded(ctx, e, id); err != nil {
		return err
	}
	work := e.sess.Clone()
	changed, err := fn(work)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	work.UpdatedAt = time.Now()
	if err := st.durable.Save(ctx, work); err != nil {
		return err
	}
	e.sess = work
	return nil
}

// Snapshot returns an independent copy of the current session state.
func (st *Store) Snapshot(ctx context.Context, id string) (*Session, error) {
	e := st.entryFor(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := st.ensureLoaded(ctx, e, id); err != nil {
		return nil, err
	}
	return e.sess.Clone(), nil
}

func (st *Store) entryFor(id string) *entry {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.entries[id]
	if !ok {
		e = &entry{}
		st.entries[id] = e
	}
	return e
}

// ensureLoaded lazily pulls the session from Redis. Caller holds e.mu.
func (st *Store) ensureLoaded(ctx context.Context, e *entry, id string) error {
	if e.loaded && e.sess != nil {
		return nil
	}
	sess, err := st.durable.Load(ctx, id)
	if err != nil {
		return err
	}
	if sess == nil {
		// Stay unloaded so a later Create (or a durable write from a
		// peer process) is still picked up.
		return ErrSessionNotFound
	}
	e.sess = sess
	e.loaded = true
	return nil
}
