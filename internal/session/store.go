// Package session provides per-browser-session key/value storage that
// survives the round trip to the payment gateway and back.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNoSession is returned when a scoped store is built without a session id.
var ErrNoSession = errors.New("session id is required")

// Store is a key/value store partitioned by session id.
type Store interface {
	Get(ctx context.Context, sessionID, key string) (value string, ok bool, err error)
	Set(ctx context.Context, sessionID, key, value string) error
	Delete(ctx context.Context, sessionID, key string) error
}

// Scoped is a Store bound to one session. It is the explicit context object
// handed to the payment flow.
type Scoped struct {
	store Store
	id    string
}

// Scope binds store to sessionID.
func Scope(store Store, sessionID string) (*Scoped, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}
	return &Scoped{store: store, id: sessionID}, nil
}

// ID returns the session id.
func (s *Scoped) ID() string { return s.id }

func (s *Scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.store.Get(ctx, s.id, key)
}

func (s *Scoped) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.id, key, value)
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, s.id, key)
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// MemoryStore keeps sessions in process memory. It is safe for concurrent use
// and loses everything on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryStore creates a MemoryStore. A ttl of zero keeps entries forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func memoryKey(sessionID, key string) string {
	return fmt.Sprintf("%s:%s", sessionID, key)
}

func (m *MemoryStore) Get(_ context.Context, sessionID, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[memoryKey(sessionID, key)]
	if !ok {
		return "", false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *MemoryStore) Set(_ context.Context, sessionID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{value: value}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.entries[memoryKey(sessionID, key)] = e
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, memoryKey(sessionID, key))
	return nil
}
