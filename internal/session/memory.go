package session

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value string
	exp   time.Time // zero means no expiry
}

// MemoryStore is the in-process session backend. Expired entries are
// evicted lazily on read; single-instance deployments only.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[string]entry
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: map[string]map[string]entry{},
		now:  time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, sessionID, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.data[sessionID]
	if !ok {
		return "", nil
	}
	e, ok := bucket[key]
	if !ok {
		return "", nil
	}
	if !e.exp.IsZero() && e.exp.Before(m.now()) {
		delete(bucket, key)
		return "", nil
	}
	return e.value, nil
}

func (m *MemoryStore) Set(_ context.Context, sessionID, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.data[sessionID]
	if !ok {
		bucket = map[string]entry{}
		m.data[sessionID] = bucket
	}
	e := entry{value: value}
	if ttl > 0 {
		e.exp = m.now().Add(ttl)
	}
	bucket[key] = e
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sessionID)
	return nil
}
