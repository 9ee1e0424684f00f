package storage

import (
	"context"
	"fmt"
	"sync"
)

// memStore is an in-memory KVStore and BlobStore with an injectable
// capacity so tests can force quota failures deterministically.
type memStore struct {
	mu sync.Mutex
	kv map[string]string
	// maxBytes caps the size of any single value; 0 means unlimited.
	maxBytes int
	// failSets forces the next n Set calls to fail with a quota error
	// regardless of size.
	failSets int
	// sets counts every Set attempt, successful or not.
	sets  int
	blobs map[string]Blob
}

func newMemStore() *memStore {
	return &memStore{
		kv:    map[string]string{},
		blobs: map[string]Blob{},
	}
}

func (m *memStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.kv[key]
	return v, ok, nil
}

func (m *memStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.failSets > 0 {
		m.failSets--
		return fmt.Errorf("write %q: %w", key, ErrQuotaExceeded)
	}
	if m.maxBytes > 0 && len(value) > m.maxBytes {
		return fmt.Errorf("write %q: %w", key, ErrQuotaExceeded)
	}
	m.kv[key] = value
	return nil
}

func (m *memStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.kv, key)
	return nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) PutBlob(_ context.Context, b Blob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[b.ID] = b
	return nil
}

func (m *memStore) GetBlob(_ context.Context, id string) (Blob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[id]
	if !ok {
		return Blob{}, fmt.Errorf("blob %q: %w", id, ErrNotFound)
	}
	return b, nil
}

func (m *memStore) DeleteBlob(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[id]; !ok {
		return fmt.Errorf("blob %q: %w", id, ErrNotFound)
	}
	delete(m.blobs, id)
	return nil
}

// brokenStore fails every Set with a non-quota error.
type brokenStore struct{ memStore }

func (b *brokenStore) Set(key, value string) error {
	return fmt.Errorf("write %q: store is disabled", key)
}

func newTestService(store *memStore) *Service {
	return NewService(store, store, nil, 0)
}
