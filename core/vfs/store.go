package vfs

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MetaKey is the reserved store key holding the session state.
const MetaKey = "__meta__"

// Store is the persistence adapter the filesystem mirrors its mutations to.
//
// Keys are clean absolute paths plus MetaKey, values are JSON documents.
// Implementations must be safe for use by a single writer goroutine; callers
// never rely on a Store for reads after startup.
type Store interface {
	// Put creates or replaces the value at key.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key, missing keys are not an error.
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes prefix and every key nested under it. The empty
	// prefix matches every path key.
	DeletePrefix(ctx context.Context, prefix string) error
	// LoadAll returns every stored record.
	LoadAll(ctx context.Context) (map[string][]byte, error)
}

// MatchesPrefix reports whether key is removed by DeletePrefix(prefix).
func MatchesPrefix(key, prefix string) bool {
	if prefix == Root {
		prefix = ""
	}
	return key == prefix || strings.HasPrefix(key, prefix+"/")
}

// MemStore is an in-memory Store.
type MemStore struct {
	mu      sync.Mutex
	records map[string][]byte
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{records: make(map[string][]byte)}
}

// Put implements Store.Put.
func (m *MemStore) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = append([]byte(nil), value...)
	return nil
}

// Delete implements Store.Delete.
func (m *MemStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
	return nil
}

// DeletePrefix implements Store.DeletePrefix.
func (m *MemStore) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.records {
		if MatchesPrefix(key, prefix) {
			delete(m.records, key)
		}
	}
	return nil
}

// LoadAll implements Store.LoadAll.
func (m *MemStore) LoadAll(_ context.Context) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]byte, len(m.records))
	for k, v := range m.records {
		out[k] = append([]byte(nil), v...)
	}
	return out, nil
}

// Keys returns the sorted keys in the store.
func (m *MemStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
