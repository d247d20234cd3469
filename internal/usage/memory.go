package usage

import (
	"context"
	"sync"
)

// MemoryStore keeps usage records in a mutex-guarded map. Records live for
// the lifetime of the process and there is no eviction, so counts reset on
// restart. This is the default store.
type MemoryStore struct {
	mutex   sync.Mutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Check returns the record for a key, or a zero record for unseen keys.
func (s *MemoryStore) Check(_ context.Context, key string) (Record, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.records[key], nil
}

// Increment bumps the count for a key under the store lock and stamps the
// consumption time.
func (s *MemoryStore) Increment(_ context.Context, key string) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	record := s.records[key]
	record.Count++
	record.LastUsed = nowRFC3339()
	s.records[key] = record
	return record.Count, nil
}

// Close is a no-op for the in-process store.
func (s *MemoryStore) Close() error {
	return nil
}
