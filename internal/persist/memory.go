package persist

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps documents in a map. Used by tests and NURTURE_STORE=memory.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (s *MemoryStore) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.docs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, name)
	}
	return append([]byte(nil), b...), nil
}

func (s *MemoryStore) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[name] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
