package repository

import (
	"context"
	"sync"

	repo "storefront/internal/repository"
)

type memoryEntry struct {
	value    []byte
	revision int64
}

// プロセス内のKV（開発・テスト用）
type MemoryKVStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{entries: map[string]*memoryEntry{}}
}

func (s *MemoryKVStore) Get(ctx context.Context, key string) (repo.Entry, error) {
	if err := ctx.Err(); err != nil {
		return repo.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return repo.Entry{}, nil
	}
	return repo.Entry{Value: clone(e.value), Revision: e.revision}, nil
}

func (s *MemoryKVStore) CompareAndSwap(ctx context.Context, key string, expected int64, value []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &memoryEntry{}
		s.entries[key] = e
	}
	if e.revision != expected {
		return 0, repo.ErrConflict
	}

	// nilは「空」と区別できないので空スライスにする
	v := clone(value)
	if v == nil {
		v = []byte{}
	}
	e.value = v
	e.revision++
	return e.revision, nil
}

func (s *MemoryKVStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.value == nil {
		return nil
	}
	e.value = nil
	e.revision++
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
