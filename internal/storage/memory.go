package storage

import (
	"context"
	"slices"
	"sort"
	"sync"

	"productpulse/pkg/contracts/domain"
)

// MemoryStore keeps the dataset in process memory
type MemoryStore struct {
	mu     sync.RWMutex
	data   domain.Dataset
	closed bool
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: domain.Dataset{}}
}

// ReplaceAll implements Store
func (s *MemoryStore) ReplaceAll(ctx context.Context, ds domain.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.data = slices.Clone(ds)
	if s.data == nil {
		s.data = domain.Dataset{}
	}
	return nil
}

// All implements Store
func (s *MemoryStore) All(_ context.Context) (domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return slices.Clone(s.data), nil
}

// ByProduct implements Store
func (s *MemoryStore) ByProduct(_ context.Context, name string) (domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := domain.Dataset{}
	for _, o := range s.data {
		if o.ProductName == name {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

// ProductNames implements Store
func (s *MemoryStore) ProductNames(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	seen := make(map[string]struct{})
	names := []string{}
	for _, o := range s.data {
		if _, ok := seen[o.ProductName]; ok {
			continue
		}
		seen[o.ProductName] = struct{}{}
		names = append(names, o.ProductName)
	}
	sort.Strings(names)
	return names, nil
}

// Count implements Store
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.data), nil
}

// Ping implements Store
func (s *MemoryStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close implements Store
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.data = nil
	return nil
}
