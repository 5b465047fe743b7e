package catalog

import (
	"context"
	"sort"
	"sync"
)

type MemStore struct {
	mu sync.RWMutex
	m  map[int]Product
}

// NewMemStore returns a store holding the built-in demo catalog.
func NewMemStore() *MemStore {
	return NewMemStoreWith(seed()...)
}

func NewMemStoreWith(products ...Product) *MemStore {
	s := &MemStore{m: make(map[int]Product, len(products))}
	for _, p := range products {
		s.m[p.ID] = p
	}
	return s
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) List(ctx context.Context) ([]Product, error) {
	return s.filter(func(Product) bool { return true }), nil
}

func (s *MemStore) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	return s.filter(func(p Product) bool { return p.Category == category }), nil
}

func (s *MemStore) Categories(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range s.m {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id int) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.m[id]
	return p, ok, nil
}

func (s *MemStore) filter(keep func(Product) bool) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.m))
	for _, p := range s.m {
		if keep(p) {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
