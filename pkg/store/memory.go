package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/breadthfirst/pkg/graph"
)

// MemoryStore keeps layouts in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	layouts map[string]graph.Layout
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{layouts: make(map[string]graph.Layout)}
}

// Save stores a deep copy of l, so later changes to l do not reach the store.
func (s *MemoryStore) Save(ctx context.Context, l *graph.Layout) (string, error) {
	prepare(l)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layouts[l.ID] = cloneLayout(*l)
	return l.ID, nil
}

func cloneLayout(l graph.Layout) graph.Layout {
	l.Levels = slices.Clone(l.Levels)
	for i, level := range l.Levels {
		l.Levels[i] = slices.Clone(level)
	}
	l.Nodes = slices.Clone(l.Nodes)
	l.Edges = slices.Clone(l.Edges)
	l.Warnings = slices.Clone(l.Warnings)
	return l
}

// Get retrieves a layout by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (graph.Layout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.layouts[id]
	if !ok {
		return graph.Layout{}, ErrNotFound
	}
	return cloneLayout(l), nil
}

// Delete removes a layout.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.layouts[id]; !ok {
		return ErrNotFound
	}
	delete(s.layouts, id)
	return nil
}

// List returns the newest layouts first. Equal timestamps are ordered by ID.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	out := make([]Summary, 0, len(s.layouts))
	for _, l := range s.layouts {
		out = append(out, Summarize(&l))
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	if limit = clampLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
