package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
	"github.com/LeskaProgrammer/KPO/internal/store"
)

// Store is an in-process BackingStore. Entities are copied on the way in
// and out so callers never share memory with the stored values.
type Store[T store.Entity[T]] struct {
	entity string

	mu    sync.RWMutex
	items map[string]T
}

func NewStore[T store.Entity[T]](entity string) *Store[T] {
	return &Store[T]{
		entity: entity,
		items:  make(map[string]T),
	}
}

func (s *Store[T]) Get(_ context.Context, id string) (T, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		var zero T
		return zero, false, nil
	}
	return item.Clone(), true, nil
}

func (s *Store[T]) GetAll(_ context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]T, 0, len(s.items))
	for _, item := range s.items {
		result = append(result, item.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key() < result[j].Key() })
	return result, nil
}

func (s *Store[T]) Add(_ context.Context, entity T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := entity.Key()
	if _, exists := s.items[id]; exists {
		return shared.ErrDuplicateKey{Entity: s.entity, ID: id}
	}
	s.items[id] = entity.Clone()
	return nil
}

func (s *Store[T]) Update(_ context.Context, entity T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[entity.Key()] = entity.Clone()
	return nil
}

func (s *Store[T]) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, id)
	return nil
}

// Len reports the number of stored entities
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
