package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/LeskaProgrammer/KPO/internal/domain/shared"
)

// AggregateStore is a caching proxy over a BackingStore. The full set is
// loaded lazily on the first GetAll; single entities are cached as they are
// read or written. The cache is only updated after the backing store accepted
// the write, so it can always be rebuilt from the backing store.
//
// All writes for an aggregate type must go through one AggregateStore
// instance; writes made to the backing store behind its back are not seen
// once the entity is cached.
type AggregateStore[T Entity[T]] struct {
	entity  string
	backing BackingStore[T]
	logger  *slog.Logger

	// mu is the aggregate lock: readers share it, writers and Write callbacks own it.
	mu sync.RWMutex

	// cacheMu guards cache and loaded, which readers fill under mu.RLock.
	cacheMu sync.Mutex
	cache   map[string]T
	loaded  bool
}

func NewAggregateStore[T Entity[T]](logger *slog.Logger, entity string, backing BackingStore[T]) *AggregateStore[T] {
	return &AggregateStore[T]{
		entity:  entity,
		backing: backing,
		logger:  logger.With("component", "aggregate_store", "entity", entity),
		cache:   make(map[string]T),
	}
}

// Get returns a copy of the entity, consulting the backing store on a cache
// miss until the full set has been loaded.
func (s *AggregateStore[T]) Get(ctx context.Context, id string) (T, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(ctx, id)
}

// GetAll returns copies of every entity ordered by key
func (s *AggregateStore[T]) GetAll(ctx context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getAll(ctx)
}

func (s *AggregateStore[T]) Add(ctx context.Context, entity T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(ctx, entity)
}

func (s *AggregateStore[T]) Update(ctx context.Context, entity T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(ctx, entity)
}

func (s *AggregateStore[T]) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(ctx, id)
}

// Read runs fn under the read lock. fn must use the given Reader and not
// call back into the store.
func (s *AggregateStore[T]) Read(fn func(r Reader[T]) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(view[T]{s: s})
}

// Write runs fn while holding the write lock so a multi-step mutation is
// never observed half done. fn must use the given Tx and not call back into
// the store.
func (s *AggregateStore[T]) Write(fn func(tx *Tx[T]) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx[T]{s: s})
}

func (s *AggregateStore[T]) get(ctx context.Context, id string) (T, bool, error) {
	var zero T

	s.cacheMu.Lock()
	cached, ok := s.cache[id]
	loaded := s.loaded
	s.cacheMu.Unlock()

	if ok {
		s.logger.Debug("Cache hit", "id", id)
		return cached.Clone(), true, nil
	}
	if loaded {
		return zero, false, nil
	}

	s.logger.Debug("Cache miss", "id", id)
	entity, found, err := s.backing.Get(ctx, id)
	if err != nil {
		return zero, false, fmt.Errorf("failed to get %s %s: %w", s.entity, id, err)
	}
	if !found {
		return zero, false, nil
	}

	s.cacheMu.Lock()
	if _, exists := s.cache[id]; !exists {
		s.cache[id] = entity.Clone()
	}
	s.cacheMu.Unlock()

	return entity, true, nil
}

func (s *AggregateStore[T]) getAll(ctx context.Context) ([]T, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if !s.loaded {
		s.logger.Debug("Loading full set from backing store")
		all, err := s.backing.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s set: %w", s.entity, err)
		}
		for _, entity := range all {
			s.cache[entity.Key()] = entity.Clone()
		}
		s.loaded = true
	}

	result := make([]T, 0, len(s.cache))
	for _, entity := range s.cache {
		result = append(result, entity.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key() < result[j].Key() })
	return result, nil
}

func (s *AggregateStore[T]) add(ctx context.Context, entity T) error {
	id := entity.Key()

	_, exists, err := s.backing.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check %s %s: %w", s.entity, id, err)
	}
	if exists {
		return shared.ErrDuplicateKey{Entity: s.entity, ID: id}
	}

	if err := s.backing.Add(ctx, entity); err != nil {
		return fmt.Errorf("failed to add %s %s: %w", s.entity, id, err)
	}

	s.put(entity)
	return nil
}

func (s *AggregateStore[T]) update(ctx context.Context, entity T) error {
	if err := s.backing.Update(ctx, entity); err != nil {
		return fmt.Errorf("failed to update %s %s: %w", s.entity, entity.Key(), err)
	}

	s.put(entity)
	return nil
}

func (s *AggregateStore[T]) remove(ctx context.Context, id string) error {
	if err := s.backing.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to remove %s %s: %w", s.entity, id, err)
	}

	s.cacheMu.Lock()
	delete(s.cache, id)
	s.cacheMu.Unlock()
	return nil
}

func (s *AggregateStore[T]) put(entity T) {
	s.cacheMu.Lock()
	s.cache[entity.Key()] = entity.Clone()
	s.cacheMu.Unlock()
}

// Tx exposes the store operations inside a Write callback
type Tx[T Entity[T]] struct {
	s *AggregateStore[T]
}

func (tx *Tx[T]) Get(ctx context.Context, id string) (T, bool, error) { return tx.s.get(ctx, id) }
func (tx *Tx[T]) GetAll(ctx context.Context) ([]T, error)             { return tx.s.getAll(ctx) }
func (tx *Tx[T]) Add(ctx context.Context, entity T) error              { return tx.s.add(ctx, entity) }
func (tx *Tx[T]) Update(ctx context.Context, entity T) error           { return tx.s.update(ctx, entity) }
func (tx *Tx[T]) Remove(ctx context.Context, id string) error          { return tx.s.remove(ctx, id) }

// Invalidate drops the cache so the next reads go to the backing store. Call
// it when a write may have reached the backing store without the cache
// seeing it, such as a failed compensating write.
func (tx *Tx[T]) Invalidate() {
	tx.s.logger.Warn("Cache invalidated")
	tx.s.cacheMu.Lock()
	tx.s.cache = make(map[string]T)
	tx.s.loaded = false
	tx.s.cacheMu.Unlock()
}

type view[T Entity[T]] struct {
	s *AggregateStore[T]
}

func (v view[T]) Get(ctx context.Context, id string) (T, bool, error) { return v.s.get(ctx, id) }
func (v view[T]) GetAll(ctx context.Context) ([]T, error)             { return v.s.getAll(ctx) }
