// Package memstore backs the allocation engine with process-local maps. It is
// the storage double the concurrency tests run against and doubles as the
// STORE_DRIVER=memory deployment for local runs.
package memstore

import (
	"context"
	"sync"
	"time"

	"commerce-core/internal/engine"
)

type record struct {
	value   any
	version int64
}

type Store struct {
	mu      sync.RWMutex
	records map[engine.Key]record

	lockMu sync.Mutex
	locks  map[engine.Key]chan struct{}
}

func NewStore() *Store {
	return &Store{
		records: make(map[engine.Key]record),
		locks:   make(map[engine.Key]chan struct{}),
	}
}

func (s *Store) Get(_ context.Context, key engine.Key) (engine.Versioned, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return engine.Versioned{}, engine.ErrNotFound
	}
	return engine.Versioned{Value: rec.value, Version: rec.version}, nil
}

func (s *Store) CompareAndSwap(_ context.Context, key engine.Key, value any, expected int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return engine.ErrNotFound
	}
	if rec.version != expected {
		return engine.ErrConflict
	}
	s.records[key] = record{value: value, version: rec.version + 1}
	return nil
}

func (s *Store) Insert(_ context.Context, key engine.Key, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[key]; ok {
		return engine.ErrDuplicate
	}
	s.records[key] = record{value: value, version: 1}
	return nil
}

// Seed writes a fixture unconditionally; test setup only.
func (s *Store) Seed(key engine.Key, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = record{value: value, version: 1}
}

// ListKind snapshots every aggregate of one kind, in no particular order.
func (s *Store) ListKind(kind engine.Kind) []any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []any
	for key, rec := range s.records {
		if key.Kind == kind {
			out = append(out, rec.value)
		}
	}
	return out
}

// Acquire implements engine.Locker with a channel-based mutex per key so the
// wait can be bounded and cancelled.
func (s *Store) Acquire(ctx context.Context, key engine.Key, wait time.Duration) (func(), error) {
	ch := s.lockChan(key)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		var once sync.Once
		release := func() {
			once.Do(func() { <-ch })
		}
		return release, nil
	case <-timer.C:
		return nil, engine.ErrBusy
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Store) lockChan(key engine.Key) chan struct{} {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	return ch
}
