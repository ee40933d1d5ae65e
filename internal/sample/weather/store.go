package weather

import (
	"context"
	"slices"
	"sync"

	"github.com/oapi-codegen/runtime/types"
)

// Store persists forecasts by date.
type Store interface {
	Get(ctx context.Context, date types.Date) (Forecast, bool, error)
	List(ctx context.Context) ([]Forecast, error)
	Put(ctx context.Context, f Forecast) error
	Delete(ctx context.Context, date types.Date) (bool, error)
}

// InvalidOperationError reports a call the store cannot serve in its current state.
type InvalidOperationError struct {
	Msg string
}

func (e *InvalidOperationError) Error() string { return e.Msg }

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]Forecast
	closed bool
}

// NewMemoryStore creates a store holding seed.
func NewMemoryStore(seed ...Forecast) *MemoryStore {
	s := &MemoryStore{data: make(map[string]Forecast, len(seed))}
	for _, f := range seed {
		s.data[f.Date.String()] = f
	}
	return s
}

func (s *MemoryStore) Get(ctx context.Context, date types.Date) (Forecast, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Forecast{}, false, &InvalidOperationError{Msg: "store is closed"}
	}
	f, ok := s.data[date.String()]
	return f, ok, nil
}

// List returns every forecast ordered by date.
func (s *MemoryStore) List(ctx context.Context) ([]Forecast, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, &InvalidOperationError{Msg: "store is closed"}
	}

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]Forecast, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.data[k])
	}
	return out, nil
}

func (s *MemoryStore) Put(ctx context.Context, f Forecast) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &InvalidOperationError{Msg: "store is closed"}
	}
	s.data[f.Date.String()] = f
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, date types.Date) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, &InvalidOperationError{Msg: "store is closed"}
	}
	_, ok := s.data[date.String()]
	delete(s.data, date.String())
	return ok, nil
}

// Close makes every later call fail.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
