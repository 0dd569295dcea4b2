package memory

import (
	"context"
	"maps"
	"sync"

	"ratereminder/engine"
)

// Store is a concurrent in-memory Backend implementation. State is lost on exit,
// which makes it the default for tests and for hosts that persist elsewhere.
type Store struct {
	mu         sync.Mutex
	containers map[string]map[string]string
}

func New() *Store { return &Store{containers: map[string]map[string]string{}} }

func (s *Store) Get(_ context.Context, container string) (map[string]string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, ok := s.containers[container]
	if !ok {
		return nil, false, nil
	}
	return maps.Clone(values), true, nil
}

func (s *Store) Put(_ context.Context, container string, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := maps.Clone(values)
	if cp == nil {
		cp = map[string]string{}
	}
	s.containers[container] = cp
	return nil
}

func (s *Store) Delete(_ context.Context, container string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.containers, container)
	return nil
}

var _ engine.Backend = (*Store)(nil)
