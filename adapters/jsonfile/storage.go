package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"ratereminder/engine"
)

// Store persists every container to a single JSON file, the local equivalent of an
// application settings file. Writes go to a temp file that is renamed into place, so a
// crash never leaves a half-written container behind.
type Store struct {
	path string
	mu   sync.Mutex
	// in-memory cache of the file
	data map[string]map[string]string
}

func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("jsonfile: path cannot be empty")
	}
	s := &Store{path: path, data: map[string]map[string]string{}}
	if err := s.load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

func (s *Store) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	var raw map[string]map[string]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	for k, v := range raw {
		if v == nil {
			v = map[string]string{}
		}
		s.data[k] = v
	}
	return nil
}

func (s *Store) persist() error {
	tmp := s.path + ".tmp"
	b, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) Get(_ context.Context, container string) (map[string]string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, ok := s.data[container]
	if !ok {
		return nil, false, nil
	}
	return maps.Clone(values), true, nil
}

func (s *Store) Put(_ context.Context, container string, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, existed := s.data[container]
	cp := maps.Clone(values)
	if cp == nil {
		cp = map[string]string{}
	}
	s.data[container] = cp
	if err := s.persist(); err != nil {
		// keep the cache in line with the file
		if existed {
			s.data[container] = prev
		} else {
			delete(s.data, container)
		}
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, container string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, existed := s.data[container]
	if !existed {
		return nil
	}
	delete(s.data, container)
	if err := s.persist(); err != nil {
		s.data[container] = prev
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

var _ engine.Backend = (*Store)(nil)
