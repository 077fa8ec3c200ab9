// Package workspace is the configuration service shared by the panes of the
// control panel. Values are JSON documents keyed by dotted paths such as
// "workspace.machineProfile". Every Replace notifies subscribers
// synchronously, in subscription order; the last write wins.
package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jask/cncdeck/internal/database/repository"
)

// Well-known paths.
const (
	PathMachineProfile = "workspace.machineProfile"
	PathCameraMode     = "workspace.camera.mode"
	PathCameraPosition = "workspace.camera.position"
)

// Change describes one write.
type Change struct {
	Path  string
	Value json.RawMessage
}

// Backend persists values. SettingsRepo satisfies it.
type Backend interface {
	Put(ctx context.Context, key, value string) error
	List(ctx context.Context) ([]repository.Setting, error)
}

// Store holds the current values and the change subscribers.
type Store struct {
	mu      sync.RWMutex
	values  map[string]json.RawMessage
	subs    []subscriber
	nextID  int
	backend Backend
}

type subscriber struct {
	id int
	fn func(Change)
}

// NewMemory returns a store that keeps values in memory only.
func NewMemory() *Store {
	return &Store{values: map[string]json.RawMessage{}}
}

// Open loads every persisted value from backend. Later writes go through
// to it.
func Open(ctx context.Context, backend Backend) (*Store, error) {
	s := NewMemory()
	s.backend = backend
	settings, err := backend.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	for _, st := range settings {
		if !json.Valid([]byte(st.Value)) {
			continue
		}
		s.values[st.Key] = json.RawMessage(st.Value)
	}
	return s, nil
}

// Get returns the raw value at path.
func (s *Store) Get(path string) (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[path]
	return v, ok
}

// GetInto decodes the value at path into dst. It reports false when the
// path is unset.
func (s *Store) GetInto(path string, dst any) (bool, error) {
	raw, ok := s.Get(path)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

// Replace stores value at path, persists it, and notifies subscribers.
// The in-memory value is updated even when persistence fails.
func (s *Store) Replace(ctx context.Context, path string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	s.mu.Lock()
	s.values[path] = raw
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	var persistErr error
	if s.backend != nil {
		if err := s.backend.Put(ctx, path, string(raw)); err != nil {
			persistErr = fmt.Errorf("persist %s: %w", path, err)
		}
	}
	ch := Change{Path: path, Value: raw}
	for _, sub := range subs {
		sub.fn(ch)
	}
	return persistErr
}

// Subscribe registers fn for change events and returns a function that
// removes it. Calling the returned function twice is harmless.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() { s.unsubscribe(id) }
}

// Subscribers returns the number of registered handlers.
func (s *Store) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

func (s *Store) unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}
