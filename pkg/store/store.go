// Package store provides the attribute bag a wizard and its steps share during one request.
package store

import (
	"sort"

	"github.com/aretw0/stepwise/pkg/ports"
)

// Store is a thin façade over an externally owned map.
// It does not own the map: Purge clears it in place so the owner observes the change.
// Not safe for concurrent use; callers serialize access per session (see session.Manager).
type Store struct {
	data  map[string]any
	dirty bool
}

var _ ports.Store = (*Store)(nil)

// New wraps backing. A nil map is replaced by a fresh one.
func New(backing map[string]any) *Store {
	if backing == nil {
		backing = make(map[string]any)
	}
	return &Store{data: backing}
}

// Get returns the value under key and whether it is present.
func (s *Store) Get(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

// Set stores value under key.
func (s *Store) Set(key string, value any) {
	s.data[key] = value
	s.dirty = true
}

// Purge removes every key from the backing map.
func (s *Store) Purge() {
	for k := range s.data {
		delete(s.data, k)
	}
	s.dirty = true
}

// Data returns the backing map.
func (s *Store) Data() map[string]any {
	return s.data
}

// Keys returns the stored keys in lexical order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	return len(s.data)
}

// Dirty reports whether Set or Purge was called since construction.
func (s *Store) Dirty() bool {
	return s.dirty
}
