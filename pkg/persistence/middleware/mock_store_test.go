package middleware_test

import (
	"context"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
)

// MockStore is a map-based store that keeps what it is given, without copying,
// so tests can inspect exactly what the middleware wrote.
type MockStore struct {
	data map[string]map[string]any
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]map[string]any),
	}
}

func (s *MockStore) Save(ctx context.Context, sessionID string, data map[string]any) error {
	s.data[sessionID] = data
	return nil
}

func (s *MockStore) Load(ctx context.Context, sessionID string) (map[string]any, error) {
	data, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return data, nil
}

func (s *MockStore) Delete(ctx context.Context, sessionID string) error {
	delete(s.data, sessionID)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

var _ ports.SessionStore = (*MockStore)(nil)
