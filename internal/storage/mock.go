package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/letser/plotplay/pkg/game"
	"github.com/letser/plotplay/pkg/state"
)

// MockStore is a mock implementation of Storage for testing
type MockStore struct {
	mu         sync.RWMutex
	sessions   map[uuid.UUID]*state.WorldState
	games      map[string]*game.Game
	locks      map[uuid.UUID]string
	pingError  error
	saveError  error
	SaveCalls  int
}

// Ensure MockStore implements Storage interface
var _ Storage = (*MockStore)(nil)

// NewMockStore creates a new mock storage
func NewMockStore() *MockStore {
	return &MockStore{
		sessions: make(map[uuid.UUID]*state.WorldState),
		games:    make(map[string]*game.Game),
		locks:    make(map[uuid.UUID]string),
	}
}

// SetPingSuccess configures the mock to succeed on ping
func (m *MockStore) SetPingSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = nil
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStore) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail on save with the given error
func (m *MockStore) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// Ping mocks storage ping
func (m *MockStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.pingError != nil {
		return m.pingError
	}
	return nil
}

// Close mocks storage close
func (m *MockStore) Close() error {
	// Mock close doesn't need to do anything
	return nil
}

// SaveWorldState mocks saving a world state
func (m *MockStore) SaveWorldState(ctx context.Context, ws *state.WorldState) error {
	if ws == nil {
		return errors.New("world state cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.saveError != nil {
		return m.saveError
	}
	m.sessions[ws.ID] = ws
	return nil
}

// LoadWorldState mocks loading a world state
func (m *MockStore) LoadWorldState(ctx context.Context, id uuid.UUID) (*state.WorldState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ws, exists := m.sessions[id]
	if !exists {
		return nil, nil // Return nil for not found
	}
	return ws, nil
}

// DeleteWorldState mocks deleting a world state
func (m *MockStore) DeleteWorldState(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// ListGames mocks listing game definitions
func (m *MockStore) ListGames(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]string, len(m.games))
	for id, g := range m.games {
		result[id] = g.Name
	}
	return result, nil
}

// GetGame mocks getting a game definition by ID
func (m *MockStore) GetGame(ctx context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, exists := m.games[id]
	if !exists {
		return nil, errors.New("game not found: " + id)
	}
	return g, nil
}

// AddGame adds a game definition to the mock storage (for testing)
func (m *MockStore) AddGame(g *game.Game) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = g
}

// AcquireTurnLock mocks the per-session action lock
func (m *MockStore) AcquireTurnLock(ctx context.Context, id uuid.UUID, owner string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.locks[id]; held {
		return false, nil
	}
	m.locks[id] = owner
	return true, nil
}

// ReleaseTurnLock mocks releasing the action lock
func (m *MockStore) ReleaseTurnLock(ctx context.Context, id uuid.UUID, owner string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[id] == owner {
		delete(m.locks, id)
	}
}

// HoldsLock reports whether a session is currently locked (for testing)
func (m *MockStore) HoldsLock(id uuid.UUID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, held := m.locks[id]
	return held
}
