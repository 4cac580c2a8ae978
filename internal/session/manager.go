// Package session orchestrates play sessions on top of a storage
// backend: creation, lookup, teardown, and the application of one
// action per turn under the session's turn lock.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/letser/plotplay/internal/storage"
	"github.com/letser/plotplay/pkg/game"
	"github.com/letser/plotplay/pkg/pacing"
	"github.com/letser/plotplay/pkg/state"
)

var (
	// ErrSessionBusy means another action holds the session's turn lock.
	ErrSessionBusy = errors.New("session is busy with another action")
	// ErrSessionNotFound means no world state exists under the id.
	ErrSessionNotFound = errors.New("session not found")
)

// Manager coordinates sessions. Game definitions are loaded once and
// cached for the manager's lifetime; they are validated at load and
// read-only afterwards, so the cache needs no invalidation.
type Manager struct {
	store  storage.Storage
	logger *slog.Logger
	hints  pacing.HintProvider

	mu    sync.RWMutex
	games map[string]*game.Game
}

// NewManager creates a session manager on top of a storage backend.
func NewManager(store storage.Storage, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:  store,
		logger: logger,
		games:  make(map[string]*game.Game),
	}
}

// WithHintProvider routes an advisory time hint source into every
// turn's resolver. Returns the Manager for method chaining.
func (m *Manager) WithHintProvider(h pacing.HintProvider) *Manager {
	m.hints = h
	return m
}

// Games lists the playable game definitions by id and display name.
func (m *Manager) Games(ctx context.Context) (map[string]string, error) {
	return m.store.ListGames(ctx)
}

// Game returns a loaded game definition, caching it on first use.
func (m *Manager) Game(ctx context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	g, ok := m.games[id]
	m.mu.RUnlock()
	if ok {
		return g, nil
	}

	g, err := m.store.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.games[id] = g
	m.mu.Unlock()
	return g, nil
}

// NewSession starts a fresh session of a game and persists it.
func (m *Manager) NewSession(ctx context.Context, gameID string) (*state.WorldState, error) {
	g, err := m.Game(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", gameID, err)
	}

	ws := state.NewWorldState(g)
	if err := m.store.SaveWorldState(ctx, ws); err != nil {
		return nil, fmt.Errorf("failed to save new session: %w", err)
	}

	m.logger.Info("Session created", "session_id", ws.ID, "game_id", gameID)
	return ws, nil
}

// Session returns a session's world state.
func (m *Manager) Session(ctx context.Context, id uuid.UUID) (*state.WorldState, error) {
	ws, err := m.store.LoadWorldState(ctx, id)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, ErrSessionNotFound
	}
	return ws, nil
}

// EndSession deletes a session's world state.
func (m *Manager) EndSession(ctx context.Context, id uuid.UUID) error {
	if err := m.store.DeleteWorldState(ctx, id); err != nil {
		return err
	}
	m.logger.Info("Session ended", "session_id", id)
	return nil
}

// Snapshot returns a read-only view of a session for display.
func (m *Manager) Snapshot(ctx context.Context, id uuid.UUID) (*state.Snapshot, error) {
	ws, err := m.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err := m.Game(ctx, ws.GameID)
	if err != nil {
		return nil, err
	}
	return state.NewSnapshot(ws, g), nil
}

// EnterNode points the session's visit accumulator at a new node
// instance, resetting the per-visit time spend.
func (m *Manager) EnterNode(ctx context.Context, id uuid.UUID, nodeID string) error {
	release, err := m.lock(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	ws, err := m.Session(ctx, id)
	if err != nil {
		return err
	}

	ws.EnterVisit(nodeID)
	if err := m.store.SaveWorldState(ctx, ws); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// ApplyAction runs one turn under the session lock: load the world
// state, resolve the action and its effects, save. A concurrent action
// on the same session gets ErrSessionBusy instead of queueing.
func (m *Manager) ApplyAction(ctx context.Context, id uuid.UUID, action state.Action, effects []state.Effect) (*state.Outcome, error) {
	release, err := m.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	ws, err := m.Session(ctx, id)
	if err != nil {
		return nil, err
	}

	g, err := m.Game(ctx, ws.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game %s: %w", ws.GameID, err)
	}

	resolver := state.NewResolver(ws, g, m.logger)
	if m.hints != nil {
		resolver = resolver.WithHintProvider(m.hints)
	}
	outcome := resolver.Apply(action, effects)

	if err := m.store.SaveWorldState(ctx, ws); err != nil {
		return nil, fmt.Errorf("failed to save session after turn: %w", err)
	}

	m.logger.Info("Turn resolved",
		"session_id", ws.ID,
		"game_id", ws.GameID,
		"kind", action.Kind,
		"minutes", outcome.Time.Minutes,
		"applied", outcome.Applied,
		"rejected", outcome.Rejected,
		"turn", ws.TurnCount)
	return &outcome, nil
}

// lock takes the session's turn lock with a one-off owner token and
// returns the matching release func.
func (m *Manager) lock(ctx context.Context, id uuid.UUID) (func(), error) {
	owner := uuid.NewString()
	acquired, err := m.store.AcquireTurnLock(ctx, id, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire session lock: %w", err)
	}
	if !acquired {
		return nil, ErrSessionBusy
	}
	return func() { m.store.ReleaseTurnLock(ctx, id, owner) }, nil
}
