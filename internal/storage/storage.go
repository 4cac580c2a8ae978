package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/letser/plotplay/pkg/game"
	"github.com/letser/plotplay/pkg/state"
)

// HealthChecker defines health check capabilities
type HealthChecker interface {
	// Ping tests the storage connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the storage connection
	Close() error
}

// Storage persists session state and serves static game content.
type Storage interface {
	HealthChecker
	Closer

	// SaveWorldState saves a session's world state under its ID
	SaveWorldState(ctx context.Context, ws *state.WorldState) error

	// LoadWorldState retrieves a world state by session ID.
	// Returns nil if the session doesn't exist.
	LoadWorldState(ctx context.Context, id uuid.UUID) (*state.WorldState, error)

	// DeleteWorldState removes a session by ID
	DeleteWorldState(ctx context.Context, id uuid.UUID) error

	// ListGames maps the IDs of loadable game definitions to their
	// display names
	ListGames(ctx context.Context) (map[string]string, error)

	// GetGame returns a validated game definition by ID
	GetGame(ctx context.Context, id string) (*game.Game, error)

	// AcquireTurnLock takes the per-session action lock for owner.
	// Returns false when another action currently holds it.
	AcquireTurnLock(ctx context.Context, id uuid.UUID, owner string) (bool, error)

	// ReleaseTurnLock releases the lock if owner still holds it
	ReleaseTurnLock(ctx context.Context, id uuid.UUID, owner string)
}
