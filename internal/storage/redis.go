package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/letser/plotplay/pkg/state"
)

// RedisStore implements the Storage interface using Redis for session
// state and the filesystem for static game definitions.
type RedisStore struct {
	client     *redis.Client
	logger     *slog.Logger
	dataDir    string
	sessionTTL time.Duration
	lockTTL    time.Duration
}

// Ensure RedisStore implements Storage interface
var _ Storage = (*RedisStore)(nil)

// releaseScript deletes a turn lock only when the caller still owns it,
// so an expired lock reclaimed by another action is never clobbered.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// NewRedisStore creates a new Redis storage instance. The URL may be a
// plain host:port or a full redis:// URL.
func NewRedisStore(redisURL string, dataDir string, logger *slog.Logger) (*RedisStore, error) {
	opts := &redis.Options{Addr: redisURL}
	if strings.Contains(redisURL, "://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
		opts = parsed
	}

	if dataDir == "" {
		dataDir = "./data"
	}

	return &RedisStore{
		client:     redis.NewClient(opts),
		logger:     logger,
		dataDir:    dataDir,
		sessionTTL: 24 * time.Hour,
		lockTTL:    30 * time.Second,
	}, nil
}

// WithTTLs overrides the session and lock expiries.
// Returns the RedisStore for method chaining.
func (r *RedisStore) WithTTLs(session, lock time.Duration) *RedisStore {
	if session > 0 {
		r.sessionTTL = session
	}
	if lock > 0 {
		r.lockTTL = lock
	}
	return r
}

// Health and lifecycle methods

func (r *RedisStore) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStore) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// WorldState operations (Redis-backed)

func (r *RedisStore) SaveWorldState(ctx context.Context, ws *state.WorldState) error {
	if ws == nil {
		return errors.New("world state cannot be nil")
	}
	ws.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(ws)
	if err != nil {
		r.logger.Error("Failed to marshal world state", "uuid", ws.ID, "error", err)
		return fmt.Errorf("failed to marshal world state: %w", err)
	}

	key := "worldstate:" + ws.ID.String()
	cmd := r.client.Set(ctx, key, string(data), r.sessionTTL)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to save world state", "uuid", ws.ID, "error", err)
		return fmt.Errorf("failed to save world state: %w", err)
	}

	return nil
}

func (r *RedisStore) LoadWorldState(ctx context.Context, id uuid.UUID) (*state.WorldState, error) {
	key := "worldstate:" + id.String()
	cmd := r.client.Get(ctx, key)
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			r.logger.Warn("World state not found", "uuid", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load world state", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load world state: %w", err)
	}

	data := cmd.Val()
	if data == "" {
		r.logger.Warn("World state not found", "uuid", id)
		return nil, nil
	}

	var ws state.WorldState
	if err := json.Unmarshal([]byte(data), &ws); err != nil {
		r.logger.Error("Failed to unmarshal world state", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal world state: %w", err)
	}

	return &ws, nil
}

func (r *RedisStore) DeleteWorldState(ctx context.Context, id uuid.UUID) error {
	key := "worldstate:" + id.String()
	cmd := r.client.Del(ctx, key)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to delete world state", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete world state: %w", err)
	}
	return nil
}

// Turn lock operations (Redis-backed)

func (r *RedisStore) AcquireTurnLock(ctx context.Context, id uuid.UUID, owner string) (bool, error) {
	key := "session-lock:" + id.String()
	locked, err := r.client.SetNX(ctx, key, owner, r.lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire turn lock: %w", err)
	}
	return locked, nil
}

func (r *RedisStore) ReleaseTurnLock(ctx context.Context, id uuid.UUID, owner string) {
	key := "session-lock:" + id.String()
	if err := releaseScript.Run(ctx, r.client, []string{key}, owner).Err(); err != nil {
		r.logger.Error("Failed to release turn lock", "error", err, "session_id", id.String())
	}
}
