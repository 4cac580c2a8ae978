package storage

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/letser/plotplay/pkg/game"
)

// Game definitions live as YAML files under <dataDir>/games and are
// parsed and validated on every read. Sessions hold the loaded
// definition for their lifetime, so this path is only hit at session
// start.

// LoadGames parses and validates every game document under
// <dataDir>/games, keyed by game id. Unloadable files are skipped with
// a warning so one bad document does not take down the whole catalog.
// A missing games directory yields an empty catalog.
func LoadGames(dataDir string, logger *slog.Logger) (map[string]*game.Game, error) {
	gamesDir := filepath.Join(dataDir, "games")
	games := make(map[string]*game.Game)

	err := filepath.WalkDir(gamesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !isGameFile(path) {
			return nil
		}

		g, err := game.LoadFile(path)
		if err != nil {
			logger.Warn("Skipping unloadable game file", "path", path, "error", err)
			return nil
		}

		games[g.ID] = g
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan games directory: %w", err)
	}

	return games, nil
}

func (r *RedisStore) ListGames(ctx context.Context) (map[string]string, error) {
	games, err := LoadGames(r.dataDir, r.logger)
	if err != nil {
		r.logger.Error("Failed to list games", "error", err)
		return nil, err
	}

	names := make(map[string]string, len(games))
	for id, g := range games {
		names[id] = g.Name
	}
	return names, nil
}

func (r *RedisStore) GetGame(ctx context.Context, id string) (*game.Game, error) {
	games, err := LoadGames(r.dataDir, r.logger)
	if err != nil {
		r.logger.Error("Failed to load games", "error", err)
		return nil, err
	}

	g, ok := games[id]
	if !ok {
		return nil, fmt.Errorf("game not found: %s", id)
	}
	return g, nil
}

func isGameFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}
