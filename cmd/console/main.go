package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/letser/plotplay/internal/config"
	"github.com/letser/plotplay/internal/logger"
	"github.com/letser/plotplay/internal/session"
	"github.com/letser/plotplay/internal/storage"
)

func main() {
	local := flag.Bool("local", false, "skip Redis and keep sessions in memory")
	flag.Parse()

	cfg := config.Load()

	// The terminal belongs to the UI, so logs go to a file.
	log, closeLog := setupLogging(cfg)
	defer closeLog()

	store := openStorage(cfg, *local, log)
	defer func() {
		_ = store.Close()
	}()

	manager := session.NewManager(store, log)

	p := tea.NewProgram(NewConsoleUI(manager),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) (*slog.Logger, func()) {
	f, err := os.OpenFile("console.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return logger.SetupWithWriter(cfg, io.Discard), func() {}
	}
	return logger.SetupWithWriter(cfg, f), func() { _ = f.Close() }
}

// openStorage connects to Redis, or falls back to the in-memory store
// when Redis is unreachable or -local was given. The fallback loads the
// game catalog from disk itself, since the mock has no filesystem side.
func openStorage(cfg *config.Config, local bool, log *slog.Logger) storage.Storage {
	if !local {
		store, err := storage.NewRedisStore(cfg.RedisURL, cfg.DataDir, log)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err == nil {
				log.Info("Using Redis session storage", "url", cfg.RedisURL)
				return store.WithTTLs(cfg.SessionTTL, cfg.LockTTL)
			}
			_ = store.Close()
		}
		log.Warn("Redis unavailable, sessions will not survive this process")
	}

	mock := storage.NewMockStore()
	games, err := storage.LoadGames(cfg.DataDir, log)
	if err != nil {
		log.Error("Failed to load game files", "error", err, "data_dir", cfg.DataDir)
	}
	for _, g := range games {
		mock.AddGame(g)
	}
	log.Info("Using in-memory session storage", "games", len(games))
	return mock
}
