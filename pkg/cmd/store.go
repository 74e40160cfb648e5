package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/cache"
	"github.com/Yoas-Hutapea/IDISys-sub004/pkg/session"
)

// NewSessionStore creates the wizard session store. With a Redis URL
// sessions survive restarts and are shared between instances; without,
// they live in process memory and a janitor sweeps expired ones.
func NewSessionStore(redisURL string, retention time.Duration, logger *slog.Logger) (session.Store, func()) {
	if redisURL == "" {
		store := session.NewMemoryStore()

		janitor := session.NewJanitor(store, retention, logger)
		if err := janitor.Start("@every 10m"); err != nil {
			panic(fmt.Errorf("failed to start session janitor: %w", err))
		}

		return store, janitor.Stop
	}

	store, err := session.NewRedisStore(redisURL, retention)
	if err != nil {
		panic(fmt.Errorf("failed to connect session store: %w", err))
	}

	return store, func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close session store", "error", err)
		}
	}
}

// NewCache creates the reference data cache, Redis-backed when a URL is
// configured.
func NewCache(redisURL string, logger *slog.Logger) (cache.Cache, func()) {
	if redisURL == "" {
		return cache.NewMemoryCache(), func() {}
	}

	redisCache, err := cache.NewRedisCache(redisURL, "procurement")
	if err != nil {
		panic(fmt.Errorf("failed to connect cache: %w", err))
	}

	return redisCache, func() {
		if err := redisCache.Close(); err != nil {
			logger.Error("Failed to close cache", "error", err)
		}
	}
}
