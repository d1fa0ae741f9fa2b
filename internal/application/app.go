// Package application assembles the store, the service and the import
// defaults from configuration. Both the HTTP server and the importer CLI
// start from here.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/JonMunkholm/athletix/internal/config"
	"github.com/JonMunkholm/athletix/internal/core"
	"github.com/JonMunkholm/athletix/internal/store"
	"github.com/JonMunkholm/athletix/internal/store/memory"
	"github.com/JonMunkholm/athletix/internal/store/postgres"
)

// App is a wired service with its backing store.
type App struct {
	Service  *core.Service
	Store    store.Store
	Defaults core.ImportDefaults

	close func()
}

// Open builds the configured store and the service on top of it. The
// postgres backend connects, pings and optionally migrates before returning.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	opts, err := core.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	defaults, err := core.ImportDefaultsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	st, closeStore, err := openStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	return &App{
		Service:  core.NewService(st, opts),
		Store:    st,
		Defaults: defaults,
		close:    closeStore,
	}, nil
}

// Close releases the store.
func (a *App) Close() {
	if a.close != nil {
		a.close()
	}
}

func openStore(ctx context.Context, db config.DatabaseConfig) (store.Store, func(), error) {
	switch strings.ToLower(db.Backend) {
	case config.BackendMemory:
		slog.Warn("using in-memory store; data is lost on exit")
		return memory.New(), nil, nil

	case config.BackendPostgres:
		pg, err := postgres.Open(ctx, postgres.PoolConfig{
			URL:             db.URL,
			MaxConns:        db.MaxConns,
			MinConns:        db.MinConns,
			MaxConnLifetime: db.MaxConnLifetime,
			MaxConnIdleTime: db.MaxConnIdleTime,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("database: %w", err)
		}
		slog.Info("connected to database", "name", databaseName(db.URL))

		if db.Migrate {
			if err := pg.Migrate(ctx); err != nil {
				pg.Close()
				return nil, nil, fmt.Errorf("database: %w", err)
			}
			slog.Info("database schema applied")
		}
		return pg, pg.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", db.Backend)
	}
}

// databaseName extracts the database from a URL for logging without
// exposing credentials.
func databaseName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}
