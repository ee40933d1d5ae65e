// Package cli wires the mcpbridge command: configuration in, a ready Bridge
// over the sample Weather API out.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/mcpbridge"
	"github.com/aretw0/mcpbridge/internal/config"
	"github.com/aretw0/mcpbridge/internal/logging"
	"github.com/aretw0/mcpbridge/internal/sample/weather"
	"github.com/aretw0/mcpbridge/pkg/api"
	"github.com/aretw0/mcpbridge/pkg/services"
)

// App is a configured bridge and the resources it owns.
type App struct {
	Config config.Config
	Logger *slog.Logger
	Bridge *mcpbridge.Bridge
	Store  weather.Store

	closers []io.Closer
}

// NewLogger builds the logger described by cfg, writing to w.
func NewLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if cfg.Format == "json" {
		return logging.NewJSON(w, level), nil
	}
	return logging.NewText(w, level), nil
}

// NewStore opens the forecast store named by cfg and seeds it.
func NewStore(ctx context.Context, cfg config.StoreConfig, now time.Time) (weather.Store, error) {
	seed := weather.Generate(cfg.Seed.SeedStart(now), cfg.Seed.Days, cfg.Seed.Seed)

	switch cfg.Driver {
	case "memory":
		return weather.NewMemoryStore(seed...), nil
	case "redis":
		var opts []weather.RedisOption
		if cfg.Redis.TTL > 0 {
			opts = append(opts, weather.WithTTL(cfg.Redis.TTL))
		}
		store := weather.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		for _, f := range seed {
			if err := store.Put(ctx, f); err != nil {
				return nil, errors.Join(fmt.Errorf("seeding redis store: %w", err), store.Close())
			}
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// Build creates the store and the bridge described by cfg.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	store, err := NewStore(ctx, cfg.Store, time.Now())
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: logger, Store: store}
	if c, ok := store.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}

	a := api.New()
	weather.Register(a)

	sp := services.NewProvider()
	services.Singleton[weather.Store](sp, store)

	opts := []mcpbridge.Option{
		mcpbridge.WithLogger(logger),
		mcpbridge.WithBaseURL(cfg.Server.BaseURL),
	}
	if cfg.Server.Name != "" {
		opts = append(opts, mcpbridge.WithName(cfg.Server.Name))
	}
	if cfg.API.Group != "" {
		opts = append(opts, mcpbridge.WithGroup(cfg.API.Group))
	}

	app.Bridge, err = mcpbridge.New(a, sp, opts...)
	if err != nil {
		return nil, errors.Join(err, app.Close())
	}
	return app, nil
}

// Close releases the store.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
