package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/JonMunkholm/bizsight/internal/cache"
	"github.com/JonMunkholm/bizsight/internal/config"
	"github.com/JonMunkholm/bizsight/internal/core"
	"github.com/JonMunkholm/bizsight/internal/database"
	"github.com/JonMunkholm/bizsight/internal/logging"
	"github.com/JonMunkholm/bizsight/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
)

// app holds the wired dependencies shared by serve and import.
type app struct {
	cfg     *config.Config
	service *core.Service
	closers []func()
}

// openApp loads config, connects the store and cache, and builds the
// service.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store", cfg.Store.Driver,
		"db_max_conns", cfg.Database.MaxConns,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	a := &app{cfg: cfg}

	st, err := a.openStore(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	pc := a.openCache(ctx)

	a.service = core.NewService(st, pc, cfg)
	return a, nil
}

func (a *app) openStore(ctx context.Context) (store.Store, error) {
	if a.cfg.Store.Driver == config.DriverMemory {
		slog.Warn("using in-memory store, data is lost on restart")
		return store.NewMemory(), nil
	}

	if a.cfg.Database.MigrateOnStart {
		if err := database.MigrateUp(a.cfg.Database.URL); err != nil {
			return nil, err
		}
		slog.Info("migrations applied")
	}

	poolConfig, err := pgxpool.ParseConfig(a.cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(a.cfg.Database.MaxConns)
	poolConfig.MinConns = int32(a.cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = a.cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = a.cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	a.closers = append(a.closers, pool.Close)

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(a.cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return store.NewPostgres(pool), nil
}

// openCache connects Redis when configured. The cache is optional, so a
// failed connection only disables it.
func (a *app) openCache(ctx context.Context) cache.ProductCache {
	if a.cfg.Redis.URL == "" {
		return cache.Nop{}
	}
	rc, err := cache.NewRedis(ctx, a.cfg.Redis.URL, a.cfg.Redis.TTL)
	if err != nil {
		slog.Warn("product cache disabled", "error", err)
		return cache.Nop{}
	}
	a.closers = append(a.closers, func() {
		if err := rc.Close(); err != nil {
			slog.Warn("close redis", "error", err)
		}
	})
	slog.Info("product cache enabled", "ttl", a.cfg.Redis.TTL)
	return rc
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
