package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/ledgerdesk-api/internal/handler"
	"github.com/noah-isme/ledgerdesk-api/pkg/cache"
	"github.com/noah-isme/ledgerdesk-api/pkg/config"
	"github.com/noah-isme/ledgerdesk-api/pkg/database"
	"github.com/noah-isme/ledgerdesk-api/pkg/kvstore"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

type backendHandle struct {
	kvstore.Backend
	ping pinger
}

// openBackend selects the key-value backend named by STORE_DRIVER.
func openBackend(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*backendHandle, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		logr.Warn("memory store selected; data is lost on restart")
		return &backendHandle{Backend: kvstore.NewMemoryBackend()}, nil
	case "", config.StoreDriverSQLite:
		db, err := database.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return sqlBackend(ctx, db, kvstore.DialectSQLite)
	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, err
		}
		return sqlBackend(ctx, db, kvstore.DialectPostgres)
	case config.StoreDriverRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &backendHandle{Backend: kvstore.NewRedisBackend(client), ping: redisPinger{client: client}}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

func sqlBackend(ctx context.Context, db *sqlx.DB, dialect kvstore.Dialect) (*backendHandle, error) {
	backend, err := kvstore.NewSQLBackend(ctx, db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &backendHandle{Backend: backend, ping: db}, nil
}

func backendCheck(b *backendHandle) handler.ReadinessCheck {
	return func(ctx context.Context) error {
		if b.ping == nil {
			return nil
		}
		return b.ping.PingContext(ctx)
	}
}
