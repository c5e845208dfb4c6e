package app

import (
	"context"
	"database/sql"
	"fmt"

	"backend-medcall/internal/config"
	"backend-medcall/internal/store"

	"github.com/redis/go-redis/v9"
)

type redisClient = *redis.Client

func openStore(ctx context.Context, cfg config.Config, rdb redisClient) (store.Store, error) {
	switch cfg.StoreDriver {
	case "memory":
		return store.NewMemoryStore(), nil
	case "file", "":
		return store.NewFileStore(cfg.DataDir)
	case "redis":
		// the client is closed by the session, not by the store
		return store.NewRedisStore(rdb, false), nil
	case "mysql":
		db, err := config.OpenMySQL(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		return newSQLStore(ctx, db, store.MySQL)
	case "sqlite":
		db, err := config.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return newSQLStore(ctx, db, store.SQLite)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func newSQLStore(ctx context.Context, db *sql.DB, dialect store.Dialect) (store.Store, error) {
	s, err := store.NewSQLStore(ctx, db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}
