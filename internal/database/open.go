package database

import (
	"context"
	"fmt"

	"go-locator/internal/config"
)

// Open connects the store selected by cfg.Driver and makes sure its schema exists.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
		pg, err := ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil
	case "sqlite":
		return OpenSQLite(ctx, cfg.SQLitePath)
	case "mongo":
		if cfg.MongoURL == "" {
			return nil, fmt.Errorf("MONGO_URL is required for the mongo store")
		}
		m, err := ConnectMongo(ctx, cfg.MongoURL, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		if err := m.Migrate(ctx); err != nil {
			m.Close()
			return nil, err
		}
		return m, nil
	case "memory":
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
