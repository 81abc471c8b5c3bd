package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spacesedan/storyguard/config"
	"github.com/spacesedan/storyguard/internal/clients"
)

// Open connects the backend named by cfg.StoreBackend.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	slog.Info("[Store] Opening store", slog.String("backend", cfg.StoreBackend))

	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		if err := ApplyMigrations(cfg.Postgres.DSN()); err != nil {
			return nil, err
		}
		pool, err := clients.NewPostgresPool(ctx, cfg.Postgres.DSN())
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(pool), nil
	case config.StoreBackendDynamoDB:
		client, err := clients.NewDynamoDBClient(ctx, cfg.AWS)
		if err != nil {
			return nil, err
		}
		return NewDynamoStore(client, cfg.AWS.StoriesTable, cfg.AWS.CommentsTable), nil
	case config.StoreBackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("[Store] unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}
