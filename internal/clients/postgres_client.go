package clients

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresPool opens a pool and pings the server before handing it out.
func NewPostgresPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("[PostgresClient] failed to create PostgreSQL pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("[PostgresClient] failed to ping PostgreSQL: %w", err)
	}

	slog.Info("[PostgresClient] Connected to PostgreSQL")
	return pool, nil
}
