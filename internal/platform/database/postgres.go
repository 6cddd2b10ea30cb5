package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"competition-voting/internal/retry"
)

// NewPostgres opens a pgx-backed pool and waits for the server to answer,
// backing off between pings.
func NewPostgres(ctx context.Context, dsn string, log *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	attempt := 0
	backoff := retry.Backoff{Attempts: 6, Base: 500 * time.Millisecond, Max: 5 * time.Second}
	err = backoff.Do(ctx, func(ctx context.Context) error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err := db.PingContext(pingCtx)
		if err != nil && log != nil {
			log.Warn("postgres not ready", zap.Int("attempt", attempt), zap.Error(err))
		}
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
