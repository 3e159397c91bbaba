package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/niksmo/online-store/pkg/retry"
)

const (
	pingAttempts = 5
	pingDelay    = 200 * time.Millisecond
)

const (
	pgInvalidAuthorizationClass = "28"
	pgInvalidCatalogName        = "3D000"
)

type SQLDB struct {
	*sql.DB
}

// NewSQLDB opens a pgx backed database/sql pool and waits until
// the database answers a ping.
func NewSQLDB(ctx context.Context, dsn string) (SQLDB, error) {
	const op = "SQLDB"
	log := slog.With("op", op)

	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return SQLDB{}, fmt.Errorf("%s: invalid dsn: %w", op, err)
	}
	connStr := stdlib.RegisterConnConfig(connConfig)
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return SQLDB{}, fmt.Errorf("%s: %w", op, err)
	}

	s := SQLDB{db}
	pingCfg := retry.RetryConfig{
		MaxAttempts: pingAttempts,
		Backoff:     retry.ExponentialBackoff(pingDelay),
		ShouldRetry: pingRetryable,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			log.Warn("database ping failed",
				"attempt", attempt, "retryIn", wait, "err", err)
		},
	}
	err = retry.Do(ctx, pingCfg, func() error {
		return s.PingContext(ctx)
	})
	if err != nil {
		_ = db.Close()
		return SQLDB{}, fmt.Errorf("%s: database is unavailable: %w", op, err)
	}
	log.Info("database is available")
	return s, nil
}

// pingRetryable reports false for a rejected login or an unknown
// database. Waiting does not fix either.
func pingRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return true
	}
	return !strings.HasPrefix(pgErr.Code, pgInvalidAuthorizationClass) &&
		pgErr.Code != pgInvalidCatalogName
}

func (s SQLDB) Close() {
	const op = "SQLDB.Close"
	log := slog.With("op", op)

	log.Info("closing sql database...")

	if err := s.DB.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return
	}
	log.Info("sql database is closed")
}
