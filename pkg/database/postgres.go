package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"

	"cleem-api/pkg/logger"
)

// PostgresDB wraps a pgx connection pool.
type PostgresDB struct {
	Pool *pgxpool.Pool
}

// RetryPolicy bounds the reconnect loop used at process start. Zero values
// fall back to the defaults from DefaultRetryPolicy.
type RetryPolicy struct {
	MaxAttempts uint64
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
}

// DefaultRetryPolicy retries the initial connection up to 5 times with
// exponential backoff capped at 10 seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   500 * time.Millisecond,
		Multiplier:  2.0,
		MaxDelay:    10 * time.Second,
	}
}

// Connect opens the connection pool, retrying per policy before giving up.
// A failure after the final attempt is returned to the caller and is fatal
// for process startup.
func Connect(ctx context.Context, databaseURL string, policy RetryPolicy, log *logger.Logger) (*PostgresDB, error) {
	if policy.MaxAttempts == 0 {
		policy = DefaultRetryPolicy()
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = policy.BaseDelay
	bo.Multiplier = policy.Multiplier
	bo.MaxInterval = policy.MaxDelay
	bo.MaxElapsedTime = 0 // bounded by attempt count, not wall clock

	var db *PostgresDB
	operation := func() error {
		var err error
		db, err = open(ctx, databaseURL)
		return err
	}
	notify := func(err error, next time.Duration) {
		log.WithError(err).WithField("retry_in", next.String()).Warn("Database connection failed, retrying")
	}

	retries := policy.MaxAttempts - 1
	if err := backoff.RetryNotify(operation, backoff.WithContext(backoff.WithMaxRetries(bo, retries), ctx), notify); err != nil {
		return nil, fmt.Errorf("database unreachable after %d attempts: %w", policy.MaxAttempts, err)
	}

	return db, nil
}

// open creates and pings a single pool.
func open(ctx context.Context, databaseURL string) (*PostgresDB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to parse database URL: %w", err))
	}

	// Pool sizing tuned for a small Cloud Run style deployment.
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = time.Minute * 30
	config.HealthCheckPeriod = time.Minute
	config.ConnConfig.ConnectTimeout = time.Second * 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{Pool: pool}, nil
}

// Close closes the database connection pool
func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Health performs a trivial round trip. An error here is a reported value
// for the health endpoint, never a fatal condition.
func (db *PostgresDB) Health(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return fmt.Errorf("database not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.Pool.Ping(ctx)
}
