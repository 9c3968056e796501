// Package db owns the PostgreSQL connection pool and the embedded schema migrations.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/raseed-labs/raseed-backend/logger"
)

// DatabaseClient wraps the pgx pool used by the stores and the health service.
type DatabaseClient struct {
	pool       *pgxpool.Pool
	config     *pgxpool.Config
	maxRetries int
	retryDelay time.Duration
}

// NewDatabaseClient creates a client for config. Call Connect before GetPool.
func NewDatabaseClient(config *pgxpool.Config) *DatabaseClient {
	return &DatabaseClient{
		config:     config,
		maxRetries: 5,
		retryDelay: time.Second,
	}
}

// SetMaxRetries sets how many connection attempts Connect makes.
func (dc *DatabaseClient) SetMaxRetries(n int) {
	dc.maxRetries = n
}

// SetRetryDelay sets the initial delay between connection attempts.
func (dc *DatabaseClient) SetRetryDelay(d time.Duration) {
	dc.retryDelay = d
}

// Connect opens the pool and pings it, retrying with a growing delay.
func (dc *DatabaseClient) Connect(ctx context.Context) error {
	log := logger.GetLogger()
	if dc.config == nil {
		return fmt.Errorf("database configuration not available")
	}

	delay := dc.retryDelay
	var lastErr error
	for attempt := 1; attempt <= dc.maxRetries; attempt++ {
		pool, err := pgxpool.NewWithConfig(ctx, dc.config)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				dc.pool = pool
				if attempt > 1 {
					log.Infow("Connected to database after retries", "attempt", attempt)
				}
				return nil
			}
			pool.Close()
		}
		lastErr = err
		log.Warnw("Database connection attempt failed",
			"attempt", attempt,
			"max_attempts", dc.maxRetries,
			"error", err)

		if attempt == dc.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("database connect aborted: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay = delay * 3 / 2
	}
	return fmt.Errorf("failed to connect after %d attempts: %w", dc.maxRetries, lastErr)
}

// GetPool returns the connected pool, or nil before Connect succeeds.
func (dc *DatabaseClient) GetPool() *pgxpool.Pool {
	return dc.pool
}

// Close releases every pooled connection.
func (dc *DatabaseClient) Close() {
	if dc.pool != nil {
		dc.pool.Close()
	}
}
