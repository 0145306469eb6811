package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/po-analysis/backend-go/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

const defaultMaxConcurrentQueries = 10

type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

var (
	dbInstance *DB
	once       sync.Once
)

// NewDB creates the shared database connection pool
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	var err error
	once.Do(func() {
		dbInstance, err = Open("postgres", cfg.DSN(), cfg.MaxConcurrentQueries)
	})

	return dbInstance, err
}

// Open connects with the given driver ("postgres" for lib/pq, "pgx" for the
// pgx stdlib driver) and limits concurrent snapshots to maxConcurrent.
func Open(driverName, dsn string, maxConcurrent int64) (*DB, error) {
	db, err := sqlx.Connect(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return Wrap(db, maxConcurrent), nil
}

// Wrap adapts an existing sqlx connection.
func Wrap(db *sqlx.DB, maxConcurrent int64) *DB {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentQueries
	}
	return &DB{
		DB:  db,
		sem: semaphore.NewWeighted(maxConcurrent),
	}
}

// WithReadTx executes fn within a read-only, repeatable-read transaction.
// The transaction is always rolled back since nothing is written.
func (db *DB) WithReadTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	// Acquire semaphore
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	})
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
	}()

	return fn(tx)
}
