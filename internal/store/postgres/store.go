package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store holds the connection pool for the state that is kept in Postgres
// instead of the tenant directory.
type Store struct {
	pool     *pgxpool.Pool
	counters *Counter
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	counters := NewCounter(pool)
	if err := counters.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: %w", err)
	}

	return &Store{
		pool:     pool,
		counters: counters,
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Counters() *Counter { return s.counters }
