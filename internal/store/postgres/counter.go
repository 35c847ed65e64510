package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/tenant"
)

// Counter is the document-number counter backed by one row per
// (tenant, kind, year). The upsert makes every reservation atomic across
// processes.
type Counter struct {
	pool *pgxpool.Pool
}

func NewCounter(pool *pgxpool.Pool) *Counter {
	return &Counter{pool: pool}
}

func (c *Counter) EnsureSchema(ctx context.Context) error {
	_, err := c.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS document_counters (
		     tenant     TEXT    NOT NULL,
		     kind       TEXT    NOT NULL,
		     year       INTEGER NOT NULL,
		     last_value INTEGER NOT NULL,
		     updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		     PRIMARY KEY (tenant, kind, year)
		 )`,
	)
	if err != nil {
		return fmt.Errorf("counter.EnsureSchema: %w", err)
	}
	return nil
}

func (c *Counter) Reserve(ctx context.Context, t tenant.ID, kind domain.DocumentKind, year, floor int) (int, error) {
	var next int
	err := c.pool.QueryRow(ctx,
		`INSERT INTO document_counters (tenant, kind, year, last_value)
		 VALUES ($1, $2, $3, $4::integer + 1)
		 ON CONFLICT (tenant, kind, year) DO UPDATE
		 SET last_value = GREATEST(document_counters.last_value, $4::integer) + 1,
		     updated_at = now()
		 RETURNING last_value`,
		string(t), string(kind), year, floor,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("counter.Reserve: %w", err)
	}
	return next, nil
}
