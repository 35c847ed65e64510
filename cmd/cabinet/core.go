package main

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/cabinet/internal/billing"
	"github.com/gosuda/cabinet/internal/config"
	"github.com/gosuda/cabinet/internal/numbering"
	"github.com/gosuda/cabinet/internal/store/flatfile"
	"github.com/gosuda/cabinet/internal/store/postgres"
)

// core is the billing stack shared by every command.
type core struct {
	store   *flatfile.Store
	numbers *numbering.Service
	closers []func()
}

func newCore(ctx context.Context, cfg *config.Config) (*core, error) {
	store, err := flatfile.New(cfg.Data.Dir)
	if err != nil {
		return nil, err
	}
	c := &core{store: store}

	var counter numbering.Counter = numbering.NewFileCounter(store.Root())
	if cfg.Numbering.Counter == config.BackendPostgres {
		if cfg.Database.MaxConns > math.MaxInt32 {
			return nil, fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
		}
		pg, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, pg.Close)
		counter = pg.Counters()
		log.Info().Msg("numbering: postgres counter")
	}
	c.numbers = numbering.NewService(store.Seances(), store.Documents(), numbering.WithCounter(counter))

	log.Info().Str("dir", cfg.Data.Dir).Msg("data directory ready")
	return c, nil
}

func (c *core) billing(opts ...billing.Option) *billing.Service {
	return billing.NewService(billing.Repositories{
		Clients:   c.store.Clients(),
		Tarifs:    c.store.Tarifs(),
		Seances:   c.store.Seances(),
		Settings:  c.store.Settings(),
		Documents: c.store.Documents(),
	}, c.numbers, c.store.Locker(), opts...)
}

func (c *core) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
