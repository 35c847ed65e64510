package flatfile

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/cabinet/internal/tenant"
)

// table is the shared read-modify-write engine behind the entity repos.
// There is no cache: every call goes back to the file.
type table[T any] struct {
	root   *Root
	schema Schema
	name   string
	key    func(*T) string
	decode func(Record) *T
	encode func(*T) Record
}

// load reads and decodes the whole file. Errors propagate, so a failed read
// can never be followed by a destructive rewrite.
func (t *table[T]) load(ctx context.Context, ten tenant.ID) ([]*T, error) {
	data, err := t.root.ReadTable(ctx, ten, t.schema)
	if err != nil {
		return nil, fmt.Errorf("%s.load: %w", t.name, err)
	}
	records := Decode(t.schema, data)
	items := make([]*T, 0, len(records))
	for _, rec := range records {
		items = append(items, t.decode(rec))
	}
	return items, nil
}

// list is load for read-only callers: filesystem failures are logged and
// reported as an empty list. Context cancellation still propagates.
func (t *table[T]) list(ctx context.Context, ten tenant.ID) ([]*T, error) {
	items, err := t.load(ctx, ten)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Error().Err(err).Str("tenant", ten.String()).Str("file", t.schema.File).Msg("flatfile: read failed, serving empty list")
		return []*T{}, nil
	}
	return items, nil
}

func (t *table[T]) save(ctx context.Context, ten tenant.ID, items []*T) error {
	records := make([]Record, 0, len(items))
	for _, it := range items {
		records = append(records, t.encode(it))
	}
	if err := t.root.WriteTable(ctx, ten, t.schema, records); err != nil {
		log.Error().Err(err).Str("tenant", ten.String()).Str("file", t.schema.File).Msg("flatfile: write failed")
		return fmt.Errorf("%s.save: %w", t.name, err)
	}
	return nil
}

// mutate is one full read-modify-write cycle.
func (t *table[T]) mutate(ctx context.Context, ten tenant.ID, fn func([]*T) ([]*T, error)) error {
	items, err := t.load(ctx, ten)
	if err != nil {
		return err
	}
	items, err = fn(items)
	if err != nil {
		return err
	}
	return t.save(ctx, ten, items)
}

func (t *table[T]) find(items []*T, id string) (int, *T) {
	for i, it := range items {
		if t.key(it) == id {
			return i, it
		}
	}
	return -1, nil
}

func (t *table[T]) taken(items []*T) func(string) bool {
	return func(id string) bool {
		i, _ := t.find(items, id)
		return i >= 0
	}
}

func (t *table[T]) remove(ctx context.Context, ten tenant.ID, id string) (bool, error) {
	removed := false
	err := t.mutate(ctx, ten, func(items []*T) ([]*T, error) {
		i, _ := t.find(items, id)
		if i < 0 {
			return items, nil
		}
		removed = true
		return append(items[:i], items[i+1:]...), nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}
