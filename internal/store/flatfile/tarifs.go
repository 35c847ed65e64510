package flatfile

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/tenant"
)

type TarifRepo struct {
	t table[domain.Tarif]
}

func NewTarifRepo(root *Root) *TarifRepo {
	return &TarifRepo{
		t: table[domain.Tarif]{
			root:   root,
			schema: TarifSchema,
			name:   "tarifRepo",
			key:    func(tf *domain.Tarif) string { return tf.ID },
			decode: decodeTarif,
			encode: encodeTarif,
		},
	}
}

func (r *TarifRepo) FindAll(ctx context.Context, t tenant.ID) ([]*domain.Tarif, error) {
	return r.t.list(ctx, t)
}

func (r *TarifRepo) Load(ctx context.Context, t tenant.ID) ([]*domain.Tarif, error) {
	return r.t.load(ctx, t)
}

func (r *TarifRepo) FindByID(ctx context.Context, t tenant.ID, id string) (*domain.Tarif, error) {
	items, err := r.t.list(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("tarifRepo.FindByID: %w", err)
	}
	if _, tf := r.t.find(items, id); tf != nil {
		return tf, nil
	}
	return nil, fmt.Errorf("tarifRepo.FindByID %q: %w", id, domain.ErrNotFound)
}

// Upsert assigns an id derived from the label when tf.ID is empty.
func (r *TarifRepo) Upsert(ctx context.Context, t tenant.ID, tf *domain.Tarif) (*domain.Tarif, error) {
	saved := *tf
	err := r.t.mutate(ctx, t, func(items []*domain.Tarif) ([]*domain.Tarif, error) {
		if saved.ID == "" {
			saved.ID = domain.UniqueID(domain.TarifIDBase(saved.Libelle), r.t.taken(items))
		}
		rec := saved
		if i, _ := r.t.find(items, saved.ID); i >= 0 {
			items[i] = &rec
		} else {
			items = append(items, &rec)
		}
		return items, nil
	})
	if err != nil {
		return nil, fmt.Errorf("tarifRepo.Upsert: %w", err)
	}
	return &saved, nil
}

func (r *TarifRepo) Delete(ctx context.Context, t tenant.ID, id string) (bool, error) {
	ok, err := r.t.remove(ctx, t, id)
	if err != nil {
		return false, fmt.Errorf("tarifRepo.Delete: %w", err)
	}
	return ok, nil
}

func (r *TarifRepo) SaveAll(ctx context.Context, t tenant.ID, tarifs []*domain.Tarif) error {
	return r.t.save(ctx, t, tarifs)
}

func decodeTarif(rec Record) *domain.Tarif {
	tf := &domain.Tarif{
		ID:      rec.String("id"),
		Libelle: rec.String("libelle"),
	}
	if d, ok := rec.Decimal("montant"); ok {
		tf.Montant = domain.Money{Decimal: d}
	}
	if d, ok := rec.Decimal("duree"); ok {
		minutes := int(d.IntPart())
		tf.Duree = &minutes
	}
	return tf
}

func encodeTarif(tf *domain.Tarif) Record {
	rec := Record{
		"id":      nullable(tf.ID),
		"libelle": nullable(tf.Libelle),
		"montant": tf.Montant.Decimal,
		"duree":   nil,
	}
	if tf.Duree != nil {
		rec["duree"] = decimal.NewFromInt(int64(*tf.Duree))
	}
	return rec
}
