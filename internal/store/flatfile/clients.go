package flatfile

import (
	"context"
	"fmt"
	"time"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/tenant"
)

type ClientRepo struct {
	t   table[domain.Client]
	now func() time.Time
}

func NewClientRepo(root *Root, now func() time.Time) *ClientRepo {
	return &ClientRepo{
		t: table[domain.Client]{
			root:   root,
			schema: ClientSchema,
			name:   "clientRepo",
			key:    func(c *domain.Client) string { return c.ID },
			decode: decodeClient,
			encode: encodeClient,
		},
		now: now,
	}
}

func (r *ClientRepo) FindAll(ctx context.Context, t tenant.ID) ([]*domain.Client, error) {
	return r.t.list(ctx, t)
}

func (r *ClientRepo) Load(ctx context.Context, t tenant.ID) ([]*domain.Client, error) {
	return r.t.load(ctx, t)
}

func (r *ClientRepo) FindByID(ctx context.Context, t tenant.ID, id string) (*domain.Client, error) {
	items, err := r.t.list(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("clientRepo.FindByID: %w", err)
	}
	if _, c := r.t.find(items, id); c != nil {
		return c, nil
	}
	return nil, fmt.Errorf("clientRepo.FindByID %q: %w", id, domain.ErrNotFound)
}

// Upsert assigns an id derived from the name when c.ID is empty. An
// existing record keeps its dateCreation.
func (r *ClientRepo) Upsert(ctx context.Context, t tenant.ID, c *domain.Client) (*domain.Client, error) {
	saved := *c
	err := r.t.mutate(ctx, t, func(items []*domain.Client) ([]*domain.Client, error) {
		if saved.ID == "" {
			saved.ID = domain.UniqueID(domain.ClientIDBase(saved.Nom, saved.Prenom), r.t.taken(items))
		}
		if saved.Statut == "" {
			saved.Statut = domain.ClientActive
		}

		i, existing := r.t.find(items, saved.ID)
		if existing != nil && existing.DateCreation != "" {
			saved.DateCreation = existing.DateCreation
		}
		if saved.DateCreation == "" {
			saved.DateCreation = r.now().Format(domain.DateLayout)
		}

		rec := saved
		if i >= 0 {
			items[i] = &rec
		} else {
			items = append(items, &rec)
		}
		return items, nil
	})
	if err != nil {
		return nil, fmt.Errorf("clientRepo.Upsert: %w", err)
	}
	return &saved, nil
}

func (r *ClientRepo) Delete(ctx context.Context, t tenant.ID, id string) (bool, error) {
	ok, err := r.t.remove(ctx, t, id)
	if err != nil {
		return false, fmt.Errorf("clientRepo.Delete: %w", err)
	}
	return ok, nil
}

func (r *ClientRepo) SaveAll(ctx context.Context, t tenant.ID, clients []*domain.Client) error {
	return r.t.save(ctx, t, clients)
}

func decodeClient(rec Record) *domain.Client {
	c := &domain.Client{
		ID:             rec.String("id"),
		Nom:            rec.String("nom"),
		Prenom:         rec.String("prenom"),
		Telephone:      rec.String("telephone"),
		Email:          rec.String("email"),
		Adresse:        rec.String("adresse"),
		Ville:          rec.String("ville"),
		Notes:          rec.String("notes"),
		DefaultTarifID: rec.String("defaultTarifId"),
		Statut:         domain.ClientStatus(rec.String("statut")),
		DateCreation:   rec.String("dateCreation"),
	}
	if c.Statut == "" {
		c.Statut = domain.ClientActive
	}
	return c
}

func encodeClient(c *domain.Client) Record {
	return Record{
		"id":             nullable(c.ID),
		"nom":            nullable(c.Nom),
		"prenom":         nullable(c.Prenom),
		"telephone":      nullable(c.Telephone),
		"email":          nullable(c.Email),
		"adresse":        nullable(c.Adresse),
		"ville":          nullable(c.Ville),
		"notes":          nullable(c.Notes),
		"defaultTarifId": nullable(c.DefaultTarifID),
		"statut":         nullable(string(c.Statut)),
		"dateCreation":   nullable(c.DateCreation),
	}
}

// nullable maps the empty string to null.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
