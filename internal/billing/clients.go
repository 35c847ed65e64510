package billing

import (
	"context"
	"fmt"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/tenant"
)

func (s *Service) ListClients(ctx context.Context, t tenant.ID) ([]*domain.Client, error) {
	return s.clients.FindAll(ctx, t)
}

func (s *Service) GetClient(ctx context.Context, t tenant.ID, id string) (*domain.Client, error) {
	c, err := s.clients.FindByID(ctx, t, id)
	if err != nil {
		return nil, fmt.Errorf("billing.GetClient: %w", err)
	}
	return c, nil
}

// CreateClient stores a new client under an id derived from its name.
func (s *Service) CreateClient(ctx context.Context, t tenant.ID, c *domain.Client) (*domain.Client, error) {
	in := *c
	in.ID = ""
	in.DateCreation = ""
	if in.Statut == "" {
		in.Statut = domain.ClientActive
	}
	if err := domain.Validate(&in); err != nil {
		return nil, fmt.Errorf("billing.CreateClient: %w", err)
	}

	defer s.locker.Lock(t)()
	saved, err := s.clients.Upsert(ctx, t, &in)
	if err != nil {
		return nil, fmt.Errorf("billing.CreateClient: %w", err)
	}
	return saved, nil
}

// UpdateClient replaces an existing client. The id and creation date
// never change.
func (s *Service) UpdateClient(ctx context.Context, t tenant.ID, id string, c *domain.Client) (*domain.Client, error) {
	in := *c
	in.ID = id
	if in.Statut == "" {
		in.Statut = domain.ClientActive
	}
	if err := domain.Validate(&in); err != nil {
		return nil, fmt.Errorf("billing.UpdateClient: %w", err)
	}

	defer s.locker.Lock(t)()
	if _, err := s.clients.FindByID(ctx, t, id); err != nil {
		return nil, fmt.Errorf("billing.UpdateClient: %w", err)
	}
	saved, err := s.clients.Upsert(ctx, t, &in)
	if err != nil {
		return nil, fmt.Errorf("billing.UpdateClient: %w", err)
	}
	return saved, nil
}

// DeleteClient refuses while any seance references the client.
func (s *Service) DeleteClient(ctx context.Context, t tenant.ID, id string) error {
	defer s.locker.Lock(t)()

	seances, err := s.seances.Load(ctx, t)
	if err != nil {
		return fmt.Errorf("billing.DeleteClient: %w", err)
	}
	n := 0
	for _, se := range seances {
		if se.ClientID == id {
			n++
		}
	}
	if n > 0 {
		return fmt.Errorf("billing.DeleteClient: client %s has %d seance(s): %w", id, n, domain.ErrReferentialConflict)
	}

	ok, err := s.clients.Delete(ctx, t, id)
	if err != nil {
		return fmt.Errorf("billing.DeleteClient: %w", err)
	}
	if !ok {
		return fmt.Errorf("billing.DeleteClient %q: %w", id, domain.ErrNotFound)
	}
	return nil
}
