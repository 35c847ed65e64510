package billing

import (
	"context"
	"fmt"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/tenant"
)

func (s *Service) ListTarifs(ctx context.Context, t tenant.ID) ([]*domain.Tarif, error) {
	return s.tarifs.FindAll(ctx, t)
}

func (s *Service) GetTarif(ctx context.Context, t tenant.ID, id string) (*domain.Tarif, error) {
	tf, err := s.tarifs.FindByID(ctx, t, id)
	if err != nil {
		return nil, fmt.Errorf("billing.GetTarif: %w", err)
	}
	return tf, nil
}

func (s *Service) CreateTarif(ctx context.Context, t tenant.ID, tf *domain.Tarif) (*domain.Tarif, error) {
	in := *tf
	in.ID = ""
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("billing.CreateTarif: %w", err)
	}

	defer s.locker.Lock(t)()
	saved, err := s.tarifs.Upsert(ctx, t, &in)
	if err != nil {
		return nil, fmt.Errorf("billing.CreateTarif: %w", err)
	}
	return saved, nil
}

// UpdateTarif changes a tarif in place. Seances keep the amount they
// copied at creation.
func (s *Service) UpdateTarif(ctx context.Context, t tenant.ID, id string, tf *domain.Tarif) (*domain.Tarif, error) {
	in := *tf
	in.ID = id
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("billing.UpdateTarif: %w", err)
	}

	defer s.locker.Lock(t)()
	if _, err := s.tarifs.FindByID(ctx, t, id); err != nil {
		return nil, fmt.Errorf("billing.UpdateTarif: %w", err)
	}
	saved, err := s.tarifs.Upsert(ctx, t, &in)
	if err != nil {
		return nil, fmt.Errorf("billing.UpdateTarif: %w", err)
	}
	return saved, nil
}

// DeleteTarif refuses while the tarif is a client's default or is used by
// a seance.
func (s *Service) DeleteTarif(ctx context.Context, t tenant.ID, id string) error {
	defer s.locker.Lock(t)()

	clients, err := s.clients.Load(ctx, t)
	if err != nil {
		return fmt.Errorf("billing.DeleteTarif: %w", err)
	}
	for _, c := range clients {
		if c.DefaultTarifID == id {
			return fmt.Errorf("billing.DeleteTarif: tarif %s is the default of client %s: %w", id, c.ID, domain.ErrReferentialConflict)
		}
	}

	seances, err := s.seances.Load(ctx, t)
	if err != nil {
		return fmt.Errorf("billing.DeleteTarif: %w", err)
	}
	for _, se := range seances {
		if se.TarifID == id {
			return fmt.Errorf("billing.DeleteTarif: tarif %s is used by seance %s: %w", id, se.ID, domain.ErrReferentialConflict)
		}
	}

	ok, err := s.tarifs.Delete(ctx, t, id)
	if err != nil {
		return fmt.Errorf("billing.DeleteTarif: %w", err)
	}
	if !ok {
		return fmt.Errorf("billing.DeleteTarif %q: %w", id, domain.ErrNotFound)
	}
	return nil
}
