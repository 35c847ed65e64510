package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/events"
	"github.com/gosuda/cabinet/internal/tenant"
)

// SeanceInput carries the caller-editable fields of a seance. Empty fields
// keep their current value on update.
type SeanceInput struct {
	ID           string
	ClientID     string
	TarifID      string
	DateHeure    time.Time
	Montant      *domain.Money // defaults to the tarif price
	Statut       domain.SeanceStatus
	ModePaiement string
	DatePaiement string
}

func (s *Service) GetSeance(ctx context.Context, t tenant.ID, id string) (*domain.Seance, error) {
	se, err := s.seances.FindByID(ctx, t, id)
	if err != nil {
		return nil, fmt.Errorf("billing.GetSeance: %w", err)
	}
	return se, nil
}

// CreateSeance books a seance. The client and tarif must exist; the tarif
// price is copied into the seance.
func (s *Service) CreateSeance(ctx context.Context, t tenant.ID, in SeanceInput) (*domain.Seance, error) {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	in.DateHeure = domain.StoredTime(in.DateHeure)

	defer s.locker.Lock(t)()

	seances, err := s.seances.Load(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("billing.CreateSeance: %w", err)
	}
	for _, se := range seances {
		if se.ID == id {
			return nil, fmt.Errorf("billing.CreateSeance: seance %s already exists: %w", id, domain.ErrReferentialConflict)
		}
	}

	if _, err := s.clients.FindByID(ctx, t, in.ClientID); err != nil {
		return nil, fmt.Errorf("billing.CreateSeance: %w", err)
	}
	tarif, err := s.tarifs.FindByID(ctx, t, in.TarifID)
	if err != nil {
		return nil, fmt.Errorf("billing.CreateSeance: %w", err)
	}

	se := &domain.Seance{
		ID:        id,
		ClientID:  in.ClientID,
		TarifID:   in.TarifID,
		DateHeure: in.DateHeure,
		Montant:   tarif.Montant,
		Statut:    domain.SeancePlanned,
	}
	if in.Montant != nil {
		se.Montant = *in.Montant
	}
	if in.Statut != "" {
		if err := se.ApplyPayment(in.Statut, in.ModePaiement, in.DatePaiement); err != nil {
			return nil, fmt.Errorf("billing.CreateSeance: %w", err)
		}
	}
	if err := se.Validate(); err != nil {
		return nil, fmt.Errorf("billing.CreateSeance: %w", err)
	}

	saved, err := s.seances.Upsert(ctx, t, se)
	if err != nil {
		return nil, fmt.Errorf("billing.CreateSeance: %w", err)
	}

	s.publish(ctx, t, events.SeanceCreated, saved, "")
	if saved.Statut != domain.SeanceCancelled {
		s.mirror(ctx, t, domain.CalendarCreate, saved, "")
	}
	return saved, nil
}

// UpdateSeance edits a seance. Once invoiced, only status and payment
// fields may change.
func (s *Service) UpdateSeance(ctx context.Context, t tenant.ID, id string, in SeanceInput) (*domain.Seance, error) {
	in.DateHeure = domain.StoredTime(in.DateHeure)

	defer s.locker.Lock(t)()

	cur, err := s.seances.FindByID(ctx, t, id)
	if err != nil {
		return nil, fmt.Errorf("billing.UpdateSeance: %w", err)
	}
	next := *cur

	if cur.Invoiced() {
		if changesSchedule(cur, in) {
			return nil, fmt.Errorf("billing.UpdateSeance: seance %s is invoiced (%s): %w", id, cur.InvoiceNumber, domain.ErrInvalidTransition)
		}
	} else if err := s.applySchedule(ctx, t, &next, in); err != nil {
		return nil, fmt.Errorf("billing.UpdateSeance: %w", err)
	}

	if in.Statut != "" {
		if err := next.ApplyPayment(in.Statut, in.ModePaiement, in.DatePaiement); err != nil {
			return nil, fmt.Errorf("billing.UpdateSeance: %w", err)
		}
	}

	saved, err := s.saveEdit(ctx, t, cur, &next)
	if err != nil {
		return nil, fmt.Errorf("billing.UpdateSeance: %w", err)
	}
	return saved, nil
}

// UpdateStatus sets the status and payment fields. It is legal in every
// state, invoiced or not.
func (s *Service) UpdateStatus(ctx context.Context, t tenant.ID, id string, status domain.SeanceStatus, mode, date string) (*domain.Seance, error) {
	defer s.locker.Lock(t)()

	cur, err := s.seances.FindByID(ctx, t, id)
	if err != nil {
		return nil, fmt.Errorf("billing.UpdateStatus: %w", err)
	}
	next := *cur
	if err := next.ApplyPayment(status, mode, date); err != nil {
		return nil, fmt.Errorf("billing.UpdateStatus: %w", err)
	}

	saved, err := s.saveEdit(ctx, t, cur, &next)
	if err != nil {
		return nil, fmt.Errorf("billing.UpdateStatus: %w", err)
	}
	return saved, nil
}

// DeleteSeance removes a seance that has no invoice. Its quote file, if
// any, goes with it.
func (s *Service) DeleteSeance(ctx context.Context, t tenant.ID, id string) error {
	defer s.locker.Lock(t)()

	cur, err := s.seances.FindByID(ctx, t, id)
	if err != nil {
		return fmt.Errorf("billing.DeleteSeance: %w", err)
	}
	if cur.Invoiced() {
		return fmt.Errorf("billing.DeleteSeance: seance %s is invoiced (%s): %w", id, cur.InvoiceNumber, domain.ErrInvalidTransition)
	}

	ok, err := s.seances.Delete(ctx, t, id)
	if err != nil {
		return fmt.Errorf("billing.DeleteSeance: %w", err)
	}
	if !ok {
		return fmt.Errorf("billing.DeleteSeance %q: %w", id, domain.ErrNotFound)
	}

	if cur.DevisNumber != "" {
		if err := s.documents.Delete(ctx, t, cur.DevisNumber); err != nil && !errors.Is(err, domain.ErrInvalidInput) {
			log.Warn().Err(err).Str("tenant", t.String()).Str("devis", cur.DevisNumber).Msg("billing: quote file not removed")
		}
	}

	s.publish(ctx, t, events.SeanceDeleted, cur, "")
	if cur.CalendarEventID != "" {
		s.mirror(ctx, t, domain.CalendarDelete, cur, cur.CalendarEventID)
	}
	return nil
}

func changesSchedule(cur *domain.Seance, in SeanceInput) bool {
	switch {
	case in.ClientID != "" && in.ClientID != cur.ClientID:
		return true
	case in.TarifID != "" && in.TarifID != cur.TarifID:
		return true
	case !in.DateHeure.IsZero() && !in.DateHeure.Equal(cur.DateHeure):
		return true
	case in.Montant != nil && !in.Montant.Equal(cur.Montant.Decimal):
		return true
	default:
		return false
	}
}

// applySchedule copies the scheduling fields of in onto se. A new tarif
// brings its price unless an amount is given.
func (s *Service) applySchedule(ctx context.Context, t tenant.ID, se *domain.Seance, in SeanceInput) error {
	if in.ClientID != "" && in.ClientID != se.ClientID {
		if _, err := s.clients.FindByID(ctx, t, in.ClientID); err != nil {
			return err
		}
		se.ClientID = in.ClientID
	}
	if in.TarifID != "" && in.TarifID != se.TarifID {
		tarif, err := s.tarifs.FindByID(ctx, t, in.TarifID)
		if err != nil {
			return err
		}
		se.TarifID = in.TarifID
		se.Montant = tarif.Montant
	}
	if !in.DateHeure.IsZero() {
		se.DateHeure = in.DateHeure
	}
	if in.Montant != nil {
		se.Montant = *in.Montant
	}
	return nil
}

// saveEdit validates and stores next, then publishes and queues the
// calendar effect of moving from cur to next.
func (s *Service) saveEdit(ctx context.Context, t tenant.ID, cur, next *domain.Seance) (*domain.Seance, error) {
	if err := next.Validate(); err != nil {
		return nil, err
	}

	op := next.CalendarOpFor(cur.Statut)
	eventID := next.CalendarEventID
	if op == domain.CalendarDelete {
		next.CalendarEventID = ""
	}

	saved, err := s.seances.Upsert(ctx, t, next)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, t, events.SeanceUpdated, saved, "")
	s.mirror(ctx, t, op, saved, eventID)
	return saved, nil
}
