package billing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/tenant"
)

// ListSeances returns every seance after reconciling document references
// with the files on disk. A file that cannot be read yields an empty list.
func (s *Service) ListSeances(ctx context.Context, t tenant.ID) ([]*domain.Seance, error) {
	defer s.locker.Lock(t)()

	seances, err := s.seances.Load(ctx, t)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Error().Err(err).Str("tenant", t.String()).Msg("billing: seances unreadable, serving empty list")
		return []*domain.Seance{}, nil
	}

	if _, err := s.reconcile(ctx, t, seances); err != nil {
		log.Error().Err(err).Str("tenant", t.String()).Msg("billing: reconciliation not saved")
	}
	return seances, nil
}

// Reconcile runs one sweep and returns how many references were cleared.
func (s *Service) Reconcile(ctx context.Context, t tenant.ID) (int, error) {
	defer s.locker.Lock(t)()

	seances, err := s.seances.Load(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("billing.Reconcile: %w", err)
	}
	n, err := s.reconcile(ctx, t, seances)
	if err != nil {
		return 0, fmt.Errorf("billing.Reconcile: %w", err)
	}
	return n, nil
}

// reconcile clears invoice and quote numbers that have no file of the
// column's kind, including numbers of the other kind or malformed ones, and
// rewrites the seance file once if anything changed. seances is updated
// in place.
func (s *Service) reconcile(ctx context.Context, t tenant.ID, seances []*domain.Seance) (int, error) {
	cleared := 0
	for _, se := range seances {
		if se.InvoiceNumber != "" && !s.documentBound(ctx, t, domain.KindInvoice, se.InvoiceNumber) {
			log.Warn().Str("tenant", t.String()).Str("seance", se.ID).Str("invoice", se.InvoiceNumber).Msg("billing: clearing invoice number without file")
			se.InvoiceNumber = ""
			cleared++
		}
		if se.DevisNumber != "" && !s.documentBound(ctx, t, domain.KindQuote, se.DevisNumber) {
			log.Warn().Str("tenant", t.String()).Str("seance", se.ID).Str("devis", se.DevisNumber).Msg("billing: clearing quote number without file")
			se.DevisNumber = ""
			cleared++
		}
	}
	if cleared == 0 {
		return 0, nil
	}
	if err := s.seances.SaveAll(ctx, t, seances); err != nil {
		return cleared, err
	}
	return cleared, nil
}

// documentBound reports whether number is a kind number with a file. A
// failed lookup counts as present so a transient error never clears a
// reference.
func (s *Service) documentBound(ctx context.Context, t tenant.ID, kind domain.DocumentKind, number string) bool {
	if k, _, _, ok := domain.ParseNumber(number); !ok || k != kind {
		return false
	}
	ok, err := s.documents.Exists(ctx, t, number)
	if err != nil {
		log.Warn().Err(err).Str("tenant", t.String()).Str("number", number).Msg("billing: document lookup failed")
		return true
	}
	return ok
}
