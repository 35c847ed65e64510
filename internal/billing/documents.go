package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/events"
	"github.com/gosuda/cabinet/internal/tenant"
)

// GenerateInvoice issues the invoice of a seance. It is refused while a
// bound invoice file exists; a bound number without a file is orphaned
// and replaced.
func (s *Service) GenerateInvoice(ctx context.Context, t tenant.ID, seanceID string) (*domain.Seance, *domain.Document, error) {
	defer s.locker.Lock(t)()

	se, err := s.seances.FindByID(ctx, t, seanceID)
	if err != nil {
		return nil, nil, fmt.Errorf("billing.GenerateInvoice: %w", err)
	}
	if se.Invoiced() {
		exists, err := s.documents.Exists(ctx, t, se.InvoiceNumber)
		if err != nil {
			return nil, nil, fmt.Errorf("billing.GenerateInvoice: %w", err)
		}
		if exists {
			return nil, nil, fmt.Errorf("billing.GenerateInvoice: seance %s already has invoice %s: %w", seanceID, se.InvoiceNumber, domain.ErrInvalidTransition)
		}
		log.Warn().Str("tenant", t.String()).Str("seance", se.ID).Str("invoice", se.InvoiceNumber).Msg("billing: replacing orphaned invoice number")
	}

	number, err := s.numbers.NextInvoiceNumber(ctx, t)
	if err != nil {
		return nil, nil, fmt.Errorf("billing.GenerateInvoice: %w", err)
	}

	next := *se
	next.MarkInvoiced(number)

	doc, err := s.issue(ctx, t, domain.KindInvoice, number, &next)
	if err != nil {
		return nil, nil, fmt.Errorf("billing.GenerateInvoice: %w", err)
	}

	saved, err := s.seances.Upsert(ctx, t, &next)
	if err != nil {
		s.discard(ctx, t, number)
		return nil, nil, fmt.Errorf("billing.GenerateInvoice: %w", err)
	}

	// The invoice supersedes the quote; nothing references it any more.
	if se.DevisNumber != "" {
		if err := s.documents.Delete(ctx, t, se.DevisNumber); err != nil && !errors.Is(err, domain.ErrInvalidInput) {
			log.Warn().Err(err).Str("tenant", t.String()).Str("devis", se.DevisNumber).Msg("billing: superseded quote file not removed")
		}
	}

	s.publish(ctx, t, events.InvoiceGenerated, saved, number)
	return saved, doc, nil
}

// GenerateQuote issues a quote for a seance that is still in the future,
// has no invoice and no live quote file.
func (s *Service) GenerateQuote(ctx context.Context, t tenant.ID, seanceID string) (*domain.Seance, *domain.Document, error) {
	defer s.locker.Lock(t)()

	se, err := s.seances.FindByID(ctx, t, seanceID)
	if err != nil {
		return nil, nil, fmt.Errorf("billing.GenerateQuote: %w", err)
	}
	if !se.DateHeure.After(s.now()) {
		return nil, nil, fmt.Errorf("billing.GenerateQuote: seance %s is not in the future: %w", seanceID, domain.ErrInvalidTransition)
	}
	if se.Invoiced() {
		return nil, nil, fmt.Errorf("billing.GenerateQuote: seance %s already has invoice %s: %w", seanceID, se.InvoiceNumber, domain.ErrInvalidTransition)
	}
	if se.DevisNumber != "" {
		exists, err := s.documents.Exists(ctx, t, se.DevisNumber)
		if err != nil {
			return nil, nil, fmt.Errorf("billing.GenerateQuote: %w", err)
		}
		if exists {
			return nil, nil, fmt.Errorf("billing.GenerateQuote: seance %s already has quote %s: %w", seanceID, se.DevisNumber, domain.ErrInvalidTransition)
		}
	}

	number, err := s.numbers.NextDevisNumber(ctx, t)
	if err != nil {
		return nil, nil, fmt.Errorf("billing.GenerateQuote: %w", err)
	}

	next := *se
	next.DevisNumber = number

	doc, err := s.issue(ctx, t, domain.KindQuote, number, &next)
	if err != nil {
		return nil, nil, fmt.Errorf("billing.GenerateQuote: %w", err)
	}

	saved, err := s.seances.Upsert(ctx, t, &next)
	if err != nil {
		s.discard(ctx, t, number)
		return nil, nil, fmt.Errorf("billing.GenerateQuote: %w", err)
	}

	s.publish(ctx, t, events.QuoteGenerated, saved, number)
	return saved, doc, nil
}

// Document returns a stored invoice or quote snapshot.
func (s *Service) Document(ctx context.Context, t tenant.ID, number string) (*domain.Document, error) {
	doc, err := s.documents.Read(ctx, t, number)
	if err != nil {
		return nil, fmt.Errorf("billing.Document: %w", err)
	}
	return doc, nil
}

// issue snapshots the seance with its client, tarif and the tenant
// settings, and writes the document file exclusively.
func (s *Service) issue(ctx context.Context, t tenant.ID, kind domain.DocumentKind, number string, se *domain.Seance) (*domain.Document, error) {
	settings, err := s.settings.Read(ctx, t)
	if err != nil {
		return nil, err
	}
	client, err := s.clients.FindByID(ctx, t, se.ClientID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	tarif, err := s.tarifs.FindByID(ctx, t, se.TarifID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	doc := domain.BuildDocument(domain.DocumentInput{
		Kind:     kind,
		Number:   number,
		Issued:   s.now(),
		Seance:   se,
		Client:   client,
		Tarif:    tarif,
		Settings: settings,
	})
	if err := s.documents.Create(ctx, t, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// discard removes a document whose seance could not be saved, so no file
// exists without a reference.
func (s *Service) discard(ctx context.Context, t tenant.ID, number string) {
	if err := s.documents.Delete(ctx, t, number); err != nil {
		log.Error().Err(err).Str("tenant", t.String()).Str("number", number).Msg("billing: orphaned document file left on disk")
	}
}
