// Package numbering allocates sequential invoice and quote numbers per
// tenant and calendar year.
package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/tenant"
)

// Counter persists the last sequence issued per (tenant, kind, year).
// Reserve returns max(stored, floor)+1 and stores it before returning.
type Counter interface {
	Reserve(ctx context.Context, t tenant.ID, kind domain.DocumentKind, year, floor int) (int, error)
}

// Service combines a scan of what is already on disk with a persisted
// counter, so numbers survive both a lost counter and deleted files.
// Callers serialize calls per tenant.
type Service struct {
	seances   domain.SeanceRepository
	documents domain.DocumentRepository
	counter   Counter
	now       func() time.Time
}

type Option func(*Service)

// WithCounter sets the persisted counter. Without one the service falls
// back to a pure scan.
func WithCounter(c Counter) Option {
	return func(s *Service) { s.counter = c }
}

// WithClock overrides the clock that picks the numbering year.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(seances domain.SeanceRepository, documents domain.DocumentRepository, opts ...Option) *Service {
	s := &Service{seances: seances, documents: documents, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NextInvoiceNumber returns the next FAC-{year}-NNNN. Numbers recorded in
// seances.tsv and files in the invoice directory both count as taken.
func (s *Service) NextInvoiceNumber(ctx context.Context, t tenant.ID) (string, error) {
	seances, err := s.seances.Load(ctx, t)
	if err != nil {
		return "", fmt.Errorf("numbering.NextInvoiceNumber: %w", err)
	}
	files, err := s.documents.Numbers(ctx, t, domain.KindInvoice)
	if err != nil {
		return "", fmt.Errorf("numbering.NextInvoiceNumber: %w", err)
	}

	taken := files
	for _, se := range seances {
		taken = append(taken, se.InvoiceNumber)
	}
	return s.next(ctx, t, domain.KindInvoice, taken)
}

// NextDevisNumber returns the next DEV-{year}-NNNN from the quote directory
// listing and the devis_number column.
func (s *Service) NextDevisNumber(ctx context.Context, t tenant.ID) (string, error) {
	files, err := s.documents.Numbers(ctx, t, domain.KindQuote)
	if err != nil {
		return "", fmt.Errorf("numbering.NextDevisNumber: %w", err)
	}
	seances, err := s.seances.Load(ctx, t)
	if err != nil {
		return "", fmt.Errorf("numbering.NextDevisNumber: %w", err)
	}

	taken := files
	for _, se := range seances {
		taken = append(taken, se.DevisNumber)
	}
	return s.next(ctx, t, domain.KindQuote, taken)
}

func (s *Service) next(ctx context.Context, t tenant.ID, kind domain.DocumentKind, taken []string) (string, error) {
	year := s.now().Year()
	floor := MaxSequence(taken, kind, year)

	seq := floor + 1
	if s.counter != nil {
		var err error
		seq, err = s.counter.Reserve(ctx, t, kind, year, floor)
		if err != nil {
			return "", fmt.Errorf("numbering.next %s: %w", kind, err)
		}
	}
	return domain.FormatNumber(kind, year, seq), nil
}

// MaxSequence returns the highest sequence among numbers of kind issued in
// year, or 0. Malformed entries are ignored.
func MaxSequence(numbers []string, kind domain.DocumentKind, year int) int {
	maxSeq := 0
	for _, n := range numbers {
		k, y, seq, ok := domain.ParseNumber(n)
		if ok && k == kind && y == year && seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq
}
