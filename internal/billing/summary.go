package billing

import (
	"context"
	"fmt"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/tenant"
)

// Summary is the dashboard view of one calendar year.
type Summary struct {
	Year     int                         `json:"year"`
	Counts   map[domain.SeanceStatus]int `json:"counts"`
	Paid     domain.Money                `json:"paid"`
	Due      domain.Money                `json:"due"`
	Invoices int                         `json:"invoices"`
	Quotes   int                         `json:"quotes"`
	Clients  int                         `json:"clients"`
}

// Summary counts the seances of year per status and sums the amounts
// paid and still due.
func (s *Service) Summary(ctx context.Context, t tenant.ID, year int) (*Summary, error) {
	seances, err := s.seances.FindAll(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("billing.Summary: %w", err)
	}
	clients, err := s.clients.FindAll(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("billing.Summary: %w", err)
	}

	sum := &Summary{
		Year: year,
		Counts: map[domain.SeanceStatus]int{
			domain.SeancePlanned:   0,
			domain.SeanceDue:       0,
			domain.SeancePaid:      0,
			domain.SeanceCancelled: 0,
		},
		Clients: len(clients),
	}
	for _, se := range seances {
		if se.DateHeure.Year() != year {
			continue
		}
		sum.Counts[se.Statut]++
		switch se.Statut {
		case domain.SeancePaid:
			sum.Paid = sum.Paid.Plus(se.Montant)
		case domain.SeanceDue:
			sum.Due = sum.Due.Plus(se.Montant)
		}
		if se.Invoiced() {
			sum.Invoices++
		}
		if se.DevisNumber != "" {
			sum.Quotes++
		}
	}
	return sum, nil
}
