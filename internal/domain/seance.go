package domain

import (
	"fmt"
	"strings"
	"time"
)

type SeanceStatus string

const (
	SeancePlanned   SeanceStatus = "PLANIFIEE"
	SeanceDue       SeanceStatus = "APAYER"
	SeancePaid      SeanceStatus = "PAYEE"
	SeanceCancelled SeanceStatus = "ANNULEE"
)

// Valid reports whether s is one of the four known statuses.
func (s SeanceStatus) Valid() bool {
	switch s {
	case SeancePlanned, SeanceDue, SeancePaid, SeanceCancelled:
		return true
	default:
		return false
	}
}

// Seance is a single appointment. Amount and tariff are copied at creation
// time; later tariff edits do not affect existing seances.
type Seance struct {
	ID              string       `json:"id_seance" validate:"required,uuid"`
	ClientID        string       `json:"id_client" validate:"required"`
	DateHeure       time.Time    `json:"date_heure_seance"`
	TarifID         string       `json:"id_tarif" validate:"required"`
	Montant         Money        `json:"montant_facture"`
	Statut          SeanceStatus `json:"statut_seance" validate:"oneof=PLANIFIEE APAYER PAYEE ANNULEE"`
	ModePaiement    string       `json:"mode_paiement,omitempty"`
	DatePaiement    string       `json:"date_paiement,omitempty"` // YYYY-MM-DD
	InvoiceNumber   string       `json:"invoice_number,omitempty"`
	DevisNumber     string       `json:"devis_number,omitempty"`
	CalendarEventID string       `json:"googleCalendarEventId,omitempty"`
}

// Invoiced reports whether an invoice number is bound to the seance.
func (s *Seance) Invoiced() bool { return s.InvoiceNumber != "" }

// ApplyPayment sets the status and payment fields. Payment fields are only
// kept for PAYEE; any other status clears them.
func (s *Seance) ApplyPayment(status SeanceStatus, mode, date string) error {
	if !status.Valid() {
		return fmt.Errorf("seance status %q: %w", status, ErrInvalidInput)
	}
	if status != SeancePaid {
		s.Statut = status
		s.ModePaiement = ""
		s.DatePaiement = ""
		return nil
	}
	if mode == "" {
		return fmt.Errorf("mode_paiement is required for %s: %w", SeancePaid, ErrInvalidInput)
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("date_paiement %q: %w", date, ErrInvalidInput)
	}
	s.Statut = status
	s.ModePaiement = mode
	s.DatePaiement = date
	return nil
}

// MarkInvoiced binds an invoice number, drops any quote reference and moves
// an open seance to APAYER.
func (s *Seance) MarkInvoiced(number string) {
	s.InvoiceNumber = number
	s.DevisNumber = ""
	if s.Statut != SeancePaid && s.Statut != SeanceCancelled {
		s.Statut = SeanceDue
	}
}

// CalendarOp is the calendar side effect implied by an edit.
type CalendarOp string

const (
	CalendarNone   CalendarOp = ""
	CalendarCreate CalendarOp = "create"
	CalendarUpdate CalendarOp = "update"
	CalendarDelete CalendarOp = "delete"
)

// CalendarOpFor returns the side effect for moving s from status prev to
// its current status.
func (s *Seance) CalendarOpFor(prev SeanceStatus) CalendarOp {
	switch {
	case s.Statut == SeanceCancelled && s.CalendarEventID != "":
		return CalendarDelete
	case s.Statut == SeanceCancelled:
		return CalendarNone
	case prev == SeanceCancelled && s.CalendarEventID == "":
		return CalendarCreate
	case s.CalendarEventID != "":
		return CalendarUpdate
	default:
		return CalendarNone
	}
}

// Date layouts used in flat files and document snapshots. Seance times are
// written as RFC 3339; DateTimeLayout is accepted on read.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04"
)

// StoredTime returns t as seances.tsv keeps it: whole seconds, local zone.
func StoredTime(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.Truncate(time.Second).In(time.Local)
}

// Validate checks field constraints, including a non-negative amount and a
// set date.
func (s *Seance) Validate() error {
	if err := Validate(s); err != nil {
		return err
	}
	if s.DateHeure.IsZero() {
		return fmt.Errorf("date_heure_seance is required: %w", ErrInvalidInput)
	}
	if s.Montant.IsNegative() {
		return fmt.Errorf("montant_facture must be greater than or equal to 0: %w", ErrInvalidInput)
	}
	return nil
}

var dateTimeLayouts = []string{
	DateTimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	DateLayout,
}

// ParseDateTime accepts RFC 3339 and the layouts hand-edited files tend to
// contain. Values without a zone are local time; an unparsable value is zero.
func ParseDateTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(time.Local)
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
