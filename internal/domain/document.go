package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type DocumentKind string

const (
	KindInvoice DocumentKind = "FAC"
	KindQuote   DocumentKind = "DEV"
)

// Prefix returns the number prefix for year, e.g. "FAC-2026-".
func (k DocumentKind) Prefix(year int) string {
	return fmt.Sprintf("%s-%d-", k, year)
}

// Label is the French document title.
func (k DocumentKind) Label() string {
	if k == KindQuote {
		return "Devis"
	}
	return "Facture"
}

// FormatNumber builds "{KIND}-{YEAR}-{SEQ}" with the sequence zero-padded to
// at least four digits.
func FormatNumber(kind DocumentKind, year, seq int) string {
	return fmt.Sprintf("%s%04d", kind.Prefix(year), seq)
}

// ParseNumber splits a document number. ok is false for anything that is
// not exactly KIND-YYYY-N+ with a known kind.
func ParseNumber(number string) (kind DocumentKind, year, seq int, ok bool) {
	parts := strings.Split(number, "-")
	if len(parts) != 3 {
		return "", 0, 0, false
	}
	kind = DocumentKind(parts[0])
	if kind != KindInvoice && kind != KindQuote {
		return "", 0, 0, false
	}
	if len(parts[1]) != 4 || parts[2] == "" {
		return "", 0, 0, false
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, false
	}
	for _, c := range parts[2] {
		if c < '0' || c > '9' {
			return "", 0, 0, false
		}
	}
	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, 0, false
	}
	return kind, year, seq, true
}

// Document is the immutable snapshot written once per invoice or quote.
type Document struct {
	Number    string           `json:"number"`
	Kind      DocumentKind     `json:"kind"`
	IssueDate string           `json:"issueDate"`
	DueDate   string           `json:"dueDate,omitempty"`    // invoices
	ValidTill string           `json:"validUntil,omitempty"` // quotes
	SeanceID  string           `json:"seanceId"`
	Client    ClientSnapshot   `json:"client"`
	Service   []LineItem       `json:"service"`
	TVARate   float64          `json:"tvaRate"`
	Manager   ManagerProfile   `json:"manager"`
	Legal     LegalMentions    `json:"legal"`
	Payment   *PaymentSnapshot `json:"payment,omitempty"`
	Totals    Totals           `json:"totals"`
}

type ClientSnapshot struct {
	ID      string `json:"id"`
	Nom     string `json:"nom"`
	Prenom  string `json:"prenom"`
	Email   string `json:"email,omitempty"`
	Adresse string `json:"adresse,omitempty"`
	Ville   string `json:"ville,omitempty"`
}

type LineItem struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   Money  `json:"unitPrice"`
}

type PaymentSnapshot struct {
	Status SeanceStatus `json:"status"`
	Mode   string       `json:"mode,omitempty"`
	Date   string       `json:"date,omitempty"`
}

type Totals struct {
	HT  Money `json:"ht"`
	TVA Money `json:"tva"`
	TTC Money `json:"ttc"`
}

// DocumentInput gathers everything a snapshot copies. Client and Tarif may
// be nil when the weak reference no longer resolves.
type DocumentInput struct {
	Kind     DocumentKind
	Number   string
	Issued   time.Time
	Seance   *Seance
	Client   *Client
	Tarif    *Tarif
	Settings Settings
}

// BuildDocument assembles a snapshot. It does not touch storage.
func BuildDocument(in DocumentInput) *Document {
	doc := &Document{
		Number:    in.Number,
		Kind:      in.Kind,
		IssueDate: in.Issued.Format(DateLayout),
		SeanceID:  in.Seance.ID,
		TVARate:   in.Settings.TVARate,
		Manager:   in.Settings.Manager,
		Legal:     in.Settings.Legal,
	}

	switch in.Kind {
	case KindQuote:
		doc.ValidTill = in.Issued.AddDate(0, 0, in.Settings.Legal.ValiditeDevisJours).Format(DateLayout)
	default:
		doc.DueDate = in.Issued.AddDate(0, 0, in.Settings.Legal.DelaiPaiementJours).Format(DateLayout)
		doc.Payment = &PaymentSnapshot{
			Status: in.Seance.Statut,
			Mode:   in.Seance.ModePaiement,
			Date:   in.Seance.DatePaiement,
		}
	}

	if in.Client != nil {
		doc.Client = ClientSnapshot{
			ID:      in.Client.ID,
			Nom:     in.Client.Nom,
			Prenom:  in.Client.Prenom,
			Email:   in.Client.Email,
			Adresse: in.Client.Adresse,
			Ville:   in.Client.Ville,
		}
	} else {
		doc.Client = ClientSnapshot{ID: in.Seance.ClientID, Nom: UnknownLabel}
	}

	description := "Séance"
	if in.Tarif != nil && in.Tarif.Libelle != "" {
		description = in.Tarif.Libelle
	}
	doc.Service = []LineItem{{
		Date:        in.Seance.DateHeure.Format(DateLayout),
		Description: description,
		Quantity:    1,
		UnitPrice:   in.Seance.Montant,
	}}

	doc.Totals = ComputeTotals(doc.Service, in.Settings.TVARate)
	return doc
}

// ComputeTotals sums the line items and applies the VAT rate (percent).
func ComputeTotals(items []LineItem, tvaRate float64) Totals {
	var ht Money
	for _, it := range items {
		ht = ht.Plus(it.UnitPrice.Times(decimal.NewFromInt(int64(it.Quantity))))
	}
	rate := decimal.NewFromFloat(tvaRate).Div(decimal.NewFromInt(100))
	if rate.IsNegative() {
		rate = decimal.Zero
	}
	tva := ht.Times(rate)
	return Totals{HT: ht, TVA: tva, TTC: ht.Plus(tva)}
}
