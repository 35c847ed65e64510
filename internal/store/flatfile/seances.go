package flatfile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/tenant"
)

type SeanceRepo struct {
	t table[domain.Seance]
}

func NewSeanceRepo(root *Root) *SeanceRepo {
	return &SeanceRepo{
		t: table[domain.Seance]{
			root:   root,
			schema: SeanceSchema,
			name:   "seanceRepo",
			key:    func(s *domain.Seance) string { return s.ID },
			decode: decodeSeance,
			encode: encodeSeance,
		},
	}
}

func (r *SeanceRepo) FindAll(ctx context.Context, t tenant.ID) ([]*domain.Seance, error) {
	return r.t.list(ctx, t)
}

func (r *SeanceRepo) Load(ctx context.Context, t tenant.ID) ([]*domain.Seance, error) {
	return r.t.load(ctx, t)
}

func (r *SeanceRepo) FindByID(ctx context.Context, t tenant.ID, id string) (*domain.Seance, error) {
	items, err := r.t.list(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("seanceRepo.FindByID: %w", err)
	}
	if _, s := r.t.find(items, id); s != nil {
		return s, nil
	}
	return nil, fmt.Errorf("seanceRepo.FindByID %q: %w", id, domain.ErrNotFound)
}

// Upsert replaces the seance with the same id, or appends it. A missing id
// is filled with a fresh UUID.
func (r *SeanceRepo) Upsert(ctx context.Context, t tenant.ID, s *domain.Seance) (*domain.Seance, error) {
	saved := *s
	if saved.ID == "" {
		saved.ID = uuid.NewString()
	}
	err := r.t.mutate(ctx, t, func(items []*domain.Seance) ([]*domain.Seance, error) {
		rec := saved
		if i, _ := r.t.find(items, saved.ID); i >= 0 {
			items[i] = &rec
		} else {
			items = append(items, &rec)
		}
		return items, nil
	})
	if err != nil {
		return nil, fmt.Errorf("seanceRepo.Upsert: %w", err)
	}
	return &saved, nil
}

func (r *SeanceRepo) Delete(ctx context.Context, t tenant.ID, id string) (bool, error) {
	ok, err := r.t.remove(ctx, t, id)
	if err != nil {
		return false, fmt.Errorf("seanceRepo.Delete: %w", err)
	}
	return ok, nil
}

func (r *SeanceRepo) SaveAll(ctx context.Context, t tenant.ID, seances []*domain.Seance) error {
	return r.t.save(ctx, t, seances)
}

func decodeSeance(rec Record) *domain.Seance {
	s := &domain.Seance{
		ID:              rec.String("id_seance"),
		ClientID:        rec.String("id_client"),
		DateHeure:       domain.ParseDateTime(rec.String("date_heure_seance")),
		TarifID:         rec.String("id_tarif"),
		Statut:          domain.SeanceStatus(rec.String("statut_seance")),
		ModePaiement:    rec.String("mode_paiement"),
		DatePaiement:    rec.String("date_paiement"),
		InvoiceNumber:   rec.String("invoice_number"),
		DevisNumber:     rec.String("devis_number"),
		CalendarEventID: rec.String("googleCalendarEventId"),
	}
	if d, ok := rec.Decimal("montant_facture"); ok {
		s.Montant = domain.Money{Decimal: d}
	}
	if s.Statut == "" {
		s.Statut = domain.SeancePlanned
	}
	return s
}

func encodeSeance(s *domain.Seance) Record {
	var when any
	if !s.DateHeure.IsZero() {
		when = domain.StoredTime(s.DateHeure).Format(time.RFC3339)
	}
	return Record{
		"id_seance":             nullable(s.ID),
		"id_client":             nullable(s.ClientID),
		"date_heure_seance":     when,
		"id_tarif":              nullable(s.TarifID),
		"montant_facture":       s.Montant.Decimal,
		"statut_seance":         nullable(string(s.Statut)),
		"mode_paiement":         nullable(s.ModePaiement),
		"date_paiement":         nullable(s.DatePaiement),
		"invoice_number":        nullable(s.InvoiceNumber),
		"devis_number":          nullable(s.DevisNumber),
		"googleCalendarEventId": nullable(s.CalendarEventID),
	}
}
