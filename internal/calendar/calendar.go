// Package calendar mirrors seances into an external calendar. The local
// seance is always saved first; calendar work happens afterwards through
// the Outbox and never fails a request.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/tenant"
)

// ErrPermanent marks adapter errors that retrying cannot fix, such as a
// tenant without a connected account.
var ErrPermanent = errors.New("calendar: permanent failure")

// Event is the provider-neutral description of a calendar entry.
type Event struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// Adapter talks to the calendar provider. Event ids are opaque.
type Adapter interface {
	Create(ctx context.Context, t tenant.ID, calendarID string, ev Event) (string, error)
	Update(ctx context.Context, t tenant.ID, calendarID, eventID string, ev Event) error
	Delete(ctx context.Context, t tenant.ID, calendarID, eventID string) error
}

// Effect is one queued calendar operation for a seance.
type Effect struct {
	Tenant     tenant.ID
	Op         domain.CalendarOp
	SeanceID   string
	CalendarID string
	EventID    string // for update and delete
	Event      Event
}

func (e Effect) String() string {
	return fmt.Sprintf("%s %s/%s", e.Op, e.Tenant, e.SeanceID)
}

// DefaultDuration is used when neither the tarif nor the settings give one.
const DefaultDuration = 60 * time.Minute

// EventFor builds the calendar entry of a seance. client and tarif may be
// nil when the reference no longer resolves.
func EventFor(s *domain.Seance, client *domain.Client, tarif *domain.Tarif, settings domain.Settings) Event {
	fallback := settings.Calendar.DefaultDuration
	if fallback <= 0 {
		fallback = int(DefaultDuration / time.Minute)
	}
	duration := time.Duration(tarif.DurationMinutes(fallback)) * time.Minute

	ev := Event{
		Summary: "Séance - " + client.FullName(),
		Start:   s.DateHeure,
		End:     s.DateHeure.Add(duration),
	}
	if tarif != nil && tarif.Libelle != "" {
		ev.Description = tarif.Libelle
	}
	return ev
}
