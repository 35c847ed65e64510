// Package billing is the seance lifecycle controller. It owns every
// mutation of a tenant's clients, tarifs, seances and documents, and
// serializes them through the tenant lock.
package billing

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/cabinet/internal/calendar"
	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/events"
	"github.com/gosuda/cabinet/internal/numbering"
	"github.com/gosuda/cabinet/internal/tenant"
)

// Locker serializes read-modify-write cycles per tenant.
type Locker interface {
	Lock(t tenant.ID) func()
}

// CalendarQueue accepts calendar effects once the seance is saved.
type CalendarQueue interface {
	Enqueue(eff calendar.Effect)
}

// Repositories is the storage the service works on.
type Repositories struct {
	Clients   domain.ClientRepository
	Tarifs    domain.TarifRepository
	Seances   domain.SeanceRepository
	Settings  domain.SettingsRepository
	Documents domain.DocumentRepository
}

type Service struct {
	clients   domain.ClientRepository
	tarifs    domain.TarifRepository
	seances   domain.SeanceRepository
	settings  domain.SettingsRepository
	documents domain.DocumentRepository
	numbers   *numbering.Service
	locker    Locker
	events    *events.Publisher
	calendar  CalendarQueue
	now       func() time.Time
}

type Option func(*Service)

// WithPublisher publishes seance events after each successful mutation.
func WithPublisher(p *events.Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithCalendar mirrors seances into the tenant's calendar.
func WithCalendar(q CalendarQueue) Option {
	return func(s *Service) { s.calendar = q }
}

// WithClock overrides the clock used for issue dates and the quote check.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repos Repositories, numbers *numbering.Service, locker Locker, opts ...Option) *Service {
	s := &Service{
		clients:   repos.Clients,
		tarifs:    repos.Tarifs,
		seances:   repos.Seances,
		settings:  repos.Settings,
		documents: repos.Documents,
		numbers:   numbers,
		locker:    locker,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) publish(ctx context.Context, t tenant.ID, typ events.Type, se *domain.Seance, number string) {
	id := ""
	if se != nil {
		id = se.ID
	}
	s.events.Publish(ctx, t, events.SeanceEvent{
		Type:     typ,
		SeanceID: id,
		Number:   number,
		Seance:   se,
		At:       s.now().UTC(),
	})
}

// mirror queues the calendar side effect of a saved seance. The tenant
// must have calendar sync enabled and a connected account.
func (s *Service) mirror(ctx context.Context, t tenant.ID, op domain.CalendarOp, se *domain.Seance, eventID string) {
	if s.calendar == nil || op == domain.CalendarNone || t.IsDemo() {
		return
	}
	settings, err := s.settings.Read(ctx, t)
	if err != nil {
		log.Warn().Err(err).Str("tenant", t.String()).Msg("billing: calendar skipped, settings unreadable")
		return
	}
	if !settings.Calendar.Enabled || !settings.OAuth.Connected {
		return
	}

	eff := calendar.Effect{
		Tenant:     t,
		Op:         op,
		SeanceID:   se.ID,
		CalendarID: settings.CalendarID(),
		EventID:    eventID,
	}
	if op != domain.CalendarDelete {
		client, _ := s.clients.FindByID(ctx, t, se.ClientID)
		tarif, _ := s.tarifs.FindByID(ctx, t, se.TarifID)
		eff.Event = calendar.EventFor(se, client, tarif, settings)
	}
	s.calendar.Enqueue(eff)
}
