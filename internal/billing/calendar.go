package billing

import (
	"context"
	"fmt"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/tenant"
)

// CalendarEventID returns the event id currently stored on a seance.
func (s *Service) CalendarEventID(ctx context.Context, t tenant.ID, seanceID string) (string, error) {
	se, err := s.seances.FindByID(ctx, t, seanceID)
	if err != nil {
		return "", fmt.Errorf("billing.CalendarEventID: %w", err)
	}
	return se.CalendarEventID, nil
}

// AttachCalendarEvent records the event created for a seance. It fails
// when the seance was deleted, cancelled or linked meanwhile, and the
// caller then drops the new event.
func (s *Service) AttachCalendarEvent(ctx context.Context, t tenant.ID, seanceID, eventID string) error {
	defer s.locker.Lock(t)()

	se, err := s.seances.FindByID(ctx, t, seanceID)
	if err != nil {
		return fmt.Errorf("billing.AttachCalendarEvent: %w", err)
	}
	switch {
	case se.CalendarEventID == eventID:
		return nil
	case se.CalendarEventID != "":
		return fmt.Errorf("billing.AttachCalendarEvent: seance %s already linked to %s: %w", seanceID, se.CalendarEventID, domain.ErrInvalidTransition)
	case se.Statut == domain.SeanceCancelled:
		return fmt.Errorf("billing.AttachCalendarEvent: seance %s is cancelled: %w", seanceID, domain.ErrInvalidTransition)
	}

	next := *se
	next.CalendarEventID = eventID
	if _, err := s.seances.Upsert(ctx, t, &next); err != nil {
		return fmt.Errorf("billing.AttachCalendarEvent: %w", err)
	}
	return nil
}
