package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/gosuda/cabinet/internal/tenant"
)

// TokenSourcer returns the OAuth token source of a tenant's connected
// Google account.
type TokenSourcer interface {
	TokenSource(ctx context.Context, t tenant.ID) (oauth2.TokenSource, error)
}

// Google is the Adapter for Google Calendar.
type Google struct {
	tokens TokenSourcer
	opts   []option.ClientOption
}

// NewGoogle creates the adapter. opts are appended after the tenant's
// token source, e.g. to point the client at a test endpoint.
func NewGoogle(tokens TokenSourcer, opts ...option.ClientOption) *Google {
	return &Google{tokens: tokens, opts: opts}
}

func (g *Google) service(ctx context.Context, t tenant.ID) (*gcal.Service, error) {
	ts, err := g.tokens.TokenSource(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPermanent, err)
	}
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, g.opts...)
	srv, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar.Google: new service: %w", err)
	}
	return srv, nil
}

func (g *Google) Create(ctx context.Context, t tenant.ID, calendarID string, ev Event) (string, error) {
	srv, err := g.service(ctx, t)
	if err != nil {
		return "", err
	}
	created, err := srv.Events.Insert(calendarID, toGoogleEvent(ev)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("calendar.Google.Create: %w", classify(err))
	}
	return created.Id, nil
}

func (g *Google) Update(ctx context.Context, t tenant.ID, calendarID, eventID string, ev Event) error {
	srv, err := g.service(ctx, t)
	if err != nil {
		return err
	}
	if _, err := srv.Events.Patch(calendarID, eventID, toGoogleEvent(ev)).Context(ctx).Do(); err != nil {
		return fmt.Errorf("calendar.Google.Update: %w", classify(err))
	}
	return nil
}

// Delete treats an event that is already gone as deleted.
func (g *Google) Delete(ctx context.Context, t tenant.ID, calendarID, eventID string) error {
	srv, err := g.service(ctx, t)
	if err != nil {
		return err
	}
	err = srv.Events.Delete(calendarID, eventID).Context(ctx).Do()
	if isGone(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("calendar.Google.Delete: %w", classify(err))
	}
	return nil
}

func toGoogleEvent(ev Event) *gcal.Event {
	return &gcal.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       &gcal.EventDateTime{DateTime: ev.Start.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: ev.End.Format(time.RFC3339)},
	}
}

func isGone(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone)
}

// classify marks client errors other than rate limiting as permanent.
func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", ErrPermanent, err)
	}
	return err
}
