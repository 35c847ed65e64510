// Package events carries seance change notifications to live clients.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/tenant"
)

// Broker is a fan-out message bus. Subscribe returns the message channel
// and a cleanup func; the channel closes when ctx is done.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

type Type string

const (
	SeanceCreated    Type = "seance_created"
	SeanceUpdated    Type = "seance_updated"
	SeanceDeleted    Type = "seance_deleted"
	InvoiceGenerated Type = "invoice_generated"
	QuoteGenerated   Type = "quote_generated"
)

// SeanceEvent is the payload published on a tenant's channel.
type SeanceEvent struct {
	Type     Type           `json:"type"`
	SeanceID string         `json:"seance_id"`
	Number   string         `json:"number,omitempty"`
	Seance   *domain.Seance `json:"data,omitempty"`
	At       time.Time      `json:"at"`
}

// Channel returns the channel name for a tenant's seance events.
func Channel(t tenant.ID) string {
	return "seances:" + t.String()
}

// Publisher encodes and publishes events. A nil *Publisher or one without a
// broker drops everything.
type Publisher struct {
	broker Broker
}

func NewPublisher(b Broker) *Publisher {
	return &Publisher{broker: b}
}

// Publish is best effort: failures are logged, never returned.
func (p *Publisher) Publish(ctx context.Context, t tenant.ID, ev SeanceEvent) {
	if p == nil || p.broker == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Warn().Err(err).Str("event", string(ev.Type)).Msg("events: encode failed")
		return
	}
	if err := p.broker.Publish(ctx, Channel(t), payload); err != nil {
		log.Warn().Err(err).Str("tenant", t.String()).Str("event", string(ev.Type)).Msg("events: publish failed")
	}
}

// Subscribe is a convenience wrapper over the broker for one tenant.
func (p *Publisher) Subscribe(ctx context.Context, t tenant.ID) (<-chan []byte, func(), error) {
	if p == nil || p.broker == nil {
		return nil, nil, fmt.Errorf("events.Subscribe: no broker configured")
	}
	msgs, cleanup, err := p.broker.Subscribe(ctx, Channel(t))
	if err != nil {
		return nil, nil, fmt.Errorf("events.Subscribe: %w", err)
	}
	return msgs, cleanup, nil
}
