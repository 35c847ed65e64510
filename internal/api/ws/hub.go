// Package ws streams tenant seance events to browsers over WebSocket.
package ws

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/cabinet/internal/server/middleware"
	"github.com/gosuda/cabinet/internal/tenant"
)

// Subscriber opens a tenant's event stream. *events.Publisher satisfies
// this interface.
type Subscriber interface {
	Subscribe(ctx context.Context, t tenant.ID) (<-chan []byte, func(), error)
}

// Hub manages WebSocket connections backed by the event broker.
type Hub struct {
	events  Subscriber
	origins []string
}

// NewHub creates a new WebSocket hub. origins lists the host patterns
// allowed besides the server's own.
func NewHub(events Subscriber, origins ...string) *Hub {
	return &Hub{events: events, origins: origins}
}

// ServeSeances streams the caller's "seances:<tenant>" channel. Client
// messages are ignored; the stream ends when either side closes.
func (h *Hub) ServeSeances(w http.ResponseWriter, r *http.Request) {
	t := middleware.TenantFromContext(r.Context())

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())

	messages, cleanup, err := h.events.Subscribe(ctx, t)
	if err != nil {
		log.Error().Err(err).Str("tenant", t.String()).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, ok := <-messages:
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
				log.Debug().Err(err).Msg("websocket write")
				return
			}
		}
	}
}
