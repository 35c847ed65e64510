// Package notify delivers rendered documents to clients.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/cabinet/internal/domain"
)

// ErrNoRecipient is returned when the document's client has no email.
var ErrNoRecipient = fmt.Errorf("notify: client has no email address: %w", domain.ErrInvalidInput) //nolint:gochecknoglobals // sentinel error

// ErrSenderNotFound is returned when a delivery channel is not registered.
var ErrSenderNotFound = errors.New("notify: sender not found") //nolint:gochecknoglobals // sentinel error

// Attachment is a file sent along with a message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is one outgoing email.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Sender delivers messages over one channel and returns the provider's
// message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
	Channel() string
}

// SenderRegistry maps channel names to Sender implementations.
type SenderRegistry interface {
	Get(channel string) (Sender, bool)
}

// Renderer turns a document snapshot into HTML.
type Renderer func(doc *domain.Document) ([]byte, error)

// Notifier sends invoices and quotes through the first channel that
// accepts them.
type Notifier struct {
	senders  SenderRegistry
	channels []string
	render   Renderer
}

// New creates a Notifier that tries channels in order.
func New(senders SenderRegistry, render Renderer, channels ...string) *Notifier {
	return &Notifier{
		senders:  senders,
		channels: channels,
		render:   render,
	}
}

// SendDocument renders doc and mails it to the client's address as an
// HTML attachment.
func (n *Notifier) SendDocument(ctx context.Context, doc *domain.Document) (string, error) {
	to := strings.TrimSpace(doc.Client.Email)
	if to == "" {
		return "", fmt.Errorf("notify.Notifier.SendDocument %s: %w", doc.Number, ErrNoRecipient)
	}

	body, err := n.render(doc)
	if err != nil {
		return "", fmt.Errorf("notify.Notifier.SendDocument: render: %w", err)
	}

	msg := Message{
		To:      to,
		Subject: fmt.Sprintf("%s %s", doc.Kind.Label(), doc.Number),
		HTML:    coverLetter(doc),
		Attachments: []Attachment{{
			Filename:    doc.Number + ".html",
			ContentType: "text/html; charset=utf-8",
			Content:     body,
		}},
	}

	if len(n.channels) == 0 {
		return "", fmt.Errorf("notify.Notifier.SendDocument: %w", ErrSenderNotFound)
	}

	var lastErr error
	for _, ch := range n.channels {
		id, sendErr := n.SendVia(ctx, ch, msg)
		if sendErr == nil {
			log.Info().Str("number", doc.Number).Str("channel", ch).Str("message_id", id).Msg("notify: document sent")
			return id, nil
		}
		log.Warn().Err(sendErr).Str("number", doc.Number).Str("channel", ch).Msg("notify: channel failed")
		lastErr = sendErr
	}

	return "", fmt.Errorf("notify.Notifier.SendDocument: all channels failed: %w", lastErr)
}

// SendVia sends a message over a specific channel.
func (n *Notifier) SendVia(ctx context.Context, channel string, msg Message) (string, error) {
	s, ok := n.senders.Get(channel)
	if !ok {
		return "", fmt.Errorf("notify.Notifier.SendVia: channel %q: %w", channel, ErrSenderNotFound)
	}

	id, err := s.Send(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("notify.Notifier.SendVia: send: %w", err)
	}
	return id, nil
}

func coverLetter(doc *domain.Document) string {
	name := strings.TrimSpace(doc.Client.Prenom + " " + doc.Client.Nom)
	if name == "" {
		name = "Madame, Monsieur"
	}
	from := strings.TrimSpace(doc.Manager.Prenom + " " + doc.Manager.Nom)
	return fmt.Sprintf(
		"<p>Bonjour %s,</p><p>Veuillez trouver ci-joint votre %s n° %s.</p><p>Cordialement,<br>%s</p>",
		htmlEscape(name), strings.ToLower(doc.Kind.Label()), htmlEscape(doc.Number), htmlEscape(from),
	)
}

var htmlReplacer = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&#34;", "'", "&#39;")

func htmlEscape(s string) string { return htmlReplacer.Replace(s) }
