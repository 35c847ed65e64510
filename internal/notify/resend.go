package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/resend/resend-go/v2"
)

// ResendChannel is the channel name of the Resend sender.
const ResendChannel = "resend"

// ResendConfig holds the Resend account settings.
type ResendConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	// BaseURL overrides the API endpoint, e.g. in tests.
	BaseURL    string
	HTTPClient *http.Client
}

// Resend sends email through the Resend API.
type Resend struct {
	client *resend.Client
	from   string
}

func NewResend(cfg ResendConfig) (*Resend, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("notify.NewResend: API key is required")
	}
	if cfg.FromEmail == "" {
		return nil, errors.New("notify.NewResend: from email is required")
	}

	client := resend.NewClient(cfg.APIKey)
	if cfg.HTTPClient != nil {
		client = resend.NewCustomClient(cfg.HTTPClient, cfg.APIKey)
	}
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("notify.NewResend: base url: %w", err)
		}
		client.BaseURL = u
	}

	from := cfg.FromEmail
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)
	}
	return &Resend{client: client, from: from}, nil
}

func (r *Resend) Channel() string { return ResendChannel }

func (r *Resend) Send(ctx context.Context, msg Message) (string, error) {
	params := &resend.SendEmailRequest{
		From:    r.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	for _, a := range msg.Attachments {
		params.Attachments = append(params.Attachments, &resend.Attachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Content:     a.Content,
		})
	}

	sent, err := r.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", fmt.Errorf("notify.Resend.Send: %w", err)
	}
	return sent.Id, nil
}
