package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LogChannel is the channel name of the logging sender.
const LogChannel = "log"

// LogSender writes messages to the log instead of delivering them. It
// stands in for email when no provider is configured.
type LogSender struct{}

func (LogSender) Channel() string { return LogChannel }

func (LogSender) Send(_ context.Context, msg Message) (string, error) {
	id := uuid.NewString()
	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Filename)
	}
	log.Info().
		Str("message_id", id).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Strs("attachments", names).
		Msg("notify: email not sent, no provider configured")
	return id, nil
}
