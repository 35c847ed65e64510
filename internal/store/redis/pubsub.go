package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const subscriberBuffer = 64

// PubSub fans seance events out to every server instance. It implements
// events.Broker with the same delivery rule as events.Memory: a subscriber
// that falls behind loses messages instead of stalling the connection.
type PubSub struct {
	client *redis.Client
	prefix string
}

// Option configures a PubSub.
type Option func(*PubSub)

// WithPrefix namespaces every channel, for deployments sharing one Redis.
func WithPrefix(prefix string) Option {
	return func(ps *PubSub) { ps.prefix = prefix }
}

func New(ctx context.Context, addr, password string, db int, opts ...Option) (*PubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping %s: %w", addr, err)
	}

	ps := &PubSub{client: client}
	for _, opt := range opts {
		opt(ps)
	}
	return ps, nil
}

// Client exposes the underlying connection so the session store can share it.
func (ps *PubSub) Client() *redis.Client { return ps.client }

func (ps *PubSub) Close() error {
	if err := ps.client.Close(); err != nil {
		return fmt.Errorf("redis.PubSub.Close: %w", err)
	}
	return nil
}

// Channel returns the Redis channel carrying the given events channel.
func (ps *PubSub) Channel(channel string) string {
	return ps.prefix + channel
}

func (ps *PubSub) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := ps.client.Publish(ctx, ps.Channel(channel), payload).Err(); err != nil {
		return fmt.Errorf("redis.PubSub.Publish %s: %w", channel, err)
	}
	return nil
}

// Subscribe returns once Redis has confirmed the subscription, so no event
// published after it returns is missed.
func (ps *PubSub) Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error) {
	sub := ps.client.Subscribe(ctx, ps.Channel(channel))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis.PubSub.Subscribe %s: %w", channel, err)
	}

	out := make(chan []byte, subscriberBuffer)
	go forward(ctx, channel, sub.Channel(redis.WithChannelSize(subscriberBuffer)), out)

	return out, func() { _ = sub.Close() }, nil
}

// forward copies payloads until ctx ends or the subscription closes.
func forward(ctx context.Context, channel string, in <-chan *redis.Message, out chan<- []byte) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-in:
			if !ok {
				return
			}
			select {
			case out <- []byte(msg.Payload):
			default:
				log.Debug().Str("channel", channel).Msg("redis: subscriber full, dropping message")
			}
		}
	}
}
