package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

const memoryBuffer = 64

// Memory is an in-process Broker for single-instance deployments. Slow
// subscribers lose messages rather than block publishers.
type Memory struct {
	mu   sync.Mutex
	subs map[string]map[*memorySub]struct{}
}

type memorySub struct {
	ch   chan []byte
	once sync.Once
}

func NewMemory() *Memory {
	return &Memory{subs: make(map[string]map[*memorySub]struct{})}
}

func (m *Memory) Publish(_ context.Context, channel string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for sub := range m.subs[channel] {
		msg := append([]byte(nil), payload...)
		select {
		case sub.ch <- msg:
		default:
			log.Debug().Str("channel", channel).Msg("events: subscriber full, dropping message")
		}
	}
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error) {
	sub := &memorySub{ch: make(chan []byte, memoryBuffer)}

	m.mu.Lock()
	if m.subs[channel] == nil {
		m.subs[channel] = make(map[*memorySub]struct{})
	}
	m.subs[channel][sub] = struct{}{}
	m.mu.Unlock()

	cleanup := func() {
		sub.once.Do(func() {
			m.mu.Lock()
			delete(m.subs[channel], sub)
			if len(m.subs[channel]) == 0 {
				delete(m.subs, channel)
			}
			close(sub.ch)
			m.mu.Unlock()
		})
	}

	go func() {
		<-ctx.Done()
		cleanup()
	}()

	return sub.ch, cleanup, nil
}
