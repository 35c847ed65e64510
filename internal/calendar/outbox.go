package calendar

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/cabinet/internal/domain"
	"github.com/gosuda/cabinet/internal/store/flatfile"
	"github.com/gosuda/cabinet/internal/tenant"
)

const failureLog = "calendar_failures.log"

// Recorder reads and writes the event id stored on a seance.
type Recorder interface {
	CalendarEventID(ctx context.Context, t tenant.ID, seanceID string) (string, error)
	AttachCalendarEvent(ctx context.Context, t tenant.ID, seanceID, eventID string) error
}

// OutboxConfig tunes the worker pool.
type OutboxConfig struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	RetryDelay  time.Duration // attempt n waits n*RetryDelay
	OpTimeout   time.Duration
}

func (c *OutboxConfig) withDefaults() {
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 2 * time.Second
	}
	if c.OpTimeout <= 0 {
		c.OpTimeout = 30 * time.Second
	}
}

// Outbox applies calendar effects in the background. Effects are
// idempotent against the seance's stored event id: a create is skipped once
// an id is recorded, an update is skipped once it has been cleared.
// Effects that exhaust their attempts are appended to the tenant's
// calendar_failures.log.
type Outbox struct {
	adapter  Adapter
	recorder Recorder
	root     *flatfile.Root
	cfg      OutboxConfig

	queue chan Effect
	done  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
	logMu sync.Mutex
}

func NewOutbox(adapter Adapter, recorder Recorder, root *flatfile.Root, cfg OutboxConfig) *Outbox {
	cfg.withDefaults()
	return &Outbox{
		adapter:  adapter,
		recorder: recorder,
		root:     root,
		cfg:      cfg,
		queue:    make(chan Effect, cfg.QueueSize),
		done:     make(chan struct{}),
	}
}

// SetRecorder wires the recorder after construction, for when the recorder
// itself depends on the outbox.
func (o *Outbox) SetRecorder(r Recorder) { o.recorder = r }

// Start launches the workers.
func (o *Outbox) Start() {
	for range o.cfg.Workers {
		o.wg.Add(1)
		go o.worker()
	}
}

// Shutdown stops the workers after the effect each is handling. Effects
// still queued are recorded as failures.
func (o *Outbox) Shutdown() {
	o.once.Do(func() {
		close(o.done)
		o.wg.Wait()
		for {
			select {
			case eff := <-o.queue:
				o.recordFailure(eff, 0, errors.New("outbox shut down"))
			default:
				return
			}
		}
	})
}

// Enqueue queues eff without blocking. A full queue records the effect as
// failed instead.
func (o *Outbox) Enqueue(eff Effect) {
	if eff.Op == domain.CalendarNone {
		return
	}
	select {
	case <-o.done:
		o.recordFailure(eff, 0, errors.New("outbox shut down"))
		return
	default:
	}
	select {
	case o.queue <- eff:
		log.Debug().Str("effect", eff.String()).Msg("calendar: effect queued")
	default:
		o.recordFailure(eff, 0, errors.New("outbox queue full"))
	}
}

func (o *Outbox) worker() {
	defer o.wg.Done()
	for {
		select {
		case <-o.done:
			return
		case eff := <-o.queue:
			o.process(eff)
		}
	}
}

func (o *Outbox) process(eff Effect) {
	var (
		err     error
		attempt int
	)
	for attempt = 1; attempt <= o.cfg.MaxAttempts; attempt++ {
		err = o.apply(eff)
		if err == nil {
			return
		}
		if errors.Is(err, ErrPermanent) || attempt == o.cfg.MaxAttempts {
			break
		}
		log.Warn().Err(err).Str("effect", eff.String()).Int("attempt", attempt).Msg("calendar: effect failed, retrying")

		select {
		case <-o.done:
			o.recordFailure(eff, attempt, err)
			return
		case <-time.After(time.Duration(attempt) * o.cfg.RetryDelay):
		}
	}
	o.recordFailure(eff, attempt, err)
}

func (o *Outbox) apply(eff Effect) error {
	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.OpTimeout)
	defer cancel()

	switch eff.Op {
	case domain.CalendarCreate:
		current, err := o.recorder.CalendarEventID(ctx, eff.Tenant, eff.SeanceID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if current != "" {
			return nil
		}

		eventID, err := o.adapter.Create(ctx, eff.Tenant, eff.CalendarID, eff.Event)
		if err != nil {
			return err
		}
		if err := o.recorder.AttachCalendarEvent(ctx, eff.Tenant, eff.SeanceID, eventID); err != nil {
			// The seance is gone or already has an event: drop ours.
			if delErr := o.adapter.Delete(ctx, eff.Tenant, eff.CalendarID, eventID); delErr != nil {
				log.Warn().Err(delErr).Str("effect", eff.String()).Msg("calendar: cleanup of unattached event failed")
			}
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidTransition) {
				return nil
			}
			return err
		}
		return nil

	case domain.CalendarUpdate:
		current, err := o.recorder.CalendarEventID(ctx, eff.Tenant, eff.SeanceID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if current == "" {
			return nil
		}
		return o.adapter.Update(ctx, eff.Tenant, eff.CalendarID, current, eff.Event)

	case domain.CalendarDelete:
		if eff.EventID == "" {
			return nil
		}
		return o.adapter.Delete(ctx, eff.Tenant, eff.CalendarID, eff.EventID)

	default:
		return fmt.Errorf("unknown calendar op %q: %w", eff.Op, ErrPermanent)
	}
}

func (o *Outbox) recordFailure(eff Effect, attempts int, cause error) {
	log.Error().Err(cause).Str("effect", eff.String()).Int("attempts", attempts).Msg("calendar: effect abandoned")
	if o.root == nil {
		return
	}

	line := strings.Join([]string{
		time.Now().UTC().Format(time.RFC3339),
		string(eff.Op),
		eff.SeanceID,
		eff.EventID,
		fmt.Sprint(attempts),
		strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(cause.Error()),
	}, "\t") + "\r\n"

	o.logMu.Lock()
	defer o.logMu.Unlock()

	path := o.root.Path(eff.Tenant, failureLog)
	if err := os.MkdirAll(o.root.TenantDir(eff.Tenant), 0o750); err != nil {
		log.Error().Err(err).Str("tenant", eff.Tenant.String()).Msg("calendar: cannot write failure log")
		return
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		log.Error().Err(err).Str("tenant", eff.Tenant.String()).Msg("calendar: cannot write failure log")
		return
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		log.Error().Err(err).Str("tenant", eff.Tenant.String()).Msg("calendar: cannot write failure log")
	}
}
