package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gosuda/cabinet/internal/auth"
	"github.com/gosuda/cabinet/internal/billing"
	"github.com/gosuda/cabinet/internal/calendar"
	"github.com/gosuda/cabinet/internal/config"
	"github.com/gosuda/cabinet/internal/events"
	"github.com/gosuda/cabinet/internal/notify"
	"github.com/gosuda/cabinet/internal/render"
	"github.com/gosuda/cabinet/internal/secrets"
	"github.com/gosuda/cabinet/internal/server"
	redisstore "github.com/gosuda/cabinet/internal/store/redis"
)

const calendarOpTimeout = 15 * time.Second

func serveCmd(conf func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), conf())
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c, err := newCore(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	// Redis carries events and sessions across instances when configured.
	var broker events.Broker = events.NewMemory()
	var sessions auth.SessionStore = auth.NewMemorySessionStore()
	if cfg.NeedsRedis() {
		pubsub, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redisstore.WithPrefix("cabinet:"))
		if err != nil {
			return err
		}
		defer func() { _ = pubsub.Close() }()
		if cfg.Events.Backend == config.BackendRedis {
			broker = pubsub
		}
		if cfg.Session.Backend == config.BackendRedis {
			var opts []redisstore.SessionOption
			if cfg.Session.Secret != "" {
				vault, err := secrets.FromSecret(cfg.Session.Secret, "sessions")
				if err != nil {
					return err
				}
				opts = append(opts, redisstore.WithVault(vault))
			}
			sessions = redisstore.NewSessionStore(pubsub.Client(), opts...)
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	}
	publisher := events.NewPublisher(broker)

	var provider *auth.OAuthProvider
	if cfg.Google.Enabled() {
		provider = auth.NewGoogleProvider(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
	}
	authSvc := auth.NewService(provider, sessions, cfg.Session.Secret, cfg.Session.TTL)

	opts := []billing.Option{billing.WithPublisher(publisher)}
	var outbox *calendar.Outbox
	if cfg.Google.Enabled() {
		outbox = calendar.NewOutbox(calendar.NewGoogle(authSvc), nil, c.store.Root(), calendar.OutboxConfig{
			Workers:     cfg.Calendar.Workers,
			QueueSize:   cfg.Calendar.QueueSize,
			MaxAttempts: cfg.Calendar.MaxAttempts,
			RetryDelay:  cfg.Calendar.RetryDelay,
			OpTimeout:   calendarOpTimeout,
		})
		opts = append(opts, billing.WithCalendar(outbox))
	} else {
		log.Info().Msg("google login not configured, calendar mirror disabled")
	}
	svc := c.billing(opts...)
	if outbox != nil {
		outbox.SetRecorder(svc)
		outbox.Start()
		defer outbox.Shutdown()
	}

	sender, err := newSender(cfg)
	if err != nil {
		return err
	}

	assets, err := server.WebDir(cfg.Server.WebDir)
	if err != nil {
		return err
	}

	srv := server.New(ctx, cfg, server.Deps{
		Billing:  svc,
		Auth:     authSvc,
		Render:   render.HTML,
		Sender:   sender,
		Events:   publisher,
		WebAsset: assets,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		errCh <- srv.Start(ctx)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info().Msg("stopped")
	return nil
}

// newSender picks Resend when an API key is configured and the log sender
// otherwise.
func newSender(cfg *config.Config) (*notify.Notifier, error) {
	registry := notify.NewRegistry()
	registry.Register(notify.LogSender{})
	channels := []string{notify.LogChannel}

	if cfg.Mail.ResendAPIKey != "" {
		resend, err := notify.NewResend(notify.ResendConfig{
			APIKey:    cfg.Mail.ResendAPIKey,
			FromEmail: cfg.Mail.FromEmail,
			FromName:  cfg.Mail.FromName,
			BaseURL:   cfg.Mail.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		registry.Register(resend)
		channels = []string{notify.ResendChannel}
		log.Info().Str("from", cfg.Mail.FromEmail).Msg("mail: resend enabled")
	}

	return notify.New(registry, render.HTML, channels...), nil
}
