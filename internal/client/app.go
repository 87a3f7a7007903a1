package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/farmlink/internal/adapter"
	"github.com/MKhiriev/farmlink/internal/api"
	"github.com/MKhiriev/farmlink/internal/channel"
	"github.com/MKhiriev/farmlink/internal/config"
	"github.com/MKhiriev/farmlink/internal/dispatcher"
	"github.com/MKhiriev/farmlink/internal/logger"
	"github.com/MKhiriev/farmlink/internal/observer"
	"github.com/MKhiriev/farmlink/internal/service"
	"github.com/MKhiriev/farmlink/internal/store"
	"github.com/MKhiriev/farmlink/internal/workers"
	"github.com/MKhiriev/farmlink/models"
)

// App owns every component of the core. Channel and Status are nil when no
// websocket address is configured.
type App struct {
	Sessions   *service.SessionManager
	Dispatcher *dispatcher.Dispatcher
	API        *api.Client
	Channel    *channel.Channel
	Status     *observer.StatusObserver

	workers *workers.Workers
	logger  *logger.Logger
}

var _ Client = (*App)(nil)

func NewApp(cfg *config.StructuredConfig, log *logger.Logger) (*App, error) {
	identity, err := adapter.NewHTTPIdentityAdapter(cfg.Adapter, log)
	if err != nil {
		if !errors.Is(err, adapter.ErrIdentityUnconfigured) {
			return nil, fmt.Errorf("create identity adapter: %w", err)
		}
		log.Warn().Msg("identity backend is not configured, sign in is unavailable")
	}

	sessions := service.NewSessionManager(identity, store.NewCredentialStore(), cfg.Adapter, log)

	disp, err := dispatcher.New(cfg.Adapter, cfg.Upload, sessions, log)
	if err != nil {
		return nil, fmt.Errorf("create dispatcher: %w", err)
	}

	a := &App{
		Sessions:   sessions,
		Dispatcher: disp,
		API:        api.NewClient(disp),
		logger:     log.WithComponent("app"),
	}

	background := []workers.Worker{
		service.NewRefreshJob(sessions, cfg.Workers.RefreshLeeway, cfg.Workers.RefreshCheckInterval, log),
	}

	dialer, err := adapter.NewWebsocketDialer(cfg.Adapter.WSAddress, log)
	switch {
	case errors.Is(err, adapter.ErrChannelUnconfigured):
		log.Warn().Msg("websocket address is not configured, live updates are off")
	case err != nil:
		return nil, fmt.Errorf("create websocket dialer: %w", err)
	default:
		a.Channel = channel.New(dialer, sessions, cfg.Channel, log)
		a.Status = observer.NewStatusObserver(a.Channel)
		background = append(background, workers.NewSessionChannel(sessions, a.Channel, log))
	}

	a.workers = workers.NewWorkers(background...)
	return a, nil
}

// Start launches the background workers.
func (a *App) Start(ctx context.Context) {
	a.workers.Start(ctx)
}

// Close stops the workers and the status observer.
func (a *App) Close() {
	a.workers.Stop()
	if a.Status != nil {
		a.Status.Close()
	}
}

// Run signs in, starts the workers, logs every real-time event and status
// change until ctx is done, then signs out.
func (a *App) Run(ctx context.Context, credentials models.Credentials) error {
	identity, err := a.Sessions.Login(ctx, credentials)
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	a.logger.Info().Str("user_id", identity.ID).Str("role", string(identity.Role)).Msg("signed in")

	if a.Channel != nil {
		defer a.Channel.Subscribe(channel.AllEvents, func(msg models.Message) {
			a.logger.Info().Str("type", msg.Type).Str("room", msg.Room).Int("payload_bytes", len(msg.Payload)).Msg("event")
		})()
		defer a.Channel.Observe(func(s models.ConnectionStatus) {
			a.logger.Info().Str("state", string(s.State)).Str("last_error", s.LastError).Msg("connection status")
		})()
	}

	a.Start(ctx)
	<-ctx.Done()
	a.Close()

	logoutCtx := context.WithoutCancel(ctx)
	if err = a.Sessions.Logout(logoutCtx); err != nil {
		a.logger.Warn().Err(err).Msg("sign out")
	}
	return nil
}
