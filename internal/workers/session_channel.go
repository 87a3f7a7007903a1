package workers

import (
	"context"
	"sync"

	"github.com/MKhiriev/farmlink/internal/logger"
	"github.com/MKhiriev/farmlink/models"
)

type sessionSource interface {
	CurrentIdentity() *models.Identity
	OnSessionChange(fn func(*models.Identity)) (unsubscribe func())
}

type connection interface {
	Connect(ctx context.Context)
	Disconnect()
}

// SessionChannel keeps the real-time connection in step with the session:
// connected while somebody is signed in, reconnected with fresh credentials
// when a different user signs in, closed on sign-out.
type SessionChannel struct {
	sessions sessionSource
	conn     connection

	mu          sync.Mutex
	ctx         context.Context
	userID      string
	unsubscribe func()

	logger *logger.Logger
}

func NewSessionChannel(sessions sessionSource, conn connection, log *logger.Logger) *SessionChannel {
	return &SessionChannel{
		sessions: sessions,
		conn:     conn,
		logger:   log.WithComponent("session-channel"),
	}
}

// Start implements [Worker].
func (w *SessionChannel) Start(ctx context.Context) {
	w.Stop()

	w.mu.Lock()
	w.ctx = ctx
	w.mu.Unlock()

	unsubscribe := w.sessions.OnSessionChange(w.onSessionChange)

	w.mu.Lock()
	w.unsubscribe = unsubscribe
	w.mu.Unlock()

	w.onSessionChange(w.sessions.CurrentIdentity())
}

// Stop implements [Worker]. It disconnects the channel.
func (w *SessionChannel) Stop() {
	w.mu.Lock()
	unsubscribe := w.unsubscribe
	w.unsubscribe = nil
	running := w.ctx != nil
	w.ctx = nil
	w.userID = ""
	w.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if running {
		w.conn.Disconnect()
	}
}

func (w *SessionChannel) onSessionChange(identity *models.Identity) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ctx == nil {
		return
	}

	if identity == nil {
		if w.userID != "" {
			w.logger.Debug().Msg("signed out, closing real-time connection")
			w.conn.Disconnect()
		}
		w.userID = ""
		return
	}

	if w.userID != "" && w.userID != identity.ID {
		w.logger.Debug().Msg("user changed, reopening real-time connection")
		w.conn.Disconnect()
	}
	w.userID = identity.ID
	w.conn.Connect(w.ctx)
}
