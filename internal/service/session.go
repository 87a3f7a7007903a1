package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/farmlink/internal/adapter"
	"github.com/MKhiriev/farmlink/internal/app"
	"github.com/MKhiriev/farmlink/internal/config"
	"github.com/MKhiriev/farmlink/internal/logger"
	"github.com/MKhiriev/farmlink/internal/store"
	"github.com/MKhiriev/farmlink/internal/utils"
	"github.com/MKhiriev/farmlink/models"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
)

const (
	defaultRefreshTimeout = 10 * time.Second
	refreshKey            = "refresh"
)

// SessionManager owns login, logout, token refresh and the local role and
// permission queries. The session itself lives in a [store.CredentialStore];
// the manager is the only writer.
//
// All methods are safe for concurrent use.
type SessionManager struct {
	backend     adapter.IdentityBackend
	credentials *store.CredentialStore
	validate    *validator.Validate

	refreshGroup   singleflight.Group
	refreshTimeout time.Duration
	now            func() time.Time

	listenersMu    sync.RWMutex
	listeners      map[uint64]func(*models.Identity)
	nextListenerID uint64

	logger *logger.Logger
}

// NewSessionManager creates a SessionManager. backend may be nil when no
// identity backend is configured; Login then fails with the unconfigured
// kind.
func NewSessionManager(backend adapter.IdentityBackend, credentials *store.CredentialStore, cfg config.Adapter, log *logger.Logger) *SessionManager {
	refreshTimeout := cfg.RefreshTimeout
	if refreshTimeout <= 0 {
		refreshTimeout = defaultRefreshTimeout
	}

	return &SessionManager{
		backend:        backend,
		credentials:    credentials,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		refreshTimeout: refreshTimeout,
		now:            time.Now,
		listeners:      make(map[uint64]func(*models.Identity)),
		logger:         log.WithComponent("session"),
	}
}

// Login authenticates credentials against the identity backend, loads the
// profile and installs the new session. Credentials are validated locally
// first; malformed input never reaches the network.
//
// Any failure clears the current session.
func (s *SessionManager) Login(ctx context.Context, credentials models.Credentials) (models.Identity, error) {
	if err := s.validate.Struct(credentials); err != nil {
		return s.failLogin(app.Wrap(app.KindInvalidCredentials, app.MsgInvalidCredentials, err))
	}
	if s.backend == nil {
		return s.failLogin(app.ErrUnconfigured)
	}

	tokens, err := s.backend.SignIn(ctx, credentials)
	if err != nil {
		return s.failLogin(mapSignInError(err))
	}

	identity, err := s.backend.Profile(ctx, tokens.AccessToken, tokens.User.ID)
	if err != nil {
		return s.failLogin(app.Wrap(app.KindProfileMissing, app.MsgProfileMissing, err))
	}
	if !identity.Role.Valid() {
		return s.failLogin(app.Wrap(app.KindProfileMissing, app.MsgProfileMissing,
			fmt.Errorf("profile %s has unknown role %q", tokens.User.ID, identity.Role)))
	}
	if identity.ID == "" {
		identity.ID = tokens.User.ID
	}
	if identity.Email == "" {
		identity.Email = tokens.User.Email
	}
	now := s.now()
	identity.LastLoginAt = &now

	s.credentials.Set(models.Session{
		Identity:     identity,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    s.expiry(tokens),
	})

	s.logger.Info().Str("user_id", identity.ID).Str("role", string(identity.Role)).Msg("signed in")
	s.notify(&identity)
	return identity, nil
}

func (s *SessionManager) failLogin(err error) (models.Identity, error) {
	_, hadSession := s.credentials.Get()
	s.credentials.Clear()
	if hadSession {
		s.notify(nil)
	}

	s.logger.Warn().Str("kind", string(app.KindOf(err))).Msg("sign in failed")
	return models.Identity{}, err
}

// Logout revokes the session on the backend (best effort) and then clears it
// locally. The local session is gone even when the remote call fails; that
// error is logged and returned wrapped.
func (s *SessionManager) Logout(ctx context.Context) error {
	session, ok := s.credentials.Get()
	if !ok {
		return nil
	}

	var remoteErr error
	if s.backend != nil {
		remoteErr = s.backend.SignOut(ctx, session.AccessToken)
	}

	s.credentials.Clear()
	s.notify(nil)

	if remoteErr != nil {
		s.logger.Warn().Err(remoteErr).Msg("remote sign out failed")
		return fmt.Errorf("remote sign out: %w", remoteErr)
	}
	s.logger.Info().Str("user_id", session.Identity.ID).Msg("signed out")
	return nil
}

// Refresh exchanges the refresh token for a new token pair. Concurrent
// callers share a single backend exchange. The exchange is not tied to any
// caller's cancellation and is bounded by the refresh timeout; a caller whose
// ctx ends stops waiting and gets the canceled kind.
//
// On failure the session is cleared and the session-expired kind returned.
func (s *SessionManager) Refresh(ctx context.Context) (models.Session, error) {
	return s.RefreshIfStale(ctx, s.credentials.AccessToken())
}

// RefreshIfStale refreshes only while usedToken is still the stored access
// token. When another caller already replaced it, the current session is
// returned without contacting the backend.
func (s *SessionManager) RefreshIfStale(ctx context.Context, usedToken string) (models.Session, error) {
	if current, ok := s.credentials.Get(); ok && current.AccessToken != usedToken {
		return current, nil
	}

	ch := s.refreshGroup.DoChan(refreshKey, func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx), usedToken)
	})

	select {
	case <-ctx.Done():
		return models.Session{}, app.Wrap(app.KindCanceled, app.MsgCanceled, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return models.Session{}, res.Err
		}
		return res.Val.(models.Session), nil
	}
}

func (s *SessionManager) refresh(ctx context.Context, usedToken string) (models.Session, error) {
	current, ok := s.credentials.Get()
	if !ok || current.RefreshToken == "" {
		return models.Session{}, app.ErrSessionExpired
	}
	if current.AccessToken != usedToken {
		return current, nil
	}
	if s.backend == nil {
		s.expire(current.AccessToken)
		return models.Session{}, app.ErrSessionExpired
	}

	ctx, cancel := context.WithTimeout(ctx, s.refreshTimeout)
	defer cancel()

	tokens, err := s.backend.Refresh(ctx, current.RefreshToken)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", current.Identity.ID).Msg("token refresh failed")
		s.expire(current.AccessToken)
		return models.Session{}, mapRefreshError(err)
	}

	next := models.Session{
		Identity:     current.Identity,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    s.expiry(tokens),
	}
	if next.RefreshToken == "" {
		next.RefreshToken = current.RefreshToken
	}

	if !s.credentials.Replace(current.AccessToken, next) {
		// logged out or logged in again while the exchange was in flight
		return models.Session{}, app.ErrSessionExpired
	}

	s.logger.Debug().Str("user_id", current.Identity.ID).Msg("token refreshed")
	s.notify(&next.Identity)
	return next, nil
}

func (s *SessionManager) expire(accessToken string) {
	if s.credentials.ClearIf(accessToken) {
		s.notify(nil)
	}
}

// RestoreSession installs a session obtained outside Login, for example a
// hand-off from another window. An empty session is rejected.
func (s *SessionManager) RestoreSession(session models.Session) error {
	if session.IsZero() || session.Identity.ID == "" {
		return app.ErrAuthenticationRequired
	}

	s.credentials.Set(session)
	identity := session.Identity
	s.notify(&identity)
	return nil
}

// ClearSession drops the local session without contacting the backend.
func (s *SessionManager) ClearSession() {
	if _, ok := s.credentials.Get(); !ok {
		return
	}
	s.credentials.Clear()
	s.notify(nil)
}

// Session returns a copy of the current session.
func (s *SessionManager) Session() (models.Session, bool) {
	return s.credentials.Get()
}

// AccessToken returns the current access token or "".
func (s *SessionManager) AccessToken() string {
	return s.credentials.AccessToken()
}

// CurrentIdentity returns a copy of the signed-in identity, nil when signed
// out.
func (s *SessionManager) CurrentIdentity() *models.Identity {
	session, ok := s.credentials.Get()
	if !ok {
		return nil
	}
	return &session.Identity
}

// IsAuthenticated reports whether a session is present.
func (s *SessionManager) IsAuthenticated() bool {
	return s.credentials.AccessToken() != ""
}

// HasRole reports whether the signed-in identity has role.
func (s *SessionManager) HasRole(role models.Role) bool {
	identity := s.CurrentIdentity()
	return identity != nil && identity.Role == role
}

// HasAnyRole reports whether the signed-in identity has one of roles.
func (s *SessionManager) HasAnyRole(roles ...models.Role) bool {
	identity := s.CurrentIdentity()
	if identity == nil {
		return false
	}
	for _, role := range roles {
		if identity.Role == role {
			return true
		}
	}
	return false
}

// Can reports whether the signed-in identity's role grants p.
func (s *SessionManager) Can(p Permission) bool {
	identity := s.CurrentIdentity()
	return identity != nil && RoleCan(identity.Role, p)
}

// Authorize is Can returning the authorization-denied kind instead of false.
func (s *SessionManager) Authorize(p Permission) error {
	if s.Can(p) {
		return nil
	}
	return app.Wrap(app.KindAuthorizationDenied, app.MsgAuthorizationDenied, fmt.Errorf("missing permission %q", p))
}

// CanUpdateProfile reports whether the signed-in identity may update the
// profile of targetID whose role is targetRole.
func (s *SessionManager) CanUpdateProfile(targetID string, targetRole models.Role) bool {
	identity := s.CurrentIdentity()
	if identity == nil {
		return false
	}
	return CanUpdateProfile(*identity, ClassifyTarget(*identity, targetID), targetRole)
}

// OnSessionChange registers fn to be called with the new identity after
// every login, refresh, restore and logout (nil when signed out). It returns a func
// that removes exactly this registration.
func (s *SessionManager) OnSessionChange(fn func(*models.Identity)) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextListenerID
	s.nextListenerID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

func (s *SessionManager) notify(identity *models.Identity) {
	s.listenersMu.RLock()
	fns := make([]func(*models.Identity), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.RUnlock()

	for _, fn := range fns {
		var arg *models.Identity
		if identity != nil {
			c := *identity
			arg = &c
		}
		s.callListener(fn, arg)
	}
}

func (s *SessionManager) callListener(fn func(*models.Identity), identity *models.Identity) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("session listener panicked")
		}
	}()
	fn(identity)
}

// expiry prefers the backend's expires_in and falls back to the access
// token's exp claim.
func (s *SessionManager) expiry(tokens models.AuthTokens) *time.Time {
	if tokens.ExpiresIn > 0 {
		t := s.now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
		return &t
	}

	exp, err := utils.ParseTokenExpiry(tokens.AccessToken)
	if err != nil {
		s.logger.Debug().Err(err).Msg("access token expiry unknown")
		return nil
	}
	return exp
}
