package store

import (
	"sync"
	"time"

	"github.com/MKhiriev/farmlink/models"
)

// CredentialStore holds the single current [models.Session] in process
// memory. It never writes to disk. Every write replaces the whole session
// under a lock and every read returns a private copy, so readers never
// observe a half-swapped token pair.
type CredentialStore struct {
	mu      sync.RWMutex
	session *models.Session
}

// NewCredentialStore returns an empty store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

// Get returns a copy of the current session and whether one is present.
func (s *CredentialStore) Get() (models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return models.Session{}, false
	}
	return cloneSession(*s.session), true
}

// Set replaces the current session with a copy of session. An empty access
// token clears the store instead.
func (s *CredentialStore) Set(session models.Session) {
	if session.IsZero() {
		s.Clear()
		return
	}

	c := cloneSession(session)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = &c
}

// Clear drops the current session.
func (s *CredentialStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
}

// Replace swaps in next only while the stored access token still equals
// expectedAccessToken. It reports whether the swap happened. A refresh that
// finishes after a logout or a new login must not overwrite their result.
func (s *CredentialStore) Replace(expectedAccessToken string, next models.Session) bool {
	c := cloneSession(next)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || s.session.AccessToken != expectedAccessToken {
		return false
	}
	if next.IsZero() {
		s.session = nil
		return true
	}
	s.session = &c
	return true
}

// ClearIf drops the session only while its access token equals
// expectedAccessToken, and reports whether it did.
func (s *CredentialStore) ClearIf(expectedAccessToken string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil || s.session.AccessToken != expectedAccessToken {
		return false
	}
	s.session = nil
	return true
}

// AccessToken returns the current access token or "".
func (s *CredentialStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return ""
	}
	return s.session.AccessToken
}

func cloneSession(in models.Session) models.Session {
	out := in
	out.ExpiresAt = cloneTime(in.ExpiresAt)
	out.Identity.LastLoginAt = cloneTime(in.Identity.LastLoginAt)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
