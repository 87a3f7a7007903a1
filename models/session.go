package models

import "time"

// Session is the authenticated credential pair plus the identity it belongs
// to. A Session is treated as an immutable value: refresh replaces it
// wholesale instead of mutating fields in place.
//
// AccessToken and RefreshToken are never serialised by this package and must
// not be written to durable storage.
type Session struct {
	Identity Identity `json:"identity"`

	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`

	// ExpiresAt is the access token expiry, nil when unknown.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// IsZero reports whether s carries no access token.
func (s Session) IsZero() bool {
	return s.AccessToken == ""
}

// Expired reports whether the access token has expired at now. A session
// with an unknown expiry never expires locally.
func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// ExpiresWithin reports whether the access token expires within d of now.
func (s Session) ExpiresWithin(now time.Time, d time.Duration) bool {
	return s.ExpiresAt != nil && now.Add(d).After(*s.ExpiresAt)
}

// AuthTokens is the token bundle returned by the identity backend for both
// password and refresh-token grants.
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}
