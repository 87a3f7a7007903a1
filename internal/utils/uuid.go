package utils

import (
	"sync"

	"github.com/google/uuid"
)

// UUIDGenerator produces time-ordered identifiers used as X-Request-ID
// values.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a UUIDv7, falling back to a random v4 if the clock source
// fails.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}

var (
	csrfOnce  sync.Once
	csrfToken string
)

// CSRFToken returns the per-process CSRF token. It is generated once from a
// random UUIDv4 on first use and reused for the lifetime of the process.
func CSRFToken() string {
	csrfOnce.Do(func() {
		csrfToken = uuid.NewString()
	})
	return csrfToken
}
