package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/farmlink/internal/config"
	"github.com/MKhiriev/farmlink/internal/logger"
	"github.com/MKhiriev/farmlink/internal/utils"
	"github.com/MKhiriev/farmlink/models"
	"github.com/go-resty/resty/v2"
)

const (
	tokenPath   = "/auth/v1/token"
	logoutPath  = "/auth/v1/logout"
	profilePath = "/rest/v1/profiles"

	grantPassword     = "password"
	grantRefreshToken = "refresh_token"
)

type httpIdentityAdapter struct {
	client *utils.HTTPClient
	apiKey string

	logger *logger.Logger
}

// NewHTTPIdentityAdapter constructs the resty implementation of
// [IdentityBackend] for a Supabase-style token API rooted at
// adapterCfg.IdentityAddress. Every request carries adapterCfg.IdentityAPIKey
// in the "apikey" header when it is set.
//
// Returns [ErrIdentityUnconfigured] when the address is empty and a wrapped
// parse error when it is not a valid URL.
func NewHTTPIdentityAdapter(adapterCfg config.Adapter, log *logger.Logger) (IdentityBackend, error) {
	if strings.TrimSpace(adapterCfg.IdentityAddress) == "" {
		return nil, ErrIdentityUnconfigured
	}

	client, err := utils.NewHTTPClient(adapterCfg.IdentityAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter identity address: %w", err)
	}
	client.SetTimeout(adapterCfg.RefreshTimeout)

	return &httpIdentityAdapter{
		client: client,
		apiKey: adapterCfg.IdentityAPIKey,
		logger: log.WithComponent("identity-adapter"),
	}, nil
}

// SignIn implements [IdentityBackend]. It POSTs the credentials to
// /auth/v1/token?grant_type=password.
func (h *httpIdentityAdapter) SignIn(ctx context.Context, credentials models.Credentials) (models.AuthTokens, error) {
	var tokens models.AuthTokens

	resp, err := h.request(ctx).
		SetQueryParam("grant_type", grantPassword).
		SetBody(credentials).
		SetResult(&tokens).
		Post(tokenPath)
	if err != nil {
		return models.AuthTokens{}, fmt.Errorf("sign in request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.AuthTokens{}, err
	}
	if tokens.AccessToken == "" {
		return models.AuthTokens{}, fmt.Errorf("sign in: empty access token in response")
	}

	return tokens, nil
}

// Refresh implements [IdentityBackend]. It POSTs refreshToken to
// /auth/v1/token?grant_type=refresh_token.
func (h *httpIdentityAdapter) Refresh(ctx context.Context, refreshToken string) (models.AuthTokens, error) {
	var tokens models.AuthTokens

	resp, err := h.request(ctx).
		SetQueryParam("grant_type", grantRefreshToken).
		SetBody(map[string]string{"refresh_token": refreshToken}).
		SetResult(&tokens).
		Post(tokenPath)
	if err != nil {
		return models.AuthTokens{}, fmt.Errorf("refresh request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.AuthTokens{}, err
	}
	if tokens.AccessToken == "" {
		return models.AuthTokens{}, fmt.Errorf("refresh: empty access token in response")
	}

	return tokens, nil
}

// SignOut implements [IdentityBackend]. It POSTs to /auth/v1/logout with the
// session's access token as bearer.
func (h *httpIdentityAdapter) SignOut(ctx context.Context, accessToken string) error {
	resp, err := h.request(ctx).
		SetAuthToken(accessToken).
		Post(logoutPath)
	if err != nil {
		return fmt.Errorf("sign out request: %w", err)
	}

	return mapHTTPError(resp)
}

// Profile implements [IdentityBackend]. It reads the profile table with a
// PostgREST-style filter (GET /rest/v1/profiles?id=eq.<userID>) and returns
// the first row.
func (h *httpIdentityAdapter) Profile(ctx context.Context, accessToken, userID string) (models.Identity, error) {
	var rows []models.Identity

	resp, err := h.request(ctx).
		SetAuthToken(accessToken).
		SetQueryParam("id", "eq."+userID).
		SetQueryParam("select", "*").
		SetResult(&rows).
		Get(profilePath)
	if err != nil {
		return models.Identity{}, fmt.Errorf("profile request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Identity{}, err
	}
	if len(rows) == 0 {
		return models.Identity{}, ErrProfileNotFound
	}

	return rows[0], nil
}

func (h *httpIdentityAdapter) request(ctx context.Context) *resty.Request {
	req := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if h.apiKey != "" {
		req.SetHeader("apikey", h.apiKey)
	}
	return req
}
