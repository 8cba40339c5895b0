package service

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/creatorly/styletrain/internal/config"
	"github.com/creatorly/styletrain/internal/domain"
)

const (
	tokenValidateTimeout = 10 * time.Second
	tokenRefreshTimeout  = 15 * time.Second
)

// TokenService validates and refreshes a creator's stored platform access
// token against the IdP. One validate call, at most one refresh call, no
// retries: refresh failures are actionable by the user (re-authenticate),
// not by waiting.
type TokenService struct {
	client       *resty.Client
	clientID     string
	clientSecret string
	tokenInfoURL string
	tokenURL     string
}

// TokenResult is the outcome of managing a credential's token.
type TokenResult struct {
	AccessToken string
	Refreshed   bool
}

// NewTokenService creates a new TokenService.
func NewTokenService(cfg *config.OAuthConfig) *TokenService {
	client := resty.New()
	client.SetHeader("Content-Type", "application/x-www-form-urlencoded")

	return &TokenService{
		client:       client,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		tokenInfoURL: cfg.TokenInfoURL,
		tokenURL:     cfg.TokenURL,
	}
}

type tokenInfoResponse struct {
	Audience  string `json:"aud"`
	ExpiresIn string `json:"expires_in"`
	Error     string `json:"error,omitempty"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	Error       string `json:"error,omitempty"`
}

// Manage checks the current access token and refreshes it if needed.
// A valid current token returns Refreshed=false without touching the
// refresh endpoint. An invalid token with no refresh token fails with
// ErrNoRefreshToken before any refresh call is made.
func (s *TokenService) Manage(ctx context.Context, accessToken, refreshToken string) (*TokenResult, error) {
	if s.validate(ctx, accessToken) {
		return &TokenResult{AccessToken: accessToken, Refreshed: false}, nil
	}

	if refreshToken == "" {
		return nil, domain.NewError(domain.ErrNoRefreshToken,
			"access token is invalid and no refresh token is stored; user must re-authenticate")
	}

	newToken, err := s.refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return &TokenResult{AccessToken: newToken, Refreshed: true}, nil
}

// validate asks the IdP's introspection endpoint whether the token is
// still good. Network failures are treated as invalid: the refresh path
// decides what happens next.
func (s *TokenService) validate(ctx context.Context, accessToken string) bool {
	if accessToken == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, tokenValidateTimeout)
	defer cancel()

	var info tokenInfoResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("access_token", accessToken).
		SetResult(&info).
		ForceContentType("application/json").
		Get(s.tokenInfoURL)
	if err != nil {
		return false
	}
	return resp.StatusCode() == 200 && info.Error == ""
}

func (s *TokenService) refresh(ctx context.Context, refreshToken string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, tokenRefreshTimeout)
	defer cancel()

	var result refreshResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"client_id":     s.clientID,
			"client_secret": s.clientSecret,
			"refresh_token": refreshToken,
			"grant_type":    "refresh_token",
		}).
		SetResult(&result).
		ForceContentType("application/json").
		Post(s.tokenURL)
	if err != nil {
		return "", domain.WrapError(domain.ErrTokenExpired, err, "token refresh request failed")
	}

	switch {
	case resp.StatusCode() == 400:
		return "", domain.NewError(domain.ErrInvalidRefreshToken,
			"refresh token was rejected by the identity provider")
	case resp.StatusCode() == 401:
		return "", domain.NewError(domain.ErrTokenExpired,
			"refresh token has expired; user must re-authenticate")
	case resp.StatusCode() != 200:
		return "", domain.NewError(domain.ErrTokenExpired,
			"token refresh failed with HTTP %d", resp.StatusCode())
	}

	if result.AccessToken == "" {
		return "", domain.NewError(domain.ErrTokenExpired, "token refresh returned no access token")
	}
	return result.AccessToken, nil
}
