package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/creatorly/styletrain/internal/config"
	"github.com/creatorly/styletrain/internal/domain"
)

type tokenEndpoints struct {
	infoStatus    int
	refreshStatus int
	refreshBody   string

	infoCalls    int
	refreshCalls int
}

func newTokenService(t *testing.T, e *tokenEndpoints) *TokenService {
	t.Helper()

	info := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.infoCalls++
		w.WriteHeader(e.infoStatus)
		w.Write([]byte(`{"aud":"client-1","expires_in":"3000"}`))
	}))
	t.Cleanup(info.Close)

	token := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.refreshCalls++
		w.WriteHeader(e.refreshStatus)
		w.Write([]byte(e.refreshBody))
	}))
	t.Cleanup(token.Close)

	return NewTokenService(&config.OAuthConfig{
		ClientID:     "client-1",
		ClientSecret: "secret",
		TokenInfoURL: info.URL,
		TokenURL:     token.URL,
	})
}

func TestTokenManage_ValidTokenSkipsRefresh(t *testing.T) {
	e := &tokenEndpoints{infoStatus: 200, refreshStatus: 200}
	svc := newTokenService(t, e)

	result, err := svc.Manage(context.Background(), "good-token", "refresh-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Refreshed {
		t.Error("valid token should not be refreshed")
	}
	if result.AccessToken != "good-token" {
		t.Errorf("expected original token, got %q", result.AccessToken)
	}
	if e.refreshCalls != 0 {
		t.Errorf("refresh endpoint called %d times for a valid token", e.refreshCalls)
	}
}

func TestTokenManage_NoRefreshToken(t *testing.T) {
	e := &tokenEndpoints{infoStatus: 401, refreshStatus: 200}
	svc := newTokenService(t, e)

	_, err := svc.Manage(context.Background(), "stale-token", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.CodeOf(err) != domain.ErrNoRefreshToken {
		t.Errorf("expected no_refresh_token, got %s", domain.CodeOf(err))
	}
	if e.refreshCalls != 0 {
		t.Errorf("refresh endpoint called %d times without a refresh token", e.refreshCalls)
	}
}

func TestTokenManage_RefreshesExpiredToken(t *testing.T) {
	e := &tokenEndpoints{
		infoStatus:    401,
		refreshStatus: 200,
		refreshBody:   `{"access_token":"fresh-token","expires_in":3600}`,
	}
	svc := newTokenService(t, e)

	result, err := svc.Manage(context.Background(), "stale-token", "refresh-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Refreshed {
		t.Error("expected Refreshed=true")
	}
	if result.AccessToken != "fresh-token" {
		t.Errorf("expected fresh token, got %q", result.AccessToken)
	}
	if e.refreshCalls != 1 {
		t.Errorf("expected exactly 1 refresh call, got %d", e.refreshCalls)
	}
}

func TestTokenManage_RejectedRefreshToken(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode domain.ErrorCode
	}{
		{"rejected", 400, domain.ErrInvalidRefreshToken},
		{"expired", 401, domain.ErrTokenExpired},
		{"server error", 500, domain.ErrTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &tokenEndpoints{
				infoStatus:    401,
				refreshStatus: tt.status,
				refreshBody:   `{"error":"invalid_grant"}`,
			}
			svc := newTokenService(t, e)

			_, err := svc.Manage(context.Background(), "stale-token", "refresh-token")
			if err == nil {
				t.Fatal("expected error")
			}
			if domain.CodeOf(err) != tt.wantCode {
				t.Errorf("expected %s, got %s", tt.wantCode, domain.CodeOf(err))
			}
			if e.refreshCalls != 1 {
				t.Errorf("expected exactly 1 refresh call, got %d", e.refreshCalls)
			}
		})
	}
}
