package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestAuthorizationURLCarriesStateAndScopes(t *testing.T) {
	client := New(Config{
		ClientID:    "cid",
		RedirectURI: "https://app.example.com/callback",
	}, nil)

	raw := client.AuthorizationURL([]string{"scope.a", "scope.b"}, "state-token")
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	query := parsed.Query()
	if query.Get("state") != "state-token" {
		t.Fatalf("state = %q", query.Get("state"))
	}
	if query.Get("scope") != "scope.a scope.b" {
		t.Fatalf("scope = %q", query.Get("scope"))
	}
	if query.Get("access_type") != "offline" || query.Get("prompt") != "consent" {
		t.Fatalf("expected offline consent parameters, got %v", query)
	}
}

func TestExchangeCodeParsesTokenResponse(t *testing.T) {
	var capturedForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		capturedForm = r.PostForm
		_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","expires_in":3600,"scope":"a b"}`))
	}))
	defer server.Close()

	client := New(Config{ClientID: "cid", ClientSecret: "secret", TokenEndpoint: server.URL}, nil)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	client.now = func() time.Time { return base }

	tokens, err := client.ExchangeCode(context.Background(), "the-code")
	if err != nil {
		t.Fatalf("ExchangeCode() error = %v", err)
	}
	if capturedForm.Get("grant_type") != "authorization_code" || capturedForm.Get("code") != "the-code" {
		t.Fatalf("unexpected form: %v", capturedForm)
	}
	if tokens.AccessToken != "at" || tokens.RefreshToken != "rt" {
		t.Fatalf("tokens = %+v", tokens)
	}
	if !tokens.ExpiresAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("expires at = %v", tokens.ExpiresAt)
	}
	if len(tokens.Scopes) != 2 {
		t.Fatalf("scopes = %v", tokens.Scopes)
	}
}

func TestRefreshTokenWithoutExpiryKeepsZeroTime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"fresh"}`))
	}))
	defer server.Close()

	client := New(Config{TokenEndpoint: server.URL}, nil)
	tokens, err := client.RefreshToken(context.Background(), "rt")
	if err != nil {
		t.Fatalf("RefreshToken() error = %v", err)
	}
	if tokens.AccessToken != "fresh" {
		t.Fatalf("access token = %q", tokens.AccessToken)
	}
	if !tokens.ExpiresAt.IsZero() {
		t.Fatalf("expected zero expiry, got %v", tokens.ExpiresAt)
	}
}

func TestExchangeCodeIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := New(Config{TokenEndpoint: server.URL}, nil)
	_, err := client.ExchangeCode(context.Background(), "stale-code")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "invalid_grant") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}
