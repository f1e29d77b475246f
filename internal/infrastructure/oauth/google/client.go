// Package google implements the delegated-access OAuth side of Google
// Drive: consent URL construction, code exchange and token refresh.
package google

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rmarchan/docuvault/internal/core/domain"
	"github.com/rmarchan/docuvault/internal/infrastructure/resilience"
)

const (
	defaultAuthEndpoint  = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultTokenEndpoint = "https://oauth2.googleapis.com/token"
)

type Config struct {
	ClientID      string
	ClientSecret  string
	RedirectURI   string
	AuthEndpoint  string
	TokenEndpoint string
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	exec       *resilience.Executor
	now        func() time.Time
}

func New(cfg Config, exec *resilience.Executor) *Client {
	if cfg.AuthEndpoint == "" {
		cfg.AuthEndpoint = defaultAuthEndpoint
	}
	if cfg.TokenEndpoint == "" {
		cfg.TokenEndpoint = defaultTokenEndpoint
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		exec:       exec,
		now:        time.Now,
	}
}

// AuthorizationURL builds the consent URL. access_type=offline plus
// prompt=consent makes Google return a refresh token on first exchange.
func (c *Client) AuthorizationURL(scopes []string, state string) string {
	query := url.Values{}
	query.Set("client_id", c.cfg.ClientID)
	query.Set("redirect_uri", c.cfg.RedirectURI)
	query.Set("response_type", "code")
	query.Set("scope", strings.Join(scopes, " "))
	query.Set("state", state)
	query.Set("access_type", "offline")
	query.Set("prompt", "consent")
	return c.cfg.AuthEndpoint + "?" + query.Encode()
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (domain.TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("redirect_uri", c.cfg.RedirectURI)
	return c.requestTokens(ctx, "oauth_exchange_code", form)
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (domain.TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	return c.requestTokens(ctx, "oauth_refresh_token", form)
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
}

func (c *Client) requestTokens(ctx context.Context, operation string, form url.Values) (domain.TokenSet, error) {
	var response tokenResponse
	call := func(ctx context.Context) error {
		return c.postForm(ctx, c.cfg.TokenEndpoint, form, &response, operation)
	}

	var err error
	if c.exec != nil {
		err = c.exec.Execute(ctx, operation, call, classifyGoogleError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return domain.TokenSet{}, wrapTemporaryIfNeeded(operation, err)
	}

	tokens := domain.TokenSet{
		AccessToken:  response.AccessToken,
		RefreshToken: response.RefreshToken,
	}
	if response.ExpiresIn > 0 {
		tokens.ExpiresAt = c.now().Add(time.Duration(response.ExpiresIn) * time.Second)
	}
	if scope := strings.TrimSpace(response.Scope); scope != "" {
		tokens.Scopes = strings.Fields(scope)
	}
	return tokens, nil
}
