package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rmarchan/docuvault/internal/authstate"
	"github.com/rmarchan/docuvault/internal/core/domain"
	"github.com/rmarchan/docuvault/internal/core/ports"
)

// driveScopes is the fixed, minimal scope set requested on consent:
// file-scoped drive access, read-only metadata, identity basics.
var driveScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/drive.file",
	"https://www.googleapis.com/auth/drive.metadata.readonly",
	"https://www.googleapis.com/auth/userinfo.email",
}

const pendingConsentTTL = 15 * time.Minute

type pendingConsent struct {
	userID    string
	expiresAt time.Time
}

// CredentialLifecycle manages the delegated-access credential of each
// user: consent URL issuance, code exchange, refresh, revocation.
type CredentialLifecycle struct {
	repo     ports.CredentialRepository
	provider ports.OAuthProvider

	clientID      string
	clientSecret  string
	tokenEndpoint string

	now func() time.Time

	// pending maps issued state tokens to the originating user for the
	// duration of the consent flow. It is only consulted when the state
	// coming back on the callback cannot be decoded directly.
	mu      sync.Mutex
	pending map[string]pendingConsent
}

func NewCredentialLifecycle(
	repo ports.CredentialRepository,
	provider ports.OAuthProvider,
	clientID, clientSecret, tokenEndpoint string,
) *CredentialLifecycle {
	return &CredentialLifecycle{
		repo:          repo,
		provider:      provider,
		clientID:      clientID,
		clientSecret:  clientSecret,
		tokenEndpoint: tokenEndpoint,
		now:           time.Now,
		pending:       make(map[string]pendingConsent),
	}
}

func (m *CredentialLifecycle) BeginAuthorization(_ context.Context, userID string) (string, string, error) {
	if userID == "" {
		return "", "", domain.WrapError(domain.ErrInvalidInput, "begin authorization", errors.New("empty user id"))
	}

	state := authstate.Encode(userID)
	m.rememberPending(state, userID)

	return m.provider.AuthorizationURL(driveScopes, state), state, nil
}

func (m *CredentialLifecycle) CompleteAuthorization(ctx context.Context, code, state string) (*domain.Credential, error) {
	if code == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "complete authorization", errors.New("empty authorization code"))
	}

	userID, err := m.resolveCallbackUser(state)
	if err != nil {
		return nil, err
	}

	tokens, err := m.provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, domain.WrapError(domain.ErrRemoteService, "exchange authorization code", err)
	}

	now := m.now().UTC()
	cred := &domain.Credential{
		UserID:        userID,
		AccessToken:   tokens.AccessToken,
		RefreshToken:  tokens.RefreshToken,
		ExpiresAt:     tokens.ExpiresAt,
		Scopes:        tokens.Scopes,
		ClientID:      m.clientID,
		ClientSecret:  m.clientSecret,
		TokenEndpoint: m.tokenEndpoint,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Create-or-replace: a re-consent overwrites the previous record
	// wholesale instead of merging into it.
	if err := m.repo.Put(ctx, cred); err != nil {
		return nil, fmt.Errorf("persist credential: %w", err)
	}

	m.forgetPending(state)
	return cred, nil
}

// ValidCredential returns a usable credential, refreshing it when the
// access token is expired and a refresh token exists. Refresh failures
// are absorbed into ErrAuthorizationRequired so the caller prompts
// re-consent instead of crashing the request.
func (m *CredentialLifecycle) ValidCredential(ctx context.Context, userID string) (*domain.Credential, error) {
	cred, err := m.repo.Get(ctx, userID)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return nil, domain.WrapError(domain.ErrAuthorizationRequired, "load credential", err)
		}
		return nil, fmt.Errorf("load credential: %w", err)
	}

	if !cred.Expired(m.now()) {
		return cred, nil
	}
	if cred.RefreshToken == "" {
		return nil, domain.WrapError(domain.ErrAuthorizationRequired, "refresh credential", errors.New("expired with no refresh token"))
	}

	tokens, err := m.provider.RefreshToken(ctx, cred.RefreshToken)
	if err != nil {
		// A concurrently consumed refresh token lands here too; both
		// requests get told to re-authorize rather than failing hard.
		slog.Warn("credential_refresh_failed", "user_id", userID, "error", err)
		return nil, domain.WrapError(domain.ErrAuthorizationRequired, "refresh credential", err)
	}

	// Persist only what the provider returned: new access token and
	// expiry. The refresh token and scopes stay as stored.
	if err := m.repo.UpdateTokens(ctx, userID, tokens.AccessToken, tokens.ExpiresAt); err != nil {
		return nil, fmt.Errorf("persist refreshed tokens: %w", err)
	}

	cred.AccessToken = tokens.AccessToken
	cred.ExpiresAt = tokens.ExpiresAt
	cred.UpdatedAt = m.now().UTC()
	return cred, nil
}

// Revoke deletes the stored credential. Revoking an absent credential
// still reports success.
func (m *CredentialLifecycle) Revoke(ctx context.Context, userID string) (bool, error) {
	if err := m.repo.Delete(ctx, userID); err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("delete credential: %w", err)
	}
	return true, nil
}

// CheckAccess is a read-only status probe; unlike ValidCredential it
// never triggers a refresh.
func (m *CredentialLifecycle) CheckAccess(ctx context.Context, userID string) (domain.AccessStatus, error) {
	cred, err := m.repo.Get(ctx, userID)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return domain.AccessStatus{HasAccess: false, Message: "drive access not authorized"}, nil
		}
		return domain.AccessStatus{}, fmt.Errorf("load credential: %w", err)
	}

	if cred.Expired(m.now()) {
		return domain.AccessStatus{
			HasAccess: false,
			ExpiresAt: cred.ExpiresAt,
			Message:   "token expired, renewal required",
		}, nil
	}

	return domain.AccessStatus{
		HasAccess: true,
		Scopes:    cred.Scopes,
		ExpiresAt: cred.ExpiresAt,
	}, nil
}

func (m *CredentialLifecycle) resolveCallbackUser(state string) (string, error) {
	userID, decodeErr := authstate.Decode(state)
	if decodeErr == nil {
		return userID, nil
	}

	// Fallback: the exact state string may still be in the pending
	// registry even if its payload got mangled in transit.
	if userID, ok := m.lookupPending(state); ok {
		return userID, nil
	}

	// No guessing a default user here: misattributing a credential is
	// worse than forcing the flow to restart.
	return "", domain.WrapError(domain.ErrStateDecode, "resolve callback user", decodeErr)
}

func (m *CredentialLifecycle) rememberPending(state, userID string) {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for s, p := range m.pending {
		if now.After(p.expiresAt) {
			delete(m.pending, s)
		}
	}
	m.pending[state] = pendingConsent{userID: userID, expiresAt: now.Add(pendingConsentTTL)}
}

func (m *CredentialLifecycle) lookupPending(state string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pending[state]
	if !ok || m.now().After(p.expiresAt) {
		return "", false
	}
	return p.userID, true
}

func (m *CredentialLifecycle) forgetPending(state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, state)
}
