package domain

import "time"

// Credential is the delegated-access token set stored per user, one live
// record per user. Created on code exchange, mutated in place on refresh,
// deleted on revocation.
type Credential struct {
	UserID        string    `json:"user_id"`
	AccessToken   string    `json:"-"`
	RefreshToken  string    `json:"-"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"`
	Scopes        []string  `json:"scopes"`
	ClientID      string    `json:"-"`
	ClientSecret  string    `json:"-"`
	TokenEndpoint string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Expired reports whether the access token is past its known expiry.
// A zero ExpiresAt means the provider gave no expiry; treat as live.
func (c *Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// TokenSet is what the OAuth provider returns on exchange or refresh.
// Refresh responses usually omit the refresh token; only returned fields
// are persisted.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Scopes       []string
}

// AccessStatus is the read-only drive-access report. Checking it never
// triggers a refresh.
type AccessStatus struct {
	HasAccess bool      `json:"has_access"`
	Scopes    []string  `json:"scopes,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// Identity is the verified inbound caller, as reported by the identity
// provider. UID is trusted as the user key everywhere.
type Identity struct {
	UID     string `json:"uid"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}
