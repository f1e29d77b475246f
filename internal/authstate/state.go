// Package authstate encodes the user identity into the opaque OAuth
// state parameter so the callback can be correlated without server-side
// session storage. The encoding is deliberately reversible, not a
// signature: the callback is still gated by the provider's code exchange.
package authstate

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

type envelope struct {
	UID string `json:"uid"`
}

// Encode wraps the user id in a URL-safe token.
func Encode(userID string) string {
	raw, _ := json.Marshal(envelope{UID: userID})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode recovers the user id from a state token. Redirect plumbing is
// known to strip trailing '=' padding, so decoding repairs it first and
// accepts both the padded and raw base64url forms.
func Decode(state string) (string, error) {
	state = strings.TrimSpace(state)
	if state == "" {
		return "", fmt.Errorf("empty state")
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(state, "="))
	if err != nil {
		return "", fmt.Errorf("decode state: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("parse state payload: %w", err)
	}
	if env.UID == "" {
		return "", fmt.Errorf("state payload has no uid")
	}
	return env.UID, nil
}
