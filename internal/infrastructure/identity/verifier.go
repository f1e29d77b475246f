// Package identity verifies inbound bearer tokens. Tokens are HS256
// JWTs minted by the identity provider in front of the API; the uid
// claim (falling back to the registered subject) keys all user data.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rmarchan/docuvault/internal/core/domain"
)

type Verifier struct {
	signKey []byte
	leeway  time.Duration
}

func NewVerifier(signKey []byte) *Verifier {
	return &Verifier{signKey: signKey, leeway: 30 * time.Second}
}

type tokenClaims struct {
	UID     string `json:"uid,omitempty"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

func (v *Verifier) Verify(_ context.Context, bearer string) (domain.Identity, error) {
	raw := strings.TrimSpace(bearer)
	if raw == "" {
		return domain.Identity{}, domain.WrapError(domain.ErrAuthenticationRequired, "verify token", errors.New("empty bearer token"))
	}

	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.signKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(v.leeway))
	if err != nil {
		return domain.Identity{}, domain.WrapError(domain.ErrAuthenticationRequired, "verify token", err)
	}

	uid := claims.UID
	if uid == "" {
		uid = claims.Subject
	}
	if uid == "" {
		return domain.Identity{}, domain.WrapError(domain.ErrAuthenticationRequired, "verify token", errors.New("token carries no user id"))
	}

	return domain.Identity{
		UID:     uid,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}
