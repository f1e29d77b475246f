package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both missing entities and entities owned by a
	// different user, so existence never leaks through the API.
	ErrNotFound = errors.New("not found")

	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthenticationRequired means the inbound identity is missing or
	// invalid. ErrAuthorizationRequired means the user has no usable
	// delegated drive credential and must go through consent again.
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrAuthorizationRequired  = errors.New("drive authorization required")

	// ErrStateDecode marks an OAuth callback whose state token could not
	// be tied back to a user.
	ErrStateDecode = errors.New("authorization state unrecoverable")

	ErrRemoteService = errors.New("remote service failure")
	ErrTemporary     = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
