package httpadapter

import (
	"net/http"

	"github.com/rmarchan/docuvault/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrStateDecode):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrAuthenticationRequired):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrAuthorizationRequired):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrRemoteService):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorCode distinguishes the two 401 flavors: a missing API identity
// versus a missing drive grant, which the client fixes differently.
func errorCode(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrStateDecode):
		return "state_decode_failed"
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "invalid_input"
	case domain.IsKind(err, domain.ErrAuthenticationRequired):
		return "authentication_required"
	case domain.IsKind(err, domain.ErrAuthorizationRequired):
		return "drive_authorization_required"
	case domain.IsKind(err, domain.ErrNotFound):
		return "not_found"
	case domain.IsKind(err, domain.ErrRemoteService):
		return "remote_service_failure"
	case domain.IsKind(err, domain.ErrTemporary):
		return "temporarily_unavailable"
	default:
		return "internal_error"
	}
}
