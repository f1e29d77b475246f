package httpadapter

import (
	"net/http"
)

func (rt *Router) beginAuthorization(w http.ResponseWriter, r *http.Request, userID string) {
	authURL, state, err := rt.credentials.BeginAuthorization(r.Context(), userID)
	rt.recordAuthFlow("begin", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"authorization_url": authURL,
		"state":             state,
	})
}

func (rt *Router) completeAuthorization(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	cred, err := rt.credentials.CompleteAuthorization(r.Context(), query.Get("code"), query.Get("state"))
	rt.recordAuthFlow("complete", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authorized": true,
		"user_id":    cred.UserID,
		"scopes":     cred.Scopes,
	})
}

func (rt *Router) accessStatus(w http.ResponseWriter, r *http.Request, userID string) {
	status, err := rt.credentials.CheckAccess(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (rt *Router) revokeAuthorization(w http.ResponseWriter, r *http.Request, userID string) {
	revoked, err := rt.credentials.Revoke(r.Context(), userID)
	rt.recordAuthFlow("revoke", err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"revoked": revoked})
}
