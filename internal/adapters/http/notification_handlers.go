package httpadapter

import "net/http"

func (rt *Router) listNotifications(w http.ResponseWriter, r *http.Request, userID string) {
	notifications, err := rt.notifications.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": emptyIfNil(notifications)})
}

func (rt *Router) markNotificationRead(w http.ResponseWriter, r *http.Request, userID string) {
	if err := rt.notifications.MarkRead(r.Context(), userID, r.PathValue("notification_id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"read": true})
}
