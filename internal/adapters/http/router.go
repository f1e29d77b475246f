// Package httpadapter exposes the REST API: document upload and CRUD,
// the OAuth consent flow, drive browsing and notifications.
package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rmarchan/docuvault/internal/core/ports"
)

type Limits struct {
	RateLimitRPS   float64
	RateLimitBurst int
	MaxInFlight    int
	MaxUploadBytes int64
}

// MetricsRecorder is the slice of the metrics surface the handlers feed:
// ingestion outcomes and consent-flow phases. The request-level metrics
// live in the middleware wrapped around the router.
type MetricsRecorder interface {
	RecordDocumentFiled(service, category string, confidence float64)
	RecordIngestDuration(service string, duration time.Duration, err error)
	RecordAuthFlow(service, phase string, err error)
}

type Router struct {
	ingestor      ports.DocumentIngestor
	credentials   ports.CredentialManager
	documents     ports.DocumentService
	drive         ports.DriveBrowser
	notifications ports.NotificationRepository
	verifier      ports.IdentityVerifier
	limits        Limits

	metrics MetricsRecorder
	service string
}

func NewRouter(
	ingestor ports.DocumentIngestor,
	credentials ports.CredentialManager,
	documents ports.DocumentService,
	drive ports.DriveBrowser,
	notifications ports.NotificationRepository,
	verifier ports.IdentityVerifier,
	limits Limits,
) *Router {
	if limits.MaxUploadBytes <= 0 {
		limits.MaxUploadBytes = 32 << 20
	}
	return &Router{
		ingestor:      ingestor,
		credentials:   credentials,
		documents:     documents,
		drive:         drive,
		notifications: notifications,
		verifier:      verifier,
		limits:        limits,
	}
}

// WithMetrics attaches the business-metric recorder. Without it the
// router still works; it just records nothing beyond access logs.
func (rt *Router) WithMetrics(recorder MetricsRecorder, service string) *Router {
	rt.metrics = recorder
	rt.service = service
	return rt
}

func (rt *Router) recordIngest(duration time.Duration, err error) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordIngestDuration(rt.service, duration, err)
}

func (rt *Router) recordFiled(category string, confidence float64) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordDocumentFiled(rt.service, category, confidence)
}

func (rt *Router) recordAuthFlow(phase string, err error) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordAuthFlow(rt.service, phase, err)
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", rt.healthz)

	// The callback is hit by the provider redirect and carries no API
	// identity; the state token ties it back to the user.
	mux.HandleFunc("GET /v1/auth/callback", rt.completeAuthorization)

	mux.Handle("GET /v1/auth/url", rt.authed(rt.beginAuthorization))
	mux.Handle("GET /v1/auth/status", rt.authed(rt.accessStatus))
	mux.Handle("DELETE /v1/auth", rt.authed(rt.revokeAuthorization))

	mux.Handle("POST /v1/documents", rt.authed(rt.uploadDocument))
	mux.Handle("GET /v1/documents", rt.authed(rt.listDocuments))
	mux.Handle("GET /v1/documents/categories", rt.authed(rt.listCategories))
	mux.Handle("GET /v1/documents/expiring", rt.authed(rt.listExpiring))
	mux.Handle("GET /v1/documents/search", rt.authed(rt.searchDocuments))
	mux.Handle("GET /v1/documents/{document_id}", rt.authed(rt.getDocument))
	mux.Handle("PATCH /v1/documents/{document_id}", rt.authed(rt.updateDocument))
	mux.Handle("DELETE /v1/documents/{document_id}", rt.authed(rt.deleteDocument))

	mux.Handle("GET /v1/drive/folders", rt.authed(rt.listDriveFolders))

	mux.Handle("GET /v1/notifications", rt.authed(rt.listNotifications))
	mux.Handle("POST /v1/notifications/{notification_id}/read", rt.authed(rt.markNotificationRead))

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.limits.MaxInFlight, 5*time.Second)
	handler = rateLimitMiddleware(handler, rt.limits.RateLimitRPS, rt.limits.RateLimitBurst)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{
		"error": err.Error(),
		"code":  errorCode(err),
	})
}
