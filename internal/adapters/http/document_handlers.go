package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rmarchan/docuvault/internal/core/domain"
)

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request, userID string) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.limits.MaxUploadBytes)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "read upload", errors.New("multipart field 'file' is required")))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "read upload", err))
		return
	}

	start := time.Now()
	doc, analysis, err := rt.ingestor.Ingest(
		r.Context(),
		userID,
		content,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Filename,
	)
	rt.recordIngest(time.Since(start), err)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.recordFiled(doc.Category, analysis.Confidence)

	writeJSON(w, http.StatusCreated, map[string]any{
		"document": doc,
		"analysis": analysis,
	})
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request, userID string) {
	documents, err := rt.documents.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": emptyIfNil(documents)})
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request, userID string) {
	doc, err := rt.documents.Get(r.Context(), userID, r.PathValue("document_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) updateDocument(w http.ResponseWriter, r *http.Request, userID string) {
	var req struct {
		Name        *string  `json:"name"`
		Category    *string  `json:"category"`
		Description *string  `json:"description"`
		Tags        []string `json:"tags"`
		IsArchived  *bool    `json:"is_archived"`
		IsFavorite  *bool    `json:"is_favorite"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "decode update", err))
		return
	}

	doc, err := rt.documents.Update(r.Context(), userID, r.PathValue("document_id"), domain.DocumentUpdate{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Tags:        req.Tags,
		IsArchived:  req.IsArchived,
		IsFavorite:  req.IsFavorite,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request, userID string) {
	if err := rt.documents.Delete(r.Context(), userID, r.PathValue("document_id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (rt *Router) listCategories(w http.ResponseWriter, r *http.Request, userID string) {
	categories, err := rt.documents.Categories(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": emptyIfNil(categories)})
}

func (rt *Router) listExpiring(w http.ResponseWriter, r *http.Request, userID string) {
	var within time.Duration
	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			writeError(w, domain.WrapError(domain.ErrInvalidInput, "parse days", errors.New("days must be a positive integer")))
			return
		}
		within = time.Duration(days) * 24 * time.Hour
	}

	documents, err := rt.documents.Expiring(r.Context(), userID, within)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": emptyIfNil(documents)})
}

func (rt *Router) searchDocuments(w http.ResponseWriter, r *http.Request, userID string) {
	documents, err := rt.documents.Search(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": emptyIfNil(documents)})
}

// emptyIfNil keeps list responses as [] instead of null.
func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
