package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rmarchan/docuvault/internal/core/domain"
)

type verifierFake struct{}

func (verifierFake) Verify(_ context.Context, bearer string) (domain.Identity, error) {
	if bearer != "good-token" {
		return domain.Identity{}, domain.WrapError(domain.ErrAuthenticationRequired, "verify token", errors.New("bad token"))
	}
	return domain.Identity{UID: "user-1"}, nil
}

type ingestorFake struct {
	doc      *domain.Document
	analysis domain.Analysis
	err      error

	gotUserID      string
	gotFilename    string
	gotContentType string
	gotContent     []byte
}

func (f *ingestorFake) Ingest(_ context.Context, userID string, content []byte, contentType, filename string) (*domain.Document, domain.Analysis, error) {
	f.gotUserID = userID
	f.gotContent = content
	f.gotContentType = contentType
	f.gotFilename = filename
	return f.doc, f.analysis, f.err
}

type credentialManagerFake struct {
	authURL     string
	state       string
	completeErr error
	status      domain.AccessStatus
}

func (f *credentialManagerFake) BeginAuthorization(context.Context, string) (string, string, error) {
	return f.authURL, f.state, nil
}

func (f *credentialManagerFake) CompleteAuthorization(_ context.Context, code, state string) (*domain.Credential, error) {
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return &domain.Credential{UserID: "user-1", Scopes: []string{"scope.a"}}, nil
}

func (f *credentialManagerFake) ValidCredential(context.Context, string) (*domain.Credential, error) {
	return &domain.Credential{UserID: "user-1"}, nil
}

func (f *credentialManagerFake) Revoke(context.Context, string) (bool, error) { return true, nil }

func (f *credentialManagerFake) CheckAccess(context.Context, string) (domain.AccessStatus, error) {
	return f.status, nil
}

type documentServiceFake struct {
	documents []domain.Document
	getErr    error
}

func (f *documentServiceFake) List(context.Context, string) ([]domain.Document, error) {
	return f.documents, nil
}

func (f *documentServiceFake) Get(_ context.Context, _, id string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &domain.Document{ID: id, UserID: "user-1"}, nil
}

func (f *documentServiceFake) Update(_ context.Context, _, id string, update domain.DocumentUpdate) (*domain.Document, error) {
	doc := domain.Document{ID: id, UserID: "user-1"}
	if update.Name != nil {
		doc.Name = *update.Name
	}
	return &doc, nil
}

func (f *documentServiceFake) Delete(context.Context, string, string) error { return nil }

func (f *documentServiceFake) Categories(context.Context, string) ([]string, error) {
	return []string{"Factura"}, nil
}

func (f *documentServiceFake) Expiring(context.Context, string, time.Duration) ([]domain.Document, error) {
	return nil, nil
}

func (f *documentServiceFake) Search(_ context.Context, _, query string) ([]domain.Document, error) {
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search documents", errors.New("empty query"))
	}
	return f.documents, nil
}

type driveBrowserFake struct{}

func (driveBrowserFake) FolderStructure(context.Context, string) ([]domain.DriveFolder, error) {
	return []domain.DriveFolder{{ID: "f1", Name: "Facturas", FilesCount: 2}}, nil
}

type notificationRepoFake struct {
	markReadErr error
}

func (f *notificationRepoFake) Create(context.Context, *domain.Notification) error { return nil }

func (f *notificationRepoFake) ListByUser(context.Context, string) ([]domain.Notification, error) {
	return nil, nil
}

func (f *notificationRepoFake) MarkRead(context.Context, string, string) error {
	return f.markReadErr
}

type routerFakes struct {
	ingestor      *ingestorFake
	credentials   *credentialManagerFake
	documents     *documentServiceFake
	notifications *notificationRepoFake
}

func newTestRouter(limits Limits) (*Router, *routerFakes) {
	fakes := &routerFakes{
		ingestor: &ingestorFake{
			doc:      &domain.Document{ID: "doc-1", UserID: "user-1", Category: "Factura"},
			analysis: domain.Analysis{SuggestedCategory: "Factura", Confidence: 0.8},
		},
		credentials:   &credentialManagerFake{authURL: "https://consent.example.com", state: "abc"},
		documents:     &documentServiceFake{},
		notifications: &notificationRepoFake{},
	}
	router := NewRouter(
		fakes.ingestor,
		fakes.credentials,
		fakes.documents,
		driveBrowserFake{},
		fakes.notifications,
		verifierFake{},
		limits,
	)
	return router, fakes
}

func authedRequest(method, target string, body *bytes.Buffer) *http.Request {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer good-token")
	return req
}

func TestRequestsWithoutBearerAreRejected(t *testing.T) {
	router, _ := newTestRouter(Limits{})
	handler := router.Handler()

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/documents", nil))
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}

	var payload map[string]string
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["code"] != "authentication_required" {
		t.Fatalf("code = %q", payload["code"])
	}
}

func TestUploadDocumentReturnsDocumentAndAnalysis(t *testing.T) {
	router, fakes := newTestRouter(Limits{})
	handler := router.Handler()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "factura.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("factura pago")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	_ = writer.Close()

	req := authedRequest(http.MethodPost, "/v1/documents", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
	if fakes.ingestor.gotUserID != "user-1" {
		t.Fatalf("ingest user = %q", fakes.ingestor.gotUserID)
	}
	if fakes.ingestor.gotFilename != "factura.txt" {
		t.Fatalf("ingest filename = %q", fakes.ingestor.gotFilename)
	}
	if string(fakes.ingestor.gotContent) != "factura pago" {
		t.Fatalf("ingest content = %q", fakes.ingestor.gotContent)
	}

	var payload struct {
		Document domain.Document `json:"document"`
		Analysis domain.Analysis `json:"analysis"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Document.ID != "doc-1" || payload.Analysis.SuggestedCategory != "Factura" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestUploadWithoutFileFieldIs400(t *testing.T) {
	router, _ := newTestRouter(Limits{})
	handler := router.Handler()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	_ = writer.WriteField("other", "x")
	_ = writer.Close()

	req := authedRequest(http.MethodPost, "/v1/documents", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestIngestWithoutDriveGrantIs401WithDistinctCode(t *testing.T) {
	router, fakes := newTestRouter(Limits{})
	fakes.ingestor.doc = nil
	fakes.ingestor.err = domain.WrapError(domain.ErrAuthorizationRequired, "load credential", errors.New("no grant"))
	handler := router.Handler()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, _ := writer.CreateFormFile("file", "a.txt")
	_, _ = part.Write([]byte("x"))
	_ = writer.Close()

	req := authedRequest(http.MethodPost, "/v1/documents", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}

	var payload map[string]string
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["code"] != "drive_authorization_required" {
		t.Fatalf("code = %q", payload["code"])
	}
}

func TestGetDocumentMapsNotFound(t *testing.T) {
	router, fakes := newTestRouter(Limits{})
	fakes.documents.getErr = domain.WrapError(domain.ErrNotFound, "get document", errors.New("absent"))
	handler := router.Handler()

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, authedRequest(http.MethodGet, "/v1/documents/doc-x", nil))
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestCallbackNeedsNoBearerButFailsOnBadState(t *testing.T) {
	router, fakes := newTestRouter(Limits{})
	fakes.credentials.completeErr = domain.WrapError(domain.ErrStateDecode, "resolve callback user", errors.New("garbage state"))
	handler := router.Handler()

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/auth/callback?code=c&state=!!!", nil))
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}

	var payload map[string]string
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["code"] != "state_decode_failed" {
		t.Fatalf("code = %q", payload["code"])
	}
}

func TestCallbackSucceedsWithoutBearer(t *testing.T) {
	router, _ := newTestRouter(Limits{})
	handler := router.Handler()

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/auth/callback?code=c&state=ok", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
}

func TestListDocumentsReturnsEmptyArrayNotNull(t *testing.T) {
	router, _ := newTestRouter(Limits{})
	handler := router.Handler()

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, authedRequest(http.MethodGet, "/v1/documents", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !bytes.Contains(res.Body.Bytes(), []byte(`"documents":[]`)) {
		t.Fatalf("expected empty array, got %s", res.Body.String())
	}
}

func TestExpiringRejectsNonPositiveDays(t *testing.T) {
	router, _ := newTestRouter(Limits{})
	handler := router.Handler()

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, authedRequest(http.MethodGet, "/v1/documents/expiring?days=-3", nil))
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}
