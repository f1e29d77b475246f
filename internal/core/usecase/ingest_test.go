package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rmarchan/docuvault/internal/core/domain"
	"github.com/rmarchan/docuvault/internal/core/ports"
)

type credentialManagerStub struct {
	cred *domain.Credential
	err  error

	validCalls int
}

func (s *credentialManagerStub) BeginAuthorization(context.Context, string) (string, string, error) {
	return "", "", errors.New("not implemented")
}

func (s *credentialManagerStub) CompleteAuthorization(context.Context, string, string) (*domain.Credential, error) {
	return nil, errors.New("not implemented")
}

func (s *credentialManagerStub) ValidCredential(context.Context, string) (*domain.Credential, error) {
	s.validCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.cred, nil
}

func (s *credentialManagerStub) Revoke(context.Context, string) (bool, error) {
	return false, errors.New("not implemented")
}

func (s *credentialManagerStub) CheckAccess(context.Context, string) (domain.AccessStatus, error) {
	return domain.AccessStatus{}, errors.New("not implemented")
}

type analyzerStub struct {
	analysis domain.Analysis
	calls    int
}

func (s *analyzerStub) Analyze(context.Context, []byte, string, string) domain.Analysis {
	s.calls++
	return s.analysis
}

type driveStub struct {
	findFolderID   string
	uploadedFileID string
	uploadErr      error

	uploadedPath   string
	uploadedName   string
	uploadedFolder string
	uploadedMime   string
}

func (s *driveStub) CreateFolder(context.Context, string, string) (string, error) {
	return "", errors.New("not implemented")
}

func (s *driveStub) FindFolder(context.Context, string, string) (string, error) {
	return s.findFolderID, nil
}

func (s *driveStub) UploadFile(_ context.Context, localPath, name, folderID, mimeType string) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploadedPath = localPath
	s.uploadedName = name
	s.uploadedFolder = folderID
	s.uploadedMime = mimeType
	return s.uploadedFileID, nil
}

func (s *driveStub) ListFolders(context.Context, string) ([]domain.DriveFolder, error) {
	return nil, errors.New("not implemented")
}

func (s *driveStub) ListFiles(context.Context, string) ([]domain.DriveFile, error) {
	return nil, errors.New("not implemented")
}

func (s *driveStub) DeleteFile(context.Context, string) error {
	return errors.New("not implemented")
}

type driveFactoryStub struct {
	drive *driveStub
	token string
}

func (s *driveFactoryStub) Session(accessToken string) ports.RemoteDrive {
	s.token = accessToken
	return s.drive
}

type ingestRepoStub struct {
	created *domain.Document
	err     error
}

func (s *ingestRepoStub) Create(_ context.Context, doc *domain.Document) error {
	if s.err != nil {
		return s.err
	}
	copyDoc := *doc
	s.created = &copyDoc
	return nil
}

func (s *ingestRepoStub) GetByID(context.Context, string, string) (*domain.Document, error) {
	return nil, errors.New("not implemented")
}

func (s *ingestRepoStub) ListByUser(context.Context, string) ([]domain.Document, error) {
	return nil, errors.New("not implemented")
}

func (s *ingestRepoStub) Update(context.Context, string, string, domain.DocumentUpdate) (*domain.Document, error) {
	return nil, errors.New("not implemented")
}

func (s *ingestRepoStub) Delete(context.Context, string, string) error {
	return errors.New("not implemented")
}

func (s *ingestRepoStub) ListCategories(context.Context, string) ([]string, error) {
	return nil, errors.New("not implemented")
}

func (s *ingestRepoStub) ListExpiringBefore(context.Context, string, time.Time) ([]domain.Document, error) {
	return nil, errors.New("not implemented")
}

func (s *ingestRepoStub) Search(context.Context, string, string) ([]domain.Document, error) {
	return nil, errors.New("not implemented")
}

type stagingStub struct {
	savedKey  string
	savedBody string
	removed   []string
}

func (s *stagingStub) Save(_ context.Context, key string, data io.Reader) (string, error) {
	raw, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	s.savedKey = key
	s.savedBody = string(raw)
	return "/tmp/staging/" + key, nil
}

func (s *stagingStub) Remove(_ context.Context, key string) error {
	s.removed = append(s.removed, key)
	return nil
}

type queueStub struct {
	event *domain.DocumentFiledEvent
	err   error
}

func (s *queueStub) PublishDocumentFiled(_ context.Context, event domain.DocumentFiledEvent) error {
	if s.err != nil {
		return s.err
	}
	s.event = &event
	return nil
}

func (s *queueStub) SubscribeDocumentFiled(context.Context, func(context.Context, domain.DocumentFiledEvent) error) error {
	return errors.New("not implemented")
}

func newIngestFixture() (*IngestUseCase, *credentialManagerStub, *analyzerStub, *driveFactoryStub, *ingestRepoStub, *stagingStub, *queueStub) {
	credentials := &credentialManagerStub{cred: &domain.Credential{UserID: "user-1", AccessToken: "tok-1"}}
	analyzer := &analyzerStub{analysis: domain.Analysis{
		SuggestedCategory: "Factura",
		Confidence:        0.82,
		Tags:              []string{"factura", "importe", "iva"},
		Metadata:          map[string][]string{"importes": {"120,00"}},
		DocumentNumber:    "F-2026-0042",
		Organization:      "Acme S.L.",
	}}
	factory := &driveFactoryStub{drive: &driveStub{findFolderID: "folder-9", uploadedFileID: "file-7"}}
	repo := &ingestRepoStub{}
	staging := &stagingStub{}
	queue := &queueStub{}

	uc := NewIngestUseCase(credentials, analyzer, factory, repo, staging, queue, "root-1")
	uc.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }
	return uc, credentials, analyzer, factory, repo, staging, queue
}

func TestIngestFilesDocument(t *testing.T) {
	uc, _, _, factory, repo, staging, queue := newIngestFixture()

	doc, analysis, err := uc.Ingest(context.Background(), "user-1", []byte("hello"), "application/pdf", "factura luz.pdf")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if doc.Category != "Factura" {
		t.Fatalf("expected category Factura, got %s", doc.Category)
	}
	if analysis.Confidence != 0.82 {
		t.Fatalf("expected analysis passed through, got confidence %v", analysis.Confidence)
	}
	if doc.DriveFileID != "file-7" || doc.DriveFolderID != "folder-9" {
		t.Fatalf("expected drive ids file-7/folder-9, got %s/%s", doc.DriveFileID, doc.DriveFolderID)
	}
	if !strings.Contains(doc.FileURL, "file-7") {
		t.Fatalf("expected file url referencing uploaded id, got %s", doc.FileURL)
	}
	if doc.FileSize != int64(len("hello")) {
		t.Fatalf("expected file size %d, got %d", len("hello"), doc.FileSize)
	}
	if doc.DocumentNumber != "F-2026-0042" || doc.Organization != "Acme S.L." {
		t.Fatalf("expected analysis fields on document, got %s / %s", doc.DocumentNumber, doc.Organization)
	}

	if factory.token != "tok-1" {
		t.Fatalf("expected drive session for tok-1, got %s", factory.token)
	}
	if factory.drive.uploadedFolder != "folder-9" {
		t.Fatalf("expected upload into folder-9, got %s", factory.drive.uploadedFolder)
	}
	if factory.drive.uploadedName != "factura luz.pdf" {
		t.Fatalf("expected original name on upload, got %s", factory.drive.uploadedName)
	}

	if repo.created == nil {
		t.Fatalf("expected repo.Create call")
	}
	if !strings.HasSuffix(staging.savedKey, "_factura_luz.pdf") {
		t.Fatalf("expected sanitized staging key, got %s", staging.savedKey)
	}
	if staging.savedBody != "hello" {
		t.Fatalf("expected staged body hello, got %s", staging.savedBody)
	}
	if len(staging.removed) != 1 || staging.removed[0] != staging.savedKey {
		t.Fatalf("expected staged key removed after upload, got %v", staging.removed)
	}

	if queue.event == nil {
		t.Fatalf("expected filed event published")
	}
	if queue.event.DocumentID != doc.ID || queue.event.Category != "Factura" {
		t.Fatalf("unexpected filed event %+v", queue.event)
	}
}

func TestIngestRequiresCredential(t *testing.T) {
	uc, credentials, analyzer, _, _, _, _ := newIngestFixture()
	credentials.err = domain.WrapError(domain.ErrAuthorizationRequired, "load credential", errors.New("no record"))

	_, _, err := uc.Ingest(context.Background(), "user-1", []byte("hello"), "application/pdf", "doc.pdf")
	if !domain.IsKind(err, domain.ErrAuthorizationRequired) {
		t.Fatalf("expected authorization-required error, got %v", err)
	}
	if analyzer.calls != 0 {
		t.Fatalf("expected no analysis without credential, got %d calls", analyzer.calls)
	}
}

func TestIngestCleansStagingOnUploadFailure(t *testing.T) {
	uc, _, _, factory, repo, staging, _ := newIngestFixture()
	factory.drive.uploadErr = errors.New("drive unavailable")

	_, _, err := uc.Ingest(context.Background(), "user-1", []byte("hello"), "application/pdf", "doc.pdf")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "upload to drive") {
		t.Fatalf("expected upload error, got %v", err)
	}
	if len(staging.removed) != 1 {
		t.Fatalf("expected staged bytes cleaned up on failure, got %v", staging.removed)
	}
	if repo.created != nil {
		t.Fatalf("expected no persisted document on upload failure")
	}
}

func TestIngestRejectsEmptyFilename(t *testing.T) {
	uc, credentials, _, _, _, _, _ := newIngestFixture()

	_, _, err := uc.Ingest(context.Background(), "user-1", []byte("hello"), "application/pdf", "")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid-input error, got %v", err)
	}
	if credentials.validCalls != 0 {
		t.Fatalf("expected no credential lookup for invalid input")
	}
}

func TestIngestPublishFailureDoesNotFailRequest(t *testing.T) {
	uc, _, _, _, repo, _, queue := newIngestFixture()
	queue.err = errors.New("broker down")

	doc, _, err := uc.Ingest(context.Background(), "user-1", []byte("hello"), "application/pdf", "doc.pdf")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if repo.created == nil || repo.created.ID != doc.ID {
		t.Fatalf("expected document persisted despite publish failure")
	}
}
