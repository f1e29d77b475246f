package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rmarchan/docuvault/internal/core/domain"
	"github.com/rmarchan/docuvault/internal/core/ports"
)

// IngestUseCase is the pipeline entry point: classify the bytes, obtain
// a valid drive credential, resolve the category folder, upload, persist
// the document record and fan out the filed event.
type IngestUseCase struct {
	credentials ports.CredentialManager
	analyzer    ports.DocumentAnalyzer
	drives      ports.DriveSessionFactory
	repo        ports.DocumentRepository
	staging     ports.StagingStorage
	events      ports.EventPublisher

	rootFolderID string
	now          func() time.Time

	// One folder resolver per user; resolvers are credential-scoped and
	// must never be shared across users.
	mu        sync.Mutex
	resolvers map[string]*FolderResolver
}

func NewIngestUseCase(
	credentials ports.CredentialManager,
	analyzer ports.DocumentAnalyzer,
	drives ports.DriveSessionFactory,
	repo ports.DocumentRepository,
	staging ports.StagingStorage,
	events ports.EventPublisher,
	rootFolderID string,
) *IngestUseCase {
	return &IngestUseCase{
		credentials:  credentials,
		analyzer:     analyzer,
		drives:       drives,
		repo:         repo,
		staging:      staging,
		events:       events,
		rootFolderID: rootFolderID,
		now:          time.Now,
		resolvers:    make(map[string]*FolderResolver),
	}
}

func (uc *IngestUseCase) Ingest(
	ctx context.Context,
	userID string,
	content []byte,
	contentType, filename string,
) (*domain.Document, domain.Analysis, error) {
	if filename == "" {
		return nil, domain.Analysis{}, domain.WrapError(domain.ErrInvalidInput, "ingest", fmt.Errorf("filename is required"))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	cred, err := uc.credentials.ValidCredential(ctx, userID)
	if err != nil {
		return nil, domain.Analysis{}, err
	}

	// Analysis never fails; worst case it hands back the degraded
	// default and the file is still filed.
	analysis := uc.analyzer.Analyze(ctx, content, contentType, filename)

	drive := uc.drives.Session(cred.AccessToken)
	folderID, err := uc.resolverFor(userID).Resolve(ctx, drive, analysis.SuggestedCategory)
	if err != nil {
		return nil, domain.Analysis{}, fmt.Errorf("resolve category folder: %w", err)
	}

	id := uuid.NewString()
	stagingKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	localPath, err := uc.staging.Save(ctx, stagingKey, bytes.NewReader(content))
	if err != nil {
		return nil, domain.Analysis{}, fmt.Errorf("stage upload: %w", err)
	}
	defer func() {
		if removeErr := uc.staging.Remove(ctx, stagingKey); removeErr != nil {
			slog.Warn("staging_cleanup_failed", "key", stagingKey, "error", removeErr)
		}
	}()

	fileID, err := drive.UploadFile(ctx, localPath, filename, folderID, contentType)
	if err != nil {
		return nil, domain.Analysis{}, fmt.Errorf("upload to drive: %w", err)
	}

	now := uc.now().UTC()
	doc := &domain.Document{
		ID:          id,
		UserID:      userID,
		Name:        filename,
		Category:    analysis.SuggestedCategory,
		Description: fmt.Sprintf("Documento analizado automáticamente. Categoría sugerida: %s", analysis.SuggestedCategory),

		FileURL:  fmt.Sprintf("https://drive.google.com/file/d/%s/view", fileID),
		FileName: filename,
		FileSize: int64(len(content)),
		FileType: contentType,

		DriveFileID:   fileID,
		DriveFolderID: folderID,

		Tags:           analysis.Tags,
		Metadata:       analysis.Metadata,
		Confidence:     analysis.Confidence,
		ExpiryDate:     analysis.ExpiryDate,
		DocumentNumber: analysis.DocumentNumber,
		Organization:   analysis.Organization,

		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, domain.Analysis{}, fmt.Errorf("persist document: %w", err)
	}

	// Best effort: the document is already filed, a lost notification
	// event must not fail the request.
	event := domain.DocumentFiledEvent{
		EventID:    uuid.NewString(),
		UserID:     userID,
		DocumentID: doc.ID,
		Name:       doc.Name,
		Category:   doc.Category,
		FiledAt:    now,
	}
	if err := uc.events.PublishDocumentFiled(ctx, event); err != nil {
		slog.Warn("document_filed_event_publish_failed", "document_id", doc.ID, "error", err)
	}

	return doc, analysis, nil
}

func (uc *IngestUseCase) resolverFor(userID string) *FolderResolver {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	resolver, ok := uc.resolvers[userID]
	if !ok {
		resolver = NewFolderResolver(uc.rootFolderID)
		uc.resolvers[userID] = resolver
	}
	return resolver
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
