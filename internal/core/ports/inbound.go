package ports

import (
	"context"
	"time"

	"github.com/rmarchan/docuvault/internal/core/domain"
)

// DocumentIngestor is the inbound contract for the ingestion pipeline.
type DocumentIngestor interface {
	Ingest(ctx context.Context, userID string, content []byte, contentType, filename string) (*domain.Document, domain.Analysis, error)
}

// CredentialManager is the inbound contract for the delegated-access
// credential lifecycle.
type CredentialManager interface {
	BeginAuthorization(ctx context.Context, userID string) (authorizationURL, state string, err error)
	CompleteAuthorization(ctx context.Context, code, state string) (*domain.Credential, error)
	ValidCredential(ctx context.Context, userID string) (*domain.Credential, error)
	Revoke(ctx context.Context, userID string) (bool, error)
	CheckAccess(ctx context.Context, userID string) (domain.AccessStatus, error)
}

// DocumentService is the inbound contract for document CRUD and browse.
type DocumentService interface {
	List(ctx context.Context, userID string) ([]domain.Document, error)
	Get(ctx context.Context, userID, id string) (*domain.Document, error)
	Update(ctx context.Context, userID, id string, update domain.DocumentUpdate) (*domain.Document, error)
	Delete(ctx context.Context, userID, id string) error
	Categories(ctx context.Context, userID string) ([]string, error)
	Expiring(ctx context.Context, userID string, within time.Duration) ([]domain.Document, error)
	Search(ctx context.Context, userID, query string) ([]domain.Document, error)
}

// DriveBrowser exposes the remote folder tree for an authorized user.
type DriveBrowser interface {
	FolderStructure(ctx context.Context, userID string) ([]domain.DriveFolder, error)
}
