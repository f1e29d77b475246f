package ports

import (
	"context"
	"io"
	"time"

	"github.com/rmarchan/docuvault/internal/core/domain"
)

// DocumentRepository persists and reads document records. Every read,
// update and delete is scoped by owner; a mismatch surfaces as not-found.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, userID, id string) (*domain.Document, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Document, error)
	Update(ctx context.Context, userID, id string, update domain.DocumentUpdate) (*domain.Document, error)
	Delete(ctx context.Context, userID, id string) error
	ListCategories(ctx context.Context, userID string) ([]string, error)
	ListExpiringBefore(ctx context.Context, userID string, cutoff time.Time) ([]domain.Document, error)
	Search(ctx context.Context, userID, query string) ([]domain.Document, error)
}

// CredentialRepository stores at most one delegated credential per user.
type CredentialRepository interface {
	Get(ctx context.Context, userID string) (*domain.Credential, error)
	Put(ctx context.Context, cred *domain.Credential) error
	UpdateTokens(ctx context.Context, userID, accessToken string, expiresAt time.Time) error
	Delete(ctx context.Context, userID string) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
}

// OAuthProvider is the consent/token side of the remote storage provider.
type OAuthProvider interface {
	AuthorizationURL(scopes []string, state string) string
	ExchangeCode(ctx context.Context, code string) (domain.TokenSet, error)
	RefreshToken(ctx context.Context, refreshToken string) (domain.TokenSet, error)
}

// RemoteDrive is one authenticated session against the remote storage
// service, bound to a single user's credential.
type RemoteDrive interface {
	CreateFolder(ctx context.Context, name, parentID string) (string, error)
	FindFolder(ctx context.Context, name, parentID string) (string, error)
	UploadFile(ctx context.Context, localPath, name, folderID, mimeType string) (string, error)
	ListFolders(ctx context.Context, parentID string) ([]domain.DriveFolder, error)
	ListFiles(ctx context.Context, folderID string) ([]domain.DriveFile, error)
	DeleteFile(ctx context.Context, fileID string) error
}

// DriveSessionFactory mints RemoteDrive sessions for an access token.
type DriveSessionFactory interface {
	Session(accessToken string) RemoteDrive
}

// OCREngine recognizes text in an image using a language profile such as
// "spa+eng".
type OCREngine interface {
	RecognizeText(ctx context.Context, image []byte, languages string) (string, error)
}

// DocumentAnalyzer runs the full extract/classify/tag/score pipeline.
// It never fails: on extraction trouble it returns the degraded result.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, content []byte, contentType, filename string) domain.Analysis
}

// StagingStorage holds uploaded bytes while they are in flight to the
// remote drive. Keys are process-scoped, not user data at rest.
type StagingStorage interface {
	Save(ctx context.Context, key string, data io.Reader) (localPath string, err error)
	Remove(ctx context.Context, key string) error
}

// EventPublisher fans out post-ingestion events.
type EventPublisher interface {
	PublishDocumentFiled(ctx context.Context, event domain.DocumentFiledEvent) error
	SubscribeDocumentFiled(ctx context.Context, handler func(context.Context, domain.DocumentFiledEvent) error) error
}

// IdentityVerifier validates an inbound bearer credential.
type IdentityVerifier interface {
	Verify(ctx context.Context, bearer string) (domain.Identity, error)
}
