// Package bootstrap wires configuration, infrastructure clients and use
// cases into a runnable application handle shared by api and worker.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/rmarchan/docuvault/internal/config"
	"github.com/rmarchan/docuvault/internal/core/ports"
	"github.com/rmarchan/docuvault/internal/core/usecase"
	"github.com/rmarchan/docuvault/internal/infrastructure/analyzer"
	"github.com/rmarchan/docuvault/internal/infrastructure/drive/googledrive"
	"github.com/rmarchan/docuvault/internal/infrastructure/identity"
	"github.com/rmarchan/docuvault/internal/infrastructure/oauth/google"
	"github.com/rmarchan/docuvault/internal/infrastructure/ocr/tesseract"
	natsqueue "github.com/rmarchan/docuvault/internal/infrastructure/queue/nats"
	"github.com/rmarchan/docuvault/internal/infrastructure/repository/postgres"
	"github.com/rmarchan/docuvault/internal/infrastructure/resilience"
	stagingl "github.com/rmarchan/docuvault/internal/infrastructure/staging/localfs"
	stagings3 "github.com/rmarchan/docuvault/internal/infrastructure/staging/s3"
)

type App struct {
	Config config.Config

	Queue         ports.EventPublisher
	Documents     ports.DocumentService
	Ingest        ports.DocumentIngestor
	Credentials   ports.CredentialManager
	Drive         ports.DriveBrowser
	Notifications ports.NotificationRepository
	Verifier      ports.IdentityVerifier
	Notify        *usecase.NotifyUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	docRepo := postgres.NewDocumentRepository(db)
	credRepo := postgres.NewCredentialRepository(db)
	noteRepo := postgres.NewNotificationRepository(db)

	exec := resilience.NewExecutor(resilience.DefaultConfig())

	oauthClient := google.New(google.Config{
		ClientID:      cfg.OAuthClientID,
		ClientSecret:  cfg.OAuthClientSecret,
		RedirectURI:   cfg.OAuthRedirectURI,
		AuthEndpoint:  cfg.OAuthAuthEndpoint,
		TokenEndpoint: cfg.OAuthTokenEndpoint,
	}, exec)

	driveFactory := googledrive.NewSessionFactory(cfg.DriveAPIBase, cfg.DriveUploadBase, exec)

	ocrClient := tesseract.New(cfg.OCRServiceURL, exec)
	rules, err := analyzer.LoadRules(nil)
	if err != nil {
		return nil, fmt.Errorf("load classification rules: %w", err)
	}
	docAnalyzer := analyzer.New(ocrClient, rules, cfg.OCRLanguages)

	staging, err := newStaging(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init staging storage: %w", err)
	}

	queue, err := natsqueue.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsqueue.Options{
		ResilienceExecutor: exec,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	credentials := usecase.NewCredentialLifecycle(
		credRepo, oauthClient,
		cfg.OAuthClientID, cfg.OAuthClientSecret, cfg.OAuthTokenEndpoint,
	)
	ingest := usecase.NewIngestUseCase(credentials, docAnalyzer, driveFactory, docRepo, staging, queue, cfg.DriveRootFolder)
	documents := usecase.NewDocumentCRUD(docRepo)
	driveBrowse := usecase.NewDriveBrowseUseCase(credentials, driveFactory, cfg.DriveRootFolder)
	notify := usecase.NewNotifyUseCase(noteRepo)
	verifier := identity.NewVerifier([]byte(cfg.AuthSignKey))

	return &App{
		Config: cfg,

		Queue:         queue,
		Documents:     documents,
		Ingest:        ingest,
		Credentials:   credentials,
		Drive:         driveBrowse,
		Notifications: noteRepo,
		Verifier:      verifier,
		Notify:        notify,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func newStaging(ctx context.Context, cfg config.Config) (ports.StagingStorage, error) {
	if cfg.StagingBackend == "s3" {
		storage, err := stagings3.New(stagings3.Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
		})
		if err != nil {
			return nil, err
		}
		if err := storage.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return storage, nil
	}
	return stagingl.New(cfg.StagingPath)
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
