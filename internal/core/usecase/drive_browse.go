package usecase

import (
	"context"
	"fmt"

	"github.com/rmarchan/docuvault/internal/core/domain"
	"github.com/rmarchan/docuvault/internal/core/ports"
)

// DriveBrowseUseCase lists the remote folder tree the filing pipeline
// maintains, with per-folder file counts.
type DriveBrowseUseCase struct {
	credentials  ports.CredentialManager
	drives       ports.DriveSessionFactory
	rootFolderID string
}

func NewDriveBrowseUseCase(credentials ports.CredentialManager, drives ports.DriveSessionFactory, rootFolderID string) *DriveBrowseUseCase {
	return &DriveBrowseUseCase{credentials: credentials, drives: drives, rootFolderID: rootFolderID}
}

func (uc *DriveBrowseUseCase) FolderStructure(ctx context.Context, userID string) ([]domain.DriveFolder, error) {
	cred, err := uc.credentials.ValidCredential(ctx, userID)
	if err != nil {
		return nil, err
	}

	drive := uc.drives.Session(cred.AccessToken)
	folders, err := drive.ListFolders(ctx, uc.rootFolderID)
	if err != nil {
		return nil, fmt.Errorf("list drive folders: %w", err)
	}

	for i := range folders {
		files, err := drive.ListFiles(ctx, folders[i].ID)
		if err != nil {
			return nil, fmt.Errorf("list files in folder %s: %w", folders[i].ID, err)
		}
		folders[i].FilesCount = len(files)
	}
	return folders, nil
}
