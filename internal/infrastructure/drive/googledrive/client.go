// Package googledrive talks to the Google Drive v3 REST API. A Session
// is bound to one user's access token; the SessionFactory mints sessions
// as tokens rotate.
package googledrive

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rmarchan/docuvault/internal/core/domain"
	"github.com/rmarchan/docuvault/internal/core/ports"
	"github.com/rmarchan/docuvault/internal/infrastructure/resilience"
)

const (
	defaultAPIBase    = "https://www.googleapis.com/drive/v3"
	defaultUploadBase = "https://www.googleapis.com/upload/drive/v3"

	folderMimeType = "application/vnd.google-apps.folder"
)

type SessionFactory struct {
	apiBase    string
	uploadBase string
	httpClient *http.Client
	exec       *resilience.Executor
}

func NewSessionFactory(apiBase, uploadBase string, exec *resilience.Executor) *SessionFactory {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	if uploadBase == "" {
		uploadBase = defaultUploadBase
	}
	return &SessionFactory{
		apiBase:    strings.TrimRight(apiBase, "/"),
		uploadBase: strings.TrimRight(uploadBase, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		exec:       exec,
	}
}

func (f *SessionFactory) Session(accessToken string) ports.RemoteDrive {
	return &Session{factory: f, accessToken: accessToken}
}

type Session struct {
	factory     *SessionFactory
	accessToken string
}

type driveFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     string `json:"size"`
}

type fileList struct {
	Files []driveFile `json:"files"`
}

func (s *Session) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	payload := map[string]any{
		"name":     name,
		"mimeType": folderMimeType,
	}
	if parentID != "" {
		payload["parents"] = []string{parentID}
	}

	var created driveFile
	err := s.execute(ctx, "drive_create_folder", func(ctx context.Context) error {
		return s.postJSON(ctx, s.factory.apiBase+"/files", payload, &created, "drive_create_folder")
	})
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

// FindFolder returns the id of a same-named child folder, or "" when no
// such folder exists. Absence is not an error.
func (s *Session) FindFolder(ctx context.Context, name, parentID string) (string, error) {
	clauses := []string{
		fmt.Sprintf("name = '%s'", escapeQueryValue(name)),
		fmt.Sprintf("mimeType = '%s'", folderMimeType),
		"trashed = false",
	}
	if parentID != "" {
		clauses = append(clauses, fmt.Sprintf("'%s' in parents", escapeQueryValue(parentID)))
	}

	list, err := s.listFiles(ctx, "drive_find_folder", strings.Join(clauses, " and "))
	if err != nil {
		return "", err
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].ID, nil
}

func (s *Session) UploadFile(ctx context.Context, localPath, name, folderID, mimeType string) (string, error) {
	metadata := map[string]any{"name": name}
	if folderID != "" {
		metadata["parents"] = []string{folderID}
	}

	var uploaded driveFile
	err := s.execute(ctx, "drive_upload_file", func(ctx context.Context) error {
		return s.postMultipart(ctx, s.factory.uploadBase+"/files?uploadType=multipart", metadata, localPath, mimeType, &uploaded, "drive_upload_file")
	})
	if err != nil {
		return "", err
	}
	return uploaded.ID, nil
}

func (s *Session) ListFolders(ctx context.Context, parentID string) ([]domain.DriveFolder, error) {
	clauses := []string{
		fmt.Sprintf("mimeType = '%s'", folderMimeType),
		"trashed = false",
	}
	if parentID != "" {
		clauses = append(clauses, fmt.Sprintf("'%s' in parents", escapeQueryValue(parentID)))
	}

	list, err := s.listFiles(ctx, "drive_list_folders", strings.Join(clauses, " and "))
	if err != nil {
		return nil, err
	}

	folders := make([]domain.DriveFolder, 0, len(list.Files))
	for _, f := range list.Files {
		folders = append(folders, domain.DriveFolder{ID: f.ID, Name: f.Name})
	}
	return folders, nil
}

func (s *Session) ListFiles(ctx context.Context, folderID string) ([]domain.DriveFile, error) {
	clauses := []string{
		fmt.Sprintf("'%s' in parents", escapeQueryValue(folderID)),
		fmt.Sprintf("mimeType != '%s'", folderMimeType),
		"trashed = false",
	}

	list, err := s.listFiles(ctx, "drive_list_files", strings.Join(clauses, " and "))
	if err != nil {
		return nil, err
	}

	files := make([]domain.DriveFile, 0, len(list.Files))
	for _, f := range list.Files {
		size, _ := strconv.ParseInt(f.Size, 10, 64)
		files = append(files, domain.DriveFile{ID: f.ID, Name: f.Name, Size: size, MimeType: f.MimeType})
	}
	return files, nil
}

func (s *Session) DeleteFile(ctx context.Context, fileID string) error {
	return s.execute(ctx, "drive_delete_file", func(ctx context.Context) error {
		return s.delete(ctx, s.factory.apiBase+"/files/"+url.PathEscape(fileID), "drive_delete_file")
	})
}

func (s *Session) listFiles(ctx context.Context, operation, query string) (fileList, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("fields", "files(id,name,mimeType,size)")
	params.Set("pageSize", "100")

	var list fileList
	err := s.execute(ctx, operation, func(ctx context.Context) error {
		return s.getJSON(ctx, s.factory.apiBase+"/files?"+params.Encode(), &list, operation)
	})
	if err != nil {
		return fileList{}, err
	}
	return list, nil
}

func (s *Session) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	var err error
	if s.factory.exec != nil {
		err = s.factory.exec.Execute(ctx, operation, fn, classifyDriveError)
	} else {
		err = fn(ctx)
	}
	return wrapTemporaryIfNeeded(operation, err)
}

// Drive queries quote values with single quotes; escape embedded ones.
func escapeQueryValue(value string) string {
	return strings.ReplaceAll(strings.ReplaceAll(value, `\`, `\\`), "'", `\'`)
}
