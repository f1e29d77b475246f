package domain

// DriveFolder and DriveFile mirror the subset of remote storage metadata
// the API exposes when browsing the filed tree.
type DriveFolder struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	FilesCount int    `json:"files_count,omitempty"`
}

type DriveFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Size     int64  `json:"size,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}
