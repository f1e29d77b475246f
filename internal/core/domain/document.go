package domain

import "time"

// Document is the persisted record of a filed document. The embedded
// Analysis fields are written once at ingestion and are read-only after.
type Document struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`

	FileURL  string `json:"file_url,omitempty"`
	FileName string `json:"file_name,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
	FileType string `json:"file_type,omitempty"`

	DriveFileID   string `json:"drive_file_id,omitempty"`
	DriveFolderID string `json:"drive_folder_id,omitempty"`

	Tags           []string            `json:"tags,omitempty"`
	Metadata       map[string][]string `json:"metadata,omitempty"`
	Confidence     float64             `json:"confidence,omitempty"`
	ExpiryDate     string              `json:"expiry_date,omitempty"`
	DocumentNumber string              `json:"document_number,omitempty"`
	Organization   string              `json:"organization,omitempty"`

	IsArchived bool      `json:"is_archived"`
	IsFavorite bool      `json:"is_favorite"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DocumentUpdate carries a partial update; nil fields are left untouched.
type DocumentUpdate struct {
	Name        *string
	Category    *string
	Description *string
	Tags        []string
	IsArchived  *bool
	IsFavorite  *bool
}

// Analysis is the outcome of the classification pipeline for one file.
// It is embedded into the Document record, never stored on its own.
type Analysis struct {
	SuggestedCategory string              `json:"suggested_category"`
	Confidence        float64             `json:"confidence_score"`
	ExtractedText     string              `json:"extracted_text"`
	Tags              []string            `json:"tags"`
	Metadata          map[string][]string `json:"metadata"`
	ExpiryDate        string              `json:"expiry_date,omitempty"`
	DocumentNumber    string              `json:"document_number,omitempty"`
	Organization      string              `json:"organization,omitempty"`
}

// DegradedAnalysis is returned whenever extraction blows up. Ingestion
// keeps going with it; an analysis failure is never fatal to filing.
func DegradedAnalysis() Analysis {
	return Analysis{
		SuggestedCategory: "General",
		Confidence:        0.1,
		Tags:              []string{"error"},
		Metadata:          map[string][]string{},
	}
}
