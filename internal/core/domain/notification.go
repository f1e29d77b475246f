package domain

import "time"

type NotificationKind string

const (
	NotificationDocumentFiled   NotificationKind = "document_filed"
	NotificationDocumentExpires NotificationKind = "document_expires"
)

type Notification struct {
	ID         string           `json:"id"`
	UserID     string           `json:"user_id"`
	Kind       NotificationKind `json:"kind"`
	Title      string           `json:"title"`
	Body       string           `json:"body,omitempty"`
	DocumentID string           `json:"document_id,omitempty"`
	IsRead     bool             `json:"is_read"`
	CreatedAt  time.Time        `json:"created_at"`
}

// DocumentFiledEvent is the payload published after a successful
// ingestion and consumed by the notification worker.
type DocumentFiledEvent struct {
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	DocumentID string    `json:"document_id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	FiledAt    time.Time `json:"filed_at"`
}
