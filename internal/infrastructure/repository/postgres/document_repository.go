package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rmarchan/docuvault/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, user_id, name, category, description, file_url, file_name, file_size, file_type, drive_file_id, drive_folder_id, tags, metadata, confidence, expiry_date, document_number, organization, is_archived, is_favorite, created_at, updated_at`

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	tagsJSON, err := json.Marshal(doc.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO documents (`+documentColumns+`, expiry_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
`,
		doc.ID, doc.UserID, doc.Name, doc.Category, doc.Description,
		doc.FileURL, doc.FileName, doc.FileSize, doc.FileType,
		doc.DriveFileID, doc.DriveFolderID, tagsJSON, metadataJSON,
		doc.Confidence, doc.ExpiryDate, doc.DocumentNumber, doc.Organization,
		doc.IsArchived, doc.IsFavorite, doc.CreatedAt, doc.UpdatedAt,
		parseExpiry(doc.ExpiryDate),
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, userID, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1 AND user_id = $2
`, id, userID)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get document", err)
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) ListByUser(ctx context.Context, userID string) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE user_id = $1
ORDER BY created_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func (r *DocumentRepository) Update(ctx context.Context, userID, id string, update domain.DocumentUpdate) (*domain.Document, error) {
	assignments := []string{"updated_at = $3"}
	args := []any{id, userID, time.Now().UTC()}

	appendSet := func(column string, value any) {
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Name != nil {
		appendSet("name", *update.Name)
	}
	if update.Category != nil {
		appendSet("category", *update.Category)
	}
	if update.Description != nil {
		appendSet("description", *update.Description)
	}
	if update.Tags != nil {
		tagsJSON, err := json.Marshal(update.Tags)
		if err != nil {
			return nil, fmt.Errorf("marshal tags: %w", err)
		}
		appendSet("tags", tagsJSON)
	}
	if update.IsArchived != nil {
		appendSet("is_archived", *update.IsArchived)
	}
	if update.IsFavorite != nil {
		appendSet("is_favorite", *update.IsFavorite)
	}

	query := fmt.Sprintf(`UPDATE documents SET %s WHERE id = $1 AND user_id = $2`, strings.Join(assignments, ", "))
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update document rows affected: %w", err)
	}
	if affected == 0 {
		return nil, domain.WrapError(domain.ErrNotFound, "update document", sql.ErrNoRows)
	}

	return r.GetByID(ctx, userID, id)
}

func (r *DocumentRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "delete document", sql.ErrNoRows)
	}
	return nil
}

func (r *DocumentRepository) ListCategories(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT DISTINCT category
FROM documents
WHERE user_id = $1
ORDER BY category
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func (r *DocumentRepository) ListExpiringBefore(ctx context.Context, userID string, cutoff time.Time) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE user_id = $1 AND expiry_at IS NOT NULL AND expiry_at <= $2
ORDER BY expiry_at
`, userID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expiring documents: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func (r *DocumentRepository) Search(ctx context.Context, userID, query string) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE user_id = $1 AND (
	name ILIKE '%' || $2 || '%'
	OR description ILIKE '%' || $2 || '%'
	OR category ILIKE '%' || $2 || '%'
	OR document_number ILIKE '%' || $2 || '%'
	OR organization ILIKE '%' || $2 || '%'
	OR tags::text ILIKE '%' || $2 || '%'
)
ORDER BY created_at DESC
`, userID, query)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var tagsRaw, metadataRaw []byte

	err := row.Scan(
		&doc.ID, &doc.UserID, &doc.Name, &doc.Category, &doc.Description,
		&doc.FileURL, &doc.FileName, &doc.FileSize, &doc.FileType,
		&doc.DriveFileID, &doc.DriveFolderID, &tagsRaw, &metadataRaw,
		&doc.Confidence, &doc.ExpiryDate, &doc.DocumentNumber, &doc.Organization,
		&doc.IsArchived, &doc.IsFavorite, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(tagsRaw, &doc.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	if err := json.Unmarshal(metadataRaw, &doc.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return &doc, nil
}

func collectDocuments(rows *sql.Rows) ([]domain.Document, error) {
	var documents []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return documents, nil
}

var expiryLayouts = []string{"02/01/2006", "2/1/2006", "02-01-2006", "2-1-2006", "2006-01-02"}

// parseExpiry turns the extracted day-first expiry string into a sortable
// timestamp; unparseable values are stored as NULL and simply never show
// up in expiry queries.
func parseExpiry(value string) sql.NullTime {
	value = strings.TrimSpace(value)
	if value == "" {
		return sql.NullTime{}
	}
	for _, layout := range expiryLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return sql.NullTime{Time: parsed.UTC(), Valid: true}
		}
	}
	return sql.NullTime{}
}
