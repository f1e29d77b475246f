package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rmarchan/docuvault/internal/core/domain"
	"github.com/rmarchan/docuvault/internal/core/ports"
)

// DocumentCRUD serves the plain read/update/delete surface over filed
// documents. Ownership is enforced in the repository queries; a document
// owned by someone else is indistinguishable from a missing one.
type DocumentCRUD struct {
	repo ports.DocumentRepository
}

func NewDocumentCRUD(repo ports.DocumentRepository) *DocumentCRUD {
	return &DocumentCRUD{repo: repo}
}

func (s *DocumentCRUD) List(ctx context.Context, userID string) ([]domain.Document, error) {
	docs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (s *DocumentCRUD) Get(ctx context.Context, userID, id string) (*domain.Document, error) {
	doc, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (s *DocumentCRUD) Update(ctx context.Context, userID, id string, update domain.DocumentUpdate) (*domain.Document, error) {
	doc, err := s.repo.Update(ctx, userID, id, update)
	if err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	return doc, nil
}

func (s *DocumentCRUD) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (s *DocumentCRUD) Categories(ctx context.Context, userID string) ([]string, error) {
	categories, err := s.repo.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *DocumentCRUD) Expiring(ctx context.Context, userID string, within time.Duration) ([]domain.Document, error) {
	if within <= 0 {
		within = 30 * 24 * time.Hour
	}
	docs, err := s.repo.ListExpiringBefore(ctx, userID, time.Now().Add(within))
	if err != nil {
		return nil, fmt.Errorf("list expiring documents: %w", err)
	}
	return docs, nil
}

func (s *DocumentCRUD) Search(ctx context.Context, userID, query string) ([]domain.Document, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search documents", fmt.Errorf("empty query"))
	}
	docs, err := s.repo.Search(ctx, userID, query)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	return docs, nil
}
