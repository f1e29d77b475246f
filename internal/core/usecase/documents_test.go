package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rmarchan/docuvault/internal/core/domain"
)

type documentRepoSpy struct {
	docs []domain.Document

	searchQuery    string
	searchCalls    int
	expiringCutoff time.Time
	deleted        bool
}

func (s *documentRepoSpy) Create(context.Context, *domain.Document) error {
	return errors.New("not implemented")
}

func (s *documentRepoSpy) GetByID(_ context.Context, userID, id string) (*domain.Document, error) {
	for i := range s.docs {
		if s.docs[i].UserID == userID && s.docs[i].ID == id {
			return &s.docs[i], nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get document", errors.New("no rows"))
}

func (s *documentRepoSpy) ListByUser(_ context.Context, userID string) ([]domain.Document, error) {
	var out []domain.Document
	for _, doc := range s.docs {
		if doc.UserID == userID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *documentRepoSpy) Update(context.Context, string, string, domain.DocumentUpdate) (*domain.Document, error) {
	return nil, errors.New("not implemented")
}

func (s *documentRepoSpy) Delete(_ context.Context, _, _ string) error {
	s.deleted = true
	return nil
}

func (s *documentRepoSpy) ListCategories(context.Context, string) ([]string, error) {
	return []string{"Contrato", "Factura"}, nil
}

func (s *documentRepoSpy) ListExpiringBefore(_ context.Context, _ string, cutoff time.Time) ([]domain.Document, error) {
	s.expiringCutoff = cutoff
	return nil, nil
}

func (s *documentRepoSpy) Search(_ context.Context, _, query string) ([]domain.Document, error) {
	s.searchCalls++
	s.searchQuery = query
	return nil, nil
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	repo := &documentRepoSpy{}
	svc := NewDocumentCRUD(repo)

	_, err := svc.Search(context.Background(), "user-1", "   ")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid-input error, got %v", err)
	}
	if repo.searchCalls != 0 {
		t.Fatalf("expected no repository call for empty query")
	}
}

func TestSearchTrimsQuery(t *testing.T) {
	repo := &documentRepoSpy{}
	svc := NewDocumentCRUD(repo)

	if _, err := svc.Search(context.Background(), "user-1", "  luz  "); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if repo.searchQuery != "luz" {
		t.Fatalf("expected trimmed query, got %q", repo.searchQuery)
	}
}

func TestExpiringDefaultsToThirtyDays(t *testing.T) {
	repo := &documentRepoSpy{}
	svc := NewDocumentCRUD(repo)

	before := time.Now()
	if _, err := svc.Expiring(context.Background(), "user-1", 0); err != nil {
		t.Fatalf("Expiring() error = %v", err)
	}
	window := repo.expiringCutoff.Sub(before)
	if window < 29*24*time.Hour || window > 31*24*time.Hour {
		t.Fatalf("expected roughly 30-day default window, got %v", window)
	}
}

func TestGetScopesByOwner(t *testing.T) {
	repo := &documentRepoSpy{docs: []domain.Document{{ID: "doc-1", UserID: "user-1"}}}
	svc := NewDocumentCRUD(repo)

	if _, err := svc.Get(context.Background(), "other-user", "doc-1"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found for another owner's document, got %v", err)
	}
	if doc, err := svc.Get(context.Background(), "user-1", "doc-1"); err != nil || doc.ID != "doc-1" {
		t.Fatalf("expected owner to read own document, got %v / %v", doc, err)
	}
}
