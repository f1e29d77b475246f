package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/rmarchan/docuvault/internal/core/domain"
)

func newDocumentRepoWithMock(t *testing.T) (*DocumentRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &DocumentRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestGetByIDScopesByOwner(t *testing.T) {
	repo, mock, done := newDocumentRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, user_id, name, category").
		WithArgs("doc-1", "other-user").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "other-user", "doc-1")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found kind, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteReturnsNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newDocumentRepoWithMock(t)
	defer done()

	mock.ExpectExec("DELETE FROM documents").
		WithArgs("missing", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "user-1", "missing")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found kind, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateAppliesOnlySetFields(t *testing.T) {
	repo, mock, done := newDocumentRepoWithMock(t)
	defer done()

	name := "renamed"
	favorite := true

	mock.ExpectExec(`UPDATE documents SET updated_at = \$3, name = \$4, is_favorite = \$5`).
		WithArgs("doc-1", "user-1", sqlmock.AnyArg(), name, favorite).
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now().UTC()
	columns := []string{
		"id", "user_id", "name", "category", "description",
		"file_url", "file_name", "file_size", "file_type",
		"drive_file_id", "drive_folder_id", "tags", "metadata",
		"confidence", "expiry_date", "document_number", "organization",
		"is_archived", "is_favorite", "created_at", "updated_at",
	}
	mock.ExpectQuery("SELECT id, user_id, name, category").
		WithArgs("doc-1", "user-1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"doc-1", "user-1", name, "Factura", "",
			"", "", int64(0), "",
			"", "", []byte(`["factura"]`), []byte(`{}`),
			0.8, "", "", "",
			false, favorite, now, now,
		))

	doc, err := repo.Update(context.Background(), "user-1", "doc-1", domain.DocumentUpdate{
		Name:       &name,
		IsFavorite: &favorite,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if doc.Name != "renamed" || !doc.IsFavorite {
		t.Fatalf("doc = %+v", doc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateReturnsNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newDocumentRepoWithMock(t)
	defer done()

	name := "renamed"
	mock.ExpectExec("UPDATE documents").
		WithArgs("missing", "user-1", sqlmock.AnyArg(), name).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Update(context.Background(), "user-1", "missing", domain.DocumentUpdate{Name: &name})
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found kind, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestParseExpiryHandlesDayFirstDates(t *testing.T) {
	cases := []struct {
		value string
		valid bool
	}{
		{"31/12/2025", true},
		{"1-2-2026", true},
		{"2026-02-01", true},
		{"pronto", false},
		{"", false},
	}
	for _, tc := range cases {
		got := parseExpiry(tc.value)
		if got.Valid != tc.valid {
			t.Fatalf("parseExpiry(%q).Valid = %v, want %v", tc.value, got.Valid, tc.valid)
		}
	}
	parsed := parseExpiry("31/12/2025")
	if parsed.Time.Day() != 31 || parsed.Time.Month() != time.December {
		t.Fatalf("parseExpiry day-first parse = %v", parsed.Time)
	}
}
