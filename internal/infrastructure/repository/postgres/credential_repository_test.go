package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/rmarchan/docuvault/internal/core/domain"
)

func newCredentialRepoWithMock(t *testing.T) (*CredentialRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &CredentialRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestGetCredentialReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newCredentialRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT user_id, access_token, refresh_token").
		WithArgs("user-1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "user-1")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found kind, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetCredentialTreatsNullExpiryAsZeroTime(t *testing.T) {
	repo, mock, done := newCredentialRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT user_id, access_token, refresh_token").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "access_token", "refresh_token", "expires_at", "scopes", "created_at", "updated_at",
		}).AddRow("user-1", "at", "rt", nil, []byte(`["scope.a"]`), now, now))

	cred, err := repo.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !cred.ExpiresAt.IsZero() {
		t.Fatalf("expected zero expiry, got %v", cred.ExpiresAt)
	}
	if cred.Expired(now.Add(100 * time.Hour)) {
		t.Fatalf("credential without expiry must never count as expired")
	}
}

func TestUpdateTokensStoresZeroExpiryAsNull(t *testing.T) {
	repo, mock, done := newCredentialRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE oauth_credentials").
		WithArgs("user-1", "fresh", sql.NullTime{}, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateTokens(context.Background(), "user-1", "fresh", time.Time{}); err != nil {
		t.Fatalf("UpdateTokens() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteCredentialReturnsNotFoundWhenAbsent(t *testing.T) {
	repo, mock, done := newCredentialRepoWithMock(t)
	defer done()

	mock.ExpectExec("DELETE FROM oauth_credentials").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "user-1")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found kind, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
