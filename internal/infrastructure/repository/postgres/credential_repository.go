package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rmarchan/docuvault/internal/core/domain"
)

type CredentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) Get(ctx context.Context, userID string) (*domain.Credential, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT user_id, access_token, refresh_token, expires_at, scopes, created_at, updated_at
FROM oauth_credentials
WHERE user_id = $1
`, userID)

	var cred domain.Credential
	var expiresAt sql.NullTime
	var scopesRaw []byte

	err := row.Scan(&cred.UserID, &cred.AccessToken, &cred.RefreshToken, &expiresAt, &scopesRaw, &cred.CreatedAt, &cred.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get credential", err)
		}
		return nil, fmt.Errorf("scan credential: %w", err)
	}

	if expiresAt.Valid {
		cred.ExpiresAt = expiresAt.Time
	}
	if err := json.Unmarshal(scopesRaw, &cred.Scopes); err != nil {
		return nil, fmt.Errorf("unmarshal scopes: %w", err)
	}
	return &cred, nil
}

// Put creates or replaces the user's credential. One live record per
// user; a repeated consent flow overwrites the previous grant.
func (r *CredentialRepository) Put(ctx context.Context, cred *domain.Credential) error {
	scopesJSON, err := json.Marshal(cred.Scopes)
	if err != nil {
		return fmt.Errorf("marshal scopes: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO oauth_credentials (user_id, access_token, refresh_token, expires_at, scopes, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (user_id) DO UPDATE SET
	access_token = EXCLUDED.access_token,
	refresh_token = EXCLUDED.refresh_token,
	expires_at = EXCLUDED.expires_at,
	scopes = EXCLUDED.scopes,
	updated_at = EXCLUDED.updated_at
`,
		cred.UserID, cred.AccessToken, cred.RefreshToken, nullableTime(cred.ExpiresAt),
		scopesJSON, cred.CreatedAt, cred.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}
	return nil
}

// UpdateTokens persists the outcome of a refresh: only the access token
// and its expiry change, the refresh token stays as granted.
func (r *CredentialRepository) UpdateTokens(ctx context.Context, userID, accessToken string, expiresAt time.Time) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE oauth_credentials
SET access_token = $2, expires_at = $3, updated_at = $4
WHERE user_id = $1
`, userID, accessToken, nullableTime(expiresAt), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update credential tokens: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update credential rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "update credential tokens", sql.ErrNoRows)
	}
	return nil
}

func (r *CredentialRepository) Delete(ctx context.Context, userID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM oauth_credentials WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete credential rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "delete credential", sql.ErrNoRows)
	}
	return nil
}

// nullableTime stores the zero time as NULL: a missing provider expiry
// must not come back as year one.
func nullableTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
