package token

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vouch/internal/auth/models"
	"vouch/pkg/platform/sentinel"
)

// PostgresStore persists token slots in PostgreSQL. The owner email is the
// primary key; Put relies on ON CONFLICT so overwrite never passes through an
// empty slot.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Fetch(ctx context.Context, ownerEmail string) (*models.Token, error) {
	query := `
		SELECT owner_email, value, issued_at, expires_at
		FROM auth_tokens
		WHERE owner_email = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, ownerEmail))
}

func (s *PostgresStore) FetchIfMatches(ctx context.Context, ownerEmail, value string) (*models.Token, error) {
	query := `
		SELECT owner_email, value, issued_at, expires_at
		FROM auth_tokens
		WHERE owner_email = $1 AND value = $2
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, ownerEmail, value))
}

func (s *PostgresStore) Put(ctx context.Context, token *models.Token) error {
	query := `
		INSERT INTO auth_tokens (owner_email, value, issued_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_email) DO UPDATE SET
			value = EXCLUDED.value,
			issued_at = EXCLUDED.issued_at,
			expires_at = EXCLUDED.expires_at
	`
	_, err := s.db.ExecContext(ctx, query, token.Email, token.Value, token.IssuedAt, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("put token: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, ownerEmail string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE owner_email = $1`, ownerEmail)
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

func (s *PostgresStore) scanOne(row *sql.Row) (*models.Token, error) {
	t := &models.Token{}
	err := row.Scan(&t.Email, &t.Value, &t.IssuedAt, &t.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("fetch token: %w", err)
	}
	return t, nil
}
