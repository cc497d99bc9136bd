package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vouch/internal/auth/models"
	"vouch/pkg/platform/sentinel"
)

// PostgresStore persists identity records in PostgreSQL. The store is pure
// I/O; uniqueness is enforced by the primary key so Create stays atomic under
// concurrent registration.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, first_name, last_name, password_digest, registered_at, last_active_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query,
		user.Email, user.FirstName, user.LastName, user.PasswordDigest, user.RegisteredAt, user.LastActiveAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT email, first_name, last_name, password_digest, registered_at, last_active_at
		FROM users
		WHERE email = $1
	`
	u := &models.User{}
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&u.Email, &u.FirstName, &u.LastName, &u.PasswordDigest, &u.RegisteredAt, &u.LastActiveAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, password_digest = $4, last_active_at = $5
		WHERE email = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		user.Email, user.FirstName, user.LastName, user.PasswordDigest, user.LastActiveAt)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
