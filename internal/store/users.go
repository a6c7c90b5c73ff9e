package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("not found")

type User struct {
	ID           uuid.UUID
	Email        string
	DisplayName  string
	PasswordHash string
	GoogleSub    string
	CreatedAt    time.Time
}

func (s *Store) CreateUser(ctx context.Context, email, displayName, passwordHash string) (User, error) {
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO users (email, display_name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, email, display_name, password_hash, COALESCE(google_sub, ''), created_at
	`, strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(displayName), passwordHash)
	return scanUser(row)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, email, display_name, password_hash, COALESCE(google_sub, ''), created_at
		FROM users
		WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(email)))
	return scanUser(row)
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, email, display_name, password_hash, COALESCE(google_sub, ''), created_at
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

// UpsertGoogleUser creates a user on first Google sign-in and links the
// Google subject to an existing account when the email already exists.
func (s *Store) UpsertGoogleUser(ctx context.Context, email, displayName, googleSub string) (User, error) {
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO users (email, display_name, password_hash, google_sub)
		VALUES ($1, $2, '', $3)
		ON CONFLICT (email) DO UPDATE SET
			google_sub = EXCLUDED.google_sub,
			display_name = CASE WHEN users.display_name = '' THEN EXCLUDED.display_name ELSE users.display_name END
		RETURNING id, email, display_name, password_hash, COALESCE(google_sub, ''), created_at
	`, strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(displayName), googleSub)
	return scanUser(row)
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.GoogleSub, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}
