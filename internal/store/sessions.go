package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SessionPrincipal struct {
	SessionID   uuid.UUID
	UserID      uuid.UUID
	Email       string
	DisplayName string
	CSRFToken   string
	ExpiresAt   time.Time
}

func (s *Store) CreateSession(ctx context.Context, userID uuid.UUID, tokenHash, csrfToken string, expiresAt time.Time) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO sessions (user_id, token_hash, csrf_token, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, userID, tokenHash, csrfToken, expiresAt).Scan(&id)
	return id, err
}

func (s *Store) GetSessionPrincipalByTokenHash(ctx context.Context, tokenHash string) (SessionPrincipal, error) {
	var p SessionPrincipal
	err := s.Pool.QueryRow(ctx, `
		SELECT s.id, s.user_id, u.email, u.display_name, s.csrf_token, s.expires_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token_hash = $1
		  AND s.revoked_at IS NULL
		  AND s.expires_at > now()
	`, tokenHash).Scan(&p.SessionID, &p.UserID, &p.Email, &p.DisplayName, &p.CSRFToken, &p.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SessionPrincipal{}, ErrNotFound
	}
	if err != nil {
		return SessionPrincipal{}, err
	}
	return p, nil
}

func (s *Store) TouchSession(ctx context.Context, sessionID uuid.UUID) error {
	_, err := s.Pool.Exec(ctx, `UPDATE sessions SET last_seen_at = now() WHERE id = $1`, sessionID)
	return err
}

func (s *Store) RevokeSessionByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := s.Pool.Exec(ctx, `
		UPDATE sessions SET revoked_at = now()
		WHERE token_hash = $1 AND revoked_at IS NULL
	`, tokenHash)
	return err
}
