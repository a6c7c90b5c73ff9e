package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type GoogleToken struct {
	UserID       uuid.UUID
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// UpsertGoogleToken keeps one credential row per user. An empty refresh
// token on re-auth preserves the one already stored, since Google only
// returns it on the first consent.
func (s *Store) UpsertGoogleToken(ctx context.Context, tok GoogleToken) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO google_tokens (user_id, access_token, refresh_token, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = CASE WHEN EXCLUDED.refresh_token = '' THEN google_tokens.refresh_token ELSE EXCLUDED.refresh_token END,
			expires_at = EXCLUDED.expires_at,
			updated_at = now()
	`, tok.UserID, tok.AccessToken, tok.RefreshToken, tok.ExpiresAt)
	return err
}

func (s *Store) GetGoogleToken(ctx context.Context, userID uuid.UUID) (GoogleToken, error) {
	var tok GoogleToken
	err := s.Pool.QueryRow(ctx, `
		SELECT user_id, access_token, COALESCE(refresh_token, ''), expires_at
		FROM google_tokens
		WHERE user_id = $1
	`, userID).Scan(&tok.UserID, &tok.AccessToken, &tok.RefreshToken, &tok.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return GoogleToken{}, ErrNotFound
	}
	if err != nil {
		return GoogleToken{}, err
	}
	return tok, nil
}
