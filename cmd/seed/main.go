package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/auth"
)

func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	email := envOrDefault("SEED_USER_EMAIL", "demo@local.dagaz")
	password := envOrDefault("SEED_USER_PASSWORD", "Demo12345!")
	displayName := envOrDefault("SEED_USER_NAME", "Demo User")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	var userID uuid.UUID
	if err := pool.QueryRow(ctx, `
		INSERT INTO users (email, display_name, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			password_hash = EXCLUDED.password_hash
		RETURNING id
	`, email, displayName, passwordHash).Scan(&userID); err != nil {
		log.Fatalf("upsert user: %v", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO session_rows (
			user_id, day, date, time_start, time_end, total_hours, branches,
			orders_input, disputed_orders, emails_followed_up, updated_orders,
			videos_uploaded, platform_used, remarks
		)
		SELECT $1, 'Sat', '2025-11-01', '4:25 PM', '6:38 PM', 2.17, 27,
			23, 12, 7, 30, 15, 'Shopify', 'seeded row'
		WHERE NOT EXISTS (
			SELECT 1 FROM session_rows WHERE user_id = $1
		)
	`, userID)
	if err != nil {
		log.Fatalf("seed rows: %v", err)
	}

	fmt.Printf("seeded user %s (%s)\n", email, userID)
}

func envOrDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
