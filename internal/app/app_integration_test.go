package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/config"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/store"
)

func TestRegisterLoginAndMe(t *testing.T) {
	env := setupTestEnv(t)

	cookie := register(t, env.router, "new@example.com", "Password123!", "New User")

	status, body := request(t, env.router, http.MethodGet, "/api/auth/me", nil, cookie, "")
	if status != http.StatusOK {
		t.Fatalf("expected 200 from /auth/me, got %d (%s)", status, string(body))
	}
	var payload struct {
		User struct {
			Email       string `json:"email"`
			DisplayName string `json:"displayName"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("parse me body: %v", err)
	}
	if payload.User.Email != "new@example.com" {
		t.Fatalf("expected registered email, got %q", payload.User.Email)
	}

	cookie2 := login(t, env.router, "new@example.com", "Password123!")
	if cookie2.Value == "" {
		t.Fatal("login returned empty session cookie")
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	env := setupTestEnv(t)

	_ = register(t, env.router, "dup@example.com", "Password123!", "First")

	payload, _ := json.Marshal(map[string]string{
		"email": "dup@example.com", "password": "Password123!", "displayName": "Second",
	})
	status, body := request(t, env.router, http.MethodPost, "/api/auth/register", payload, nil, "")
	if status != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d (%s)", status, string(body))
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	env := setupTestEnv(t)

	cookie := register(t, env.router, "session@example.com", "Password123!", "Session User")

	status, _ := request(t, env.router, http.MethodGet, "/api/auth/me", nil, cookie, "")
	if status != http.StatusOK {
		t.Fatalf("expected 200 before logout, got %d", status)
	}

	csrf := csrfToken(t, env.router, cookie)
	status, _ = request(t, env.router, http.MethodPost, "/api/auth/logout", nil, cookie, csrf)
	if status != http.StatusNoContent {
		t.Fatalf("expected 204 logout response, got %d", status)
	}

	status, _ = request(t, env.router, http.MethodGet, "/api/auth/me", nil, cookie, "")
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", status)
	}
}

func TestRowsLifecycle(t *testing.T) {
	env := setupTestEnv(t)

	cookie := register(t, env.router, "rows@example.com", "Password123!", "Rows User")
	csrf := csrfToken(t, env.router, cookie)

	payload, _ := json.Marshal(map[string]any{
		"date":           "2025-11-01",
		"timeStart":      "4:25 PM",
		"timeEnd":        "6:38 PM",
		"branches":       27,
		"ordersInput":    23,
		"disputedOrders": 12,
		"platformUsed":   "Shopify",
	})
	status, body := request(t, env.router, http.MethodPost, "/api/rows", payload, cookie, csrf)
	if status != http.StatusOK {
		t.Fatalf("expected 200 saving row, got %d (%s)", status, string(body))
	}

	earlier, _ := json.Marshal(map[string]any{
		"date":       "2025-10-30",
		"totalHours": 1.5,
	})
	status, body = request(t, env.router, http.MethodPost, "/api/rows", earlier, cookie, csrf)
	if status != http.StatusOK {
		t.Fatalf("expected 200 saving second row, got %d (%s)", status, string(body))
	}

	status, body = request(t, env.router, http.MethodGet, "/api/rows", nil, cookie, "")
	if status != http.StatusOK {
		t.Fatalf("expected 200 listing rows, got %d (%s)", status, string(body))
	}
	var listed struct {
		Rows []struct {
			ID         int64   `json:"id"`
			Day        string  `json:"day"`
			Date       string  `json:"date"`
			TotalHours float64 `json:"totalHours"`
		} `json:"rows"`
		Summary struct {
			TotalHours float64 `json:"totalHours"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(body, &listed); err != nil {
		t.Fatalf("parse rows body: %v", err)
	}
	if len(listed.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(listed.Rows))
	}
	if listed.Rows[0].Date != "2025-11-01" || listed.Rows[1].Date != "2025-10-30" {
		t.Fatalf("expected newest-first ordering, got %q then %q", listed.Rows[0].Date, listed.Rows[1].Date)
	}
	if listed.Rows[0].Day != "Sat" {
		t.Fatalf("expected derived day Sat, got %q", listed.Rows[0].Day)
	}
	if listed.Rows[0].TotalHours != 2.17 {
		t.Fatalf("expected hours 2.17 from clock times, got %v", listed.Rows[0].TotalHours)
	}
	if listed.Summary.TotalHours != 3.67 {
		t.Fatalf("expected summary hours 3.67, got %v", listed.Summary.TotalHours)
	}

	rowID := listed.Rows[0].ID
	status, _ = request(t, env.router, http.MethodDelete, "/api/rows/"+itoa(rowID), nil, cookie, csrf)
	if status != http.StatusNoContent {
		t.Fatalf("expected 204 deleting row, got %d", status)
	}

	status, body = request(t, env.router, http.MethodGet, "/api/rows", nil, cookie, "")
	if status != http.StatusOK {
		t.Fatalf("expected 200 listing rows, got %d", status)
	}
	if err := json.Unmarshal(body, &listed); err != nil {
		t.Fatalf("parse rows body: %v", err)
	}
	if len(listed.Rows) != 1 {
		t.Fatalf("expected 1 row after delete, got %d", len(listed.Rows))
	}
	if listed.Rows[0].Date != "2025-10-30" {
		t.Fatalf("expected remaining row 2025-10-30, got %q", listed.Rows[0].Date)
	}
}

func TestRowsAreScopedToUser(t *testing.T) {
	env := setupTestEnv(t)

	cookieA := register(t, env.router, "owner@example.com", "Password123!", "Owner")
	csrfA := csrfToken(t, env.router, cookieA)
	payload, _ := json.Marshal(map[string]any{"date": "2025-11-01", "totalHours": 2})
	status, _ := request(t, env.router, http.MethodPost, "/api/rows", payload, cookieA, csrfA)
	if status != http.StatusOK {
		t.Fatalf("expected 200 saving row, got %d", status)
	}

	cookieB := register(t, env.router, "other@example.com", "Password123!", "Other")
	status, body := request(t, env.router, http.MethodGet, "/api/rows", nil, cookieB, "")
	if status != http.StatusOK {
		t.Fatalf("expected 200 listing rows, got %d", status)
	}
	var listed struct {
		Rows []json.RawMessage `json:"rows"`
	}
	if err := json.Unmarshal(body, &listed); err != nil {
		t.Fatalf("parse rows body: %v", err)
	}
	if len(listed.Rows) != 0 {
		t.Fatalf("expected other user to see no rows, got %d", len(listed.Rows))
	}
}

func TestRowsRejectInvalidInput(t *testing.T) {
	env := setupTestEnv(t)

	cookie := register(t, env.router, "invalid@example.com", "Password123!", "Invalid")
	csrf := csrfToken(t, env.router, cookie)

	payload, _ := json.Marshal(map[string]any{"date": "not a date", "totalHours": 2})
	status, body := request(t, env.router, http.MethodPost, "/api/rows", payload, cookie, csrf)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d (%s)", status, string(body))
	}
	if !strings.Contains(string(body), "no_valid_rows") {
		t.Fatalf("expected no_valid_rows code, got %s", string(body))
	}
}

func TestCSRFRequiredForMutations(t *testing.T) {
	env := setupTestEnv(t)

	cookie := register(t, env.router, "csrf@example.com", "Password123!", "CSRF User")

	payload, _ := json.Marshal(map[string]any{"date": "2025-11-01", "totalHours": 2})
	status, body := request(t, env.router, http.MethodPost, "/api/rows", payload, cookie, "")
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 without CSRF token, got %d (%s)", status, string(body))
	}
}

func TestExportCSV(t *testing.T) {
	env := setupTestEnv(t)

	cookie := register(t, env.router, "export@example.com", "Password123!", "Export User")
	csrf := csrfToken(t, env.router, cookie)

	payload, _ := json.Marshal(map[string]any{
		"date": "2025-11-01", "timeStart": "4:25 PM", "timeEnd": "6:38 PM", "branches": 3,
	})
	status, _ := request(t, env.router, http.MethodPost, "/api/rows", payload, cookie, csrf)
	if status != http.StatusOK {
		t.Fatalf("expected 200 saving row, got %d", status)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/rows/export.csv", nil)
	req.AddCookie(cookie)
	req.RemoteAddr = "127.0.0.1:12345"
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from export, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("expected text/csv content type, got %q", ct)
	}
	out := rec.Body.String()
	if !strings.Contains(out, "Total Hours") || !strings.Contains(out, "2025-11-01") {
		t.Fatalf("export missing expected content: %s", out)
	}
}

type testEnv struct {
	pool   *pgxpool.Pool
	router http.Handler
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("connect test db: %v", err)
	}
	t.Cleanup(pool.Close)

	resetSchema(t, ctx, pool)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		Addr:              ":0",
		DatabaseURL:       databaseURL,
		SessionCookieName: "dg_sess",
		SessionTTL:        12 * time.Hour,
		SecureCookies:     false,
		CSRFEnforce:       true,
		RowsListLimit:     2000,
		Env:               "test",
	}

	router, err := NewRouter(cfg, store.New(pool), logger)
	if err != nil {
		t.Fatalf("create router: %v", err)
	}

	return testEnv{pool: pool, router: router}
}

func resetSchema(t *testing.T, ctx context.Context, pool *pgxpool.Pool) {
	t.Helper()

	if _, err := pool.Exec(ctx, `DROP SCHEMA public CASCADE; CREATE SCHEMA public;`); err != nil {
		t.Fatalf("drop schema: %v", err)
	}

	schemaPath := filepath.Join("..", "..", "sql", "schema.sql")
	if _, err := os.Stat(schemaPath); err != nil {
		schemaPath = filepath.Join("sql", "schema.sql")
	}
	sqlBytes, err := os.ReadFile(schemaPath)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(sqlBytes)); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
}

func register(t *testing.T, router http.Handler, email, password, displayName string) *http.Cookie {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{
		"email": email, "password": password, "displayName": displayName,
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "127.0.0.1:12345"
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		body, _ := io.ReadAll(rec.Result().Body)
		t.Fatalf("register expected 201, got %d with body: %s", rec.Code, string(body))
	}
	return sessionCookie(t, rec)
}

func login(t *testing.T, router http.Handler, email, password string) *http.Cookie {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"email": email, "password": password})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "127.0.0.1:12345"
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		body, _ := io.ReadAll(rec.Result().Body)
		t.Fatalf("login expected 200, got %d with body: %s", rec.Code, string(body))
	}
	return sessionCookie(t, rec)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "dg_sess" && c.Value != "" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func csrfToken(t *testing.T, router http.Handler, session *http.Cookie) string {
	t.Helper()
	status, body := request(t, router, http.MethodGet, "/api/auth/csrf", nil, session, "")
	if status != http.StatusOK {
		t.Fatalf("csrf expected 200, got %d (%s)", status, string(body))
	}
	var payload map[string]string
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("parse csrf body: %v", err)
	}
	return payload["csrfToken"]
}

func request(t *testing.T, router http.Handler, method, path string, payload []byte, session *http.Cookie, csrf string) (int, []byte) {
	t.Helper()
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reqBody)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != nil {
		req.AddCookie(session)
	}
	if csrf != "" {
		req.Header.Set("X-CSRF-Token", csrf)
	}
	req.RemoteAddr = "127.0.0.1:12345"
	router.ServeHTTP(rec, req)
	body, _ := io.ReadAll(rec.Result().Body)
	return rec.Code, body
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
