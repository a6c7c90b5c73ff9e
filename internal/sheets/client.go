package sheets

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/config"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/store"
)

var (
	ErrGoogleDisabled = errors.New("google oauth is not configured")
	ErrNoToken        = errors.New("no google credentials stored for user")
	ErrFetchFailed    = errors.New("sheet fetch failed")
)

var (
	sheetIDPattern = regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`)
	gidPattern     = regexp.MustCompile(`[?&#]gid=(\d+)`)
)

// Client wraps the OAuth flow and spreadsheet CSV export endpoints.
type Client struct {
	oauth    *oauth2.Config
	st       *store.Store
	http     *http.Client
	maxBytes int64
}

func NewClient(cfg config.Config, st *store.Store) *Client {
	c := &Client{
		st:       st,
		http:     &http.Client{Timeout: 30 * time.Second},
		maxBytes: cfg.SheetMaxBytes,
	}
	if cfg.GoogleEnabled() {
		c.oauth = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				"openid",
				"email",
				"profile",
				"https://www.googleapis.com/auth/drive.readonly",
				"https://www.googleapis.com/auth/spreadsheets.readonly",
			},
		}
	}
	return c
}

func (c *Client) Enabled() bool {
	return c.oauth != nil
}

func (c *Client) AuthCodeURL(state string) string {
	if c.oauth == nil {
		return ""
	}
	return c.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Identity is the subset of the OpenID token claims the app needs.
type Identity struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, Identity, error) {
	if c.oauth == nil {
		return nil, Identity{}, ErrGoogleDisabled
	}
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, Identity{}, fmt.Errorf("exchange code: %w", err)
	}
	id, err := parseIDToken(tok)
	if err != nil {
		return nil, Identity{}, err
	}
	return tok, id, nil
}

func parseIDToken(tok *oauth2.Token) (Identity, error) {
	raw, _ := tok.Extra("id_token").(string)
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return Identity{}, errors.New("missing id_token in oauth response")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return Identity{}, fmt.Errorf("decode id_token: %w", err)
	}
	var id Identity
	if err := json.Unmarshal(payload, &id); err != nil {
		return Identity{}, fmt.Errorf("parse id_token claims: %w", err)
	}
	if id.Email == "" {
		return Identity{}, errors.New("id_token carries no email claim")
	}
	return id, nil
}

func (c *Client) SaveToken(ctx context.Context, userID uuid.UUID, tok *oauth2.Token) error {
	return c.st.UpsertGoogleToken(ctx, store.GoogleToken{
		UserID:       userID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	})
}

// ParseSheetURL pulls the spreadsheet id and tab gid out of a share URL.
// A bare spreadsheet id is accepted as-is, and gid defaults to 0.
func ParseSheetURL(raw string) (sheetID, gid string, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", false
	}
	gid = "0"
	if m := gidPattern.FindStringSubmatch(raw); m != nil {
		gid = m[1]
	}
	if m := sheetIDPattern.FindStringSubmatch(raw); m != nil {
		return m[1], gid, true
	}
	if !strings.ContainsAny(raw, "/?#") {
		return raw, gid, true
	}
	return "", "", false
}

// FetchSheetCSV exports the sheet tab as CSV using the user's stored
// credentials, refreshing the access token when it has expired.
func (c *Client) FetchSheetCSV(ctx context.Context, userID uuid.UUID, sheetID, gid string) ([]byte, error) {
	if c.oauth == nil {
		return nil, ErrGoogleDisabled
	}
	stored, err := c.st.GetGoogleToken(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoToken
		}
		return nil, err
	}

	tok := &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		Expiry:       stored.ExpiresAt,
	}
	source := c.oauth.TokenSource(ctx, tok)
	fresh, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if fresh.AccessToken != stored.AccessToken {
		_ = c.SaveToken(ctx, userID, fresh)
	}

	url := exportURL(sheetID, gid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	fresh.SetAuthHeader(req)
	return c.doFetch(req)
}

// FetchPublicCSV reads a link-shared sheet without credentials.
func (c *Client) FetchPublicCSV(ctx context.Context, sheetID, gid string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL(sheetID, gid), nil)
	if err != nil {
		return nil, err
	}
	return c.doFetch(req)
}

func (c *Client) doFetch(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}
	limit := c.maxBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrFetchFailed, limit)
	}
	return body, nil
}

func exportURL(sheetID, gid string) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv&gid=%s", sheetID, gid)
}
