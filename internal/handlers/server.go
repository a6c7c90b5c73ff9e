package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/audit"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/auth"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/config"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/httpx"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/middleware"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/sheets"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/store"
)

const oauthStateCookie = "dg_oauth_state"

type Server struct {
	Config config.Config
	Store  *store.Store
	Audit  *audit.Logger
	Sheets *sheets.Client
	Logger *slog.Logger
}

func NewServer(cfg config.Config, st *store.Store, auditLogger *audit.Logger, sheetsClient *sheets.Client, logger *slog.Logger) *Server {
	return &Server{Config: cfg, Store: st, Audit: auditLogger, Sheets: sheetsClient, Logger: logger}
}

func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

func (s *Server) PostAuthRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Malformed JSON body", nil)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_email", "A valid email address is required", nil)
		return
	}
	if len(req.Password) < 8 {
		httpx.WriteError(w, r, http.StatusBadRequest, "weak_password", "Password must be at least 8 characters", nil)
		return
	}

	if _, err := s.Store.GetUserByEmail(r.Context(), req.Email); err == nil {
		httpx.WriteError(w, r, http.StatusConflict, "email_taken", "An account with this email already exists", nil)
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to check email", nil)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to hash password", nil)
		return
	}

	user, err := s.Store.CreateUser(r.Context(), req.Email, req.DisplayName, hash)
	if err != nil {
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to create user", nil)
		return
	}

	userID := user.ID
	_ = s.Audit.Log(r.Context(), audit.Entry{
		UserID:     &userID,
		Action:     "auth.register",
		EntityType: "user",
		EntityID:   userID.String(),
		RequestID:  middleware.RequestIDFromContext(r.Context()),
	})

	if err := s.startSession(w, r, user); err != nil {
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to create session", nil)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"user": userResponse{ID: user.ID.String(), Email: user.Email, DisplayName: user.DisplayName},
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) PostAuthLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Malformed JSON body", nil)
		return
	}

	user, err := s.Store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, r, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password", nil)
			return
		}
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to load user", nil)
		return
	}
	if user.PasswordHash == "" {
		httpx.WriteError(w, r, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password", nil)
		return
	}

	ok, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Password verification failed", nil)
		return
	}
	if !ok {
		httpx.WriteError(w, r, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password", nil)
		return
	}

	if old, err := r.Cookie(s.Config.SessionCookieName); err == nil && old.Value != "" {
		_ = s.Store.RevokeSessionByTokenHash(r.Context(), auth.HashToken(old.Value))
	}

	if err := s.startSession(w, r, user); err != nil {
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to create session", nil)
		return
	}

	userID := user.ID
	_ = s.Audit.Log(r.Context(), audit.Entry{
		UserID:     &userID,
		Action:     "auth.login",
		EntityType: "session",
		RequestID:  middleware.RequestIDFromContext(r.Context()),
	})

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"user": userResponse{ID: user.ID.String(), Email: user.Email, DisplayName: user.DisplayName},
	})
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, user store.User) error {
	sessionToken, err := auth.GenerateToken()
	if err != nil {
		return err
	}
	csrfToken, err := auth.GenerateToken()
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(s.Config.SessionTTL)
	if _, err := s.Store.CreateSession(r.Context(), user.ID, auth.HashToken(sessionToken), csrfToken, expiresAt); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.Config.SessionCookieName,
		Value:    sessionToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.Config.SecureCookies,
		Expires:  expiresAt,
	})
	return nil
}

func (s *Server) PostAuthLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.Config.SessionCookieName); err == nil && cookie.Value != "" {
		if err := s.Store.RevokeSessionByTokenHash(r.Context(), auth.HashToken(cookie.Value)); err != nil {
			httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to revoke session", nil)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.Config.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.Config.SecureCookies,
		MaxAge:   -1,
	})

	if actor, ok := middleware.ActorFromContext(r.Context()); ok {
		userID := actor.UserID
		_ = s.Audit.Log(r.Context(), audit.Entry{
			UserID:     &userID,
			Action:     "auth.logout",
			EntityType: "session",
			EntityID:   actor.SessionID.String(),
			RequestID:  middleware.RequestIDFromContext(r.Context()),
		})
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) GetAuthMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"user": userResponse{ID: actor.UserID.String(), Email: actor.Email, DisplayName: actor.DisplayName},
	})
}

func (s *Server) GetAuthCsrf(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"csrfToken": actor.CSRFToken})
}
