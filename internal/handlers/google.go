package handlers

import (
	"net/http"
	"net/url"

	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/audit"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/auth"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/httpx"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/middleware"
)

func (s *Server) GetAuthGoogleStart(w http.ResponseWriter, r *http.Request) {
	if !s.Sheets.Enabled() {
		httpx.WriteError(w, r, http.StatusServiceUnavailable, "google_disabled", "Google sign-in is not configured", nil)
		return
	}

	state, err := auth.GenerateToken()
	if err != nil {
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to create state token", nil)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.Config.SecureCookies,
		MaxAge:   600,
	})

	http.Redirect(w, r, s.Sheets.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) GetAuthGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if !s.Sheets.Enabled() {
		httpx.WriteError(w, r, http.StatusServiceUnavailable, "google_disabled", "Google sign-in is not configured", nil)
		return
	}

	query := r.URL.Query()
	if errCode := query.Get("error"); errCode != "" {
		s.redirectToFrontend(w, r, url.Values{"auth_error": {errCode}})
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != query.Get("state") {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_state", "OAuth state mismatch", nil)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1})

	code := query.Get("code")
	if code == "" {
		httpx.WriteError(w, r, http.StatusBadRequest, "missing_code", "Authorization code is required", nil)
		return
	}

	token, identity, err := s.Sheets.Exchange(r.Context(), code)
	if err != nil {
		s.Logger.Error("google code exchange failed", "error", err)
		httpx.WriteError(w, r, http.StatusBadGateway, "exchange_failed", "Failed to exchange authorization code", nil)
		return
	}

	user, err := s.Store.UpsertGoogleUser(r.Context(), identity.Email, identity.Name, identity.Subject)
	if err != nil {
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to save user", nil)
		return
	}

	if err := s.Sheets.SaveToken(r.Context(), user.ID, token); err != nil {
		s.Logger.Error("failed to persist google token", "error", err, "userId", user.ID)
	}

	if err := s.startSession(w, r, user); err != nil {
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to create session", nil)
		return
	}

	userID := user.ID
	_ = s.Audit.Log(r.Context(), audit.Entry{
		UserID:     &userID,
		Action:     "auth.google_login",
		EntityType: "session",
		RequestID:  middleware.RequestIDFromContext(r.Context()),
	})

	s.redirectToFrontend(w, r, nil)
}

func (s *Server) redirectToFrontend(w http.ResponseWriter, r *http.Request, params url.Values) {
	target := s.Config.FrontendOrigin
	if target == "" {
		target = "/"
	}
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	http.Redirect(w, r, target, http.StatusFound)
}
