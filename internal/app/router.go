package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	openapimiddleware "github.com/oapi-codegen/nethttp-middleware"

	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/audit"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/config"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/handlers"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/httpx"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/middleware"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/sheets"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/store"
)

func NewRouter(cfg config.Config, st *store.Store, logger *slog.Logger) (http.Handler, error) {
	specPath := filepath.Join("openapi.yaml")
	if _, err := os.Stat(specPath); err != nil {
		specPath = filepath.Join("..", "..", "openapi.yaml")
	}
	if _, err := os.Stat(specPath); err != nil {
		return nil, fmt.Errorf("openapi spec not found: %w", err)
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(specPath)
	if err != nil {
		return nil, fmt.Errorf("load openapi spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate openapi spec: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders(cfg.Env))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.LimitBodyBytes(cfg.APIMaxBodyBytes, []middleware.BodyLimitOverride{
		{PathPrefix: "/rows", MaxBytes: 4 << 20},
	}))

	api := chi.NewRouter()
	api.Use(openapimiddleware.OapiRequestValidatorWithOptions(doc, &openapimiddleware.Options{
		SilenceServersWarning: true,
		ErrorHandler: func(w http.ResponseWriter, message string, statusCode int) {
			requestID := w.Header().Get("X-Request-Id")
			httpx.WriteJSON(w, statusCode, httpx.ErrorEnvelope{
				Error:     httpx.ErrorBody{Code: "validation_error", Message: message},
				RequestID: requestID,
			})
		},
	}))

	auditLogger := audit.NewLogger(st)
	sheetsClient := sheets.NewClient(cfg, st)
	h := handlers.NewServer(cfg, st, auditLogger, sheetsClient, logger)

	authMW := middleware.AuthMiddleware{Store: st, CookieName: cfg.SessionCookieName}
	loginLimiter := middleware.NewIPRateLimiter(10, time.Minute)
	importLimiter := middleware.NewIPRateLimiter(6, time.Minute)

	api.Group(func(public chi.Router) {
		public.Get("/health", h.GetHealth)
		public.With(loginLimiter.Middleware("Too many login attempts")).Post("/auth/login", h.PostAuthLogin)
		public.With(loginLimiter.Middleware("Too many signup attempts")).Post("/auth/register", h.PostAuthRegister)
		public.Get("/auth/google/start", h.GetAuthGoogleStart)
		public.Get("/auth/google/callback", h.GetAuthGoogleCallback)
	})

	api.Group(func(protected chi.Router) {
		protected.Use(authMW.RequireAuth)
		protected.Get("/auth/me", h.GetAuthMe)
		protected.Get("/auth/csrf", h.GetAuthCsrf)
		protected.With(middleware.EnforceCSRF(cfg.CSRFEnforce)).Post("/auth/logout", h.PostAuthLogout)

		protected.Get("/rows", h.GetRows)
		protected.Get("/rows/export.csv", h.GetRowsExportCSV)
		protected.With(middleware.EnforceCSRF(cfg.CSRFEnforce)).Post("/rows", h.PostRows)
		protected.With(middleware.EnforceCSRF(cfg.CSRFEnforce)).Delete("/rows/{rowId}", h.DeleteRow)

		protected.With(
			importLimiter.Middleware("Too many import requests"),
			middleware.EnforceCSRF(cfg.CSRFEnforce),
		).Post("/import/google", h.PostImportGoogle)
	})

	r.Mount("/api", api)
	return r, nil
}
