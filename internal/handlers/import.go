package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/audit"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/httpx"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/middleware"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/report"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/sheets"
)

type importRequest struct {
	SheetURL string `json:"sheetUrl"`
}

// PostImportGoogle pulls a spreadsheet tab as CSV, runs it through the
// row pipeline and saves whatever survives filtering. Credentialed
// fetch is tried first; a link-shared sheet works without stored
// Google credentials.
func (s *Server) PostImportGoogle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
		return
	}

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Malformed JSON body", nil)
		return
	}

	sheetID, gid, ok := sheets.ParseSheetURL(req.SheetURL)
	if !ok {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_sheet_url", "Could not extract a spreadsheet id from the URL", nil)
		return
	}

	body, err := s.Sheets.FetchSheetCSV(r.Context(), actor.UserID, sheetID, gid)
	if err != nil {
		s.Logger.Warn("credentialed sheet fetch failed, trying public export",
			"error", err, "sheetId", sheetID)
		body, err = s.Sheets.FetchPublicCSV(r.Context(), sheetID, gid)
	}
	if err != nil {
		if errors.Is(err, sheets.ErrFetchFailed) {
			httpx.WriteError(w, r, http.StatusBadRequest, "sheet_fetch_failed", "Could not download the sheet. Check sharing settings or reconnect Google.", nil)
			return
		}
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to fetch sheet", nil)
		return
	}

	result := report.RowsFromCSV(string(body))
	if len(result.Rows) == 0 {
		httpx.WriteError(w, r, http.StatusBadRequest, "no_rows", "The sheet contained no importable rows", map[string]int{"rejected": result.Rejected})
		return
	}

	saved, err := s.Store.SaveSessionRows(r.Context(), actor.UserID, result.Rows)
	if err != nil {
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to save imported rows", nil)
		return
	}

	userID := actor.UserID
	_ = s.Audit.Log(r.Context(), audit.Entry{
		UserID:     &userID,
		Action:     "import.google",
		EntityType: "session_row",
		EntityID:   sheetID,
		RequestID:  middleware.RequestIDFromContext(r.Context()),
		Metadata:   map[string]any{"sheetId": sheetID, "imported": saved, "rejected": result.Rejected},
	})

	httpx.WriteJSON(w, http.StatusOK, map[string]int{"imported": saved, "rejected": result.Rejected})
}
