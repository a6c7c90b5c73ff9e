package handlers

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/audit"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/httpx"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/middleware"
	"github.com/mxrxxsv/Dagaz-Progress-Report/internal/report"
)

func (s *Server) GetRows(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
		return
	}

	rows, err := s.Store.ListSessionRows(r.Context(), actor.UserID, s.Config.RowsListLimit)
	if err != nil {
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to load rows", nil)
		return
	}

	out := make([]report.SessionRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, report.Derive(row))
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"rows":    out,
		"summary": report.Summarize(out),
	})
}

// PostRows accepts a single row object or an array of rows. Every row
// runs through the same normalization as imported sheet rows before it
// is written.
func (s *Server) PostRows(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
		return
	}

	body, err := decodeRowsBody(r)
	if err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", err.Error(), nil)
		return
	}
	if len(body) == 0 {
		httpx.WriteError(w, r, http.StatusBadRequest, "no_rows", "No rows supplied", nil)
		return
	}

	accepted := make([]report.SessionRow, 0, len(body))
	rejected := 0
	for _, row := range body {
		derived := report.Derive(row)
		if !report.Acceptable(derived) {
			rejected++
			continue
		}
		accepted = append(accepted, derived)
	}
	if len(accepted) == 0 {
		httpx.WriteError(w, r, http.StatusBadRequest, "no_valid_rows", "No rows passed validation", map[string]int{"rejected": rejected})
		return
	}

	saved, err := s.Store.SaveSessionRows(r.Context(), actor.UserID, accepted)
	if err != nil {
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to save rows", nil)
		return
	}

	userID := actor.UserID
	_ = s.Audit.Log(r.Context(), audit.Entry{
		UserID:     &userID,
		Action:     "rows.save",
		EntityType: "session_row",
		RequestID:  middleware.RequestIDFromContext(r.Context()),
		Metadata:   map[string]any{"saved": saved, "rejected": rejected},
	})

	httpx.WriteJSON(w, http.StatusOK, map[string]int{"saved": saved, "rejected": rejected})
}

func decodeRowsBody(r *http.Request) ([]report.SessionRow, error) {
	raw, err := readAll(r)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty request body")
	}
	if trimmed[0] == '[' {
		var rows []report.SessionRow
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("malformed JSON array")
		}
		return rows, nil
	}
	var row report.SessionRow
	if err := json.Unmarshal(trimmed, &row); err != nil {
		return nil, fmt.Errorf("malformed JSON body")
	}
	return []report.SessionRow{row}, nil
}

func readAll(r *http.Request) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r.Body); err != nil {
		return nil, fmt.Errorf("read request body")
	}
	return buf.Bytes(), nil
}

func (s *Server) DeleteRow(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
		return
	}

	rowID, err := strconv.ParseInt(chi.URLParam(r, "rowId"), 10, 64)
	if err != nil || rowID <= 0 {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_row_id", "Row id must be a positive integer", nil)
		return
	}

	deleted, err := s.Store.DeleteSessionRow(r.Context(), actor.UserID, rowID)
	if err != nil {
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to delete row", nil)
		return
	}
	if !deleted {
		httpx.WriteError(w, r, http.StatusNotFound, "row_not_found", "Row does not exist", nil)
		return
	}

	userID := actor.UserID
	_ = s.Audit.Log(r.Context(), audit.Entry{
		UserID:     &userID,
		Action:     "rows.delete",
		EntityType: "session_row",
		EntityID:   strconv.FormatInt(rowID, 10),
		RequestID:  middleware.RequestIDFromContext(r.Context()),
		Metadata:   map[string]any{"rowId": rowID},
	})

	w.WriteHeader(http.StatusNoContent)
}

var exportHeader = []string{
	"Day", "Date", "Time Start", "Time End", "Total Hours", "Branches",
	"Orders Input", "Disputed Orders", "Emails Followed Up", "Updated Orders",
	"Videos Uploaded", "Platform Used", "Remarks",
}

func (s *Server) GetRowsExportCSV(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
		return
	}

	rows, err := s.Store.ListSessionRows(r.Context(), actor.UserID, s.Config.RowsListLimit)
	if err != nil {
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "Failed to load rows", nil)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="progress-report.csv"`)
	w.WriteHeader(http.StatusOK)

	writer := csv.NewWriter(w)
	_ = writer.Write(exportHeader)
	for _, row := range rows {
		derived := report.Derive(row)
		_ = writer.Write([]string{
			derived.Day,
			derived.Date,
			displayTime(derived.TimeStart),
			displayTime(derived.TimeEnd),
			formatFloat(derived.TotalHours),
			formatFloat(derived.Branches),
			formatFloat(derived.OrdersInput),
			formatFloat(derived.DisputedOrders),
			formatFloat(derived.EmailsFollowedUp),
			formatFloat(derived.UpdatedOrders),
			formatFloat(derived.VideosUploaded),
			derived.PlatformUsed,
			derived.Remarks,
		})
	}
	writer.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// displayTime renders stored clock strings in 12-hour form and leaves
// anything unparseable as-is.
func displayTime(value string) string {
	if v := report.To12h(value); v != "" {
		return v
	}
	return value
}
