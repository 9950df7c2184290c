package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/LAKSHMI-M7/industry5.0/internal/model"
	"github.com/LAKSHMI-M7/industry5.0/internal/repository"
)

type attendanceResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type attendanceEntryResponse struct {
	attendanceResponse
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

func mapAttendance(rec model.AttendanceRecord) attendanceResponse {
	return attendanceResponse{
		ID:        rec.ID,
		UserID:    rec.UserID,
		Date:      formatDay(rec.Day),
		Status:    string(rec.Status),
		CreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: rec.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func normalizeAttendanceStatus(value string) (model.AttendanceStatus, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "present":
		return model.AttendancePresent, nil
	case "absent":
		return model.AttendanceAbsent, nil
	case "leave":
		return model.AttendanceLeave, nil
	default:
		return "", errors.New("unknown attendance status")
	}
}

// handleSelfMark marks the requester Present for today. The storage
// constraint decides the winner between concurrent attempts; the loser gets
// already_marked.
func (s *Server) handleSelfMark(w http.ResponseWriter, r *http.Request) {
	user := identityFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	rec, err := s.store.CreateSelfMark(r.Context(), user.ID, model.Day(time.Now()))
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyMarked) {
			writeError(w, http.StatusBadRequest, "already_marked")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, mapAttendance(rec))
}

func (s *Server) handleMyAttendance(w http.ResponseWriter, r *http.Request) {
	user := identityFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	records, err := s.store.ListUserAttendance(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	resp := make([]attendanceResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, mapAttendance(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

type secretaryMarkRequest struct {
	UserID string `json:"userId"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

// handleSecretaryMark is the correction path: it creates the record in any
// state or retargets an existing one, keyed on (user, day).
func (s *Server) handleSecretaryMark(w http.ResponseWriter, r *http.Request) {
	var req secretaryMarkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "missing_user_id")
		return
	}

	status := model.AttendancePresent
	if req.Status != "" {
		parsed, err := normalizeAttendanceStatus(req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_status")
			return
		}
		status = parsed
	}

	day := model.Day(time.Now())
	if req.Date != "" {
		parsed, err := parseDay(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date")
			return
		}
		day = parsed
	}

	if _, err := s.store.GetUserByID(r.Context(), req.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	rec, err := s.store.UpsertMark(r.Context(), req.UserID, day, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusConflict, "attendance_conflict")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, mapAttendance(rec))
}

func (s *Server) handleAttendanceByDate(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date")
		return
	}

	entries, err := s.store.ListAttendanceByDay(r.Context(), day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	resp := make([]attendanceEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, attendanceEntryResponse{
			attendanceResponse: mapAttendance(entry.AttendanceRecord),
			UserName:           entry.UserName,
			UserEmail:          entry.UserEmail,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
