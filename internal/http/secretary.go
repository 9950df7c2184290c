package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/LAKSHMI-M7/industry5.0/internal/model"
	"github.com/LAKSHMI-M7/industry5.0/internal/repository"
)

type studentEntryResponse struct {
	profileResponse
	UserName   string  `json:"userName"`
	UserEmail  string  `json:"userEmail"`
	UserAvatar *string `json:"userAvatar,omitempty"`
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ListStudentProfiles(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	resp := make([]studentEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, studentEntryResponse{
			profileResponse: mapProfile(entry.StudentProfile),
			UserName:        entry.UserName,
			UserEmail:       entry.UserEmail,
			UserAvatar:      entry.UserAvatar,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type dailyUpdateEntryResponse struct {
	dailyUpdateResponse
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

func (s *Server) handleListDailyUpdates(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 200)
	entries, err := s.store.ListDailyUpdates(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	resp := make([]dailyUpdateEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dailyUpdateEntryResponse{
			dailyUpdateResponse: mapDailyUpdate(entry.DailyUpdate),
			UserName:            entry.UserName,
			UserEmail:           entry.UserEmail,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type replyUpdateRequest struct {
	Feedback *string `json:"feedback,omitempty"`
	Reply    *string `json:"reply,omitempty"`
}

func (s *Server) handleReplyDailyUpdate(w http.ResponseWriter, r *http.Request) {
	updateID := chi.URLParam(r, "updateID")
	if updateID == "" {
		writeError(w, http.StatusBadRequest, "missing_update_id")
		return
	}

	var req replyUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Feedback == nil && req.Reply == nil {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	update, err := s.store.ReplyToDailyUpdate(r.Context(), updateID, req.Feedback, req.Reply)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "update_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, mapDailyUpdate(update))
}

type weeklyReportEntryResponse struct {
	weeklyReportResponse
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

func (s *Server) handleListWeeklyReports(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 200)
	entries, err := s.store.ListWeeklyReports(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	resp := make([]weeklyReportEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, weeklyReportEntryResponse{
			weeklyReportResponse: mapWeeklyReport(entry.WeeklyReport),
			UserName:             entry.UserName,
			UserEmail:            entry.UserEmail,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type reviewReportRequest struct {
	Status   *string `json:"status,omitempty"`
	Feedback *string `json:"feedback,omitempty"`
}

func normalizeReportStatus(value string) (model.ReportStatus, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "pending":
		return model.ReportPending, nil
	case "completed":
		return model.ReportCompleted, nil
	case "ongoing":
		return model.ReportOngoing, nil
	case "needs improvement":
		return model.ReportNeedsImprovement, nil
	default:
		return "", errors.New("unknown report status")
	}
}

func (s *Server) handleReviewWeeklyReport(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "reportID")
	if reportID == "" {
		writeError(w, http.StatusBadRequest, "missing_report_id")
		return
	}

	var req reviewReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Status == nil && req.Feedback == nil {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	var status *model.ReportStatus
	if req.Status != nil {
		parsed, err := normalizeReportStatus(*req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_status")
			return
		}
		status = &parsed
	}

	report, err := s.store.ReviewWeeklyReport(r.Context(), reportID, status, req.Feedback)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "report_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, mapWeeklyReport(report))
}

func queryLimit(r *http.Request, fallback int) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
