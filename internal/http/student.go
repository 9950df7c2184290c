package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LAKSHMI-M7/industry5.0/internal/model"
	"github.com/LAKSHMI-M7/industry5.0/internal/repository"
)

type profileRequest struct {
	RegisterNumber string   `json:"registerNumber"`
	Department     string   `json:"department"`
	Year           string   `json:"year"`
	Domain         string   `json:"domain"`
	GithubLink     *string  `json:"githubLink,omitempty"`
	LinkedinLink   *string  `json:"linkedinLink,omitempty"`
	Skills         []string `json:"skills"`
}

type profileResponse struct {
	ID             string   `json:"id"`
	UserID         string   `json:"userId"`
	RegisterNumber string   `json:"registerNumber"`
	Department     string   `json:"department"`
	Year           string   `json:"year"`
	Domain         string   `json:"domain"`
	GithubLink     *string  `json:"githubLink,omitempty"`
	LinkedinLink   *string  `json:"linkedinLink,omitempty"`
	Skills         []string `json:"skills"`
	CreatedAt      string   `json:"createdAt"`
	UpdatedAt      string   `json:"updatedAt"`
}

func mapProfile(profile model.StudentProfile) profileResponse {
	skills := profile.Skills
	if skills == nil {
		skills = []string{}
	}
	return profileResponse{
		ID:             profile.ID,
		UserID:         profile.UserID,
		RegisterNumber: profile.RegisterNumber,
		Department:     profile.Department,
		Year:           profile.Year,
		Domain:         profile.Domain,
		GithubLink:     profile.GithubLink,
		LinkedinLink:   profile.LinkedinLink,
		Skills:         skills,
		CreatedAt:      profile.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      profile.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user := identityFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	profile, err := s.store.GetProfileByUserID(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "profile_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, mapProfile(profile))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := identityFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	req.RegisterNumber = strings.TrimSpace(req.RegisterNumber)
	req.Department = strings.TrimSpace(req.Department)
	req.Year = strings.TrimSpace(req.Year)
	req.Domain = strings.TrimSpace(req.Domain)
	if req.RegisterNumber == "" || req.Department == "" || req.Year == "" || req.Domain == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	skills := make([]string, 0, len(req.Skills))
	for _, skill := range req.Skills {
		if trimmed := strings.TrimSpace(skill); trimmed != "" {
			skills = append(skills, trimmed)
		}
	}

	profile, err := s.store.UpsertProfile(r.Context(), model.StudentProfile{
		UserID:         user.ID,
		RegisterNumber: req.RegisterNumber,
		Department:     req.Department,
		Year:           req.Year,
		Domain:         req.Domain,
		GithubLink:     req.GithubLink,
		LinkedinLink:   req.LinkedinLink,
		Skills:         skills,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateRegisterNo) {
			writeError(w, http.StatusConflict, "duplicate_register_number")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, mapProfile(profile))
}

type dailyUpdateRequest struct {
	WorkDone    string `json:"workDone"`
	TimeSpent   string `json:"timeSpent"`
	IssuesFaced string `json:"issuesFaced"`
}

type dailyUpdateResponse struct {
	ID                string `json:"id"`
	UserID            string `json:"userId"`
	WorkDone          string `json:"workDone"`
	TimeSpent         string `json:"timeSpent"`
	IssuesFaced       string `json:"issuesFaced"`
	SecretaryFeedback string `json:"secretaryFeedback"`
	SecretaryReply    string `json:"secretaryReply"`
	CreatedAt         string `json:"createdAt"`
	UpdatedAt         string `json:"updatedAt"`
}

func mapDailyUpdate(update model.DailyUpdate) dailyUpdateResponse {
	return dailyUpdateResponse{
		ID:                update.ID,
		UserID:            update.UserID,
		WorkDone:          update.WorkDone,
		TimeSpent:         update.TimeSpent,
		IssuesFaced:       update.IssuesFaced,
		SecretaryFeedback: update.SecretaryFeedback,
		SecretaryReply:    update.SecretaryReply,
		CreatedAt:         update.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         update.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleSubmitDailyUpdate(w http.ResponseWriter, r *http.Request) {
	user := identityFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	var req dailyUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	req.WorkDone = strings.TrimSpace(req.WorkDone)
	req.TimeSpent = strings.TrimSpace(req.TimeSpent)
	if req.WorkDone == "" || req.TimeSpent == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	now := time.Now().UTC()
	update, err := s.store.CreateDailyUpdate(r.Context(), model.DailyUpdate{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		WorkDone:    req.WorkDone,
		TimeSpent:   req.TimeSpent,
		IssuesFaced: strings.TrimSpace(req.IssuesFaced),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, mapDailyUpdate(update))
}

func (s *Server) handleMyDailyUpdates(w http.ResponseWriter, r *http.Request) {
	user := identityFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	updates, err := s.store.ListDailyUpdatesByUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	resp := make([]dailyUpdateResponse, 0, len(updates))
	for _, update := range updates {
		resp = append(resp, mapDailyUpdate(update))
	}
	writeJSON(w, http.StatusOK, resp)
}

type weeklyReportRequest struct {
	WeekStartDate  string  `json:"weekStartDate"`
	WeekEndDate    string  `json:"weekEndDate"`
	CompletedWork  string  `json:"completedWork"`
	OngoingWork    string  `json:"ongoingWork"`
	NextWeekPlan   string  `json:"nextWeekPlan"`
	GithubRepoLink *string `json:"githubRepoLink,omitempty"`
}

type weeklyReportResponse struct {
	ID                string  `json:"id"`
	UserID            string  `json:"userId"`
	WeekStartDate     string  `json:"weekStartDate"`
	WeekEndDate       string  `json:"weekEndDate"`
	CompletedWork     string  `json:"completedWork"`
	OngoingWork       string  `json:"ongoingWork"`
	NextWeekPlan      string  `json:"nextWeekPlan"`
	GithubRepoLink    *string `json:"githubRepoLink,omitempty"`
	Status            string  `json:"status"`
	SecretaryFeedback *string `json:"secretaryFeedback,omitempty"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
}

func mapWeeklyReport(report model.WeeklyReport) weeklyReportResponse {
	return weeklyReportResponse{
		ID:                report.ID,
		UserID:            report.UserID,
		WeekStartDate:     formatDay(report.WeekStart),
		WeekEndDate:       formatDay(report.WeekEnd),
		CompletedWork:     report.CompletedWork,
		OngoingWork:       report.OngoingWork,
		NextWeekPlan:      report.NextWeekPlan,
		GithubRepoLink:    report.GithubRepoLink,
		Status:            string(report.Status),
		SecretaryFeedback: report.SecretaryFeedback,
		CreatedAt:         report.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         report.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleSubmitWeeklyReport(w http.ResponseWriter, r *http.Request) {
	user := identityFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	var req weeklyReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	weekStart, err := parseDay(req.WeekStartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_week_start")
		return
	}
	weekEnd, err := parseDay(req.WeekEndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_week_end")
		return
	}
	if weekEnd.Before(weekStart) {
		writeError(w, http.StatusBadRequest, "invalid_week_range")
		return
	}

	req.CompletedWork = strings.TrimSpace(req.CompletedWork)
	req.OngoingWork = strings.TrimSpace(req.OngoingWork)
	req.NextWeekPlan = strings.TrimSpace(req.NextWeekPlan)
	if req.CompletedWork == "" || req.OngoingWork == "" || req.NextWeekPlan == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	now := time.Now().UTC()
	report, err := s.store.CreateWeeklyReport(r.Context(), model.WeeklyReport{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		WeekStart:      weekStart,
		WeekEnd:        weekEnd,
		CompletedWork:  req.CompletedWork,
		OngoingWork:    req.OngoingWork,
		NextWeekPlan:   req.NextWeekPlan,
		GithubRepoLink: req.GithubRepoLink,
		Status:         model.ReportPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, mapWeeklyReport(report))
}

func (s *Server) handleMyWeeklyReports(w http.ResponseWriter, r *http.Request) {
	user := identityFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	reports, err := s.store.ListWeeklyReportsByUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	resp := make([]weeklyReportResponse, 0, len(reports))
	for _, report := range reports {
		resp = append(resp, mapWeeklyReport(report))
	}
	writeJSON(w, http.StatusOK, resp)
}
