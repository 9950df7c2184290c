package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/LAKSHMI-M7/industry5.0/internal/jobs"
	"github.com/LAKSHMI-M7/industry5.0/internal/model"
	"github.com/LAKSHMI-M7/industry5.0/internal/repository"
)

type statsAlert struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type adminStatsResponse struct {
	Users struct {
		Total       int `json:"total"`
		Students    int `json:"students"`
		Secretaries int `json:"secretaries"`
		Staff       int `json:"staff"`
		Admins      int `json:"admins"`
		Leaders     int `json:"leaders"`
	} `json:"users"`
	Activity struct {
		DailyUpdates    int `json:"dailyUpdates"`
		WeeklyReports   int `json:"weeklyReports"`
		AttendanceToday int `json:"attendanceToday"`
	} `json:"activity"`
	Alerts []statsAlert `json:"alerts"`
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	roleCounts, err := s.store.CountUsersByRole(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	var resp adminStatsResponse
	resp.Users.Students = roleCounts[model.RoleStudent]
	resp.Users.Secretaries = roleCounts[model.RoleSecretary]
	resp.Users.Staff = roleCounts[model.RoleStaff]
	resp.Users.Admins = roleCounts[model.RoleAdmin]
	resp.Users.Leaders = roleCounts[model.RoleLeader]
	for _, count := range roleCounts {
		resp.Users.Total += count
	}

	resp.Activity.DailyUpdates, err = s.store.CountDailyUpdates(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	resp.Activity.WeeklyReports, err = s.store.CountWeeklyReports(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	today := model.Day(time.Now())
	if digest, ok, _ := jobs.LoadDigest(r.Context(), s.redis, today); ok {
		resp.Activity.AttendanceToday = digest.Total
	} else {
		counts, err := s.store.CountAttendanceByStatus(r.Context(), today)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		for _, count := range counts {
			resp.Activity.AttendanceToday += count
		}
	}

	resp.Alerts = make([]statsAlert, 0)
	if resp.Activity.AttendanceToday == 0 && resp.Users.Students > 0 {
		resp.Alerts = append(resp.Alerts, statsAlert{Type: "warning", Message: "No attendance records detected for today"})
	}
	if resp.Activity.DailyUpdates == 0 && resp.Users.Students > 0 {
		resp.Alerts = append(resp.Alerts, statsAlert{Type: "critical", Message: "Zero daily updates submitted by students"})
	}
	if resp.Users.Total > 0 && resp.Users.Secretaries == 0 {
		resp.Alerts = append(resp.Alerts, statsAlert{Type: "info", Message: "No club secretaries assigned for management"})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 100)
	users, err := s.store.ListUsers(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	summaries := make([]userSummary, 0, len(users))
	for _, user := range users {
		summaries = append(summaries, mapUserSummary(user))
	}
	writeJSON(w, http.StatusOK, summaries)
}

type updateRoleRequest struct {
	Role          string `json:"role"`
	ExtendAllowed bool   `json:"extendAllowed"`
}

// handleUpdateUserRole changes the persisted primary role; the change applies
// to the target's very next request because authorization is re-derived per
// request. allowed_roles is only extended when extendAllowed is set.
func (s *Server) handleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing_user_id")
		return
	}

	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	role := model.Role(strings.TrimSpace(strings.ToLower(req.Role)))
	if !model.ValidRole(role) {
		writeError(w, http.StatusBadRequest, "invalid_role")
		return
	}

	user, err := s.store.UpdateUserRole(r.Context(), userID, role, req.ExtendAllowed)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, mapUserSummary(user))
}

type auditEvent struct {
	ID        string `json:"id"`
	Event     string `json:"event"`
	Details   string `json:"details"`
	Timestamp string `json:"timestamp"`
}

type auditResponse struct {
	Events []auditEvent `json:"events"`
}

func (s *Server) handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context(), 5)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	resp := auditResponse{Events: make([]auditEvent, 0, len(users))}
	for _, user := range users {
		resp.Events = append(resp.Events, auditEvent{
			ID:        user.ID,
			Event:     "user_registered",
			Details:   fmt.Sprintf("Account created for %s (%s)", user.Name, user.Role),
			Timestamp: user.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type analyticsPoint struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type trendPoint struct {
	Date    string `json:"date"`
	Updates int    `json:"updates"`
}

type analyticsResponse struct {
	DomainDistribution []analyticsPoint `json:"domainDistribution"`
	ActivityTrends     []trendPoint     `json:"activityTrends"`
}

func (s *Server) handleAdminAnalytics(w http.ResponseWriter, r *http.Request) {
	domains, err := s.store.DomainDistribution(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	since := time.Now().UTC().AddDate(0, 0, -7)
	trend, err := s.store.DailyUpdateTrend(r.Context(), since)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	resp := analyticsResponse{
		DomainDistribution: make([]analyticsPoint, 0, len(domains)),
		ActivityTrends:     make([]trendPoint, 0, len(trend)),
	}
	for _, entry := range domains {
		resp.DomainDistribution = append(resp.DomainDistribution, analyticsPoint{Name: entry.Domain, Value: entry.Count})
	}
	for _, point := range trend {
		resp.ActivityTrends = append(resp.ActivityTrends, trendPoint{Date: point.Date, Updates: point.Count})
	}
	writeJSON(w, http.StatusOK, resp)
}
