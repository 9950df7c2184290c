package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LAKSHMI-M7/industry5.0/internal/auth"
	"github.com/LAKSHMI-M7/industry5.0/internal/crypto"
	"github.com/LAKSHMI-M7/industry5.0/internal/model"
	"github.com/LAKSHMI-M7/industry5.0/internal/repository"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  userSummary `json:"user"`
}

type userSummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	AllowedRoles []string `json:"allowedRoles"`
	Avatar       *string  `json:"avatar,omitempty"`
	CreatedAt    string   `json:"createdAt"`
}

func mapUserSummary(user model.User) userSummary {
	allowed := user.AllowedRoles
	if allowed == nil {
		allowed = []string{}
	}
	return userSummary{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         string(user.Role),
		AllowedRoles: allowed,
		Avatar:       user.Avatar,
		CreatedAt:    user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	role := model.Role(strings.TrimSpace(strings.ToLower(req.Role)))
	if role == "" {
		role = model.RoleStudent
	}
	if !model.ValidRole(role) {
		writeError(w, http.StatusBadRequest, "invalid_role")
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: &hash,
		Role:         role,
		AllowedRoles: []string{string(role)},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "duplicate_email")
			return
		}
		if errors.Is(err, repository.ErrDuplicateProviderID) {
			writeError(w, http.StatusConflict, "duplicate_provider_id")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	token, err := auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL, auth.Claims{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: mapUserSummary(user)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_credentials")
		return
	}

	if s.loginThrottled(r.Context(), req.Email) {
		writeError(w, http.StatusTooManyRequests, "too_many_attempts")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.recordLoginFailure(r.Context(), req.Email)
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	// Externally-authenticated identities have no local hash; password login
	// is rejected for them, never passed through.
	if user.PasswordHash == nil || crypto.CheckPassword(*user.PasswordHash, req.Password) != nil {
		s.recordLoginFailure(r.Context(), req.Email)
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}

	s.clearLoginFailures(r.Context(), req.Email)

	token, err := auth.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.AccessTokenTTL, auth.Claims{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: mapUserSummary(user)})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user := identityFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	writeJSON(w, http.StatusOK, mapUserSummary(*user))
}

type switchRoleRequest struct {
	Role string `json:"role"`
}

type switchRoleResponse struct {
	ActiveRole   string   `json:"activeRole"`
	AllowedRoles []string `json:"allowedRoles"`
}

// handleSwitchRole picks the role the client renders as. A request for a role
// outside the allowed set is a silent no-op: the response carries the
// unchanged active role. The endpoint validates membership and echoes the
// choice back; nothing is persisted, and the result is presentation state
// only, never an input to requireRoles.
func (s *Server) handleSwitchRole(w http.ResponseWriter, r *http.Request) {
	user := identityFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	var req switchRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	active := user.Role
	requested := model.Role(strings.TrimSpace(strings.ToLower(req.Role)))
	if user.CanAssume(requested) {
		active = requested
	}

	allowed := user.AllowedRoles
	if allowed == nil {
		allowed = []string{}
	}
	writeJSON(w, http.StatusOK, switchRoleResponse{
		ActiveRole:   string(active),
		AllowedRoles: allowed,
	})
}
