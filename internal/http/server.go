package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/LAKSHMI-M7/industry5.0/internal/auth"
	"github.com/LAKSHMI-M7/industry5.0/internal/config"
	"github.com/LAKSHMI-M7/industry5.0/internal/model"
	"github.com/LAKSHMI-M7/industry5.0/internal/repository"
)

type Server struct {
	cfg   config.Config
	store *repository.Store
	redis *redis.Client
}

func NewServer(cfg config.Config, store *repository.Store, redisClient *redis.Client) *Server {
	return &Server{
		cfg:   cfg,
		store: store,
		redis: redisClient,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)
	r.With(s.authMiddleware).Get("/auth/me", s.handleGetMe)
	r.With(s.authMiddleware).Post("/auth/switch-role", s.handleSwitchRole)

	r.Route("/attendance", func(r chi.Router) {
		r.Use(s.authMiddleware, s.requireRoles(model.RoleStudent))
		r.Post("/", s.handleSelfMark)
		r.Get("/", s.handleMyAttendance)
	})

	r.Route("/student", func(r chi.Router) {
		r.Use(s.authMiddleware, s.requireRoles(model.RoleStudent))
		r.Get("/profile", s.handleGetProfile)
		r.Post("/profile", s.handleUpdateProfile)
		r.Post("/daily-update", s.handleSubmitDailyUpdate)
		r.Get("/daily-update", s.handleMyDailyUpdates)
		r.Post("/weekly-report", s.handleSubmitWeeklyReport)
		r.Get("/weekly-report", s.handleMyWeeklyReports)
	})

	r.Route("/secretary", func(r chi.Router) {
		r.Use(s.authMiddleware)
		read := s.requireRoles(model.RoleSecretary, model.RoleAdmin, model.RoleStaff)
		write := s.requireRoles(model.RoleSecretary, model.RoleAdmin)

		r.With(read).Get("/students", s.handleListStudents)
		r.With(read).Get("/updates", s.handleListDailyUpdates)
		r.With(read).Get("/reports", s.handleListWeeklyReports)
		r.With(read).Get("/attendance/{date}", s.handleAttendanceByDate)
		r.With(write).Put("/updates/{updateID}/reply", s.handleReplyDailyUpdate)
		r.With(write).Put("/reports/{reportID}/review", s.handleReviewWeeklyReport)
		r.With(write).Post("/attendance/mark", s.handleSecretaryMark)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.authMiddleware, s.requireRoles(model.RoleAdmin))
		r.Get("/stats", s.handleAdminStats)
		r.Get("/audit", s.handleAdminAudit)
		r.Get("/analytics", s.handleAdminAnalytics)
		r.Get("/users", s.handleAdminListUsers)
		r.Put("/users/{userID}/role", s.handleUpdateUserRole)
	})

	return r
}

// Auth

type identityKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}

		claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "token_expired")
				return
			}
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}

		// The token is immutable once issued, so the identity is re-read
		// here. An admin role change is visible on the next request without
		// re-login.
		user, err := s.store.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "invalid_token")
				return
			}
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, &user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRoles authorizes against the persisted primary role of the
// re-fetched identity, never against claims or any client-declared active
// role. The allowed set is explicit per route; admin gains nothing unless
// listed.
func (s *Server) requireRoles(allowed ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := identityFromContext(r.Context())
			if user == nil {
				writeError(w, http.StatusUnauthorized, "missing_token")
				return
			}
			for _, role := range allowed {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "forbidden")
		})
	}
}

func identityFromContext(ctx context.Context) *model.User {
	value := ctx.Value(identityKey{})
	user, _ := value.(*model.User)
	return user
}

// Login throttle. Counters live in redis with a sliding window TTL; without
// redis the throttle is simply off.

func (s *Server) loginThrottled(ctx context.Context, email string) bool {
	if s.redis == nil || s.cfg.LoginMaxAttempts <= 0 {
		return false
	}
	count, err := s.redis.Get(ctx, loginAttemptsKey(email)).Int()
	if err != nil {
		return false
	}
	return count >= s.cfg.LoginMaxAttempts
}

func (s *Server) recordLoginFailure(ctx context.Context, email string) {
	if s.redis == nil {
		return
	}
	key := loginAttemptsKey(email)
	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		return
	}
	if count == 1 {
		_ = s.redis.Expire(ctx, key, s.cfg.LoginAttemptWindow).Err()
	}
}

func (s *Server) clearLoginFailures(ctx context.Context, email string) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, loginAttemptsKey(email)).Err()
}

func loginAttemptsKey(email string) string {
	return fmt.Sprintf("login_attempts:%s", strings.ToLower(email))
}

// Helpers

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

func parseDay(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return parsed, nil
}

func formatDay(day time.Time) string {
	return day.Format("2006-01-02")
}
