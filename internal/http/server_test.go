package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/LAKSHMI-M7/industry5.0/internal/auth"
	"github.com/LAKSHMI-M7/industry5.0/internal/config"
	"github.com/LAKSHMI-M7/industry5.0/internal/crypto"
	"github.com/LAKSHMI-M7/industry5.0/internal/db"
	"github.com/LAKSHMI-M7/industry5.0/internal/model"
	"github.com/LAKSHMI-M7/industry5.0/internal/repository"
)

func TestRegisterAndLogin(t *testing.T) {
	app, _, _ := newTestApp(t)
	if app == nil {
		return
	}
	defer app.Close()

	email := "reg." + uuid.NewString() + "@example.local"
	body := map[string]interface{}{
		"name":     "Test Student",
		"email":    email,
		"password": "dev-password",
	}
	resp := doReq(t, http.MethodPost, app.URL+"/auth/register", "", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var registered authResponse
	decodeBody(t, resp, &registered)
	if registered.Token == "" {
		t.Fatalf("expected token in register response")
	}
	if registered.User.Role != "student" {
		t.Fatalf("expected default role student, got %s", registered.User.Role)
	}

	// Duplicate email is rejected regardless of case.
	body["email"] = "REG." + email[4:]
	resp = doReq(t, http.MethodPost, app.URL+"/auth/register", "", body)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}

	resp = doReq(t, http.MethodPost, app.URL+"/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": "dev-password",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var logged authResponse
	decodeBody(t, resp, &logged)
	if logged.User.ID != registered.User.ID {
		t.Fatalf("expected same user across register and login")
	}

	resp = doReq(t, http.MethodPost, app.URL+"/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": "wrong-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	resp = doReq(t, http.MethodGet, app.URL+"/auth/me", logged.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestLoginPasswordlessUser(t *testing.T) {
	app, store, _ := newTestApp(t)
	if app == nil {
		return
	}
	defer app.Close()

	googleID := uuid.NewString()
	user := model.User{
		ID:           uuid.NewString(),
		Name:         "Passwordless",
		Email:        "oauth." + uuid.NewString() + "@example.local",
		GoogleID:     &googleID,
		Role:         model.RoleStudent,
		AllowedRoles: []string{string(model.RoleStudent)},
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	resp := doReq(t, http.MethodPost, app.URL+"/auth/login", "", map[string]interface{}{
		"email":    user.Email,
		"password": "anything",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for passwordless user, got %d", resp.StatusCode)
	}
}

func TestLoginThrottle(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	t.Cleanup(pool.Close)
	redisClient := openTestRedis(t)
	if redisClient == nil {
		return
	}
	t.Cleanup(func() { redisClient.Close() })

	cfg := config.Config{
		HTTPAddr:           ":0",
		JWTSecret:          "test-secret",
		JWTIssuer:          "test-issuer",
		AccessTokenTTL:     15 * time.Minute,
		LoginMaxAttempts:   2,
		LoginAttemptWindow: time.Minute,
	}
	store := repository.NewStore(pool)
	server := NewServer(cfg, store, redisClient)
	app := httptest.NewServer(server.Router())
	defer app.Close()

	user := seedUser(t, store, model.RoleStudent)
	for i := 0; i < cfg.LoginMaxAttempts; i++ {
		resp := doReq(t, http.MethodPost, app.URL+"/auth/login", "", map[string]interface{}{
			"email":    user.Email,
			"password": "wrong-password",
		})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, resp.StatusCode)
		}
	}

	// Over the limit even the right password is refused.
	resp := doReq(t, http.MethodPost, app.URL+"/auth/login", "", map[string]interface{}{
		"email":    user.Email,
		"password": "dev-password",
	})
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != "too_many_attempts" {
		t.Fatalf("expected too_many_attempts, got %s", code)
	}

	// A successful login clears the counter: one failure, then a success, then
	// two more failures. Without the clear the last attempt would already be
	// over the limit and refused with 429.
	other := seedUser(t, store, model.RoleStudent)
	resp = doReq(t, http.MethodPost, app.URL+"/auth/login", "", map[string]interface{}{
		"email":    other.Email,
		"password": "wrong-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	resp = doReq(t, http.MethodPost, app.URL+"/auth/login", "", map[string]interface{}{
		"email":    other.Email,
		"password": "dev-password",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	for i := 0; i < 2; i++ {
		resp = doReq(t, http.MethodPost, app.URL+"/auth/login", "", map[string]interface{}{
			"email":    other.Email,
			"password": "wrong-password",
		})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("post-clear attempt %d: expected 401, got %d", i+1, resp.StatusCode)
		}
	}
}

func TestTokenValidation(t *testing.T) {
	app, store, cfg := newTestApp(t)
	if app == nil {
		return
	}
	defer app.Close()

	user := seedUser(t, store, model.RoleStudent)

	resp := doReq(t, http.MethodGet, app.URL+"/auth/me", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != "missing_token" {
		t.Fatalf("expected missing_token, got %s", code)
	}

	resp = doReq(t, http.MethodGet, app.URL+"/auth/me", "not-a-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != "invalid_token" {
		t.Fatalf("expected invalid_token, got %s", code)
	}

	expired, err := auth.NewAccessToken(cfg.JWTSecret, cfg.JWTIssuer, -time.Minute, auth.Claims{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	resp = doReq(t, http.MethodGet, app.URL+"/auth/me", expired, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != "token_expired" {
		t.Fatalf("expected token_expired, got %s", code)
	}
}

func TestRoleChangeAppliesToExistingToken(t *testing.T) {
	app, store, cfg := newTestApp(t)
	if app == nil {
		return
	}
	defer app.Close()

	admin := seedUser(t, store, model.RoleAdmin)
	student := seedUser(t, store, model.RoleStudent)
	adminToken := mustToken(t, cfg, admin)
	studentToken := mustToken(t, cfg, student)

	resp := doReq(t, http.MethodGet, app.URL+"/secretary/students", studentToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 before promotion, got %d", resp.StatusCode)
	}

	resp = doReq(t, http.MethodPut, app.URL+"/admin/users/"+student.ID+"/role", adminToken, map[string]interface{}{
		"role": "secretary",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on role update, got %d", resp.StatusCode)
	}

	// The original token now carries secretary access without a new login.
	resp = doReq(t, http.MethodGet, app.URL+"/secretary/students", studentToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after promotion, got %d", resp.StatusCode)
	}

	resp = doReq(t, http.MethodGet, app.URL+"/auth/me", studentToken, nil)
	var me userSummary
	decodeBody(t, resp, &me)
	if me.Role != "secretary" {
		t.Fatalf("expected persisted role secretary, got %s", me.Role)
	}
	if len(me.AllowedRoles) != 1 || me.AllowedRoles[0] != "student" {
		t.Fatalf("expected allowed roles untouched, got %v", me.AllowedRoles)
	}

	resp = doReq(t, http.MethodPut, app.URL+"/admin/users/"+student.ID+"/role", adminToken, map[string]interface{}{
		"role":          "leader",
		"extendAllowed": true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on extended role update, got %d", resp.StatusCode)
	}
	resp = doReq(t, http.MethodGet, app.URL+"/auth/me", studentToken, nil)
	decodeBody(t, resp, &me)
	if len(me.AllowedRoles) != 2 {
		t.Fatalf("expected leader appended to allowed roles, got %v", me.AllowedRoles)
	}
}

func TestSwitchRoleDoesNotGrantAccess(t *testing.T) {
	app, store, cfg := newTestApp(t)
	if app == nil {
		return
	}
	defer app.Close()

	student := seedUser(t, store, model.RoleStudent, model.RoleSecretary)
	token := mustToken(t, cfg, student)

	resp := doReq(t, http.MethodPost, app.URL+"/auth/switch-role", token, map[string]interface{}{
		"role": "secretary",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var switched switchRoleResponse
	decodeBody(t, resp, &switched)
	if switched.ActiveRole != "secretary" {
		t.Fatalf("expected active role secretary, got %s", switched.ActiveRole)
	}

	// Switching the display role never changes authorization.
	resp = doReq(t, http.MethodGet, app.URL+"/secretary/students", token, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 after switch, got %d", resp.StatusCode)
	}

	// Switching to a role outside the allowed set is a silent no-op.
	resp = doReq(t, http.MethodPost, app.URL+"/auth/switch-role", token, map[string]interface{}{
		"role": "admin",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	decodeBody(t, resp, &switched)
	if switched.ActiveRole != "student" {
		t.Fatalf("expected active role to stay student, got %s", switched.ActiveRole)
	}
}

func TestSelfMarkAttendanceOncePerDay(t *testing.T) {
	app, store, cfg := newTestApp(t)
	if app == nil {
		return
	}
	defer app.Close()

	student := seedUser(t, store, model.RoleStudent)
	token := mustToken(t, cfg, student)

	resp := doReq(t, http.MethodPost, app.URL+"/attendance", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var rec attendanceResponse
	decodeBody(t, resp, &rec)
	if rec.Status != string(model.AttendancePresent) {
		t.Fatalf("expected Present, got %s", rec.Status)
	}

	resp = doReq(t, http.MethodPost, app.URL+"/attendance", token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 on second mark, got %d", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != "already_marked" {
		t.Fatalf("expected already_marked, got %s", code)
	}

	resp = doReq(t, http.MethodGet, app.URL+"/attendance", token, nil)
	var records []attendanceResponse
	decodeBody(t, resp, &records)
	if len(records) != 1 {
		t.Fatalf("expected a single record, got %d", len(records))
	}
}

func TestConcurrentSelfMark(t *testing.T) {
	app, store, cfg := newTestApp(t)
	if app == nil {
		return
	}
	defer app.Close()

	student := seedUser(t, store, model.RoleStudent)
	token := mustToken(t, cfg, student)

	const attempts = 4
	statuses := make([]int, attempts)
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req, err := http.NewRequest(http.MethodPost, app.URL+"/attendance", nil)
			if err != nil {
				errs[i] = err
				return
			}
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				errs[i] = err
				return
			}
			statuses[i] = resp.StatusCode
			resp.Body.Close()
		}(i)
	}
	wg.Wait()

	ok := 0
	for i, status := range statuses {
		if errs[i] != nil {
			t.Fatalf("request error: %v", errs[i])
		}
		switch status {
		case http.StatusOK:
			ok++
		case http.StatusBadRequest:
		default:
			t.Fatalf("unexpected status %d", status)
		}
	}
	if ok != 1 {
		t.Fatalf("expected exactly one successful mark, got %d", ok)
	}

	resp := doReq(t, http.MethodGet, app.URL+"/attendance", token, nil)
	var records []attendanceResponse
	decodeBody(t, resp, &records)
	if len(records) != 1 {
		t.Fatalf("expected a single persisted record, got %d", len(records))
	}
}

func TestSecretaryMarkOverwrites(t *testing.T) {
	app, store, cfg := newTestApp(t)
	if app == nil {
		return
	}
	defer app.Close()

	secretary := seedUser(t, store, model.RoleSecretary)
	student := seedUser(t, store, model.RoleStudent)
	secToken := mustToken(t, cfg, secretary)
	studentToken := mustToken(t, cfg, student)

	day := "2024-03-18"
	resp := doReq(t, http.MethodPost, app.URL+"/secretary/attendance/mark", secToken, map[string]interface{}{
		"userId": student.ID,
		"date":   day,
		"status": "present",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp = doReq(t, http.MethodPost, app.URL+"/secretary/attendance/mark", secToken, map[string]interface{}{
		"userId": student.ID,
		"date":   day,
		"status": "absent",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on overwrite, got %d", resp.StatusCode)
	}
	var rec attendanceResponse
	decodeBody(t, resp, &rec)
	if rec.Status != string(model.AttendanceAbsent) {
		t.Fatalf("expected Absent after overwrite, got %s", rec.Status)
	}

	resp = doReq(t, http.MethodGet, app.URL+"/attendance", studentToken, nil)
	var records []attendanceResponse
	decodeBody(t, resp, &records)
	if len(records) != 1 {
		t.Fatalf("expected a single record after overwrite, got %d", len(records))
	}
	if records[0].Status != string(model.AttendanceAbsent) {
		t.Fatalf("expected Absent, got %s", records[0].Status)
	}

	resp = doReq(t, http.MethodGet, app.URL+"/secretary/attendance/"+day, secToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	// Unknown students are rejected up front.
	resp = doReq(t, http.MethodPost, app.URL+"/secretary/attendance/mark", secToken, map[string]interface{}{
		"userId": uuid.NewString(),
		"date":   day,
		"status": "present",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", resp.StatusCode)
	}
}

func TestStudentSubmissionsAndReview(t *testing.T) {
	app, store, cfg := newTestApp(t)
	if app == nil {
		return
	}
	defer app.Close()

	student := seedUser(t, store, model.RoleStudent)
	secretary := seedUser(t, store, model.RoleSecretary)
	staff := seedUser(t, store, model.RoleStaff)
	studentToken := mustToken(t, cfg, student)
	secToken := mustToken(t, cfg, secretary)
	staffToken := mustToken(t, cfg, staff)

	registerNumber := "REG-" + uuid.NewString()[:8]
	resp := doReq(t, http.MethodPost, app.URL+"/student/profile", studentToken, map[string]interface{}{
		"registerNumber": registerNumber,
		"department":     "CSE",
		"year":           "III",
		"domain":         "IoT",
		"skills":         []string{"Go", " PostgreSQL "},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on profile upsert, got %d", resp.StatusCode)
	}
	var created profileResponse
	decodeBody(t, resp, &created)

	// A second POST updates in place rather than creating a new row.
	resp = doReq(t, http.MethodPost, app.URL+"/student/profile", studentToken, map[string]interface{}{
		"registerNumber": registerNumber,
		"department":     "ECE",
		"year":           "IV",
		"domain":         "Robotics",
		"skills":         []string{"Go"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on repeat upsert, got %d", resp.StatusCode)
	}
	var updated profileResponse
	decodeBody(t, resp, &updated)
	if updated.ID != created.ID {
		t.Fatalf("expected profile id to be stable, got %s then %s", created.ID, updated.ID)
	}
	if updated.Department != "ECE" || updated.Year != "IV" || updated.Domain != "Robotics" {
		t.Fatalf("expected updated fields, got %+v", updated)
	}

	resp = doReq(t, http.MethodGet, app.URL+"/student/profile", studentToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on profile get, got %d", resp.StatusCode)
	}

	resp = doReq(t, http.MethodPost, app.URL+"/student/daily-update", studentToken, map[string]interface{}{
		"workDone":    "Wired up the sensor gateway",
		"timeSpent":   "4h",
		"issuesFaced": "Flaky serial connection",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on daily update, got %d", resp.StatusCode)
	}
	var update dailyUpdateResponse
	decodeBody(t, resp, &update)

	resp = doReq(t, http.MethodPost, app.URL+"/student/weekly-report", studentToken, map[string]interface{}{
		"weekStartDate": "2024-03-18",
		"weekEndDate":   "2024-03-22",
		"completedWork": "Gateway integration",
		"ongoingWork":   "Dashboard wiring",
		"nextWeekPlan":  "Load testing",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on weekly report, got %d", resp.StatusCode)
	}
	var report weeklyReportResponse
	decodeBody(t, resp, &report)
	if report.Status != string(model.ReportPending) {
		t.Fatalf("expected Pending, got %s", report.Status)
	}

	// Staff can read but not write.
	resp = doReq(t, http.MethodGet, app.URL+"/secretary/updates", staffToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for staff read, got %d", resp.StatusCode)
	}
	resp = doReq(t, http.MethodPut, app.URL+"/secretary/updates/"+update.ID+"/reply", staffToken, map[string]interface{}{
		"reply": "nope",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for staff write, got %d", resp.StatusCode)
	}

	resp = doReq(t, http.MethodPut, app.URL+"/secretary/updates/"+update.ID+"/reply", secToken, map[string]interface{}{
		"feedback": "Good progress",
		"reply":    "Keep going",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on reply, got %d", resp.StatusCode)
	}

	resp = doReq(t, http.MethodPut, app.URL+"/secretary/reports/"+report.ID+"/review", secToken, map[string]interface{}{
		"status":   "completed",
		"feedback": "Well structured",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on review, got %d", resp.StatusCode)
	}
	decodeBody(t, resp, &report)
	if report.Status != string(model.ReportCompleted) {
		t.Fatalf("expected Completed, got %s", report.Status)
	}

	resp = doReq(t, http.MethodPut, app.URL+"/secretary/reports/"+report.ID+"/review", secToken, map[string]interface{}{
		"status": "rejected",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", resp.StatusCode)
	}
}

func TestAdminEndpoints(t *testing.T) {
	app, store, cfg := newTestApp(t)
	if app == nil {
		return
	}
	defer app.Close()

	admin := seedUser(t, store, model.RoleAdmin)
	student := seedUser(t, store, model.RoleStudent)
	adminToken := mustToken(t, cfg, admin)
	studentToken := mustToken(t, cfg, student)

	for _, path := range []string{"/admin/stats", "/admin/audit", "/admin/analytics", "/admin/users"} {
		resp := doReq(t, http.MethodGet, app.URL+path, adminToken, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
		resp = doReq(t, http.MethodGet, app.URL+path, studentToken, nil)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s: expected 403 for student, got %d", path, resp.StatusCode)
		}
	}

	resp := doReq(t, http.MethodPut, app.URL+"/admin/users/"+student.ID+"/role", adminToken, map[string]interface{}{
		"role": "captain",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown role, got %d", resp.StatusCode)
	}

	resp = doReq(t, http.MethodPut, app.URL+"/admin/users/"+uuid.NewString()+"/role", adminToken, map[string]interface{}{
		"role": "staff",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", resp.StatusCode)
	}
}

func newTestApp(t *testing.T) (*httptest.Server, *repository.Store, config.Config) {
	pool := openTestDB(t)
	if pool == nil {
		return nil, nil, config.Config{}
	}
	t.Cleanup(pool.Close)

	cfg := config.Config{
		HTTPAddr:       ":0",
		JWTSecret:      "test-secret",
		JWTIssuer:      "test-issuer",
		AccessTokenTTL: 15 * time.Minute,
	}
	store := repository.NewStore(pool)
	server := NewServer(cfg, store, nil)
	return httptest.NewServer(server.Router()), store, cfg
}

func openTestDB(t *testing.T) *pgxpool.Pool {
	url := os.Getenv("PORTAL_TEST_DB")
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		t.Skip("PORTAL_TEST_DB or DATABASE_URL not set")
		return nil
	}
	pool, err := db.NewPool(context.Background(), url)
	if err != nil {
		t.Skipf("db unavailable: %v", err)
		return nil
	}
	if err := db.Migrate(context.Background(), pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

func openTestRedis(t *testing.T) *redis.Client {
	addr := os.Getenv("PORTAL_TEST_REDIS")
	if addr == "" {
		t.Skip("PORTAL_TEST_REDIS not set")
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
		return nil
	}
	return client
}

func seedUser(t *testing.T, store *repository.Store, role model.Role, extra ...model.Role) model.User {
	hash, err := crypto.HashPassword("dev-password")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	allowed := []string{string(role)}
	for _, r := range extra {
		allowed = append(allowed, string(r))
	}
	user := model.User{
		ID:           uuid.NewString(),
		Name:         "Seed " + string(role),
		Email:        string(role) + "." + uuid.NewString() + "@example.local",
		PasswordHash: &hash,
		Role:         role,
		AllowedRoles: allowed,
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func mustToken(t *testing.T, cfg config.Config, user model.User) string {
	token, err := auth.NewAccessToken(cfg.JWTSecret, cfg.JWTIssuer, 10*time.Minute, auth.Claims{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	return token
}

func doReq(t *testing.T, method, url, token string, body interface{}) *http.Response {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode error: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode error: %v", err)
	}
}

func errorCode(t *testing.T, resp *http.Response) string {
	var payload struct {
		Error string `json:"error"`
	}
	decodeBody(t, resp, &payload)
	return payload.Error
}
