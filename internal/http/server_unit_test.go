package http

import (
	"context"
	"testing"

	"github.com/LAKSHMI-M7/industry5.0/internal/config"
	"github.com/LAKSHMI-M7/industry5.0/internal/model"
)

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"":                   "",
		"Bearer abc":         "abc",
		"bearer abc":         "abc",
		"BEARER abc":         "abc",
		"Bearer":             "",
		"Basic dXNlcjpwYXNz": "",
		"Bearer  abc ":       "abc",
	}
	for header, expect := range cases {
		if got := bearerToken(header); got != expect {
			t.Fatalf("header %q: expected %q, got %q", header, expect, got)
		}
	}
}

func TestNormalizeAttendanceStatus(t *testing.T) {
	cases := map[string]model.AttendanceStatus{
		"present": model.AttendancePresent,
		"Present": model.AttendancePresent,
		"ABSENT":  model.AttendanceAbsent,
		"leave":   model.AttendanceLeave,
		" Leave ": model.AttendanceLeave,
	}
	for input, expect := range cases {
		status, err := normalizeAttendanceStatus(input)
		if err != nil {
			t.Fatalf("expected status %q to be valid", input)
		}
		if status != expect {
			t.Fatalf("input %q: expected %s, got %s", input, expect, status)
		}
	}
	if _, err := normalizeAttendanceStatus("late"); err == nil {
		t.Fatalf("expected unknown status to error")
	}
	if _, err := normalizeAttendanceStatus(""); err == nil {
		t.Fatalf("expected empty status to error")
	}
}

func TestNormalizeReportStatus(t *testing.T) {
	cases := map[string]model.ReportStatus{
		"pending":           model.ReportPending,
		"Completed":         model.ReportCompleted,
		"ongoing":           model.ReportOngoing,
		"needs improvement": model.ReportNeedsImprovement,
		"Needs Improvement": model.ReportNeedsImprovement,
	}
	for input, expect := range cases {
		status, err := normalizeReportStatus(input)
		if err != nil {
			t.Fatalf("expected status %q to be valid", input)
		}
		if status != expect {
			t.Fatalf("input %q: expected %s, got %s", input, expect, status)
		}
	}
	if _, err := normalizeReportStatus("rejected"); err == nil {
		t.Fatalf("expected unknown status to error")
	}
}

func TestLoginThrottleWithoutRedis(t *testing.T) {
	s := NewServer(config.Config{LoginMaxAttempts: 3}, nil, nil)
	if s.loginThrottled(context.Background(), "someone@example.local") {
		t.Fatalf("expected throttle to be off without redis")
	}
	// Both are no-ops without a client; neither may panic.
	s.recordLoginFailure(context.Background(), "someone@example.local")
	s.clearLoginFailures(context.Background(), "someone@example.local")
}

func TestParseDay(t *testing.T) {
	day, err := parseDay("2024-01-10")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if formatDay(day) != "2024-01-10" {
		t.Fatalf("expected round trip, got %s", formatDay(day))
	}
	if _, err := parseDay("10/01/2024"); err == nil {
		t.Fatalf("expected unsupported format to error")
	}
	if _, err := parseDay(""); err == nil {
		t.Fatalf("expected empty date to error")
	}
}
