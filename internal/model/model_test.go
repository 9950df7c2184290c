package model

import (
	"testing"
	"time"
)

func TestValidRole(t *testing.T) {
	for _, role := range []Role{RoleStudent, RoleSecretary, RoleStaff, RoleAdmin, RoleLeader} {
		if !ValidRole(role) {
			t.Fatalf("expected role %s to be valid", role)
		}
	}
	if ValidRole("superuser") {
		t.Fatalf("expected unknown role to be invalid")
	}
	if ValidRole("") {
		t.Fatalf("expected empty role to be invalid")
	}
}

func TestCanAssume(t *testing.T) {
	user := User{
		Role:         RoleStudent,
		AllowedRoles: []string{"student", "secretary"},
	}
	if !user.CanAssume(RoleStudent) {
		t.Fatalf("expected student to be assumable")
	}
	if !user.CanAssume(RoleSecretary) {
		t.Fatalf("expected secretary to be assumable")
	}
	if user.CanAssume(RoleAdmin) {
		t.Fatalf("expected admin to not be assumable")
	}

	empty := User{Role: RoleStudent}
	if empty.CanAssume(RoleStudent) {
		t.Fatalf("expected empty allowed set to deny everything")
	}
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	ts := time.Date(2024, 1, 10, 2, 30, 0, 0, loc)
	day := Day(ts)
	if day != time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("expected 2024-01-09 UTC, got %s", day)
	}
	if got := Day(day); got != day {
		t.Fatalf("expected Day to be idempotent, got %s", got)
	}
}
