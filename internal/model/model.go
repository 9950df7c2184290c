package model

import "time"

type Role string

const (
	RoleStudent   Role = "student"
	RoleSecretary Role = "secretary"
	RoleStaff     Role = "staff"
	RoleAdmin     Role = "admin"
	RoleLeader    Role = "leader"
)

func ValidRole(role Role) bool {
	switch role {
	case RoleStudent, RoleSecretary, RoleStaff, RoleAdmin, RoleLeader:
		return true
	default:
		return false
	}
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash *string
	GoogleID     *string
	Role         Role
	AllowedRoles []string
	Avatar       *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanAssume reports whether the user may present as the given role in the
// client UI. It has no bearing on server-side authorization, which always
// uses the persisted primary Role.
func (u User) CanAssume(role Role) bool {
	for _, allowed := range u.AllowedRoles {
		if Role(allowed) == role {
			return true
		}
	}
	return false
}

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
	AttendanceLeave   AttendanceStatus = "Leave"
)

type AttendanceRecord struct {
	ID        string
	UserID    string
	Day       time.Time
	Status    AttendanceStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AttendanceEntry is an AttendanceRecord joined with the owning user, for
// the secretary per-day listing.
type AttendanceEntry struct {
	AttendanceRecord
	UserName  string
	UserEmail string
}

type DailyUpdate struct {
	ID                string
	UserID            string
	WorkDone          string
	TimeSpent         string
	IssuesFaced       string
	SecretaryFeedback string
	SecretaryReply    string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type DailyUpdateEntry struct {
	DailyUpdate
	UserName  string
	UserEmail string
}

type ReportStatus string

const (
	ReportPending          ReportStatus = "Pending"
	ReportCompleted        ReportStatus = "Completed"
	ReportOngoing          ReportStatus = "Ongoing"
	ReportNeedsImprovement ReportStatus = "Needs Improvement"
)

type WeeklyReport struct {
	ID                string
	UserID            string
	WeekStart         time.Time
	WeekEnd           time.Time
	CompletedWork     string
	OngoingWork       string
	NextWeekPlan      string
	GithubRepoLink    *string
	Status            ReportStatus
	SecretaryFeedback *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type WeeklyReportEntry struct {
	WeeklyReport
	UserName  string
	UserEmail string
}

type StudentProfile struct {
	ID             string
	UserID         string
	RegisterNumber string
	Department     string
	Year           string
	Domain         string
	GithubLink     *string
	LinkedinLink   *string
	Skills         []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type StudentProfileEntry struct {
	StudentProfile
	UserName   string
	UserEmail  string
	UserAvatar *string
}

// Day truncates a timestamp to calendar-day granularity in UTC. Attendance
// uniqueness is keyed on this value.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
