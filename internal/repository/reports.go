package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/LAKSHMI-M7/industry5.0/internal/model"
)

const weeklyReportColumns = `id, user_id, week_start, week_end, completed_work, ongoing_work, next_week_plan, github_repo_link, status, secretary_feedback, created_at, updated_at`

func scanWeeklyReport(row pgx.Row) (model.WeeklyReport, error) {
	var report model.WeeklyReport
	var weekStart, weekEnd pgtype.Date
	err := row.Scan(
		&report.ID,
		&report.UserID,
		&weekStart,
		&weekEnd,
		&report.CompletedWork,
		&report.OngoingWork,
		&report.NextWeekPlan,
		&report.GithubRepoLink,
		&report.Status,
		&report.SecretaryFeedback,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		return model.WeeklyReport{}, err
	}
	report.WeekStart = weekStart.Time
	report.WeekEnd = weekEnd.Time
	return report, nil
}

func (s *Store) CreateWeeklyReport(ctx context.Context, report model.WeeklyReport) (model.WeeklyReport, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO weekly_reports (id, user_id, week_start, week_end, completed_work, ongoing_work, next_week_plan, github_repo_link, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+weeklyReportColumns+`
	`, report.ID, report.UserID, report.WeekStart, report.WeekEnd, report.CompletedWork, report.OngoingWork, report.NextWeekPlan, report.GithubRepoLink, string(report.Status), report.CreatedAt, report.UpdatedAt)
	return scanWeeklyReport(row)
}

func (s *Store) ListWeeklyReportsByUser(ctx context.Context, userID string) ([]model.WeeklyReport, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+weeklyReportColumns+`
		FROM weekly_reports
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]model.WeeklyReport, 0)
	for rows.Next() {
		report, err := scanWeeklyReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

func (s *Store) ListWeeklyReports(ctx context.Context, limit int) ([]model.WeeklyReportEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.id, r.user_id, r.week_start, r.week_end, r.completed_work, r.ongoing_work, r.next_week_plan, r.github_repo_link, r.status, r.secretary_feedback, r.created_at, r.updated_at, u.name, u.email
		FROM weekly_reports r
		JOIN users u ON u.id = r.user_id
		ORDER BY r.week_end DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]model.WeeklyReportEntry, 0)
	for rows.Next() {
		var entry model.WeeklyReportEntry
		var weekStart, weekEnd pgtype.Date
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&weekStart,
			&weekEnd,
			&entry.CompletedWork,
			&entry.OngoingWork,
			&entry.NextWeekPlan,
			&entry.GithubRepoLink,
			&entry.Status,
			&entry.SecretaryFeedback,
			&entry.CreatedAt,
			&entry.UpdatedAt,
			&entry.UserName,
			&entry.UserEmail,
		); err != nil {
			return nil, err
		}
		entry.WeekStart = weekStart.Time
		entry.WeekEnd = weekEnd.Time
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) ReviewWeeklyReport(ctx context.Context, reportID string, status *model.ReportStatus, feedback *string) (model.WeeklyReport, error) {
	var statusText *string
	if status != nil {
		text := string(*status)
		statusText = &text
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE weekly_reports
		SET status = COALESCE($2, status),
		    secretary_feedback = COALESCE($3, secretary_feedback),
		    updated_at = $4
		WHERE id = $1
		RETURNING `+weeklyReportColumns+`
	`, reportID, statusText, feedback, time.Now().UTC())
	report, err := scanWeeklyReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.WeeklyReport{}, ErrNotFound
	}
	return report, err
}

func (s *Store) CountWeeklyReports(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM weekly_reports`).Scan(&count)
	return count, err
}
