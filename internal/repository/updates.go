package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/LAKSHMI-M7/industry5.0/internal/model"
)

const dailyUpdateColumns = `id, user_id, work_done, time_spent, issues_faced, secretary_feedback, secretary_reply, created_at, updated_at`

func scanDailyUpdate(row pgx.Row) (model.DailyUpdate, error) {
	var update model.DailyUpdate
	err := row.Scan(
		&update.ID,
		&update.UserID,
		&update.WorkDone,
		&update.TimeSpent,
		&update.IssuesFaced,
		&update.SecretaryFeedback,
		&update.SecretaryReply,
		&update.CreatedAt,
		&update.UpdatedAt,
	)
	return update, err
}

func (s *Store) CreateDailyUpdate(ctx context.Context, update model.DailyUpdate) (model.DailyUpdate, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO daily_updates (id, user_id, work_done, time_spent, issues_faced, secretary_feedback, secretary_reply, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+dailyUpdateColumns+`
	`, update.ID, update.UserID, update.WorkDone, update.TimeSpent, update.IssuesFaced, update.SecretaryFeedback, update.SecretaryReply, update.CreatedAt, update.UpdatedAt)
	return scanDailyUpdate(row)
}

func (s *Store) ListDailyUpdatesByUser(ctx context.Context, userID string) ([]model.DailyUpdate, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+dailyUpdateColumns+`
		FROM daily_updates
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	updates := make([]model.DailyUpdate, 0)
	for rows.Next() {
		update, err := scanDailyUpdate(rows)
		if err != nil {
			return nil, err
		}
		updates = append(updates, update)
	}
	return updates, rows.Err()
}

func (s *Store) ListDailyUpdates(ctx context.Context, limit int) ([]model.DailyUpdateEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT d.id, d.user_id, d.work_done, d.time_spent, d.issues_faced, d.secretary_feedback, d.secretary_reply, d.created_at, d.updated_at, u.name, u.email
		FROM daily_updates d
		JOIN users u ON u.id = d.user_id
		ORDER BY d.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]model.DailyUpdateEntry, 0)
	for rows.Next() {
		var entry model.DailyUpdateEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.WorkDone,
			&entry.TimeSpent,
			&entry.IssuesFaced,
			&entry.SecretaryFeedback,
			&entry.SecretaryReply,
			&entry.CreatedAt,
			&entry.UpdatedAt,
			&entry.UserName,
			&entry.UserEmail,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ReplyToDailyUpdate overwrites only the provided fields; nil leaves the
// stored value untouched.
func (s *Store) ReplyToDailyUpdate(ctx context.Context, updateID string, feedback, reply *string) (model.DailyUpdate, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE daily_updates
		SET secretary_feedback = COALESCE($2, secretary_feedback),
		    secretary_reply = COALESCE($3, secretary_reply),
		    updated_at = $4
		WHERE id = $1
		RETURNING `+dailyUpdateColumns+`
	`, updateID, feedback, reply, time.Now().UTC())
	update, err := scanDailyUpdate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.DailyUpdate{}, ErrNotFound
	}
	return update, err
}

func (s *Store) CountDailyUpdates(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM daily_updates`).Scan(&count)
	return count, err
}

type TrendPoint struct {
	Date  string
	Count int
}

func (s *Store) DailyUpdateTrend(ctx context.Context, since time.Time) ([]TrendPoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT to_char(created_at, 'YYYY-MM-DD') AS day, count(*)
		FROM daily_updates
		WHERE created_at >= $1
		GROUP BY day
		ORDER BY day
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make([]TrendPoint, 0)
	for rows.Next() {
		var point TrendPoint
		if err := rows.Scan(&point.Date, &point.Count); err != nil {
			return nil, err
		}
		points = append(points, point)
	}
	return points, rows.Err()
}
