package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/LAKSHMI-M7/industry5.0/internal/model"
)

func scanAttendance(row pgx.Row) (model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	var day pgtype.Date
	err := row.Scan(&rec.ID, &rec.UserID, &day, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	rec.Day = day.Time
	return rec, nil
}

// CreateSelfMark inserts a Present record for the given day. The insert races
// against concurrent attempts on the attendance_user_day_key constraint, so
// at most one record per (user, day) ever exists; the loser gets
// ErrAlreadyMarked.
func (s *Store) CreateSelfMark(ctx context.Context, userID string, day time.Time) (model.AttendanceRecord, error) {
	now := time.Now().UTC()
	row := s.pool.QueryRow(ctx, `
		INSERT INTO attendance (id, user_id, day, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id, user_id, day, status, created_at, updated_at
	`, uuid.NewString(), userID, day, string(model.AttendancePresent), now)
	rec, err := scanAttendance(row)
	if isUniqueViolation(err, "attendance_user_day_key") {
		return model.AttendanceRecord{}, ErrAlreadyMarked
	}
	return rec, err
}

// UpsertMark is the secretary correction path: update-in-place when a record
// exists, insert-if-absent otherwise. An insert that loses the race on the
// unique constraint falls back to the update branch.
func (s *Store) UpsertMark(ctx context.Context, userID string, day time.Time, status model.AttendanceStatus) (model.AttendanceRecord, error) {
	rec, err := s.updateMark(ctx, userID, day, status)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return model.AttendanceRecord{}, err
	}

	now := time.Now().UTC()
	row := s.pool.QueryRow(ctx, `
		INSERT INTO attendance (id, user_id, day, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id, user_id, day, status, created_at, updated_at
	`, uuid.NewString(), userID, day, string(status), now)
	rec, err = scanAttendance(row)
	if isUniqueViolation(err, "attendance_user_day_key") {
		return s.updateMark(ctx, userID, day, status)
	}
	return rec, err
}

func (s *Store) updateMark(ctx context.Context, userID string, day time.Time, status model.AttendanceStatus) (model.AttendanceRecord, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE attendance
		SET status = $3, updated_at = $4
		WHERE user_id = $1 AND day = $2
		RETURNING id, user_id, day, status, created_at, updated_at
	`, userID, day, string(status), time.Now().UTC())
	rec, err := scanAttendance(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.AttendanceRecord{}, ErrNotFound
	}
	return rec, err
}

func (s *Store) ListUserAttendance(ctx context.Context, userID string) ([]model.AttendanceRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, day, status, created_at, updated_at
		FROM attendance
		WHERE user_id = $1
		ORDER BY day DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]model.AttendanceRecord, 0)
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) ListAttendanceByDay(ctx context.Context, day time.Time) ([]model.AttendanceEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.id, a.user_id, a.day, a.status, a.created_at, a.updated_at, u.name, u.email
		FROM attendance a
		JOIN users u ON u.id = a.user_id
		WHERE a.day = $1
		ORDER BY u.name
	`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]model.AttendanceEntry, 0)
	for rows.Next() {
		var entry model.AttendanceEntry
		var d pgtype.Date
		if err := rows.Scan(&entry.ID, &entry.UserID, &d, &entry.Status, &entry.CreatedAt, &entry.UpdatedAt, &entry.UserName, &entry.UserEmail); err != nil {
			return nil, err
		}
		entry.Day = d.Time
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) CountAttendanceByStatus(ctx context.Context, day time.Time) (map[model.AttendanceStatus]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT status, count(*)
		FROM attendance
		WHERE day = $1
		GROUP BY status
	`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.AttendanceStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[model.AttendanceStatus(status)] = count
	}
	return counts, rows.Err()
}
