package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/LAKSHMI-M7/industry5.0/internal/model"
)

const profileColumns = `id, user_id, register_number, department, year, domain, github_link, linkedin_link, skills, created_at, updated_at`

func scanProfile(row pgx.Row) (model.StudentProfile, error) {
	var profile model.StudentProfile
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.RegisterNumber,
		&profile.Department,
		&profile.Year,
		&profile.Domain,
		&profile.GithubLink,
		&profile.LinkedinLink,
		&profile.Skills,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	return profile, err
}

func (s *Store) GetProfileByUserID(ctx context.Context, userID string) (model.StudentProfile, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM student_profiles
		WHERE user_id = $1
	`, userID)
	profile, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.StudentProfile{}, ErrNotFound
	}
	return profile, err
}

// UpsertProfile creates or replaces a student's profile, keyed on the unique
// user_id column. Like attendance marking, the insert branch defers to the
// update branch when it loses a race on the constraint.
func (s *Store) UpsertProfile(ctx context.Context, profile model.StudentProfile) (model.StudentProfile, error) {
	updated, err := s.updateProfile(ctx, profile)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return model.StudentProfile{}, err
	}

	now := time.Now().UTC()
	row := s.pool.QueryRow(ctx, `
		INSERT INTO student_profiles (id, user_id, register_number, department, year, domain, github_link, linkedin_link, skills, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING `+profileColumns+`
	`, uuid.NewString(), profile.UserID, profile.RegisterNumber, profile.Department, profile.Year, profile.Domain, profile.GithubLink, profile.LinkedinLink, profile.Skills, now)
	created, err := scanProfile(row)
	if isUniqueViolation(err, "student_profiles_user_id_key") {
		return s.updateProfile(ctx, profile)
	}
	if isUniqueViolation(err, "student_profiles_register_number_key") {
		return model.StudentProfile{}, ErrDuplicateRegisterNo
	}
	return created, err
}

func (s *Store) updateProfile(ctx context.Context, profile model.StudentProfile) (model.StudentProfile, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE student_profiles
		SET register_number = $2, department = $3, year = $4, domain = $5,
		    github_link = $6, linkedin_link = $7, skills = $8, updated_at = $9
		WHERE user_id = $1
		RETURNING `+profileColumns+`
	`, profile.UserID, profile.RegisterNumber, profile.Department, profile.Year, profile.Domain, profile.GithubLink, profile.LinkedinLink, profile.Skills, time.Now().UTC())
	updated, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.StudentProfile{}, ErrNotFound
	}
	if isUniqueViolation(err, "student_profiles_register_number_key") {
		return model.StudentProfile{}, ErrDuplicateRegisterNo
	}
	return updated, err
}

func (s *Store) ListStudentProfiles(ctx context.Context) ([]model.StudentProfileEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.user_id, p.register_number, p.department, p.year, p.domain, p.github_link, p.linkedin_link, p.skills, p.created_at, p.updated_at, u.name, u.email, u.avatar
		FROM student_profiles p
		JOIN users u ON u.id = p.user_id
		ORDER BY u.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]model.StudentProfileEntry, 0)
	for rows.Next() {
		var entry model.StudentProfileEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.RegisterNumber,
			&entry.Department,
			&entry.Year,
			&entry.Domain,
			&entry.GithubLink,
			&entry.LinkedinLink,
			&entry.Skills,
			&entry.CreatedAt,
			&entry.UpdatedAt,
			&entry.UserName,
			&entry.UserEmail,
			&entry.UserAvatar,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

type DomainCount struct {
	Domain string
	Count  int
}

func (s *Store) DomainDistribution(ctx context.Context) ([]DomainCount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT domain, count(*)
		FROM student_profiles
		GROUP BY domain
		ORDER BY count(*) DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]DomainCount, 0)
	for rows.Next() {
		var entry DomainCount
		if err := rows.Scan(&entry.Domain, &entry.Count); err != nil {
			return nil, err
		}
		counts = append(counts, entry)
	}
	return counts, rows.Err()
}
