package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/LAKSHMI-M7/industry5.0/internal/model"
)

const userColumns = `id, name, email, password_hash, google_id, role, allowed_roles, avatar, created_at, updated_at`

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.GoogleID,
		&user.Role,
		&user.AllowedRoles,
		&user.Avatar,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

func (s *Store) CreateUser(ctx context.Context, user model.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, google_id, role, allowed_roles, avatar, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.GoogleID, string(user.Role), user.AllowedRoles, user.Avatar, user.CreatedAt, user.UpdatedAt)
	if isUniqueViolation(err, "users_email_lower_key") {
		return ErrDuplicateEmail
	}
	if isUniqueViolation(err, "users_google_id_key") {
		return ErrDuplicateProviderID
	}
	return err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE lower(email) = lower($1)
	`, email)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return user, err
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, userID)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return user, err
}

func (s *Store) ListUsers(ctx context.Context, limit int) ([]model.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateUserRole changes the persisted primary role. The allowed-role set is
// only extended when extendAllowed is set; there is no implicit extension.
func (s *Store) UpdateUserRole(ctx context.Context, userID string, role model.Role, extendAllowed bool) (model.User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users
		SET role = $2,
		    allowed_roles = CASE
		        WHEN $3::bool AND NOT (allowed_roles @> ARRAY[$2]::text[]) THEN array_append(allowed_roles, $2)
		        ELSE allowed_roles
		    END,
		    updated_at = $4
		WHERE id = $1
		RETURNING `+userColumns+`
	`, userID, string(role), extendAllowed, time.Now().UTC())
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return user, err
}

func (s *Store) CountUsersByRole(ctx context.Context) (map[model.Role]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT role, count(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.Role]int)
	for rows.Next() {
		var role string
		var count int
		if err := rows.Scan(&role, &count); err != nil {
			return nil, err
		}
		counts[model.Role(role)] = count
	}
	return counts, rows.Err()
}
