package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Migrate applies the schema. Statements are idempotent so it runs on every
// startup. The attendance uniqueness guarantee lives here, in the
// attendance_user_day_key constraint, not in application code.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            uuid PRIMARY KEY,
		name          text NOT NULL,
		email         text NOT NULL,
		password_hash text,
		google_id     text,
		role          text NOT NULL DEFAULT 'student',
		allowed_roles text[] NOT NULL DEFAULT '{}',
		avatar        text,
		created_at    timestamptz NOT NULL,
		updated_at    timestamptz NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_key ON users (lower(email))`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_google_id_key ON users (google_id) WHERE google_id IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS attendance (
		id         uuid PRIMARY KEY,
		user_id    uuid NOT NULL REFERENCES users (id),
		day        date NOT NULL,
		status     text NOT NULL DEFAULT 'Present',
		created_at timestamptz NOT NULL,
		updated_at timestamptz NOT NULL,
		CONSTRAINT attendance_user_day_key UNIQUE (user_id, day)
	)`,
	`CREATE TABLE IF NOT EXISTS daily_updates (
		id                 uuid PRIMARY KEY,
		user_id            uuid NOT NULL REFERENCES users (id),
		work_done          text NOT NULL,
		time_spent         text NOT NULL,
		issues_faced       text NOT NULL DEFAULT '',
		secretary_feedback text NOT NULL DEFAULT '',
		secretary_reply    text NOT NULL DEFAULT '',
		created_at         timestamptz NOT NULL,
		updated_at         timestamptz NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS weekly_reports (
		id                 uuid PRIMARY KEY,
		user_id            uuid NOT NULL REFERENCES users (id),
		week_start         date NOT NULL,
		week_end           date NOT NULL,
		completed_work     text NOT NULL,
		ongoing_work       text NOT NULL,
		next_week_plan     text NOT NULL,
		github_repo_link   text,
		status             text NOT NULL DEFAULT 'Pending',
		secretary_feedback text,
		created_at         timestamptz NOT NULL,
		updated_at         timestamptz NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS student_profiles (
		id              uuid PRIMARY KEY,
		user_id         uuid NOT NULL UNIQUE REFERENCES users (id),
		register_number text NOT NULL UNIQUE,
		department      text NOT NULL,
		year            text NOT NULL,
		domain          text NOT NULL,
		github_link     text,
		linkedin_link   text,
		skills          text[] NOT NULL DEFAULT '{}',
		created_at      timestamptz NOT NULL,
		updated_at      timestamptz NOT NULL
	)`,
}
