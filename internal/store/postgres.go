package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AdamLukas17/something-sweet/internal/domain"
)

// PostgresRepo implements Repo on a pgx connection pool. This is the
// production backend.
type PostgresRepo struct{ pool *pgxpool.Pool }

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
    id          BIGSERIAL PRIMARY KEY,
    telegram_id TEXT UNIQUE NOT NULL,
    chat_id     TEXT NOT NULL,
    frequency   TEXT NOT NULL DEFAULT 'weekly',
    next_run_at TIMESTAMPTZ,
    is_paused   BOOLEAN NOT NULL DEFAULT FALSE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_users_next_run_at ON users(next_run_at);
CREATE INDEX IF NOT EXISTS idx_users_telegram_id ON users(telegram_id);
`

// OpenPostgres connects to the database, verifies the connection, and
// bootstraps the schema.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return &PostgresRepo{pool: pool}, nil
}

func (r *PostgresRepo) Close() error {
	r.pool.Close()
	return nil
}

const postgresColumns = `id, telegram_id, chat_id, frequency, next_run_at, is_paused, created_at, updated_at`

func (r *PostgresRepo) GetByTelegramID(ctx context.Context, telegramID string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+postgresColumns+` FROM users WHERE telegram_id = $1`, telegramID)

	u, err := scanPostgresUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *PostgresRepo) Insert(ctx context.Context, u *domain.User) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO users (telegram_id, chat_id, frequency, next_run_at, is_paused, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		u.TelegramID, u.ChatID, string(u.Frequency),
		nullTime(u.NextRunAt), u.IsPaused,
		u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
	).Scan(&u.ID)
}

func (r *PostgresRepo) Update(ctx context.Context, u *domain.User) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users
		SET chat_id = $1, frequency = $2, next_run_at = $3, is_paused = $4, updated_at = $5
		WHERE telegram_id = $6`,
		u.ChatID, string(u.Frequency), nullTime(u.NextRunAt),
		u.IsPaused, u.UpdatedAt.UTC(), u.TelegramID,
	)
	return err
}

// SetNextRun advances the schedule columns only, leaving is_paused,
// frequency, and chat_id untouched.
func (r *PostgresRepo) SetNextRun(ctx context.Context, telegramID string, next, updatedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users
		SET next_run_at = $1, updated_at = $2
		WHERE telegram_id = $3`,
		next.UTC(), updatedAt.UTC(), telegramID,
	)
	return err
}

func (r *PostgresRepo) ListDue(ctx context.Context, asOf time.Time) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+postgresColumns+`
		FROM users
		WHERE is_paused = FALSE
		  AND next_run_at IS NOT NULL
		  AND next_run_at <= $1`,
		asOf.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.User
	for rows.Next() {
		u, err := scanPostgresUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func scanPostgresUser(row pgx.Row) (*domain.User, error) {
	var (
		u       domain.User
		freq    string
		nextRun *time.Time
	)
	if err := row.Scan(&u.ID, &u.TelegramID, &u.ChatID, &freq, &nextRun, &u.IsPaused, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Frequency = domain.Frequency(freq)
	if nextRun != nil {
		t := nextRun.UTC()
		u.NextRunAt = &t
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}
