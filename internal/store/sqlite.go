package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/AdamLukas17/something-sweet/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database. This is the
// development backend.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Single-writer engine; keep the pool at one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

const sqliteColumns = `id, telegram_id, chat_id, frequency, next_run_at, is_paused, created_at, updated_at`

// GetByTelegramID returns the user with the given telegram id or ErrNotFound.
func (r *SQLiteRepo) GetByTelegramID(ctx context.Context, telegramID string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sqliteColumns+` FROM users WHERE telegram_id = ?`, telegramID)

	u, err := scanSQLiteUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Insert persists a new user row and fills in the generated id.
func (r *SQLiteRepo) Insert(ctx context.Context, u *domain.User) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (telegram_id, chat_id, frequency, next_run_at, is_paused, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.TelegramID, u.ChatID, string(u.Frequency),
		toNullInt64(u.NextRunAt), boolToInt(u.IsPaused),
		u.CreatedAt.UTC().Unix(), u.UpdatedAt.UTC().Unix(),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

// Update rewrites the user's mutable columns, keyed by telegram id.
func (r *SQLiteRepo) Update(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET chat_id = ?, frequency = ?, next_run_at = ?, is_paused = ?, updated_at = ?
		WHERE telegram_id = ?`,
		u.ChatID, string(u.Frequency), toNullInt64(u.NextRunAt),
		boolToInt(u.IsPaused), u.UpdatedAt.UTC().Unix(), u.TelegramID,
	)
	return err
}

// SetNextRun advances the schedule columns only, leaving is_paused,
// frequency, and chat_id untouched.
func (r *SQLiteRepo) SetNextRun(ctx context.Context, telegramID string, next, updatedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET next_run_at = ?, updated_at = ?
		WHERE telegram_id = ?`,
		next.UTC().Unix(), updatedAt.UTC().Unix(), telegramID,
	)
	return err
}

// ListDue returns every non-paused user whose next_run_at is <= asOf.
func (r *SQLiteRepo) ListDue(ctx context.Context, asOf time.Time) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sqliteColumns+`
		FROM users
		WHERE is_paused = 0
		  AND next_run_at IS NOT NULL
		  AND next_run_at <= ?`,
		asOf.UTC().Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.User
	for rows.Next() {
		u, err := scanSQLiteUser(rows)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteUser(row rowScanner) (*domain.User, error) {
	var (
		id         int64
		telegramID string
		chatID     string
		frequency  string
		nextNS     sql.NullInt64
		pausedInt  int
		createdAt  int64
		updatedAt  int64
	)
	if err := row.Scan(&id, &telegramID, &chatID, &frequency, &nextNS, &pausedInt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return &domain.User{
		ID:         id,
		TelegramID: telegramID,
		ChatID:     chatID,
		Frequency:  domain.Frequency(frequency),
		NextRunAt:  fromNullInt64(nextNS),
		IsPaused:   pausedInt != 0,
		CreatedAt:  time.Unix(createdAt, 0).UTC(),
		UpdatedAt:  time.Unix(updatedAt, 0).UTC(),
	}, nil
}
