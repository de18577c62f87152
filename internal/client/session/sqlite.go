package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/codecampus/campus-cli/internal/client/session/migrations"
	"github.com/codecampus/campus-cli/internal/dbx"
	"github.com/pressly/goose/v3"
)

// SQLiteStore is the durable Store backed by a client-local SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the session database at dsn and
// brings the schema up to date.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.set(ctx, s.db, key, value, ttl)
}

func (s *SQLiteStore) set(ctx context.Context, db dbx.DBTX, key string, value []byte, ttl time.Duration) error {
	expiresAt := s.now().Add(ttl).Unix()
	_, err := db.ExecContext(ctx, `
		INSERT INTO session (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`, key, value, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set session[%s]: %w", key, err)
	}
	return nil
}

// SetMany writes all entries in a single transaction so the store can never
// be observed holding some of them without the others.
func (s *SQLiteStore) SetMany(ctx context.Context, entries map[string][]byte, ttl time.Duration) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for key, value := range entries {
			if err := s.set(ctx, tx, key, value, ttl); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get returns the stored value, or (nil, nil) when the key is absent or
// past its expiry. Expired rows are removed on the way out.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		value     []byte
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM session WHERE key = ?`, key).Scan(&value, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session[%s]: %w", key, err)
	}

	if s.now().Unix() >= expiresAt {
		_ = s.Delete(ctx, key)
		return nil, nil
	}

	return value, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete session[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session`)
	if err != nil {
		return fmt.Errorf("failed to clear session store: %w", err)
	}
	return nil
}
