// Package store is the SQLite-backed account and upload-log store. Every
// method issues a single statement; there are no multi-statement
// transactions and no state shared with the analysis pipeline.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bizpulse/internal/models"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when no user row matches.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a username is already taken.
	ErrDuplicate = errors.New("store: duplicate")
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	username      TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS user_uploads (
	id          TEXT PRIMARY KEY,
	username    TEXT NOT NULL,
	filename    TEXT NOT NULL,
	upload_time TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_user_uploads_username ON user_uploads (username, upload_time DESC);
`

type Store struct {
	db *sql.DB
}

// Open connects to the SQLite database at the given DSN, pings it, and
// applies the schema. Example DSNs: "bizpulse.db",
// "file:bizpulse.db?cache=shared".
func Open(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("store: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// CreateUser inserts a new account. The password must already be hashed;
// this layer never sees plaintext.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, passwordHash, time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("store: create user: %w", err)
	}
	return nil
}

// UserByName fetches one account, or ErrNotFound.
func (s *Store) UserByName(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT username, password_hash, created_at FROM users WHERE username = ?`,
		username,
	).Scan(&u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: user by name: %w", err)
	}
	return &u, nil
}

// LogUpload appends one row to the upload log and returns it.
func (s *Store) LogUpload(ctx context.Context, username, filename string) (*models.Upload, error) {
	up := &models.Upload{
		ID:         uuid.NewString(),
		Username:   username,
		Filename:   filename,
		UploadTime: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_uploads (id, username, filename, upload_time) VALUES (?, ?, ?, ?)`,
		up.ID, up.Username, up.Filename, up.UploadTime,
	)
	if err != nil {
		return nil, fmt.Errorf("store: log upload: %w", err)
	}
	return up, nil
}

// UploadsByUser lists a user's uploads, most recent first.
func (s *Store) UploadsByUser(ctx context.Context, username string) ([]models.Upload, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, filename, upload_time FROM user_uploads WHERE username = ? ORDER BY upload_time DESC, rowid DESC`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("store: uploads by user: %w", err)
	}
	defer rows.Close()

	uploads := make([]models.Upload, 0)
	for rows.Next() {
		var up models.Upload
		if err := rows.Scan(&up.ID, &up.Username, &up.Filename, &up.UploadTime); err != nil {
			return nil, fmt.Errorf("store: scan upload: %w", err)
		}
		uploads = append(uploads, up)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate uploads: %w", err)
	}
	return uploads, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
