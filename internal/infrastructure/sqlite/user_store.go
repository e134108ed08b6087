package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/foodguard/backend/internal/domain"
	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	username          TEXT NOT NULL UNIQUE,
	name              TEXT NOT NULL,
	mobile            TEXT NOT NULL UNIQUE,
	age               INTEGER NOT NULL,
	allergies         TEXT NOT NULL DEFAULT '',
	health_conditions TEXT NOT NULL DEFAULT '',
	created_at        DATETIME NOT NULL,
	updated_at        DATETIME NOT NULL
)`

// listSeparator joins declared sensitivities in a single column
const listSeparator = ", "

// UserStore is a SQLite-backed domain.UserRepository
type UserStore struct {
	db   *sql.DB
	path string
}

// NewUserStore opens (or creates) the database at path.
// The special path ":memory:" keeps everything in memory.
func NewUserStore(path string) (*UserStore, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// every new connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &UserStore{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *UserStore) Close() error {
	return s.db.Close()
}

// Create inserts a user; it fails with domain.ErrUserExists on a duplicate username or mobile.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidInput
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ? OR mobile = ?`,
		user.Username, user.Mobile,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking existing user: %w", err)
	}
	if count > 0 {
		return domain.ErrUserExists
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, name, mobile, age, allergies, health_conditions, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.Name, user.Mobile, user.Age,
		joinList(user.Allergies), joinList(user.Conditions), now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading user id: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetByMobile loads a user by mobile number
func (s *UserStore) GetByMobile(ctx context.Context, mobile string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, name, mobile, age, allergies, health_conditions, created_at, updated_at
		 FROM users WHERE mobile = ?`, mobile)

	var (
		user                  domain.User
		allergies, conditions string
		createdAt, updatedAt  sql.NullTime
	)
	err := row.Scan(&user.ID, &user.Username, &user.Name, &user.Mobile, &user.Age,
		&allergies, &conditions, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}

	user.CreatedAt = createdAt.Time
	user.UpdatedAt = updatedAt.Time
	user.Allergies = splitList(allergies)
	user.Conditions = splitList(conditions)
	return &user, nil
}

// UpdateSensitivities replaces a user's allergies and health conditions
func (s *UserStore) UpdateSensitivities(ctx context.Context, mobile string, allergies, conditions []string) (*domain.User, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET allergies = ?, health_conditions = ?, updated_at = ? WHERE mobile = ?`,
		joinList(allergies), joinList(conditions), time.Now().UTC(), mobile,
	)
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrUserNotFound
	}
	return s.GetByMobile(ctx, mobile)
}

// joinList stores declarations the way they were entered, one comma-separated column
func joinList(items []string) string {
	kept := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			kept = append(kept, item)
		}
	}
	return strings.Join(kept, listSeparator)
}

func splitList(column string) []string {
	items := []string{}
	for _, item := range strings.Split(column, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
