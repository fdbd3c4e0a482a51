// Package store persists users, sessions and session events in Postgres.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// ErrUserNotFound is returned when a user id has no row.
var ErrUserNotFound = errors.New("user not found")

type Store struct {
	DB *sql.DB
}

// User is a registered student profile. Avatar and Color drive the
// chat UI rendering.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Color  string `json:"color"`
}

// Session is one conversation scope. App name and user id together
// with the session id form the primary key.
type Session struct {
	AppName   string    `json:"app_name"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Event is one turn in a session, either a user turn or an agent turn.
type Event struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewWithDSN constructs the Store using an explicit Postgres DSN
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// GetUser returns the profile for a user id.
func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	var u User
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, name, avatar, color FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Avatar, &u.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// ListUsers returns all registered profiles ordered by name.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, avatar, color FROM users ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Avatar, &u.Color); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// EnsureSession creates the session row if it does not exist yet.
func (s *Store) EnsureSession(ctx context.Context, appName, userID, sessionID string) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO sessions (app_name, user_id, session_id, created_at, updated_at)
VALUES ($1,$2,$3,NOW(),NOW())
ON CONFLICT (app_name, user_id, session_id) DO NOTHING;
`, appName, userID, sessionID)
	return err
}

// AppendEvent records one turn in a session and touches its updated_at.
func (s *Store) AppendEvent(ctx context.Context, appName, userID, sessionID, author, content string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO session_events (id, app_name, user_id, session_id, author, content, created_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW());
`, uuid.New().String(), appName, userID, sessionID, author, content); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
UPDATE sessions SET updated_at = NOW()
WHERE app_name = $1 AND user_id = $2 AND session_id = $3;
`, appName, userID, sessionID); err != nil {
		return err
	}
	return tx.Commit()
}

// ListEvents returns a session's turns in chronological order.
func (s *Store) ListEvents(ctx context.Context, appName, userID, sessionID string) ([]Event, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, author, content, created_at FROM session_events
WHERE app_name = $1 AND user_id = $2 AND session_id = $3
ORDER BY created_at ASC;
`, appName, userID, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Author, &e.Content, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
