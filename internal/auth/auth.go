// internal/auth/auth.go
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"yatube/internal/db"
)

var (
	ErrEmailTaken    = errors.New("email already taken")
	ErrUsernameTaken = errors.New("username already taken")
	ErrInvalidLogin  = errors.New("invalid username or password")
	ErrNoSession     = errors.New("session not found")
)

// Identity is the signed-in user carried through a request.
type Identity struct {
	ID       int64
	Username string
}

// ----------------------------
// Context helpers
// ----------------------------

type ctxKeyIdentity struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, _ := ctx.Value(ctxKeyIdentity{}).(Identity)
	return id, id.ID != 0
}

// Manager owns users' credentials and their sessions.
type Manager struct {
	DB       *sql.DB
	Lifetime time.Duration
}

func NewManager(d *sql.DB, lifetime time.Duration) *Manager {
	return &Manager{DB: d, Lifetime: lifetime}
}

// ----------------------------
// Register
// ----------------------------

// Register stores a new user. Input is expected to be validated already.
func (m *Manager) Register(ctx context.Context, username, email, password string) (int64, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)

	var exists bool
	if err := m.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists); err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrUsernameTaken
	}
	if err := m.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists); err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	var uid int64
	err = m.DB.QueryRowContext(ctx,
		`INSERT INTO users (email, username, password_hash) VALUES ($1, $2, $3) RETURNING id`,
		email, username, string(hash),
	).Scan(&uid)
	// a concurrent signup can still win the UNIQUE race
	switch {
	case db.IsUniqueViolation(err, "users_username_key"):
		return 0, ErrUsernameTaken
	case db.IsUniqueViolation(err, "users_email_key"):
		return 0, ErrEmailTaken
	case err != nil:
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return uid, nil
}

// ----------------------------
// Login
// ----------------------------

// Login checks credentials and opens a fresh session, dropping the user's
// older ones.
func (m *Manager) Login(ctx context.Context, username, password string) (string, Identity, error) {
	username = strings.TrimSpace(username)

	var (
		id         = Identity{Username: username}
		passwdHash string
	)
	err := m.DB.QueryRowContext(ctx, `SELECT id, password_hash FROM users WHERE username = $1`, username).
		Scan(&id.ID, &passwdHash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", Identity{}, ErrInvalidLogin
	}
	if err != nil {
		return "", Identity{}, fmt.Errorf("query user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwdHash), []byte(password)); err != nil {
		return "", Identity{}, ErrInvalidLogin
	}

	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", Identity{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, id.ID); err != nil {
		return "", Identity{}, fmt.Errorf("delete old sessions: %w", err)
	}

	sid := uuid.New().String()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, expires_at) VALUES ($1, $2, $3)`,
		sid, id.ID, time.Now().Add(m.Lifetime),
	); err != nil {
		return "", Identity{}, fmt.Errorf("insert session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", Identity{}, fmt.Errorf("commit: %w", err)
	}
	return sid, id, nil
}

// ----------------------------
// Logout
// ----------------------------

func (m *Manager) Logout(ctx context.Context, sid string) error {
	if _, err := uuid.Parse(sid); err != nil {
		return nil
	}
	_, err := m.DB.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, sid)
	return err
}

// ----------------------------
// Session lookup
// ----------------------------

// UserFromSession resolves a session cookie value to its user and expiry.
// Expiry is left to the caller.
func (m *Manager) UserFromSession(ctx context.Context, sid string) (Identity, time.Time, error) {
	if _, err := uuid.Parse(sid); err != nil {
		return Identity{}, time.Time{}, ErrNoSession
	}

	var (
		id  Identity
		exp time.Time
	)
	err := m.DB.QueryRowContext(ctx, `
SELECT u.id, u.username, s.expires_at
  FROM sessions s
  JOIN users u ON u.id = s.user_id
 WHERE s.id = $1`, sid).Scan(&id.ID, &id.Username, &exp)
	if errors.Is(err, sql.ErrNoRows) {
		return Identity{}, time.Time{}, ErrNoSession
	}
	if err != nil {
		return Identity{}, time.Time{}, err
	}
	return id, exp, nil
}
