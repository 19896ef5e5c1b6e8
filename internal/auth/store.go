package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering an email that already
	// has an account.
	ErrEmailTaken = errors.New("email already registered")
)

// User is a registered account.
type User struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	PasswordHash      string    `json:"-"`
	PreferredLanguage string    `json:"preferred_language"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// UserStore persists user accounts.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

// Querier is the subset of pgxpool.Pool the user store needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGUserStore is the PostgreSQL-backed UserStore.
type PGUserStore struct {
	db Querier
}

// NewPGUserStore creates a PostgreSQL user store.
func NewPGUserStore(db Querier) *PGUserStore {
	return &PGUserStore{db: db}
}

const userColumns = `id, email, name, password_hash, preferred_language, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash,
		&u.PreferredLanguage, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user. The caller supplies the id (uuid) and the
// already-hashed password.
func (s *PGUserStore) Create(ctx context.Context, u *User) error {
	if u.PreferredLanguage == "" {
		u.PreferredLanguage = "en"
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO users (id, email, name, password_hash, preferred_language)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.PreferredLanguage,
	)
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByEmail looks up a user by email address.
func (s *PGUserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

// GetByID looks up a user by id.
func (s *PGUserStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}
