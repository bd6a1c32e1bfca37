// Package postgres provides the PostgreSQL Storage backend. The users
// table carries a unique constraint on email, so concurrent registration
// races collapse into ErrDuplicateEmail instead of relying on the
// application-level existence check alone.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pkdx/pkdb-api/internal/models"
	"github.com/pkdx/pkdb-api/internal/store"
)

const uniqueViolation = "23505"

// Store implements store.Storage on top of PostgreSQL.
type Store struct {
	db *sqlx.DB
}

// New creates a new Store instance.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

var _ store.Storage = (*Store)(nil)

// CreateUser inserts a new user record.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const query = `INSERT INTO users (id, email, password_hash, role, created_at, updated_at) VALUES (:id, :email, :password_hash, :role, :created_at, :updated_at)`
	if _, err := s.db.NamedExecContext(ctx, query, user); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return store.ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUserByEmail returns a user by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT id, email, password_hash, role, created_at, updated_at FROM users WHERE email = $1 LIMIT 1`
	var user models.User
	if err := s.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

// GetUserByID returns a user by identifier.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, email, password_hash, role, created_at, updated_at FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := s.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &user, nil
}

// ListUsers returns all users ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	const query = `SELECT id, email, password_hash, role, created_at, updated_at FROM users ORDER BY created_at ASC`
	var users []models.User
	if err := s.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateUserRole sets the user's role and returns the updated record.
func (s *Store) UpdateUserRole(ctx context.Context, id string, role models.Role) (*models.User, error) {
	const query = `UPDATE users SET role = $2, updated_at = $3 WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, id, role, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update user role: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetUserByID(ctx, id)
}
