package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"cleem-api/internal/domain"
	apperrors "cleem-api/pkg/errors"
)

// uniqueViolation is the SQLSTATE for a unique constraint violation.
const uniqueViolation = "23505"

// DB is the subset of pgx querying used by the repository. It is satisfied
// by *pgxpool.Pool, pgx.Tx and pgxmock pools alike.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const userColumns = `id, email, name, picture, google_id, created_at, updated_at, last_login, is_active`

// userRepository handles user persistence with PostgreSQL
type userRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

// InTx runs fn against a repository bound to a single transaction.
func (r *userRepository) InTx(ctx context.Context, fn func(UserRepository) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// No-op once the transaction has committed.
		_ = tx.Rollback(ctx)
	}()

	if err := fn(&userRepository{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a user by local id
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

// GetByGoogleID retrieves a user by the provider subject identifier
func (r *userRepository) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, googleID))
}

// Create inserts a new user record for a first sign-in.
func (r *userRepository) Create(ctx context.Context, googleID, email string, name, picture *string) (*domain.User, error) {
	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      name,
		Picture:   picture,
		GoogleID:  googleID,
		CreatedAt: now,
		LastLogin: now,
		IsActive:  true,
	}

	query := `
		INSERT INTO users (id, email, name, picture, google_id, created_at, last_login, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.Name, user.Picture,
		user.GoogleID, user.CreatedAt, user.LastLogin, user.IsActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflictError("user already exists", err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// UpdateProfile refreshes the provider-supplied display fields on a
// returning sign-in.
func (r *userRepository) UpdateProfile(ctx context.Context, userID string, name, picture *string) (*domain.User, error) {
	now := time.Now().UTC()
	query := `
		UPDATE users
		SET name = $1, picture = $2, updated_at = $3, last_login = $3
		WHERE id = $4
		RETURNING ` + userColumns
	user, err := r.scanUser(r.db.QueryRow(ctx, query, name, picture, now, userID))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s not found for profile update", userID)
	}
	return user, nil
}

// SetActive flips the is_active flag.
func (r *userRepository) SetActive(ctx context.Context, userID string, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET is_active = $1 WHERE id = $2`, active, userID)
	if err != nil {
		return fmt.Errorf("failed to update is_active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", userID)
	}
	return nil
}

// scanUser maps a row to a user, translating pgx.ErrNoRows to (nil, nil).
func (r *userRepository) scanUser(row pgx.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.Picture, &user.GoogleID,
		&user.CreatedAt, &user.UpdatedAt, &user.LastLogin, &user.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

// isUniqueViolation reports whether err is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
