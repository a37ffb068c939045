package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/civic-legal-service/internal/domain"
)

// UserRepository is the credential-store access used by the auth layer.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// UpsertByEmail links or creates an account for a delegated login.
	// Existing accounts keep their role and password hash.
	UpsertByEmail(ctx context.Context, user *domain.User) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, provider, role_id, status)
        VALUES ($1, $2, $3, $4, (SELECT id FROM roles WHERE name = $5), $6)
        RETURNING id, role_id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Provider,
		user.RoleName,
		user.Status,
	).Scan(&user.ID, &user.RoleID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT u.id, u.name, u.email, u.password_hash, u.provider, u.role_id, r.name, u.status, u.created_at, u.updated_at
        FROM users u JOIN roles r ON r.id = u.role_id
        WHERE u.id = $1`

	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT u.id, u.name, u.email, u.password_hash, u.provider, u.role_id, r.name, u.status, u.created_at, u.updated_at
        FROM users u JOIN roles r ON r.id = u.role_id
        WHERE u.email = $1`

	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepository) UpsertByEmail(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, provider, role_id, status)
        VALUES ($1, $2, '', $3, (SELECT id FROM roles WHERE name = $4), $5)
        ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()
        RETURNING id, role_id, created_at, updated_at`

	if user.RoleName == "" {
		user.RoleName = domain.RoleCitizen
	}
	if err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.Provider,
		user.RoleName,
		user.Status,
	).Scan(&user.ID, &user.RoleID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return err
	}

	// The upsert keeps the stored role; re-read it for the principal.
	stored, err := r.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}
	user.RoleName = stored.RoleName
	user.PasswordHash = stored.PasswordHash
	return nil
}

func (r *userRepository) scanOne(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Provider,
		&user.RoleID,
		&user.RoleName,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
