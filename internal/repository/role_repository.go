package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/civic-legal-service/internal/domain"
)

// RoleRepository resolves access-control roles. The guard resolves by
// name: the token carries role names, not ids.
type RoleRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository returns a Postgres-backed implementation.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	const query = `SELECT id, name FROM roles WHERE id = $1`

	var role domain.Role
	if err := r.pool.QueryRow(ctx, query, id).Scan(&role.ID, &role.Name); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	const query = `SELECT id, name FROM roles WHERE name = $1`

	var role domain.Role
	if err := r.pool.QueryRow(ctx, query, name).Scan(&role.ID, &role.Name); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) List(ctx context.Context) ([]domain.Role, error) {
	const query = `SELECT id, name FROM roles ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
