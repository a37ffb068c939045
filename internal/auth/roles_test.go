package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/civic-legal-service/internal/auth"
	"github.com/spec-kit/civic-legal-service/internal/domain"
)

// fakeRoleRepo serves the seeded role set from memory.
type fakeRoleRepo struct {
	roles map[string]domain.Role
	err   error
}

func newFakeRoleRepo(names ...string) *fakeRoleRepo {
	repo := &fakeRoleRepo{roles: make(map[string]domain.Role, len(names))}
	for i, name := range names {
		repo.roles[name] = domain.Role{ID: string(rune('a' + i)), Name: name}
	}
	return repo
}

func (r *fakeRoleRepo) GetByID(_ context.Context, id string) (*domain.Role, error) {
	for _, role := range r.roles {
		if role.ID == id {
			return &role, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeRoleRepo) GetByName(_ context.Context, name string) (*domain.Role, error) {
	if r.err != nil {
		return nil, r.err
	}
	role, ok := r.roles[name]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &role, nil
}

func (r *fakeRoleRepo) List(_ context.Context) ([]domain.Role, error) {
	out := make([]domain.Role, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, role)
	}
	return out, nil
}

func guardedApp(repo *fakeRoleRepo, principal *auth.Principal, allowed ...string) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: envelopeErrorHandler})
	app.Get("/guarded",
		func(c *fiber.Ctx) error {
			if principal != nil {
				auth.SetPrincipal(c, principal, "")
			}
			return c.Next()
		},
		auth.RequireRoles(repo, zap.NewNop(), allowed...),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
	)
	return app
}

func TestRoleGuardRejectsMissingRole(t *testing.T) {
	app := guardedApp(newFakeRoleRepo(domain.RoleCitizen), &auth.Principal{ID: "u1"}, domain.RoleAdmin)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Role information is missing", decodeMessage(t, resp))
}

func TestRoleGuardRejectsUnknownRole(t *testing.T) {
	app := guardedApp(newFakeRoleRepo(domain.RoleCitizen), &auth.Principal{ID: "u1", Role: "mystery"}, domain.RoleAdmin)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Invalid role", decodeMessage(t, resp))
}

func TestRoleGuardBoundary(t *testing.T) {
	repo := newFakeRoleRepo(domain.RoleCitizen, domain.RoleAdmin)
	citizen := &auth.Principal{ID: "u1", Role: domain.RoleCitizen}

	adminOnly := guardedApp(repo, citizen, domain.RoleAdmin)
	resp, err := adminOnly.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "You do not have the required role to perform this action", decodeMessage(t, resp))

	citizenOrAdmin := guardedApp(repo, citizen, domain.RoleCitizen, domain.RoleAdmin)
	resp, err = citizenOrAdmin.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRoleGuardStoreError(t *testing.T) {
	repo := newFakeRoleRepo(domain.RoleCitizen)
	repo.err = errors.New("connection refused")
	app := guardedApp(repo, &auth.Principal{ID: "u1", Role: domain.RoleCitizen}, domain.RoleCitizen)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Error checking role permissions", decodeMessage(t, resp))
}

func TestRoleGuardRejectsUnauthenticated(t *testing.T) {
	app := guardedApp(newFakeRoleRepo(domain.RoleCitizen), nil, domain.RoleCitizen)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/guarded", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
