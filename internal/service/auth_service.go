package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/civic-legal-service/internal/auth"
	"github.com/spec-kit/civic-legal-service/internal/config"
	"github.com/spec-kit/civic-legal-service/internal/domain"
	"github.com/spec-kit/civic-legal-service/internal/events"
	"github.com/spec-kit/civic-legal-service/internal/repository"
	apperrors "github.com/spec-kit/civic-legal-service/pkg/util"
)

// AuthService coordinates registration and login flows for local and
// delegated credentials.
type AuthService struct {
	users      repository.UserRepository
	roles      repository.RoleRepository
	tokens     *auth.TokenService
	dispatcher events.Dispatcher
	bcryptCost int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	RoleRepo   repository.RoleRepository
	Tokens     *auth.TokenService
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		roles:      deps.RoleRepo,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a local account with the base citizen role and issues
// its first token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, time.Time, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Provider:     domain.ProviderLocal,
		RoleName:     domain.RoleCitizen,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokens.Issue(ctx, user.ID, user.Email, user.RoleName, user.Provider)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	s.publish(ctx, events.EventUserRegistered, user)
	return user, token, exp, nil
}

// Login authenticates local credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if user.Status != domain.UserStatusActive {
		return nil, "", time.Time{}, apperrors.NewForbidden("account suspended")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokens.Issue(ctx, user.ID, user.Email, user.RoleName, user.Provider)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	s.publish(ctx, events.EventUserLoggedIn, user)
	return user, token, exp, nil
}

// CompleteOAuth links or creates the account for a delegated login and
// issues the bridge token carried by the auth_token cookie.
func (s *AuthService) CompleteOAuth(ctx context.Context, identity *auth.GoogleUser) (*domain.User, string, time.Time, error) {
	user := &domain.User{
		Name:     identity.Name,
		Email:    identity.Email,
		Provider: domain.ProviderGoogle,
		RoleName: domain.RoleCitizen,
		Status:   domain.UserStatusActive,
	}
	if err := s.users.UpsertByEmail(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokens.Issue(ctx, user.ID, user.Email, user.RoleName, domain.ProviderGoogle)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	s.publish(ctx, events.EventUserLoggedIn, user)
	return user, token, exp, nil
}

// NotifyLogout publishes the logout audit event for the principal.
func (s *AuthService) NotifyLogout(ctx context.Context, principal *auth.Principal) {
	if principal == nil {
		return
	}
	s.publishPrincipal(ctx, events.EventUserLoggedOut, principal)
	if principal.TokenID != "" && principal.TokenID != auth.SessionTokenID {
		s.publishPrincipal(ctx, events.EventTokenRevoked, principal)
	}
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, user *domain.User) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Publish(ctx, events.NewEvent(eventType, user.ID, user.Email, string(user.Provider)))
}

func (s *AuthService) publishPrincipal(ctx context.Context, eventType events.EventType, p *auth.Principal) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Publish(ctx, events.NewEvent(eventType, p.ID, p.Email, string(p.Provider)))
}
