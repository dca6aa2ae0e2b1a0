package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// AuthService coordinates signup, login, and logout. Email is unique across
// developers and customers combined; login resolves developer first.
type AuthService struct {
	developers  repository.DeveloperRepository
	customers   repository.CustomerRepository
	departments repository.DepartmentRepository
	sessions    repository.SessionRepository
	tokens      *auth.TokenManager
	bcryptCost  int
}

// AuthDependencies bundles repositories for the auth service.
type AuthDependencies struct {
	DeveloperRepo  repository.DeveloperRepository
	CustomerRepo   repository.CustomerRepository
	DepartmentRepo repository.DepartmentRepository
	SessionRepo    repository.SessionRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		developers:  deps.DeveloperRepo,
		customers:   deps.CustomerRepo,
		departments: deps.DepartmentRepo,
		sessions:    deps.SessionRepo,
		tokens:      auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTLDays),
		bcryptCost:  cfg.BcryptCost,
	}
}

// SignupInput describes a registration request. Role is the requested account
// kind: "customer", "developer", or "lead"; the session role is derived.
type SignupInput struct {
	Name       string
	Email      string
	Password   string
	Role       string
	Department string
}

// Session is an issued identity with its signed token.
type Session struct {
	UserID    string
	Name      string
	Email     string
	Role      domain.Role
	Token     string
	ExpiresAt time.Time
}

// Signup creates a developer or customer account and issues a session.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*Session, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("name, email, password required", nil)
	}

	taken, err := s.emailTaken(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.NewValidationError("User already exists", nil)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	if input.Role == string(domain.RoleCustomer) {
		customer := &domain.Customer{
			Name:         input.Name,
			Email:        input.Email,
			PasswordHash: hash,
		}
		if err := s.customers.Create(ctx, customer); err != nil {
			return nil, err
		}
		return s.issue(customer.ID, customer.Name, customer.Email, domain.RoleCustomer)
	}

	if input.Department == "" {
		return nil, apperrors.NewValidationError("department required", nil)
	}
	dept, err := s.departments.GetByName(ctx, input.Department)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("department", map[string]any{"name": input.Department})
		}
		return nil, err
	}

	dev := &domain.Developer{
		Name:           input.Name,
		Email:          input.Email,
		PasswordHash:   hash,
		DepartmentID:   dept.ID,
		DepartmentName: dept.Name,
	}
	if input.Role == string(domain.RoleLead) {
		dev.LeadOfDepartmentID = &dept.ID
	}
	if err := s.developers.Create(ctx, dev); err != nil {
		return nil, err
	}
	return s.issue(dev.ID, dev.Name, dev.Email, dev.SessionRole())
}

// Login authenticates by email, trying developers before customers.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	dev, err := s.developers.GetByEmail(ctx, email)
	if err == nil {
		if auth.ComparePassword(dev.PasswordHash, password) != nil {
			return nil, apperrors.NewUnauthorized("Invalid password")
		}
		return s.issue(dev.ID, dev.Name, dev.Email, dev.SessionRole())
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	customer, err := s.customers.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundMessage("User not found")
		}
		return nil, err
	}
	if auth.ComparePassword(customer.PasswordHash, password) != nil {
		return nil, apperrors.NewUnauthorized("Invalid password")
	}
	return s.issue(customer.ID, customer.Name, customer.Email, domain.RoleCustomer)
}

// Logout revokes the session until the token's natural expiry.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return s.sessions.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// CurrentUser resolves the account behind verified claims, recomputing the
// developer role from current department data for display purposes. The
// token's embedded role stays authoritative for access decisions.
func (s *AuthService) CurrentUser(ctx context.Context, claims *auth.Claims) (*Session, error) {
	dev, err := s.developers.GetByEmail(ctx, claims.Email)
	if err == nil {
		return &Session{UserID: dev.ID, Name: dev.Name, Email: dev.Email, Role: dev.SessionRole()}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	customer, err := s.customers.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundMessage("User not found")
		}
		return nil, err
	}
	return &Session{UserID: customer.ID, Name: customer.Name, Email: customer.Email, Role: domain.RoleCustomer}, nil
}

func (s *AuthService) emailTaken(ctx context.Context, email string) (bool, error) {
	if _, err := s.developers.GetByEmail(ctx, email); err == nil {
		return true, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}
	if _, err := s.customers.GetByEmail(ctx, email); err == nil {
		return true, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}
	return false, nil
}

func (s *AuthService) issue(id, name, email string, role domain.Role) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(id, name, email, role)
	if err != nil {
		return nil, err
	}
	return &Session{
		UserID:    id,
		Name:      name,
		Email:     email,
		Role:      role,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}
