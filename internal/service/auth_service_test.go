package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

type authFixture struct {
	service     *AuthService
	developers  *fakeDeveloperRepo
	customers   *fakeCustomerRepo
	departments *fakeDepartmentRepo
	sessions    *fakeSessionRepo
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	developers := newFakeDeveloperRepo()
	customers := newFakeCustomerRepo()
	departments := newFakeDepartmentRepo()
	sessions := newFakeSessionRepo()

	for _, name := range []string{"Support", "Platform"} {
		require.NoError(t, departments.Create(context.Background(), &domain.Department{Name: name}))
	}

	svc := NewAuthService(config.AuthConfig{
		JWTSecret:      "test-secret",
		SessionTTLDays: 7,
		BcryptCost:     bcrypt.MinCost,
	}, AuthDependencies{
		DeveloperRepo:  developers,
		CustomerRepo:   customers,
		DepartmentRepo: departments,
		SessionRepo:    sessions,
	})
	return &authFixture{
		service:     svc,
		developers:  developers,
		customers:   customers,
		departments: departments,
		sessions:    sessions,
	}
}

func TestSignupRoleDerivation(t *testing.T) {
	cases := []struct {
		name       string
		role       string
		department string
		want       domain.Role
	}{
		{"customer", "customer", "", domain.RoleCustomer},
		{"plain developer", "developer", "Platform", domain.RoleDeveloper},
		{"lead of platform", "lead", "Platform", domain.RoleLead},
		{"support member", "developer", "Support", domain.RoleSupport},
		{"lead of support still support", "lead", "Support", domain.RoleSupport},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAuthFixture(t)
			session, err := f.service.Signup(context.Background(), SignupInput{
				Name:       "User",
				Email:      "user@example.com",
				Password:   "secret",
				Role:       tc.role,
				Department: tc.department,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, session.Role)
			assert.NotEmpty(t, session.Token)

			claims, err := f.service.TokenManager().Parse(session.Token)
			require.NoError(t, err)
			assert.Equal(t, tc.want, claims.Role)
			assert.Equal(t, session.UserID, claims.Subject)
		})
	}
}

func TestSignupDuplicateEmailAcrossPopulations(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Signup(context.Background(), SignupInput{
		Name: "Cust", Email: "shared@example.com", Password: "secret", Role: "customer",
	})
	require.NoError(t, err)

	_, err = f.service.Signup(context.Background(), SignupInput{
		Name: "Dev", Email: "shared@example.com", Password: "secret", Role: "developer", Department: "Platform",
	})
	require.Error(t, err)
	assert.Equal(t, "User already exists", apperrors.ToDomainError(err).Message)
}

func TestSignupStaffRequiresDepartment(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Signup(context.Background(), SignupInput{
		Name: "Dev", Email: "dev@example.com", Password: "secret", Role: "developer",
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = f.service.Signup(context.Background(), SignupInput{
		Name: "Dev", Email: "dev@example.com", Password: "secret", Role: "developer", Department: "Unknown",
	})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.service.Signup(context.Background(), SignupInput{
		Name: "Dev", Email: "dev@example.com", Password: "correct", Role: "developer", Department: "Platform",
	})
	require.NoError(t, err)

	session, err := f.service.Login(context.Background(), "dev@example.com", "wrong")
	require.Error(t, err)
	assert.Nil(t, session)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "Invalid password", domainErr.Message)
	assert.Equal(t, 401, domainErr.HTTPStatus)
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	session, err := f.service.Login(context.Background(), "ghost@example.com", "whatever")
	require.Error(t, err)
	assert.Nil(t, session)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "User not found", domainErr.Message)
	assert.Equal(t, 404, domainErr.HTTPStatus)
}

func TestLoginDerivesRoleFromCurrentData(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.service.Signup(context.Background(), SignupInput{
		Name: "Sam", Email: "sam@example.com", Password: "secret", Role: "developer", Department: "Support",
	})
	require.NoError(t, err)

	session, err := f.service.Login(context.Background(), "sam@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSupport, session.Role)
}

func TestLoginCustomer(t *testing.T) {
	f := newAuthFixture(t)
	signup, err := f.service.Signup(context.Background(), SignupInput{
		Name: "Cara", Email: "cara@example.com", Password: "secret", Role: "customer",
	})
	require.NoError(t, err)

	session, err := f.service.Login(context.Background(), "cara@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, session.Role)
	assert.Equal(t, signup.UserID, session.UserID)
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newAuthFixture(t)
	session, err := f.service.Signup(context.Background(), SignupInput{
		Name: "Dev", Email: "dev@example.com", Password: "secret", Role: "developer", Department: "Platform",
	})
	require.NoError(t, err)

	claims, err := f.service.TokenManager().Parse(session.Token)
	require.NoError(t, err)

	revoked, err := f.sessions.IsRevoked(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, f.service.Logout(context.Background(), claims))

	revoked, err = f.sessions.IsRevoked(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}
