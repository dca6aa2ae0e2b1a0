package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

type stubSessionRepo struct {
	revoked map[string]bool
}

func (r *stubSessionRepo) Revoke(_ context.Context, tokenID string, _ time.Time) error {
	r.revoked[tokenID] = true
	return nil
}

func (r *stubSessionRepo) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return r.revoked[tokenID], nil
}

func newMiddlewareApp(t *testing.T) (*fiber.App, *TokenManager, *stubSessionRepo) {
	t.Helper()
	tokens := NewTokenManager("test-secret", 7)
	sessions := &stubSessionRepo{revoked: map[string]bool{}}
	middleware := NewSessionMiddleware(tokens, sessions, NewPolicy([]string{"admin@example.com"}), zap.NewNop())

	app := fiber.New()
	app.Use(middleware.Handle)
	app.Get("/api/tickets", func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return c.SendString("anonymous")
		}
		return c.SendString(principal.Email)
	})
	app.Get("/api/dept", func(c *fiber.Ctx) error { return c.SendString("public") })
	app.Get("/admin/overview", func(c *fiber.Ctx) error { return c.SendString("admin") })
	return app, tokens, sessions
}

func TestMiddlewareRedirectsAnonymous(t *testing.T) {
	app, _, _ := newMiddlewareApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/tickets", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?error=unauthorized", resp.Header.Get("Location"))
}

func TestMiddlewareAllowsPublicWithoutToken(t *testing.T) {
	app, _, _ := newMiddlewareApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/dept", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMiddlewareInvalidTokenReason(t *testing.T) {
	app, _, _ := newMiddlewareApp(t)

	req := httptest.NewRequest("GET", "/api/tickets", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "garbage"})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?error=invalidToken", resp.Header.Get("Location"))
}

func TestMiddlewareAllowsValidToken(t *testing.T) {
	app, tokens, _ := newMiddlewareApp(t)

	token, _, err := tokens.Issue("d1", "Dev", "dev@example.com", domain.RoleDeveloper)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/tickets", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMiddlewareRevokedTokenTreatedAsInvalid(t *testing.T) {
	app, tokens, sessions := newMiddlewareApp(t)

	token, _, err := tokens.Issue("d1", "Dev", "dev@example.com", domain.RoleDeveloper)
	require.NoError(t, err)
	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	sessions.revoked[claims.ID] = true

	req := httptest.NewRequest("GET", "/api/tickets", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?error=invalidToken", resp.Header.Get("Location"))
}

func TestMiddlewareAdminAllowList(t *testing.T) {
	app, tokens, _ := newMiddlewareApp(t)

	adminToken, _, err := tokens.Issue("a1", "Admin", "admin@example.com", domain.RoleLead)
	require.NoError(t, err)
	devToken, _, err := tokens.Issue("d1", "Dev", "dev@example.com", domain.RoleDeveloper)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/admin/overview", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: adminToken})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/admin/overview", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: devToken})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/unauthorized", resp.Header.Get("Location"))
}
