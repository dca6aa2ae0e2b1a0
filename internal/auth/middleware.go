package auth

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/repository"
)

const principalKey = "auth_principal"

// Principal is the verified identity attached to an allowed request.
type Principal struct {
	ID    string
	Name  string
	Email string
	Role  domain.Role
}

// SessionMiddleware gates every request through the route policy. The session
// token is read from the authToken cookie only; denial is always a redirect.
type SessionMiddleware struct {
	tokens   *TokenManager
	sessions repository.SessionRepository
	policy   Policy
	logger   *zap.Logger
}

// NewSessionMiddleware constructs the middleware.
func NewSessionMiddleware(tokens *TokenManager, sessions repository.SessionRepository, policy Policy, logger *zap.Logger) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens, sessions: sessions, policy: policy, logger: logger}
}

// Handle verifies the cookie, evaluates the policy, and stores the principal.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	var claims *Claims
	reason := ReasonUnauthorized

	if token := c.Cookies(SessionCookieName); token != "" {
		parsed, err := m.tokens.Parse(token)
		switch {
		case err != nil:
			reason = ReasonInvalidToken
		default:
			revoked, err := m.sessions.IsRevoked(c.Context(), parsed.ID)
			if err != nil {
				// Revocation store unreachable: the signed token still vouches
				// for the session, so proceed rather than lock everyone out.
				m.logger.Warn("session revocation check failed", zap.Error(err))
			}
			if revoked {
				reason = ReasonInvalidToken
			} else {
				claims = parsed
			}
		}
	}

	decision := m.policy.Evaluate(c.Path(), claims)
	switch decision.Kind {
	case DecisionRedirectLogin:
		// reason distinguishes a missing token from one that failed checks.
		return c.Redirect("/login?error="+reason, fiber.StatusFound)
	case DecisionRedirectUnauthorized:
		return c.Redirect("/unauthorized", fiber.StatusFound)
	}

	if claims != nil {
		c.Locals(principalKey, &Principal{
			ID:    claims.Subject,
			Name:  claims.Username,
			Email: claims.Email,
			Role:  claims.Role,
		})
	}
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated identity, if any.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// ClaimsFromCookie parses the session cookie without applying route policy.
// Used by handlers that need the raw claims, such as logout.
func (m *SessionMiddleware) ClaimsFromCookie(c *fiber.Ctx) (*Claims, error) {
	token := c.Cookies(SessionCookieName)
	if token == "" {
		return nil, fiber.ErrUnauthorized
	}
	return m.tokens.Parse(token)
}
