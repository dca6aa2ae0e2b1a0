package auth

import (
	"strings"

	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// DecisionKind is the outcome of a policy evaluation.
type DecisionKind int

const (
	DecisionAllow DecisionKind = iota
	DecisionRedirectLogin
	DecisionRedirectUnauthorized
)

// Decision is the access verdict for one request. Reason feeds the login
// redirect's error query parameter.
type Decision struct {
	Kind   DecisionKind
	Reason string
}

// Redirect reasons surfaced on the login page.
const (
	ReasonUnauthorized = "unauthorized"
	ReasonInvalidToken = "invalidToken"
)

// Policy evaluates route access from the request path and verified claims.
// It is a pure decision function: no I/O, deterministic output.
type Policy struct {
	publicPrefixes []string
	adminPrefix    string
	supportPrefix  string
	adminEmails    []string
}

// NewPolicy builds the route policy with the standard prefix sets and the
// configured admin allow-list. Entries are trimmed, matching stays literal.
func NewPolicy(adminEmails []string) Policy {
	trimmed := make([]string, 0, len(adminEmails))
	for _, email := range adminEmails {
		if e := strings.TrimSpace(email); e != "" {
			trimmed = append(trimmed, e)
		}
	}
	return Policy{
		publicPrefixes: []string{"/api/auth", "/login", "/signup", "/api/dept", "/health"},
		adminPrefix:    "/admin",
		supportPrefix:  "/support",
		adminEmails:    trimmed,
	}
}

// Evaluate decides access for path given verified claims, or nil when the
// request carried no usable token. Rules are ordered; first match wins.
func (p Policy) Evaluate(path string, claims *Claims) Decision {
	if p.isPublic(path) {
		return Decision{Kind: DecisionAllow}
	}
	if claims == nil {
		return Decision{Kind: DecisionRedirectLogin, Reason: ReasonUnauthorized}
	}

	if p.matches(path, p.adminPrefix) {
		for _, email := range p.adminEmails {
			if email == claims.Email {
				return Decision{Kind: DecisionAllow}
			}
		}
		return Decision{Kind: DecisionRedirectUnauthorized}
	}

	if p.matches(path, p.supportPrefix) {
		if claims.Role == domain.RoleSupport {
			return Decision{Kind: DecisionAllow}
		}
		// Customers may enter only their own /support/{custId} subtree.
		parts := strings.Split(path, "/")
		if len(parts) >= 3 && parts[1] == "support" &&
			claims.Role == domain.RoleCustomer && parts[2] == claims.Subject {
			return Decision{Kind: DecisionAllow}
		}
		return Decision{Kind: DecisionRedirectUnauthorized}
	}

	return Decision{Kind: DecisionAllow}
}

func (p Policy) isPublic(path string) bool {
	if path == "/" {
		return true
	}
	for _, prefix := range p.publicPrefixes {
		if p.matches(path, prefix) {
			return true
		}
	}
	return false
}

func (p Policy) matches(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix)
}
