package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "authToken"

// SessionCookie builds the Set-Cookie payload for a freshly issued token.
// HttpOnly and SameSite=Strict always; Secure only in production.
func SessionCookie(token string, expiresAt time.Time, secure bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
}

// ClearSessionCookie expires the session cookie immediately.
func ClearSessionCookie(secure bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
}
