package middleware

import (
	"log"
	"strings"
	"time"

	"lapak/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the name of the cookie carrying the signed session token.
const SessionCookie = "lapak_session"

// RequireUser gates browser routes. A request without a valid session cookie
// is redirected to the login page, never answered with an error.
func RequireUser(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(SessionCookie)
		if tokenString == "" {
			return c.Redirect("/login", fiber.StatusSeeOther)
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			// Stale or tampered cookie. Drop it and start over.
			ClearSessionCookie(c)
			return c.Redirect("/login", fiber.StatusSeeOther)
		}

		c.Locals("user_id", claims["user_id"])
		c.Locals("username", claims["username"])
		return c.Next()
	}
}

// LoadUser resolves the session cookie when present but lets anonymous
// requests through. Used on public pages that render login state.
func LoadUser(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(SessionCookie)
		if tokenString != "" {
			if claims, err := authService.ValidateToken(tokenString); err == nil {
				c.Locals("user_id", claims["user_id"])
				c.Locals("username", claims["username"])
			}
		}
		return c.Next()
	}
}

// SetSessionCookie establishes the session for subsequent requests.
func SetSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSessionCookie tears down the session.
func ClearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// APIAuthRequired gates the JSON API. It expects a Bearer token in the
// Authorization header and answers 401 instead of redirecting.
func APIAuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals("user_id", claims["user_id"])
		c.Locals("username", claims["username"])
		return c.Next()
	}
}
