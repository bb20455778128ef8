package server

import (
	"strings"
	"time"

	"portfolio/auth"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

const cookieName = "admin_token"

func registerAuth(group fiber.Router, config *ServerConfig) {
	group.Post("/login", func(c *fiber.Ctx) error {
		var req struct {
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}

		token, expires, err := config.Auth.Login(req.Password)
		if err != nil {
			log.WithField("ip", c.IP()).Warn("Failed admin login")
			return fail(c, fiber.StatusUnauthorized, "Invalid password")
		}

		setSessionCookie(c, token, expires, config.SecureCookie)
		return okMessage(c, "Logged in", fiber.Map{"token": token, "expires_at": expires})
	})

	group.Post("/logout", func(c *fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     cookieName,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			HTTPOnly: true,
			Secure:   config.SecureCookie,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return okMessage(c, "Logged out", nil)
	})

	group.Post("/extend-session", func(c *fiber.Ctx) error {
		token, expires, err := config.Auth.Extend(sessionToken(c))
		if err != nil {
			return fail(c, fiber.StatusUnauthorized, "Invalid or expired session")
		}

		setSessionCookie(c, token, expires, config.SecureCookie)
		return okMessage(c, "Session extended", fiber.Map{"token": token, "expires_at": expires})
	})
}

func setSessionCookie(c *fiber.Ctx, token string, expires time.Time, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// sessionToken reads a bearer token, falling back to the session cookie
func sessionToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if token, found := strings.CutPrefix(header, "Bearer "); found {
		return strings.TrimSpace(token)
	}
	return c.Cookies(cookieName)
}

func requireAdmin(manager *auth.JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := sessionToken(c)
		if token == "" {
			return fail(c, fiber.StatusUnauthorized, "Not authenticated")
		}
		if _, err := manager.ValidateToken(token); err != nil {
			return fail(c, fiber.StatusUnauthorized, "Invalid or expired session")
		}
		return c.Next()
	}
}
