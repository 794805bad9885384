package middleware

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Paths reachable without the access code.
var publicPaths = []string{"/api/access", "/api/health"}

// AccessMiddleware gates every route behind a shared access code, presented
// either as the X-Access-Code header or as the cookie set by POST /api/access.
func AccessMiddleware() fiber.Handler {
	accessCode := os.Getenv("ACCESS_CODE")
	if accessCode == "" {
		accessCode = "IDEA2025"
	}

	return func(c *fiber.Ctx) error {
		path := c.Path()
		for _, p := range publicPaths {
			if strings.HasPrefix(path, p) {
				return c.Next()
			}
		}

		if c.Get("X-Access-Code") == accessCode || c.Cookies("access_token") == "granted" {
			return c.Next()
		}

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "Access denied",
			"message": "Valid access code required",
		})
	}
}
