package handlers

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

// SetupAccessRoutes wires the shared access-code gate: a matching code sets
// the cookie the access middleware honors on every later request.
func SetupAccessRoutes(app *fiber.App) {
	accessCode := os.Getenv("ACCESS_CODE")
	if accessCode == "" {
		accessCode = "IDEA2025"
	}

	app.Post("/api/access", func(c *fiber.Ctx) error {
		var req struct {
			Code string `json:"code"`
		}

		if err := c.BodyParser(&req); err != nil || req.Code == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Access code required"})
		}

		if req.Code != accessCode {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid access code"})
		}

		c.Cookie(&fiber.Cookie{
			Name:     "access_token",
			Value:    "granted",
			HTTPOnly: true,
			Secure:   os.Getenv("APP_ENV") == "production",
			Expires:  time.Now().Add(30 * 24 * time.Hour),
		})

		return c.JSON(fiber.Map{"success": true, "message": "Access granted"})
	})

	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":      "ok",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"environment": os.Getenv("APP_ENV"),
		})
	})
}
