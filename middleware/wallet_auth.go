package middleware

import (
	"strings"

	"idea-feedback-system/models"
	"idea-feedback-system/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WalletAuthMiddleware resolves the Bearer session token to a wallet and
// attaches identity to the request context. Ownership checks downstream
// compare the stored base58 address case-sensitively, so the address placed
// in Locals is always the one persisted at connect time, never the token's
// copy re-derived elsewhere.
func WalletAuthMiddleware(db *gorm.DB, secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Wallet not authenticated"})
		}

		claims, err := utils.ParseWalletToken(secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			zap.S().Debugf("[Auth] Token rejected: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Wallet not authenticated"})
		}

		var wallet models.Wallet
		if err := db.Where("address = ?", claims.Address).First(&wallet).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Wallet not authenticated"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}

		c.Locals("wallet_id", wallet.ID)
		c.Locals("wallet_address", wallet.Address)

		return c.Next()
	}
}
