package handlers

import (
	"idea-feedback-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupWalletRoutes(app *fiber.App, walletService *services.WalletService, walletAuth fiber.Handler) {
	wallet := app.Group("/api/wallet")

	wallet.Post("/connect", walletService.Connect)

	// 🔐 Authenticated
	wallet.Get("/me", walletAuth, walletService.Me)

	// Public earnings summary per wallet address
	wallet.Get("/:walletAddress/earnings", walletService.GetEarnings)
}
