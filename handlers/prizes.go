package handlers

import (
	"idea-feedback-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPrizeRoutes(app *fiber.App, prizeService *services.PrizeService, walletAuth fiber.Handler) {
	prizes := app.Group("/api/prizes")

	// 🔓 Public status projection
	prizes.Get("/:prizePoolId/status", prizeService.GetPoolStatus)

	// 🔐 Owner / winner operations
	prizes.Post("/:prizePoolId/distribute", walletAuth, prizeService.DistributePrizes)
	prizes.Post("/:rankingId/claim", walletAuth, prizeService.ClaimPrize)

	app.Delete("/api/rankings/:id", walletAuth, prizeService.RemoveRanking)
}
