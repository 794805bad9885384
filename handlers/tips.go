package handlers

import (
	"idea-feedback-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTipRoutes(app *fiber.App, tipService *services.TipService, walletAuth fiber.Handler) {
	tips := app.Group("/api/tips")

	// 🔐 Sending requires an authenticated wallet
	tips.Post("/send", walletAuth, tipService.SendTip)

	// 🔓 Public reads. The comment route must register before the wallet one
	// so "comment" is not swallowed by the :walletAddress param.
	tips.Get("/comment/:commentId", tipService.GetCommentTips)
	tips.Get("/:walletAddress", tipService.GetTipHistory)
}
