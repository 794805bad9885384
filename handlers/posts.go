package handlers

import (
	"idea-feedback-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPostRoutes(app *fiber.App, postService *services.PostService, prizeService *services.PrizeService, walletAuth fiber.Handler) {
	posts := app.Group("/api/posts")

	// 🔓 Public reads
	posts.Get("/", postService.GetPosts)
	posts.Get("/:id", postService.GetPost)
	posts.Get("/:postId/comments", postService.GetComments)
	posts.Get("/:postId/rankings", prizeService.GetRankings)

	// 🔐 Authenticated writes
	posts.Post("/", walletAuth, postService.CreatePost)
	posts.Post("/:postId/comments", walletAuth, postService.CreateComment)
	posts.Post("/:postId/rank", walletAuth, prizeService.RankComment)
}
