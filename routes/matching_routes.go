package routes

import (
	"github.com/anjiri1684/tutor_match/handlers"
	"github.com/anjiri1684/tutor_match/middleware"
	"github.com/gofiber/fiber/v2"
)

func MatchingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	matching := api.Group("/matchings", middleware.Protected())
	matching.Post("", handlers.CreateMatching)
	matching.Get("/me", handlers.GetMyMatchings)
	matching.Get("/follow-ups", handlers.GetPendingFollowUps)
	matching.Post("/:matchingId/follow-up", handlers.SubmitFollowUp)

	tutorMatching := api.Group("/tutor/matchings", middleware.Protected(), middleware.TutorRequired())
	tutorMatching.Post("/:matchingId/accept", handlers.AcceptMatching)
	tutorMatching.Post("/:matchingId/refuse", handlers.RefuseMatching)
}
