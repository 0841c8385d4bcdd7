package routes

import (
	"github.com/anjiri1684/tutor_match/handlers"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/tutors/:tutorId/reputation", handlers.GetTutorReputation)
}
