package routes

import (
	"github.com/anjiri1684/tutor_match/handlers"
	"github.com/anjiri1684/tutor_match/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Post("/users", handlers.InviteUser)
	admin.Get("/stats", handlers.GetPlatformStats)
	admin.Get("/stats/top-tutors", handlers.GetTopTutors)
	admin.Get("/stats/export", handlers.ExportMatchingsReport)
	admin.Post("/tutors/:tutorId/recompute-reputation", handlers.RecomputeTutorReputation)
	admin.Post("/transactions", handlers.RecordTransaction)
	admin.Patch("/transactions/:transactionId/status", handlers.UpdateTransactionStatus)
}
