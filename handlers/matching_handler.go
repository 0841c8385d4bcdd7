package handlers

import (
	"errors"

	"github.com/anjiri1684/tutor_match/models"
	"github.com/anjiri1684/tutor_match/notifications"
	"github.com/anjiri1684/tutor_match/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var validate = validator.New()

func callerID(c *fiber.Ctx) uuid.UUID {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	id, _ := uuid.Parse(claims["user_id"].(string))
	return id
}

func matchingErrorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrInvalidTransition), errors.Is(err, services.ErrConcurrencyConflict):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrDependencyFailure):
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

type CreateMatchingRequest struct {
	TutorID string `json:"tutor_id" validate:"required,uuid"`
}

func CreateMatching(c *fiber.Ctx) error {
	learnerID := callerID(c)

	var req CreateMatchingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	tutorID, _ := uuid.Parse(req.TutorID)

	matching, events, err := services.CreateMatching(learnerID, tutorID)
	if err != nil {
		return matchingErrorResponse(c, err)
	}

	if len(events) == 0 {
		// Existing active matching for this pair, nothing new to announce.
		return c.JSON(fiber.Map{"matching": matching})
	}

	go notifications.DispatchMatchingEvents(events)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"matching": matching})
}

func AcceptMatching(c *fiber.Ctx) error {
	tutorID := callerID(c)
	matchingID, err := uuid.Parse(c.Params("matchingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid matching id"})
	}

	matching, events, err := services.AcceptMatching(matchingID, tutorID)
	if err != nil {
		return matchingErrorResponse(c, err)
	}

	go notifications.DispatchMatchingEvents(events)
	return c.JSON(fiber.Map{"matching": matching})
}

type RefuseMatchingRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func RefuseMatching(c *fiber.Ctx) error {
	tutorID := callerID(c)
	matchingID, err := uuid.Parse(c.Params("matchingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid matching id"})
	}

	var req RefuseMatchingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	matching, events, err := services.RefuseMatching(matchingID, tutorID, req.Reason)
	if err != nil {
		return matchingErrorResponse(c, err)
	}

	go notifications.DispatchMatchingEvents(events)
	return c.JSON(fiber.Map{"matching": matching})
}

type FollowUpRequest struct {
	Role     string `json:"role" validate:"required,oneof=learner tutor"`
	Decision string `json:"decision" validate:"required,oneof=confirmed refused continued"`
}

func SubmitFollowUp(c *fiber.Ctx) error {
	userID := callerID(c)
	matchingID, err := uuid.Parse(c.Params("matchingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid matching id"})
	}

	var req FollowUpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	matching, events, err := services.FollowUpMatching(matchingID, userID, req.Role, req.Decision)
	if err != nil {
		return matchingErrorResponse(c, err)
	}

	go notifications.DispatchMatchingEvents(events)
	return c.JSON(fiber.Map{"matching": matching})
}

func GetMyMatchings(c *fiber.Ctx) error {
	userID := callerID(c)
	role := c.Query("role", models.RoleLearner)

	matchings, err := services.GetActiveMatchingsForUser(userID, role)
	if err != nil {
		return matchingErrorResponse(c, err)
	}
	return c.JSON(matchings)
}

func GetPendingFollowUps(c *fiber.Ctx) error {
	userID := callerID(c)
	role := c.Query("role", models.RoleLearner)

	matchings, err := services.GetPendingFollowUps(userID, role)
	if err != nil {
		return matchingErrorResponse(c, err)
	}
	return c.JSON(matchings)
}
