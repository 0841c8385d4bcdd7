package handlers

import (
	"github.com/anjiri1684/tutor_match/database"
	"github.com/anjiri1684/tutor_match/models"
	"github.com/anjiri1684/tutor_match/notifications"
	"github.com/anjiri1684/tutor_match/services"
	"github.com/anjiri1684/tutor_match/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type InviteUserRequest struct {
	FullName string `json:"full_name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,oneof=learner tutor"`
}

// InviteUser provisions an account with a temporary password and mails the
// credentials out as a welcome.
func InviteUser(c *fiber.Ctx) error {
	var req InviteUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var count int64
	database.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A user with this email already exists"})
	}

	tempPassword := utils.GenerateTempPassword()
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate credentials"})
	}

	user := models.User{
		ID:       uuid.New(),
		FullName: req.FullName,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     req.Role,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if req.Role == models.RoleTutor {
			return tx.Create(&models.Tutor{UserID: user.ID}).Error
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
	}

	go notifications.SendWelcome(user, tempPassword)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user})
}

func RecomputeTutorReputation(c *fiber.Ctx) error {
	tutorID, err := uuid.Parse(c.Params("tutorId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid tutor id"})
	}

	stats, err := services.RecomputeReputation(tutorID)
	if err != nil {
		return matchingErrorResponse(c, err)
	}
	return c.JSON(stats)
}

type RecordTransactionRequest struct {
	TutorID    string  `json:"tutor_id" validate:"required,uuid"`
	LearnerID  string  `json:"learner_id" validate:"required,uuid"`
	MatchingID string  `json:"matching_id" validate:"required,uuid"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Currency   string  `json:"currency" validate:"required,iso4217"`
	Type       string  `json:"type" validate:"required,oneof=lesson platform_fee bonus"`
}

func RecordTransaction(c *fiber.Ctx) error {
	var req RecordTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	tutorID, _ := uuid.Parse(req.TutorID)
	learnerID, _ := uuid.Parse(req.LearnerID)
	matchingID, _ := uuid.Parse(req.MatchingID)

	txn := models.MonetizationTransaction{
		TutorID:    tutorID,
		LearnerID:  learnerID,
		MatchingID: matchingID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Type:       req.Type,
	}
	if err := services.RecordTransaction(&txn); err != nil {
		return matchingErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(txn)
}

type UpdateTransactionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=completed failed refunded"`
}

func UpdateTransactionStatus(c *fiber.Ctx) error {
	txnID, err := uuid.Parse(c.Params("transactionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction id"})
	}

	var req UpdateTransactionStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	txn, err := services.UpdateTransactionStatus(txnID, req.Status)
	if err != nil {
		return matchingErrorResponse(c, err)
	}

	// Completed lesson money changes the tutor's derived metrics right away.
	if txn.Status == models.TransactionStatusCompleted || txn.Status == models.TransactionStatusRefunded {
		go services.RecomputeReputationWithRetry(txn.TutorID)
	}

	return c.JSON(txn)
}
