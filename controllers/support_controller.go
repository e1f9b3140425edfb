package controllers

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/TheKhanSoft/tks-prepify-sub000/config"
	"github.com/TheKhanSoft/tks-prepify-sub000/email"
	"github.com/TheKhanSoft/tks-prepify-sub000/models"
	"github.com/TheKhanSoft/tks-prepify-sub000/quota"
	"github.com/TheKhanSoft/tks-prepify-sub000/utils"
)

type SupportController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Tracker *quota.Tracker
	Mailer  email.Service
	Logger  *log.Logger
}

func NewSupportController(db *gorm.DB, cfg *config.Config, tracker *quota.Tracker, mailer email.Service, logger *log.Logger) *SupportController {
	return &SupportController{DB: db, Cfg: cfg, Tracker: tracker, Mailer: mailer, Logger: logger}
}

func (sc *SupportController) CreateRequest(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Subject string `json:"subject" validate:"required,min=3"`
		Message string `json:"message" validate:"required,min=10"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	result, err := checkQuota(sc.DB, sc.Tracker, userID, "support_requests", 0)
	if err != nil {
		return utils.InternalServerError(c, "Could not check quota")
	}
	if !result.Allowed {
		return utils.Forbidden(c, result.Message)
	}

	request := models.SupportRequest{
		UserID:  userID,
		Subject: input.Subject,
		Message: input.Message,
	}
	if err := sc.DB.Create(&request).Error; err != nil {
		return utils.InternalServerError(c, "Could not create support request")
	}

	// Notification failures must not fail the request itself.
	notification := email.Message{
		To:      sc.Cfg.AdminEmail,
		Subject: fmt.Sprintf("New support request #%d: %s", request.ID, request.Subject),
		Body:    fmt.Sprintf("User %d wrote:\n\n%s", userID, request.Message),
	}
	if err := sc.Mailer.Send(notification); err != nil {
		sc.Logger.Printf("support notification failed: %v", err)
	}

	return utils.Created(c, fiber.Map{
		"id":      request.ID,
		"subject": request.Subject,
		"status":  request.Status,
	})
}

func (sc *SupportController) ListOwnRequests(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var requests []models.SupportRequest
	if err := sc.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&requests).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(requests)
}

func (sc *SupportController) ListRequests(c *fiber.Ctx) error {
	page, pageSize := pagination(c)

	query := sc.DB.Model(&models.SupportRequest{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var requests []models.SupportRequest
	if err := query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&requests).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Paginate(c, requests, total, page, pageSize)
}

func (sc *SupportController) UpdateRequestStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid request ID")
	}

	var input struct {
		Status string `json:"status" validate:"required,oneof=open in_progress resolved"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var request models.SupportRequest
	if err := sc.DB.First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Support request not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	request.Status = input.Status
	if err := sc.DB.Save(&request).Error; err != nil {
		return utils.InternalServerError(c, "Could not update support request")
	}
	return c.JSON(request)
}
