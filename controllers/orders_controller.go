package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TheKhanSoft/tks-prepify-sub000/billing"
	"github.com/TheKhanSoft/tks-prepify-sub000/config"
	"github.com/TheKhanSoft/tks-prepify-sub000/models"
	"github.com/TheKhanSoft/tks-prepify-sub000/utils"
)

type OrdersController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Stripe *billing.StripeService
}

func NewOrdersController(db *gorm.DB, cfg *config.Config, stripe *billing.StripeService) *OrdersController {
	return &OrdersController{DB: db, Cfg: cfg, Stripe: stripe}
}

type CheckoutInput struct {
	PlanID uint `json:"plan_id" validate:"required"`
}

// Checkout creates a pending order for a plan. Free plans activate
// immediately; paid plans hand back a Stripe checkout URL.
func (oc *OrdersController) Checkout(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, oc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input CheckoutInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var plan models.Plan
	if err := oc.DB.First(&plan, input.PlanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Plan not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if !plan.Published {
		return utils.BadRequest(c, "Plan is not available")
	}

	order := models.Order{
		Reference: uuid.NewString(),
		UserID:    userID,
		PlanID:    plan.ID,
		Amount:    plan.Price,
		Currency:  plan.Currency,
		Status:    "pending",
	}
	if err := oc.DB.Create(&order).Error; err != nil {
		return utils.InternalServerError(c, "Could not create order")
	}

	if plan.Price == 0 {
		if err := billing.ActivateOrder(oc.DB, order.Reference); err != nil {
			return utils.InternalServerError(c, "Could not activate plan")
		}
		return utils.Created(c, fiber.Map{
			"reference": order.Reference,
			"status":    "completed",
		})
	}

	if oc.Stripe == nil {
		return utils.InternalServerError(c, "Payments are not configured")
	}

	checkoutURL, sessionID, err := oc.Stripe.CreateCheckoutSession(&order, &plan)
	if err != nil {
		return utils.InternalServerError(c, "Could not start checkout")
	}

	order.StripeSessionID = sessionID
	if err := oc.DB.Save(&order).Error; err != nil {
		return utils.InternalServerError(c, "Could not save order")
	}

	return utils.Created(c, fiber.Map{
		"reference":    order.Reference,
		"status":       order.Status,
		"session_id":   sessionID,
		"checkout_url": checkoutURL,
	})
}

// Webhook receives Stripe events. Signature verification and event
// dispatch live in the billing package.
func (oc *OrdersController) Webhook(c *fiber.Ctx) error {
	if oc.Stripe == nil {
		return utils.InternalServerError(c, "Payments are not configured")
	}
	if err := oc.Stripe.HandleWebhook(c.Body(), c.Get("Stripe-Signature")); err != nil {
		return utils.BadRequest(c, "Webhook rejected")
	}
	return c.JSON(fiber.Map{"received": true})
}

// Confirm lets the success-page redirect settle an order without
// waiting for the webhook. Safe to call more than once.
func (oc *OrdersController) Confirm(c *fiber.Ctx) error {
	if oc.Stripe == nil {
		return utils.InternalServerError(c, "Payments are not configured")
	}

	sessionID := c.Query("session_id")
	if sessionID == "" {
		return utils.BadRequest(c, "session_id is required")
	}

	completed, err := oc.Stripe.ConfirmSession(sessionID)
	if err != nil {
		return utils.InternalServerError(c, "Could not confirm session")
	}
	return c.JSON(fiber.Map{"completed": completed})
}

func (oc *OrdersController) ListOwnOrders(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, oc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var orders []models.Order
	if err := oc.DB.Preload("Plan").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&orders).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	rows := make([]fiber.Map, 0, len(orders))
	for _, order := range orders {
		rows = append(rows, fiber.Map{
			"reference":  order.Reference,
			"plan":       order.Plan.Name,
			"amount":     order.Amount,
			"currency":   order.Currency,
			"status":     order.Status,
			"created_at": order.CreatedAt,
		})
	}
	return c.JSON(rows)
}

func (oc *OrdersController) ListOrders(c *fiber.Ctx) error {
	page, pageSize := pagination(c)
	query := oc.DB.Model(&models.Order{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var orders []models.Order
	if err := query.Preload("Plan").Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&orders).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Paginate(c, orders, total, page, pageSize)
}
