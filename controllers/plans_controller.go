package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/TheKhanSoft/tks-prepify-sub000/config"
	"github.com/TheKhanSoft/tks-prepify-sub000/models"
	"github.com/TheKhanSoft/tks-prepify-sub000/utils"
)

type PlansController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewPlansController(db *gorm.DB, cfg *config.Config) *PlansController {
	return &PlansController{DB: db, Cfg: cfg}
}

type PlanFeatureInput struct {
	Key     string `json:"key" validate:"required"`
	Label   string `json:"label"`
	IsQuota bool   `json:"is_quota"`
	Limit   int    `json:"limit" validate:"gte=-1"`
	Period  string `json:"period" validate:"omitempty,oneof=daily weekly monthly yearly lifetime"`
}

type PlanInput struct {
	Name      string             `json:"name" validate:"required"`
	Slug      string             `json:"slug" validate:"required"`
	Tagline   string             `json:"tagline"`
	Price     float64            `json:"price" validate:"gte=0"`
	Currency  string             `json:"currency"`
	Interval  string             `json:"interval" validate:"omitempty,oneof=month year"`
	Popular   bool               `json:"popular"`
	Published bool               `json:"published"`
	Features  []PlanFeatureInput `json:"features" validate:"dive"`
}

// ListPlans is the public pricing page feed: published plans only.
func (pc *PlansController) ListPlans(c *fiber.Ctx) error {
	var plans []models.Plan
	if err := pc.DB.Preload("Features").Where("published = ?", true).Order("price").Find(&plans).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(plans)
}

// ListAllPlans is the admin table, drafts included.
func (pc *PlansController) ListAllPlans(c *fiber.Ctx) error {
	var plans []models.Plan
	if err := pc.DB.Preload("Features").Order("price").Find(&plans).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(plans)
}

func (pc *PlansController) CreatePlan(c *fiber.Ctx) error {
	var input PlanInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	plan := models.Plan{
		Name:      input.Name,
		Slug:      input.Slug,
		Tagline:   input.Tagline,
		Price:     input.Price,
		Currency:  defaultString(input.Currency, "usd"),
		Interval:  defaultString(input.Interval, "month"),
		Popular:   input.Popular,
		Published: input.Published,
	}
	for _, f := range input.Features {
		plan.Features = append(plan.Features, models.PlanFeature{
			Key:     f.Key,
			Label:   f.Label,
			IsQuota: f.IsQuota,
			Limit:   f.Limit,
			Period:  defaultString(f.Period, "monthly"),
		})
	}

	if err := pc.DB.Create(&plan).Error; err != nil {
		return utils.Conflict(c, "Could not create plan")
	}
	return utils.Created(c, plan)
}

func (pc *PlansController) UpdatePlan(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid plan ID")
	}

	var input PlanInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var plan models.Plan
	if err := pc.DB.First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Plan not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	plan.Name = input.Name
	plan.Slug = input.Slug
	plan.Tagline = input.Tagline
	plan.Price = input.Price
	plan.Currency = defaultString(input.Currency, plan.Currency)
	plan.Interval = defaultString(input.Interval, plan.Interval)
	plan.Popular = input.Popular
	plan.Published = input.Published

	// Features are replaced wholesale; existing subscriptions keep
	// working because quota checks read the current feature set.
	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", plan.ID).Delete(&models.PlanFeature{}).Error; err != nil {
			return err
		}
		for _, f := range input.Features {
			feature := models.PlanFeature{
				PlanID:  plan.ID,
				Key:     f.Key,
				Label:   f.Label,
				IsQuota: f.IsQuota,
				Limit:   f.Limit,
				Period:  defaultString(f.Period, "monthly"),
			}
			if err := tx.Create(&feature).Error; err != nil {
				return err
			}
		}
		return tx.Save(&plan).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not update plan")
	}
	return c.JSON(fiber.Map{"message": "Plan updated", "plan": plan})
}

func (pc *PlansController) DeletePlan(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid plan ID")
	}

	var count int64
	pc.DB.Model(&models.Subscription{}).Where("plan_id = ? AND status = ?", id, "active").Count(&count)
	if count > 0 {
		return utils.Conflict(c, "Plan has active subscriptions")
	}

	if err := pc.DB.Delete(&models.Plan{}, id).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete plan")
	}
	return c.JSON(fiber.Map{"message": "Plan deleted"})
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
