package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/TheKhanSoft/tks-prepify-sub000/config"
	"github.com/TheKhanSoft/tks-prepify-sub000/models"
	"github.com/TheKhanSoft/tks-prepify-sub000/utils"
)

type CategoriesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCategoriesController(db *gorm.DB, cfg *config.Config) *CategoriesController {
	return &CategoriesController{DB: db, Cfg: cfg}
}

// ListCategories returns the whole category table; clients assemble
// the tree from parent_id.
func (cc *CategoriesController) ListCategories(c *fiber.Ctx) error {
	var categories []models.Category
	if err := cc.DB.Order("name").Find(&categories).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(categories)
}

type CategoryInput struct {
	Name     string `json:"name" validate:"required"`
	Slug     string `json:"slug" validate:"required"`
	ParentID *uint  `json:"parent_id"`
}

func (cc *CategoriesController) CreateCategory(c *fiber.Ctx) error {
	var input CategoryInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	if input.ParentID != nil {
		var parent models.Category
		if err := cc.DB.First(&parent, *input.ParentID).Error; err != nil {
			return utils.BadRequest(c, "Parent category does not exist")
		}
	}

	category := models.Category{Name: input.Name, Slug: input.Slug, ParentID: input.ParentID}
	if err := cc.DB.Create(&category).Error; err != nil {
		return utils.Conflict(c, "Could not create category")
	}
	return utils.Created(c, category)
}

func (cc *CategoriesController) UpdateCategory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid category ID")
	}

	var input CategoryInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var category models.Category
	if err := cc.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Category not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	// A category cannot become its own parent.
	if input.ParentID != nil && *input.ParentID == category.ID {
		return utils.BadRequest(c, "Category cannot be its own parent")
	}

	category.Name = input.Name
	category.Slug = input.Slug
	category.ParentID = input.ParentID
	if err := cc.DB.Save(&category).Error; err != nil {
		return utils.InternalServerError(c, "Could not update category")
	}
	return c.JSON(category)
}

func (cc *CategoriesController) DeleteCategory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid category ID")
	}

	var children int64
	cc.DB.Model(&models.Category{}).Where("parent_id = ?", id).Count(&children)
	if children > 0 {
		return utils.Conflict(c, "Category has child categories")
	}

	var questions int64
	cc.DB.Model(&models.Question{}).Where("category_id = ?", id).Count(&questions)
	if questions > 0 {
		return utils.Conflict(c, "Category has questions")
	}

	if err := cc.DB.Delete(&models.Category{}, id).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete category")
	}
	return c.JSON(fiber.Map{"message": "Category deleted"})
}
