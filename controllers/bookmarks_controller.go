package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/TheKhanSoft/tks-prepify-sub000/config"
	"github.com/TheKhanSoft/tks-prepify-sub000/models"
	"github.com/TheKhanSoft/tks-prepify-sub000/quota"
	"github.com/TheKhanSoft/tks-prepify-sub000/utils"
)

type BookmarksController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Tracker *quota.Tracker
}

func NewBookmarksController(db *gorm.DB, cfg *config.Config, tracker *quota.Tracker) *BookmarksController {
	return &BookmarksController{DB: db, Cfg: cfg, Tracker: tracker}
}

func (bc *BookmarksController) ListBookmarks(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, bc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var bookmarks []models.Bookmark
	if err := bc.DB.Preload("Paper").Where("user_id = ?", userID).Find(&bookmarks).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	rows := make([]fiber.Map, 0, len(bookmarks))
	for _, b := range bookmarks {
		rows = append(rows, fiber.Map{
			"id":          b.ID,
			"paper_id":    b.PaperID,
			"paper_title": b.Paper.Title,
			"created_at":  b.CreatedAt,
		})
	}
	return c.JSON(rows)
}

func (bc *BookmarksController) CreateBookmark(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, bc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		PaperID uint `json:"paper_id" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var paper models.Paper
	if err := bc.DB.First(&paper, input.PaperID).Error; err != nil {
		return utils.NotFound(c, "Paper not found")
	}

	var existing models.Bookmark
	err = bc.DB.Where("user_id = ? AND paper_id = ?", userID, input.PaperID).First(&existing).Error
	if err == nil {
		return utils.Conflict(c, "Paper already bookmarked")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.InternalServerError(c, "Could not query database")
	}

	result, err := checkQuota(bc.DB, bc.Tracker, userID, "bookmarks", input.PaperID)
	if err != nil {
		return utils.InternalServerError(c, "Could not check quota")
	}
	if !result.Allowed {
		return utils.Forbidden(c, result.Message)
	}

	bookmark := models.Bookmark{UserID: userID, PaperID: input.PaperID}
	if err := bc.DB.Create(&bookmark).Error; err != nil {
		return utils.InternalServerError(c, "Could not create bookmark")
	}
	return utils.Created(c, bookmark)
}

// DeleteBookmark removes a bookmark. The quota event stays recorded;
// deleting bookmarks does not refund quota.
func (bc *BookmarksController) DeleteBookmark(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, bc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid bookmark ID")
	}

	result := bc.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Bookmark{})
	if result.Error != nil {
		return utils.InternalServerError(c, "Could not delete bookmark")
	}
	if result.RowsAffected == 0 {
		return utils.NotFound(c, "Bookmark not found")
	}
	return c.JSON(fiber.Map{"message": "Bookmark removed"})
}
