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

type PapersController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Tracker *quota.Tracker
}

func NewPapersController(db *gorm.DB, cfg *config.Config, tracker *quota.Tracker) *PapersController {
	return &PapersController{DB: db, Cfg: cfg, Tracker: tracker}
}

func (pc *PapersController) ListPapers(c *fiber.Ctx) error {
	page, pageSize := pagination(c)

	query := pc.DB.Model(&models.Paper{}).Where("published = ?", true)
	if categoryID := c.QueryInt("category_id"); categoryID > 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var papers []models.Paper
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&papers).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Paginate(c, papers, total, page, pageSize)
}

// GetPaper returns a published paper with its questions in order.
// Correct answers stay hidden on this endpoint.
func (pc *PapersController) GetPaper(c *fiber.Ctx) error {
	paper, err := pc.loadPaper(c)
	if err != nil {
		return err
	}
	if !paper.Published {
		return utils.NotFound(c, "Paper not found")
	}

	questions := make([]fiber.Map, 0, len(paper.Questions))
	for _, pq := range paper.Questions {
		questions = append(questions, fiber.Map{
			"id":            pq.Question.ID,
			"question_text": pq.Question.QuestionText,
			"type":          pq.Question.Type,
			"options":       decodeStrings(pq.Question.Options),
			"order":         pq.SequenceOrder,
		})
	}

	return c.JSON(fiber.Map{
		"id":          paper.ID,
		"title":       paper.Title,
		"slug":        paper.Slug,
		"description": paper.Description,
		"category_id": paper.CategoryID,
		"questions":   questions,
	})
}

// DownloadPaper is quota-gated on the "downloads" feature. The
// response includes correct answers and explanations, which is what
// makes it worth a quota slot.
func (pc *PapersController) DownloadPaper(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	paper, err := pc.loadPaper(c)
	if err != nil {
		return err
	}
	if !paper.Published {
		return utils.NotFound(c, "Paper not found")
	}

	result, err := checkQuota(pc.DB, pc.Tracker, userID, "downloads", paper.ID)
	if err != nil {
		return utils.InternalServerError(c, "Could not check quota")
	}
	if !result.Allowed {
		return utils.Forbidden(c, result.Message)
	}

	questions := make([]fiber.Map, 0, len(paper.Questions))
	for _, pq := range paper.Questions {
		questions = append(questions, fiber.Map{
			"id":              pq.Question.ID,
			"question_text":   pq.Question.QuestionText,
			"type":            pq.Question.Type,
			"options":         decodeStrings(pq.Question.Options),
			"correct_answers": decodeStrings(pq.Question.CorrectAnswers),
			"explanation":     pq.Question.Explanation,
			"order":           pq.SequenceOrder,
		})
	}

	return c.JSON(fiber.Map{
		"title":     paper.Title,
		"questions": questions,
		"quota": fiber.Map{
			"remaining":  result.Remaining,
			"next_reset": result.NextReset,
		},
	})
}

type PaperInput struct {
	Title       string `json:"title" validate:"required"`
	Slug        string `json:"slug" validate:"required"`
	Description string `json:"description"`
	CategoryID  uint   `json:"category_id" validate:"required"`
	Published   bool   `json:"published"`
}

func (pc *PapersController) CreatePaper(c *fiber.Ctx) error {
	var input PaperInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	paper := models.Paper{
		Title:       input.Title,
		Slug:        input.Slug,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		Published:   input.Published,
	}
	if err := pc.DB.Create(&paper).Error; err != nil {
		return utils.Conflict(c, "Could not create paper")
	}
	return utils.Created(c, paper)
}

func (pc *PapersController) UpdatePaper(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid paper ID")
	}

	var input PaperInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var paper models.Paper
	if err := pc.DB.First(&paper, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Paper not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	paper.Title = input.Title
	paper.Slug = input.Slug
	paper.Description = input.Description
	paper.CategoryID = input.CategoryID
	paper.Published = input.Published

	if err := pc.DB.Save(&paper).Error; err != nil {
		return utils.InternalServerError(c, "Could not update paper")
	}
	return c.JSON(paper)
}

// SetPaperQuestions replaces the paper's question list. Presentation
// order follows the submitted sequence.
func (pc *PapersController) SetPaperQuestions(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid paper ID")
	}

	var input struct {
		QuestionIDs []uint `json:"question_ids" validate:"required,min=1"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var paper models.Paper
	if err := pc.DB.First(&paper, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Paper not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var count int64
	pc.DB.Model(&models.Question{}).Where("id IN ?", input.QuestionIDs).Count(&count)
	if count != int64(len(input.QuestionIDs)) {
		return utils.BadRequest(c, "Unknown question in list")
	}

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("paper_id = ?", paper.ID).Delete(&models.PaperQuestion{}).Error; err != nil {
			return err
		}
		for i, questionID := range input.QuestionIDs {
			row := models.PaperQuestion{
				PaperID:       paper.ID,
				QuestionID:    questionID,
				SequenceOrder: i + 1,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not update paper questions")
	}
	return c.JSON(fiber.Map{"message": "Paper questions updated"})
}

func (pc *PapersController) DeletePaper(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid paper ID")
	}

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("paper_id = ?", id).Delete(&models.PaperQuestion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Paper{}, id).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete paper")
	}
	return c.JSON(fiber.Map{"message": "Paper deleted"})
}

func (pc *PapersController) loadPaper(c *fiber.Ctx) (*models.Paper, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return nil, utils.BadRequest(c, "Invalid paper ID")
	}

	var paper models.Paper
	err = pc.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence_order")
	}).Preload("Questions.Question").First(&paper, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound(c, "Paper not found")
		}
		return nil, utils.InternalServerError(c, "Could not query database")
	}
	return &paper, nil
}
