package controllers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/TheKhanSoft/tks-prepify-sub000/config"
	"github.com/TheKhanSoft/tks-prepify-sub000/exam"
	"github.com/TheKhanSoft/tks-prepify-sub000/models"
	"github.com/TheKhanSoft/tks-prepify-sub000/utils"
)

type QuestionsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewQuestionsController(db *gorm.DB, cfg *config.Config) *QuestionsController {
	return &QuestionsController{DB: db, Cfg: cfg}
}

type QuestionInput struct {
	QuestionText   string   `json:"question_text" validate:"required"`
	Type           string   `json:"type" validate:"required,oneof=mcq short_answer"`
	Options        []string `json:"options"`
	CorrectAnswers []string `json:"correct_answers" validate:"required,min=1"`
	Explanation    string   `json:"explanation"`
	CategoryID     uint     `json:"category_id" validate:"required"`
}

func (input *QuestionInput) check() string {
	if input.Type == exam.QuestionTypeMCQ {
		if len(input.Options) < 2 {
			return "MCQ questions need at least two options"
		}
		options := make(map[string]bool, len(input.Options))
		for _, o := range input.Options {
			options[o] = true
		}
		for _, a := range input.CorrectAnswers {
			if !options[a] {
				return "Correct answers must be among the options"
			}
		}
		return ""
	}
	if len(input.CorrectAnswers) != 1 {
		return "Short-answer questions take exactly one correct answer"
	}
	return ""
}

func (qc *QuestionsController) ListQuestions(c *fiber.Ctx) error {
	page, pageSize := pagination(c)

	query := qc.DB.Model(&models.Question{})
	if categoryID := c.QueryInt("category_id"); categoryID > 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	if questionType := c.Query("type"); questionType != "" {
		query = query.Where("type = ?", questionType)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("question_text ILIKE ?", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var questions []models.Question
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&questions).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Paginate(c, questions, total, page, pageSize)
}

func (qc *QuestionsController) GetQuestion(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}

	var question models.Question
	if err := qc.DB.First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Question not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(question)
}

func (qc *QuestionsController) CreateQuestion(c *fiber.Ctx) error {
	var input QuestionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}
	if msg := input.check(); msg != "" {
		return utils.BadRequest(c, msg)
	}

	var category models.Category
	if err := qc.DB.First(&category, input.CategoryID).Error; err != nil {
		return utils.BadRequest(c, "Category does not exist")
	}

	question := models.Question{
		QuestionText:   input.QuestionText,
		Type:           input.Type,
		Options:        encodeStrings(input.Options),
		CorrectAnswers: encodeStrings(input.CorrectAnswers),
		Explanation:    input.Explanation,
		CategoryID:     input.CategoryID,
	}
	if err := qc.DB.Create(&question).Error; err != nil {
		return utils.InternalServerError(c, "Could not create question")
	}
	return utils.Created(c, question)
}

func (qc *QuestionsController) UpdateQuestion(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}

	var input QuestionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}
	if msg := input.check(); msg != "" {
		return utils.BadRequest(c, msg)
	}

	var question models.Question
	if err := qc.DB.First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Question not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	question.QuestionText = input.QuestionText
	question.Type = input.Type
	question.Options = encodeStrings(input.Options)
	question.CorrectAnswers = encodeStrings(input.CorrectAnswers)
	question.Explanation = input.Explanation
	question.CategoryID = input.CategoryID

	if err := qc.DB.Save(&question).Error; err != nil {
		return utils.InternalServerError(c, "Could not update question")
	}
	return c.JSON(question)
}

func (qc *QuestionsController) DeleteQuestion(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}

	var used int64
	qc.DB.Model(&models.PaperQuestion{}).Where("question_id = ?", id).Count(&used)
	if used > 0 {
		return utils.Conflict(c, "Question is used by a paper")
	}

	if err := qc.DB.Delete(&models.Question{}, id).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete question")
	}
	return c.JSON(fiber.Map{"message": "Question deleted"})
}

func encodeStrings(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	encoded, _ := json.Marshal(values)
	return string(encoded)
}

func decodeStrings(encoded string) []string {
	if encoded == "" {
		return nil
	}
	var values []string
	_ = json.Unmarshal([]byte(encoded), &values)
	return values
}

// toExamQuestion converts a bank record into the exam package's typed
// shape, decoding the JSON columns at the storage boundary.
func toExamQuestion(q models.Question) exam.Question {
	return exam.Question{
		ID:             q.ID,
		Text:           q.QuestionText,
		Type:           q.Type,
		Options:        decodeStrings(q.Options),
		CorrectAnswers: decodeStrings(q.CorrectAnswers),
		CategoryID:     q.CategoryID,
	}
}
