package controllers

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/TheKhanSoft/tks-prepify-sub000/config"
	"github.com/TheKhanSoft/tks-prepify-sub000/exam"
	"github.com/TheKhanSoft/tks-prepify-sub000/models"
	"github.com/TheKhanSoft/tks-prepify-sub000/utils"
)

type TestsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewTestsController(db *gorm.DB, cfg *config.Config) *TestsController {
	return &TestsController{DB: db, Cfg: cfg}
}

type CompositionInput struct {
	CategoryID uint    `json:"category_id" validate:"required"`
	Percentage float64 `json:"percentage" validate:"gt=0,lte=100"`
}

type TestConfigInput struct {
	Name               string             `json:"name" validate:"required"`
	Description        string             `json:"description"`
	TotalQuestions     int                `json:"total_questions" validate:"required,gt=0"`
	Duration           int                `json:"duration" validate:"required,gt=0"`
	MarksPerQuestion   float64            `json:"marks_per_question" validate:"required,gt=0"`
	HasNegativeMarking bool               `json:"has_negative_marking"`
	NegativeMarkValue  float64            `json:"negative_mark_value" validate:"gte=0"`
	PassingMarks       float64            `json:"passing_marks" validate:"gte=0,lte=100"`
	Published          bool               `json:"published"`
	UnderfillPolicy    string             `json:"underfill_policy" validate:"omitempty,oneof=allow fail"`
	Composition        []CompositionInput `json:"composition" validate:"required,min=1,dive"`
}

func (input *TestConfigInput) check(db *gorm.DB) string {
	sum := 0.0
	for _, rule := range input.Composition {
		sum += rule.Percentage
		var category models.Category
		if err := db.First(&category, rule.CategoryID).Error; err != nil {
			return "Composition references an unknown category"
		}
	}
	if math.Abs(sum-100) > 0.001 {
		return "Composition percentages must sum to 100"
	}
	return ""
}

func (tc *TestsController) ListConfigs(c *fiber.Ctx) error {
	var configs []models.TestConfig
	if err := tc.DB.Preload("Composition").Find(&configs).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(configs)
}

// ListAvailableTests is the user-facing catalogue: published configs
// only, without composition details.
func (tc *TestsController) ListAvailableTests(c *fiber.Ctx) error {
	var configs []models.TestConfig
	if err := tc.DB.Where("published = ?", true).Find(&configs).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	rows := make([]fiber.Map, 0, len(configs))
	for _, cfg := range configs {
		rows = append(rows, fiber.Map{
			"id":              cfg.ID,
			"name":            cfg.Name,
			"description":     cfg.Description,
			"total_questions": cfg.TotalQuestions,
			"duration":        cfg.Duration,
			"passing_marks":   cfg.PassingMarks,
		})
	}
	return c.JSON(rows)
}

func (tc *TestsController) CreateConfig(c *fiber.Ctx) error {
	var input TestConfigInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}
	if msg := input.check(tc.DB); msg != "" {
		return utils.BadRequest(c, msg)
	}

	testConfig := models.TestConfig{
		Name:               input.Name,
		Description:        input.Description,
		TotalQuestions:     input.TotalQuestions,
		Duration:           input.Duration,
		MarksPerQuestion:   input.MarksPerQuestion,
		HasNegativeMarking: input.HasNegativeMarking,
		NegativeMarkValue:  input.NegativeMarkValue,
		PassingMarks:       input.PassingMarks,
		Published:          input.Published,
		UnderfillPolicy:    defaultString(input.UnderfillPolicy, exam.UnderfillAllow),
	}
	for _, rule := range input.Composition {
		testConfig.Composition = append(testConfig.Composition, models.CompositionRule{
			CategoryID: rule.CategoryID,
			Percentage: rule.Percentage,
		})
	}

	if err := tc.DB.Create(&testConfig).Error; err != nil {
		return utils.InternalServerError(c, "Could not create test config")
	}
	return utils.Created(c, testConfig)
}

func (tc *TestsController) UpdateConfig(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid config ID")
	}

	var input TestConfigInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}
	if msg := input.check(tc.DB); msg != "" {
		return utils.BadRequest(c, msg)
	}

	var testConfig models.TestConfig
	if err := tc.DB.First(&testConfig, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Test config not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	testConfig.Name = input.Name
	testConfig.Description = input.Description
	testConfig.TotalQuestions = input.TotalQuestions
	testConfig.Duration = input.Duration
	testConfig.MarksPerQuestion = input.MarksPerQuestion
	testConfig.HasNegativeMarking = input.HasNegativeMarking
	testConfig.NegativeMarkValue = input.NegativeMarkValue
	testConfig.PassingMarks = input.PassingMarks
	testConfig.Published = input.Published
	testConfig.UnderfillPolicy = defaultString(input.UnderfillPolicy, testConfig.UnderfillPolicy)

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_config_id = ?", testConfig.ID).Delete(&models.CompositionRule{}).Error; err != nil {
			return err
		}
		for _, rule := range input.Composition {
			row := models.CompositionRule{
				TestConfigID: testConfig.ID,
				CategoryID:   rule.CategoryID,
				Percentage:   rule.Percentage,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return tx.Save(&testConfig).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not update test config")
	}
	return c.JSON(fiber.Map{"message": "Test config updated"})
}

func (tc *TestsController) DeleteConfig(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid config ID")
	}

	var attempts int64
	tc.DB.Model(&models.TestAttempt{}).Where("test_config_id = ?", id).Count(&attempts)
	if attempts > 0 {
		return utils.Conflict(c, "Test config has recorded attempts")
	}

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_config_id = ?", id).Delete(&models.CompositionRule{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.TestConfig{}, id).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete test config")
	}
	return c.JSON(fiber.Map{"message": "Test config deleted"})
}

// StartTest generates a fresh question set for the config and opens an
// attempt. Unpublished or missing configs reject the request; the
// client is expected to redirect, not retry.
func (tc *TestsController) StartTest(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid config ID")
	}

	var testConfig models.TestConfig
	if err := tc.DB.Preload("Composition").First(&testConfig, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Test not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if !testConfig.Published {
		return utils.BadRequest(c, "Test is not published")
	}

	var categories []models.Category
	if err := tc.DB.Find(&categories).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	nodes := make([]exam.CategoryNode, len(categories))
	for i, cat := range categories {
		nodes[i] = exam.CategoryNode{ID: cat.ID, ParentID: cat.ParentID}
	}

	pool := func(categoryIDs []uint) ([]exam.Question, error) {
		var bank []models.Question
		if err := tc.DB.Where("category_id IN ?", categoryIDs).Find(&bank).Error; err != nil {
			return nil, err
		}
		questions := make([]exam.Question, len(bank))
		for i, q := range bank {
			questions[i] = toExamQuestion(q)
		}
		return questions, nil
	}

	rules := make([]exam.CompositionRule, len(testConfig.Composition))
	for i, rule := range testConfig.Composition {
		rules[i] = exam.CompositionRule{CategoryID: rule.CategoryID, Percentage: rule.Percentage}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	picked, err := exam.Generate(examConfig(testConfig), rules, exam.NewCategoryIndex(nodes), pool, rng)
	if err != nil {
		if errors.Is(err, exam.ErrPoolTooSmall) {
			return utils.Conflict(c, "Not enough questions to build this test")
		}
		return utils.InternalServerError(c, "Could not generate test")
	}

	attempt := models.TestAttempt{
		Reference:    uuid.NewString(),
		UserID:       userID,
		TestConfigID: testConfig.ID,
		Status:       models.AttemptInProgress,
		StartedAt:    time.Now(),
	}
	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&attempt).Error; err != nil {
			return err
		}
		for _, p := range picked {
			row := models.QuestionAttempt{
				AttemptID:     attempt.ID,
				QuestionID:    p.ID,
				SequenceOrder: p.SequenceOrder,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not create attempt")
	}

	// Correct answers never leave the server before submission.
	questions := make([]fiber.Map, len(picked))
	for i, p := range picked {
		questions[i] = fiber.Map{
			"id":            p.ID,
			"question_text": p.Text,
			"type":          p.Type,
			"options":       p.Options,
			"order":         p.SequenceOrder,
		}
	}

	return utils.Created(c, fiber.Map{
		"reference": attempt.Reference,
		"duration":  testConfig.Duration,
		"questions": questions,
	})
}

type SubmittedAnswer struct {
	QuestionID uint     `json:"question_id"`
	Answer     []string `json:"answer"`
	TimeSpent  float64  `json:"time_spent"`
}

// SubmitAttempt finalizes an attempt exactly once. The questions are
// snapshotted into the attempt rows here so later edits to the bank
// never change this result.
func (tc *TestsController) SubmitAttempt(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Answers []SubmittedAnswer `json:"answers"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var attempt models.TestAttempt
	err = tc.DB.Preload("TestConfig").
		Where("reference = ? AND user_id = ?", c.Params("ref"), userID).
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Attempt not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if attempt.Status == models.AttemptCompleted {
		return utils.Conflict(c, "Attempt already submitted")
	}

	var rows []models.QuestionAttempt
	if err := tc.DB.Where("attempt_id = ?", attempt.ID).Order("sequence_order").Find(&rows).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	questionIDs := make([]uint, len(rows))
	for i, row := range rows {
		questionIDs[i] = row.QuestionID
	}
	// Unscoped: a question soft-deleted mid-attempt must still be
	// snapshotted.
	var bank []models.Question
	if err := tc.DB.Unscoped().Where("id IN ?", questionIDs).Find(&bank).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	bankByID := make(map[uint]models.Question, len(bank))
	for _, q := range bank {
		bankByID[q.ID] = q
	}

	answers := make(map[uint]exam.Answer, len(input.Answers))
	timeSpent := make(map[uint]float64, len(input.Answers))
	for _, a := range input.Answers {
		answers[a.QuestionID] = exam.Answer(a.Answer)
		timeSpent[a.QuestionID] = a.TimeSpent
	}

	questions := make([]exam.Question, len(rows))
	for i, row := range rows {
		questions[i] = toExamQuestion(bankByID[row.QuestionID])
		questions[i].ID = row.QuestionID
	}

	result := exam.Score(examConfig(attempt.TestConfig), questions, answers)

	resultByID := make(map[uint]exam.QuestionResult, len(result.PerQuestion))
	for _, qr := range result.PerQuestion {
		resultByID[qr.QuestionID] = qr
	}

	now := time.Now()
	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			bankQuestion := bankByID[row.QuestionID]
			questionResult := resultByID[row.QuestionID]

			row.QuestionText = bankQuestion.QuestionText
			row.Type = bankQuestion.Type
			row.Options = bankQuestion.Options
			row.CorrectAnswers = bankQuestion.CorrectAnswers
			row.UserAnswer = encodeStrings(answers[row.QuestionID])
			row.Answered = questionResult.Answered
			row.IsCorrect = questionResult.IsCorrect
			row.TimeSpent = timeSpent[row.QuestionID]
			if err := tx.Save(&row).Error; err != nil {
				return err
			}
		}

		attempt.Status = models.AttemptCompleted
		attempt.CompletedAt = &now
		attempt.Score = result.RawScore
		attempt.TotalMarks = result.TotalMarks
		attempt.Percentage = result.Percentage
		attempt.Passed = result.Passed
		return tx.Save(&attempt).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not save attempt")
	}

	return c.JSON(fiber.Map{
		"reference":   attempt.Reference,
		"score":       attempt.Score,
		"total_marks": attempt.TotalMarks,
		"percentage":  attempt.Percentage,
		"passed":      attempt.Passed,
	})
}

func (tc *TestsController) GetResult(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var attempt models.TestAttempt
	err = tc.DB.Preload("TestConfig").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_order")
		}).
		Where("reference = ? AND user_id = ?", c.Params("ref"), userID).
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Attempt not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if attempt.Status != models.AttemptCompleted {
		return utils.BadRequest(c, "Attempt is not completed")
	}

	questions := make([]fiber.Map, 0, len(attempt.Questions))
	for _, row := range attempt.Questions {
		questions = append(questions, fiber.Map{
			"question_id":     row.QuestionID,
			"question_text":   row.QuestionText,
			"type":            row.Type,
			"options":         decodeStrings(row.Options),
			"correct_answers": decodeStrings(row.CorrectAnswers),
			"user_answer":     decodeStrings(row.UserAnswer),
			"answered":        row.Answered,
			"is_correct":      row.IsCorrect,
			"time_spent":      row.TimeSpent,
			"order":           row.SequenceOrder,
		})
	}

	return c.JSON(fiber.Map{
		"reference":    attempt.Reference,
		"test_name":    attempt.TestConfig.Name,
		"score":        attempt.Score,
		"total_marks":  attempt.TotalMarks,
		"percentage":   attempt.Percentage,
		"passed":       attempt.Passed,
		"started_at":   attempt.StartedAt,
		"completed_at": attempt.CompletedAt,
		"questions":    questions,
	})
}

func (tc *TestsController) ListAttempts(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	page, pageSize := pagination(c)
	query := tc.DB.Model(&models.TestAttempt{}).Where("user_id = ?", userID)

	var total int64
	query.Count(&total)

	var attempts []models.TestAttempt
	if err := query.Preload("TestConfig").Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&attempts).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	rows := make([]fiber.Map, 0, len(attempts))
	for _, a := range attempts {
		rows = append(rows, fiber.Map{
			"reference":  a.Reference,
			"test_name":  a.TestConfig.Name,
			"status":     a.Status,
			"score":      a.Score,
			"percentage": a.Percentage,
			"passed":     a.Passed,
			"started_at": a.StartedAt,
		})
	}
	return utils.Paginate(c, rows, total, page, pageSize)
}

func examConfig(cfg models.TestConfig) exam.Config {
	return exam.Config{
		TotalQuestions:     cfg.TotalQuestions,
		MarksPerQuestion:   cfg.MarksPerQuestion,
		HasNegativeMarking: cfg.HasNegativeMarking,
		NegativeMarkValue:  cfg.NegativeMarkValue,
		PassingMarks:       cfg.PassingMarks,
		UnderfillPolicy:    cfg.UnderfillPolicy,
	}
}
