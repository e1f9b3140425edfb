package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/TheKhanSoft/tks-prepify-sub000/config"
	"github.com/TheKhanSoft/tks-prepify-sub000/models"
	"github.com/TheKhanSoft/tks-prepify-sub000/utils"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// one connection so every query sees the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Question{},
		&models.TestConfig{},
		&models.CompositionRule{},
		&models.TestAttempt{},
		&models.QuestionAttempt{},
	))
	return db
}

func TestSubmitAttemptCompletedIsWriteOnce(t *testing.T) {
	db := openTestDB(t)
	cfg := &config.Config{JWTSecret: "testsecret"}

	user := models.User{Name: "Asma", Email: "asma@example.com", PasswordHash: "x", Role: "user"}
	require.NoError(t, db.Create(&user).Error)

	category := models.Category{Name: "General", Slug: "general"}
	require.NoError(t, db.Create(&category).Error)

	q1 := models.Question{
		QuestionText:   "Capital of France?",
		Type:           "mcq",
		Options:        `["Paris","Rome"]`,
		CorrectAnswers: `["Paris"]`,
		CategoryID:     category.ID,
	}
	q2 := models.Question{
		QuestionText:   "Largest planet?",
		Type:           "mcq",
		Options:        `["Mars","Jupiter"]`,
		CorrectAnswers: `["Jupiter"]`,
		CategoryID:     category.ID,
	}
	require.NoError(t, db.Create(&q1).Error)
	require.NoError(t, db.Create(&q2).Error)

	testConfig := models.TestConfig{
		Name:             "Sample Test",
		TotalQuestions:   2,
		Duration:         30,
		MarksPerQuestion: 1,
		PassingMarks:     50,
		Published:        true,
		UnderfillPolicy:  "allow",
	}
	require.NoError(t, db.Create(&testConfig).Error)

	attempt := models.TestAttempt{
		Reference:    uuid.NewString(),
		UserID:       user.ID,
		TestConfigID: testConfig.ID,
		Status:       models.AttemptInProgress,
		StartedAt:    time.Now(),
	}
	require.NoError(t, db.Create(&attempt).Error)
	require.NoError(t, db.Create(&models.QuestionAttempt{AttemptID: attempt.ID, QuestionID: q1.ID, SequenceOrder: 1}).Error)
	require.NoError(t, db.Create(&models.QuestionAttempt{AttemptID: attempt.ID, QuestionID: q2.ID, SequenceOrder: 2}).Error)

	tc := NewTestsController(db, cfg)
	app := fiber.New()
	app.Post("/api/attempts/:ref/submit", tc.SubmitAttempt)

	token, err := utils.GenerateJWTToken(user.ID, "user", cfg)
	require.NoError(t, err)

	submit := func(answers []SubmittedAnswer) *http.Response {
		payload, err := json.Marshal(fiber.Map{"answers": answers})
		require.NoError(t, err)
		req := httptest.NewRequest("POST", "/api/attempts/"+attempt.Reference+"/submit", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	resp := submit([]SubmittedAnswer{{QuestionID: q1.ID, Answer: []string{"Paris"}}})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var first models.TestAttempt
	require.NoError(t, db.Where("reference = ?", attempt.Reference).First(&first).Error)
	assert.Equal(t, models.AttemptCompleted, first.Status)
	assert.Equal(t, 1.0, first.Score)
	assert.Equal(t, 2.0, first.TotalMarks)
	assert.Equal(t, 50.0, first.Percentage)
	assert.True(t, first.Passed)

	// Resubmitting with better answers must not change the record.
	resp = submit([]SubmittedAnswer{
		{QuestionID: q1.ID, Answer: []string{"Paris"}},
		{QuestionID: q2.ID, Answer: []string{"Jupiter"}},
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var second models.TestAttempt
	require.NoError(t, db.Where("reference = ?", attempt.Reference).First(&second).Error)
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.TotalMarks, second.TotalMarks)
	assert.Equal(t, first.Percentage, second.Percentage)
	assert.Equal(t, first.Passed, second.Passed)
	assert.Equal(t, models.AttemptCompleted, second.Status)
}
