package routes

import (
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/TheKhanSoft/tks-prepify-sub000/config"
	"github.com/TheKhanSoft/tks-prepify-sub000/email"
	"github.com/TheKhanSoft/tks-prepify-sub000/models"
	"github.com/TheKhanSoft/tks-prepify-sub000/quota"
	"github.com/TheKhanSoft/tks-prepify-sub000/utils"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Question{},
	))

	cfg := &config.Config{JWTSecret: "testsecret"}
	logger := utils.InitLogger()

	app := fiber.New()
	SetupRoutes(app, db, cfg, quota.NewTracker(quota.NewGormStore(db)), email.NewConsoleService(logger), nil, logger)
	return app, db, cfg
}

func get(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

// The question bank carries correct answers, so it is reachable only
// through the admin group.
func TestQuestionBankRequiresAdmin(t *testing.T) {
	app, db, cfg := setupApp(t)

	admin := models.User{Name: "Admin", Email: "admin@example.com", PasswordHash: "x", Role: "admin"}
	require.NoError(t, db.Create(&admin).Error)
	member := models.User{Name: "Member", Email: "member@example.com", PasswordHash: "x", Role: "user"}
	require.NoError(t, db.Create(&member).Error)

	category := models.Category{Name: "General", Slug: "general"}
	require.NoError(t, db.Create(&category).Error)
	question := models.Question{
		QuestionText:   "Capital of France?",
		Type:           "mcq",
		Options:        `["Paris","Rome"]`,
		CorrectAnswers: `["Paris"]`,
		CategoryID:     category.ID,
	}
	require.NoError(t, db.Create(&question).Error)

	adminToken, err := utils.GenerateJWTToken(admin.ID, "admin", cfg)
	require.NoError(t, err)
	memberToken, err := utils.GenerateJWTToken(member.ID, "user", cfg)
	require.NoError(t, err)

	// no public bank routes
	assert.Equal(t, fiber.StatusNotFound, get(t, app, "/api/questions", memberToken))
	assert.Equal(t, fiber.StatusNotFound, get(t, app, "/api/questions/1", memberToken))

	// regular users are turned away from the admin bank
	assert.Equal(t, fiber.StatusForbidden, get(t, app, "/api/admin/questions", memberToken))
	assert.Equal(t, fiber.StatusForbidden, get(t, app, "/api/admin/questions/1", memberToken))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/api/admin/questions", ""))

	assert.Equal(t, fiber.StatusOK, get(t, app, "/api/admin/questions", adminToken))
	assert.Equal(t, fiber.StatusOK, get(t, app, "/api/admin/questions/1", adminToken))
}

// The paper catalogue is public; only downloads need a login.
func TestPaperCatalogueIsPublic(t *testing.T) {
	app, db, _ := setupApp(t)
	require.NoError(t, db.AutoMigrate(&models.Paper{}, &models.PaperQuestion{}))

	assert.Equal(t, fiber.StatusOK, get(t, app, "/api/papers", ""))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/api/papers/1/download", ""))
}
