package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/TheKhanSoft/tks-prepify-sub000/models"
	"github.com/TheKhanSoft/tks-prepify-sub000/quota"
)

// activeSubscription returns the user's current subscription with the
// plan and its features preloaded, or nil when there is none.
func activeSubscription(db *gorm.DB, userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := db.Preload("Plan.Features").
		Where("user_id = ? AND status = ?", userID, "active").
		Order("start_date DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func featureByKey(plan models.Plan, key string) *models.PlanFeature {
	for i := range plan.Features {
		if plan.Features[i].Key == key {
			return &plan.Features[i]
		}
	}
	return nil
}

// checkQuota enforces the named plan feature for one action. Users
// without an active subscription, or whose plan lacks the feature, are
// denied with an explanatory message.
func checkQuota(db *gorm.DB, tracker *quota.Tracker, userID uint, key string, subjectID uint) (quota.Result, error) {
	sub, err := activeSubscription(db, userID)
	if err != nil {
		return quota.Result{}, err
	}
	if sub == nil {
		return quota.Result{Message: "You need an active subscription for this action."}, nil
	}

	feature := featureByKey(sub.Plan, key)
	if feature == nil {
		return quota.Result{Message: "Your plan does not include this feature."}, nil
	}

	quotaFeature := quota.Feature{
		Key:     feature.Key,
		Label:   feature.Label,
		IsQuota: feature.IsQuota,
		Limit:   feature.Limit,
		Period:  quota.Period(feature.Period),
	}
	return tracker.CheckAndRecord(userID, quotaFeature, sub.StartDate, subjectID, time.Now())
}

func pagination(c *fiber.Ctx) (page, pageSize int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.Query("page_size", "20"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
