package quota

import (
	"time"

	"gorm.io/gorm"

	"github.com/TheKhanSoft/tks-prepify-sub000/models"
)

// GormStore backs a Tracker with the usage_events table.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) CountSince(userID uint, kind string, since time.Time) (int64, error) {
	var count int64
	err := s.DB.Model(&models.UsageEvent{}).
		Where("user_id = ? AND kind = ? AND created_at >= ?", userID, kind, since).
		Count(&count).Error
	return count, err
}

func (s *GormStore) Record(userID uint, kind string, subjectID uint, at time.Time) error {
	event := models.UsageEvent{
		UserID:    userID,
		Kind:      kind,
		SubjectID: subjectID,
	}
	event.CreatedAt = at
	return s.DB.Create(&event).Error
}
