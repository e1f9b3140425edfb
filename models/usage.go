package models

import "gorm.io/gorm"

// UsageEvent is an append-only record of one quota-gated action.
// CreatedAt is the event time; rows are never updated or deleted.
type UsageEvent struct {
	gorm.Model
	UserID    uint   `gorm:"index;not null"`
	Kind      string `gorm:"index;not null"` // feature key: downloads, bookmarks, ...
	SubjectID uint   // paper / support request the action targeted
}

type SupportRequest struct {
	gorm.Model
	UserID  uint   `gorm:"index;not null"`
	Subject string `gorm:"not null"`
	Message string `gorm:"not null"`
	Status  string `gorm:"default:open"` // open, in_progress, resolved
}
