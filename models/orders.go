package models

import "gorm.io/gorm"

type Order struct {
	gorm.Model
	Reference string `gorm:"uniqueIndex;not null"` // uuid handed to the client
	UserID    uint   `gorm:"index;not null"`
	PlanID    uint   `gorm:"not null"`
	Plan      Plan
	Amount    float64
	Currency  string
	Status    string `gorm:"default:pending"` // pending, completed, canceled

	StripeSessionID string `gorm:"index"`
}
