package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name         string `gorm:"not null"`
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"default:user"` // user, admin
	Country      string
	TargetExam   string
}

type LoginHistory struct {
	gorm.Model
	UserID    uint `gorm:"index"`
	LoginTime time.Time
}

// Subscription links a user to a plan. StartDate is the anchor from
// which periodic quota windows are computed.
type Subscription struct {
	gorm.Model
	UserID    uint `gorm:"index;not null"`
	PlanID    uint `gorm:"not null"`
	Plan      Plan
	StartDate time.Time
	EndDate   *time.Time
	Status    string `gorm:"default:active"` // active, canceled, expired
}
