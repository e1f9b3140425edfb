package models

import "gorm.io/gorm"

type Paper struct {
	gorm.Model
	Title       string `gorm:"not null"`
	Slug        string `gorm:"unique;not null"`
	Description string
	CategoryID  uint `gorm:"index"`
	Published   bool
	Questions   []PaperQuestion
}

// PaperQuestion links a bank question to a paper with its presentation
// order inside that paper.
type PaperQuestion struct {
	gorm.Model
	PaperID       uint `gorm:"index;not null"`
	QuestionID    uint `gorm:"not null"`
	Question      Question
	SequenceOrder int
}

type Bookmark struct {
	gorm.Model
	UserID  uint `gorm:"index;not null"`
	PaperID uint `gorm:"not null"`
	Paper   Paper
}
