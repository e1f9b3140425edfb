package models

import "gorm.io/gorm"

type Category struct {
	gorm.Model
	Name     string `gorm:"not null"`
	Slug     string `gorm:"unique;not null"`
	ParentID *uint  `gorm:"index"`
}

type Question struct {
	gorm.Model
	QuestionText   string `gorm:"not null"`
	Type           string `gorm:"default:mcq"` // mcq, short_answer
	Options        string // JSON array of options (mcq only)
	CorrectAnswers string // JSON array; one element for short_answer
	Explanation    string
	CategoryID     uint `gorm:"index"`
}
