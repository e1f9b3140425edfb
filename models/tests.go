package models

import (
	"time"

	"gorm.io/gorm"
)

type TestConfig struct {
	gorm.Model
	Name               string `gorm:"not null"`
	Description        string
	TotalQuestions     int
	Duration           int // minutes
	MarksPerQuestion   float64
	HasNegativeMarking bool
	NegativeMarkValue  float64
	PassingMarks       float64 // percentage threshold
	Published          bool
	UnderfillPolicy    string `gorm:"default:allow"` // allow, fail
	Composition        []CompositionRule
}

// CompositionRule says what share of a generated test comes from a
// category (including its descendants). Percentages of a config are
// expected to sum to 100.
type CompositionRule struct {
	gorm.Model
	TestConfigID uint    `gorm:"index;not null"`
	CategoryID   uint    `gorm:"not null"`
	Percentage   float64 `gorm:"not null"`
}

const (
	AttemptInProgress = "in_progress"
	AttemptCompleted  = "completed"
)

type TestAttempt struct {
	gorm.Model
	Reference    string `gorm:"uniqueIndex;not null"` // uuid
	UserID       uint   `gorm:"index;not null"`
	TestConfigID uint   `gorm:"not null"`
	TestConfig   TestConfig
	Status       string `gorm:"default:in_progress"` // in_progress, completed
	StartedAt    time.Time
	CompletedAt  *time.Time
	Score        float64
	TotalMarks   float64
	Percentage   float64
	Passed       bool
	Questions    []QuestionAttempt `gorm:"foreignKey:AttemptID"`
}

// QuestionAttempt snapshots one question of an attempt. The question
// fields are copied from the bank at submission time so later edits to
// the bank never change historical results.
type QuestionAttempt struct {
	gorm.Model
	AttemptID      uint `gorm:"index;not null"`
	QuestionID     uint `gorm:"not null"`
	SequenceOrder  int
	QuestionText   string
	Type           string
	Options        string // JSON array
	CorrectAnswers string // JSON array
	UserAnswer     string // JSON array; empty = unanswered
	Answered       bool
	IsCorrect      bool
	TimeSpent      float64 // seconds
}
