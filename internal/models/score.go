package models

import (
	"time"

	"gorm.io/datatypes"
)

type ScoringMode string

const (
	ScoringModeWholeKey ScoringMode = "whole_key"
	ScoringModeArea     ScoringMode = "area"
)

// AreaSegment names the contiguous question range [Start, End] of one
// subject. Both bounds are 1-indexed and inclusive.
type AreaSegment struct {
	Area  string `json:"area" yaml:"area" validate:"required"`
	Start int    `json:"start" yaml:"start" validate:"min=1"`
	End   int    `json:"end" yaml:"end" validate:"min=1,gtefield=Start"`
}

// ScoreResult is the TCT score of one student on the 0.0-10.0 scale.
type ScoreResult struct {
	StudentID    string             `json:"student_id"`
	AreaScores   map[string]float64 `json:"area_scores"`
	AverageScore float64            `json:"average_score"`
}

// ScoreRun is an archived scoring batch.
type ScoreRun struct {
	ID               string         `json:"id" gorm:"primaryKey;size:36"`
	SessionID        *string        `json:"session_id" gorm:"size:36;index"`
	Mode             ScoringMode    `json:"mode" gorm:"size:20;not null"`
	PointsPerCorrect float64        `json:"points_per_correct" gorm:"not null"`
	StudentCount     int            `json:"student_count" gorm:"not null"`
	AnswerKey        datatypes.JSON `json:"answer_key" gorm:"type:jsonb"` // []string
	Areas            datatypes.JSON `json:"areas" gorm:"type:jsonb"`      // []AreaSegment
	Results          datatypes.JSON `json:"results" gorm:"type:jsonb"`    // []ScoreResult
	AverageScore     float64        `json:"average_score"`
	CreatedAt        time.Time      `json:"created_at" gorm:"index"`
}

func (ScoreRun) TableName() string {
	return "score_runs"
}
