// file: models/submission.go
package models

import (
	"time"
)

// Submission 只追加，不修改不删除
type Submission struct {
	ID            uint64    `gorm:"column:submission_id;primarykey" json:"submission_id"`
	UserID        uint32    `gorm:"not null;index:idx_submission_user_challenge" json:"user_id"`
	ChallengeID   uint32    `gorm:"not null;index:idx_submission_user_challenge" json:"challenge_id"`
	FlagSubmitted string    `gorm:"size:255;not null" json:"flag_submitted"`
	IsCorrect     bool      `gorm:"not null;index" json:"is_correct"`
	Points        int       `gorm:"not null;default:0" json:"points"`
	HintsUsed     int       `gorm:"not null;default:0" json:"hints_used"`
	SubmittedAt   time.Time `gorm:"autoCreateTime" json:"submitted_at"`
}

func (Submission) TableName() string {
	return "submissions"
}
