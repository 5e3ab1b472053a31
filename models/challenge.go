// file: models/challenge.go
package models

import (
	"time"
)

type ChallengeDifficulty string
type ChallengeVisibility string

const (
	ChallengeDifficultyEasy   ChallengeDifficulty = "easy"
	ChallengeDifficultyMedium ChallengeDifficulty = "medium"
	ChallengeDifficultyHard   ChallengeDifficulty = "hard"

	VisibilityPublic  ChallengeVisibility = "public"
	VisibilityPrivate ChallengeVisibility = "private"
)

// Challenge 对应 challenges 表；InteractiveID 是前端交互题使用的规范 key
type Challenge struct {
	ID            uint32              `gorm:"column:challenge_id;primarykey" json:"challenge_id"`
	Code          string              `gorm:"size:20" json:"code,omitempty"`
	Title         string              `gorm:"size:100;uniqueIndex;not null" json:"title"`
	InteractiveID *string             `gorm:"size:50;uniqueIndex" json:"interactive_id,omitempty"`
	Category      string              `gorm:"size:50;index;not null" json:"category"`
	Difficulty    ChallengeDifficulty `gorm:"size:20;default:'medium'" json:"difficulty"`
	Description   string              `gorm:"type:text" json:"description,omitempty"`
	ScoreBase     int                 `gorm:"not null" json:"score_base"`
	Flag          string              `gorm:"size:255;not null" json:"-"`
	IsActive      bool                `gorm:"not null" json:"is_active"`
	Visibility    ChallengeVisibility `gorm:"size:20;default:'public'" json:"visibility,omitempty"`
	Hints         []Hint              `gorm:"foreignKey:ChallengeID" json:"-"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func (Challenge) TableName() string {
	return "challenges"
}

// Key 返回规范 key，未配置 interactive_id 时为空
func (c *Challenge) Key() string {
	if c.InteractiveID == nil {
		return ""
	}
	return *c.InteractiveID
}
