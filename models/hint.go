// file: models/hint.go
package models

import (
	"time"
)

// Hint 属于唯一的 Challenge，OrderIndex 从 1 开始，与前端 "xxxhint1" 的序号对应
type Hint struct {
	ID          uint32    `gorm:"column:hint_id;primarykey" json:"hint_id"`
	ChallengeID uint32    `gorm:"not null;uniqueIndex:idx_hint_challenge_order" json:"challenge_id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Content     string    `gorm:"type:text" json:"content,omitempty"`
	Cost        int       `gorm:"not null;default:10" json:"cost"`
	OrderIndex  int       `gorm:"not null;uniqueIndex:idx_hint_challenge_order" json:"order_index"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Hint) TableName() string {
	return "hints"
}
