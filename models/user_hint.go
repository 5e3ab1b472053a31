// file: models/user_hint.go
package models

import (
	"time"
)

// UserHint 记录提示使用情况，(user, challenge, hint_ordinal) 唯一。
// HintID 在 hints 表缺少对应行时为 NULL，序号仍然区分不同提示。
type UserHint struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	UserID      uint32    `gorm:"not null;uniqueIndex:idx_user_hint_unique" json:"user_id"`
	ChallengeID uint32    `gorm:"not null;uniqueIndex:idx_user_hint_unique" json:"challenge_id"`
	HintOrdinal int       `gorm:"not null;uniqueIndex:idx_user_hint_unique" json:"hint_ordinal"`
	HintID      *uint32   `gorm:"index" json:"hint_id"`
	UsedAt      time.Time `gorm:"autoCreateTime" json:"used_at"`
}

func (UserHint) TableName() string {
	return "user_hints"
}
