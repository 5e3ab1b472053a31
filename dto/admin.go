// file: dto/admin.go
package dto

import "strings"

type CreateChallengeReq struct {
	Code          string `json:"code"`
	Title         string `json:"title"`
	InteractiveID string `json:"interactive_id"`
	Category      string `json:"category"`
	Difficulty    string `json:"difficulty"`
	Description   string `json:"description"`
	ScoreBase     int    `json:"score_base"`
	Flag          string `json:"flag"`
	IsActive      *bool  `json:"is_active"`
	Visibility    string `json:"visibility"`

	// 旧后台使用 camelCase
	InteractiveIDCamel string `json:"interactiveId"`
	ScoreBaseCamel     int    `json:"scoreBase"`
	IsActiveCamel      *bool  `json:"isActive"`
}

// Normalize 别名归一化并清洗；flag 保持原样
func (r *CreateChallengeReq) Normalize() {
	if r.InteractiveID == "" && r.InteractiveIDCamel != "" {
		r.InteractiveID = r.InteractiveIDCamel
	}
	if r.ScoreBase == 0 && r.ScoreBaseCamel != 0 {
		r.ScoreBase = r.ScoreBaseCamel
	}
	if r.IsActive == nil && r.IsActiveCamel != nil {
		r.IsActive = r.IsActiveCamel
	}

	r.Code = strings.TrimSpace(r.Code)
	r.Title = strings.TrimSpace(r.Title)
	r.InteractiveID = strings.TrimSpace(r.InteractiveID)
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	r.Difficulty = strings.ToLower(strings.TrimSpace(r.Difficulty))
	r.Visibility = strings.ToLower(strings.TrimSpace(r.Visibility))

	if r.Difficulty == "" {
		r.Difficulty = "medium"
	}
	if r.Visibility == "" {
		r.Visibility = "public"
	}
}

type CreateHintReq struct {
	ChallengeID uint32 `json:"challenge_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Content     string `json:"content"`
	Cost        int    `json:"cost"`
	OrderIndex  int    `json:"order_index" binding:"required,min=1"`
}

type UpdateRoleReq struct {
	Role string `json:"role" binding:"required"`
}

type AdminChallengeItemResp struct {
	ID         uint32 `json:"challenge_id"`
	Code       string `json:"code,omitempty"`
	Title      string `json:"title"`
	Key        string `json:"interactive_id,omitempty"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	ScoreBase  int    `json:"score_base"`
	IsActive   bool   `json:"is_active"`
	Visibility string `json:"visibility"`
	CreatedAt  string `json:"created_at"`
}

type AdminUserItemResp struct {
	ID          uint32 `json:"user_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role"`
	Score       int    `json:"score"`
	Status      string `json:"status"`
}
