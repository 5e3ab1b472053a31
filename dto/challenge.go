// file: dto/challenge.go
package dto

// ========== 请求 DTO ==========

type SubmitFlagReq struct {
	Flag      string `json:"flag"`
	FlagCamel string `json:"Flag"`
}

// Normalize 兼容旧前端的大写字段；flag 本身不做处理，由工作流 trim
func (r *SubmitFlagReq) Normalize() {
	if r.Flag == "" && r.FlagCamel != "" {
		r.Flag = r.FlagCamel
	}
}

type RevealHintReq struct {
	Confirm bool `json:"confirm"`
}

// ========== 响应 DTO ==========

type ChallengeItemResp struct {
	ID         uint32 `json:"challenge_id"`
	Key        string `json:"key,omitempty"`
	Code       string `json:"code,omitempty"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	ScoreBase  int    `json:"score_base"`
	Solved     bool   `json:"solved"`
}

type ChallengeDetailResp struct {
	ID            uint32 `json:"challenge_id"`
	Key           string `json:"key,omitempty"`
	Title         string `json:"title"`
	Category      string `json:"category"`
	Difficulty    string `json:"difficulty"`
	Description   string `json:"description"`
	ScoreBase     int    `json:"score_base"`
	HintCount     int64  `json:"hint_count"`
	HintPenalty   int    `json:"hint_penalty"`
	Solved        bool   `json:"solved"`
	CurrentPoints int    `json:"current_points"`
}
