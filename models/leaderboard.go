// file: models/leaderboard.go
package models

// LeaderboardEntry 排行榜行，不落表，缓存到 Redis
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   uint32 `json:"user_id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Solved   int64  `json:"solved"`
	Points   int    `json:"points"`
	Avatar   string `json:"avatar,omitempty"`
}
