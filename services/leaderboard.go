// file: services/leaderboard.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ctflab/logger"
	"ctflab/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	leaderboardKeyPrefix = "leaderboard:"
	leaderboardTTL       = 15 * time.Second
	maxLeaderboardLimit  = 100
)

// LeaderboardService 按 score 排序的排行榜，Redis 为空时直接查库
type LeaderboardService struct {
	db  *gorm.DB
	rdb *redis.Client
	log *logger.Logger
}

func NewLeaderboardService(db *gorm.DB, rdb *redis.Client, log *logger.Logger) *LeaderboardService {
	return &LeaderboardService{db: db, rdb: rdb, log: log.With("service", "LeaderboardService")}
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxLeaderboardLimit {
		return 50
	}
	return limit
}

func leaderboardKey(limit int) string {
	return fmt.Sprintf("%stop:%d", leaderboardKeyPrefix, limit)
}

// Top 返回前 limit 名及各自解题数
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	limit = clampLimit(limit)
	key := leaderboardKey(limit)

	if s.rdb != nil {
		if val, err := s.rdb.Get(ctx, key).Result(); err == nil {
			var cached []models.LeaderboardEntry
			if json.Unmarshal([]byte(val), &cached) == nil {
				return cached, nil
			}
		}
	}

	entries, err := s.load(ctx, limit)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(entries); err == nil {
			if err := s.rdb.Set(ctx, key, data, leaderboardTTL).Err(); err != nil {
				s.log.Warn("leaderboard cache write failed", "error", err)
			}
		}
	}
	return entries, nil
}

func (s *LeaderboardService) load(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).
		Select("user_id", "username", "display_name", "score", "avatar").
		Order("score desc, user_id asc").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, persistErr("load leaderboard users", err)
	}
	if len(users) == 0 {
		return []models.LeaderboardEntry{}, nil
	}

	ids := make([]uint32, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	type solvedRow struct {
		UserID uint32
		Solved int64
	}
	var rows []solvedRow
	if err := s.db.WithContext(ctx).Model(&models.Submission{}).
		Select("user_id, COUNT(DISTINCT challenge_id) AS solved").
		Where("is_correct = ? AND user_id IN ?", true, ids).
		Group("user_id").
		Scan(&rows).Error; err != nil {
		return nil, persistErr("load solved counts", err)
	}
	solvedMap := make(map[uint32]int64, len(rows))
	for _, r := range rows {
		solvedMap[r.UserID] = r.Solved
	}

	entries := make([]models.LeaderboardEntry, 0, len(users))
	for i := range users {
		u := &users[i]
		entries = append(entries, models.LeaderboardEntry{
			Rank:     i + 1,
			UserID:   u.ID,
			Name:     u.Name(),
			Username: u.Username,
			Solved:   solvedMap[u.ID],
			Points:   u.Score,
			Avatar:   u.Avatar,
		})
	}
	return entries, nil
}

// RankOf 当前用户卡片：排名 = 分数更高的人数 + 1
func (s *LeaderboardService) RankOf(ctx context.Context, userID uint32) (*models.LeaderboardEntry, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, persistErr("load user", err)
	}
	var higher int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("score > ?", user.Score).
		Count(&higher).Error; err != nil {
		return nil, persistErr("count higher scores", err)
	}
	var solved int64
	if err := s.db.WithContext(ctx).Model(&models.Submission{}).
		Where("user_id = ? AND is_correct = ?", userID, true).
		Distinct("challenge_id").
		Count(&solved).Error; err != nil {
		return nil, persistErr("count solves", err)
	}
	return &models.LeaderboardEntry{
		Rank:     int(higher) + 1,
		UserID:   user.ID,
		Name:     user.Name(),
		Username: user.Username,
		Solved:   solved,
		Points:   user.Score,
		Avatar:   user.Avatar,
	}, nil
}

// Invalidate 清空所有排行榜缓存
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	keys, err := s.rdb.Keys(ctx, leaderboardKeyPrefix+"*").Result()
	if err == nil && len(keys) > 0 {
		s.rdb.Del(ctx, keys...)
		s.log.Debug("cleared leaderboard cache keys", "count", len(keys))
	}
}

// Warm 定时任务调用，预热默认榜单
func (s *LeaderboardService) Warm(ctx context.Context, limit int) {
	s.Invalidate(ctx)
	if _, err := s.Top(ctx, limit); err != nil {
		s.log.Error("leaderboard warm-up failed", "error", err)
	}
}

func (s *LeaderboardService) OnSolve(ctx context.Context, userID, challengeID uint32, points int) {
	s.Invalidate(ctx)
}
