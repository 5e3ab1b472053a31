// file: services/stats.go
package services

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"ctflab/logger"
	"ctflab/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	homeStatsKey = "stats:home"
	homeStatsTTL = time.Minute
)

// HomeStats 首页统计
type HomeStats struct {
	TotalChallenges int64 `json:"total_challenges"`
	TotalUsers      int64 `json:"total_users"`
	TotalSolves     int64 `json:"total_solves"`
	TotalCategories int64 `json:"total_categories"`
}

// DashboardStats 管理后台统计，SolveRate 为百分比，保留一位小数
type DashboardStats struct {
	TotalChallenges  int64   `json:"total_challenges"`
	TotalUsers       int64   `json:"total_users"`
	TotalSubmissions int64   `json:"total_submissions"`
	CorrectSolves    int64   `json:"correct_solves"`
	SolveRate        float64 `json:"solve_rate"`
}

type StatsService struct {
	db  *gorm.DB
	rdb *redis.Client
	log *logger.Logger
}

func NewStatsService(db *gorm.DB, rdb *redis.Client, log *logger.Logger) *StatsService {
	return &StatsService{db: db, rdb: rdb, log: log.With("service", "StatsService")}
}

// Home 出错时返回全 0，不返回假数据
func (s *StatsService) Home(ctx context.Context) HomeStats {
	if s.rdb != nil {
		if val, err := s.rdb.Get(ctx, homeStatsKey).Result(); err == nil {
			var cached HomeStats
			if json.Unmarshal([]byte(val), &cached) == nil {
				return cached
			}
		}
	}

	var out HomeStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Challenge{}).Where("is_active = ?", true).Count(&out.TotalChallenges).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.User{}).Where("status = ?", models.StatusActive).Count(&out.TotalUsers).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Submission{}).Where("is_correct = ?", true).Count(&out.TotalSolves).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Challenge{}).Distinct("category").Count(&out.TotalCategories).Error
	})
	if err := g.Wait(); err != nil {
		s.log.Error("loading home stats failed", "error", err)
		return HomeStats{}
	}

	if s.rdb != nil {
		if data, err := json.Marshal(out); err == nil {
			s.rdb.Set(ctx, homeStatsKey, data, homeStatsTTL)
		}
	}
	return out
}

func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var out DashboardStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Challenge{}).Where("is_active = ?", true).Count(&out.TotalChallenges).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.User{}).Where("status = ?", models.StatusActive).Count(&out.TotalUsers).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Submission{}).Count(&out.TotalSubmissions).Error
	})
	g.Go(func() error {
		return s.db.WithContext(gctx).Model(&models.Submission{}).Where("is_correct = ?", true).Count(&out.CorrectSolves).Error
	})
	if err := g.Wait(); err != nil {
		return nil, persistErr("load dashboard stats", err)
	}
	out.SolveRate = SolveRate(out.CorrectSolves, out.TotalSubmissions)
	return &out, nil
}

// SolveRate 正确提交占比（百分比，一位小数）
func SolveRate(correct, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*1000) / 10
}

// InvalidateHome 题目或用户变更后清理首页缓存
func (s *StatsService) InvalidateHome(ctx context.Context) {
	if s.rdb != nil {
		s.rdb.Del(ctx, homeStatsKey)
	}
}

func (s *StatsService) OnSolve(ctx context.Context, userID, challengeID uint32, points int) {
	s.InvalidateHome(ctx)
}
