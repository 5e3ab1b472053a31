// file: services/scheduler.go
package services

import (
	"context"
	"time"

	"ctflab/logger"

	"github.com/go-co-op/gocron/v2"
)

const (
	defaultWarmInterval = 30 * time.Second
	revokedPruneEvery   = 10 * time.Minute
)

// StartScheduler 定时预热排行榜缓存并清理过期的吊销记录，返回的 scheduler 由调用方关闭。
// interval 不是正数时使用默认值。
func StartScheduler(board *LeaderboardService, sessions *Sessions, interval time.Duration, limit int, log *logger.Logger) (gocron.Scheduler, error) {
	if interval <= 0 {
		interval = defaultWarmInterval
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			board.Warm(ctx, limit)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(revokedPruneEvery),
		gocron.NewTask(func() {
			if n := sessions.PruneRevoked(time.Now()); n > 0 {
				log.Debug("pruned revoked sessions", "count", n)
			}
		}),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	sched.Start()
	log.Info("scheduler started", "warm_interval", interval.String(), "limit", limit)
	return sched, nil
}
