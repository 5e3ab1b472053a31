// file: services/gateway.go
package services

import (
	"context"

	"ctflab/models"
)

// Gateway 是工作流依赖的持久化接口，database.Store 是 GORM 实现。
// 查询不到记录时返回 nil, nil。
type Gateway interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListChallenges(ctx context.Context) ([]models.Challenge, error)
	SolvedChallengeIDs(ctx context.Context, userID uint32) ([]uint32, error)

	// Atomically 在同一事务内执行 fn，fn 返回错误时整体回滚
	Atomically(ctx context.Context, fn func(tx Gateway) error) error
	LockUser(ctx context.Context, userID uint32) (*models.User, error)
	HasCorrectSubmission(ctx context.Context, userID, challengeID uint32) (bool, error)
	CountHintUsage(ctx context.Context, userID, challengeID uint32) (int64, error)
	InsertSubmission(ctx context.Context, sub *models.Submission) error
	AddScore(ctx context.Context, userID uint32, points int) (int, error)

	FindHint(ctx context.Context, challengeID uint32, orderIndex int) (*models.Hint, error)
	// InsertHintUsage 重复时返回 ErrDuplicateHintUsage
	InsertHintUsage(ctx context.Context, usage *models.UserHint) error
}
