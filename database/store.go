// file: database/store.go
package database

import (
	"context"
	"errors"

	"ctflab/models"
	"ctflab/services"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store 是 services.Gateway 的 GORM 实现
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ services.Gateway = (*Store)(nil)

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	var challenges []models.Challenge
	if err := s.db.WithContext(ctx).Order("challenge_id asc").Find(&challenges).Error; err != nil {
		return nil, err
	}
	return challenges, nil
}

func (s *Store) SolvedChallengeIDs(ctx context.Context, userID uint32) ([]uint32, error) {
	var ids []uint32
	err := s.db.WithContext(ctx).Model(&models.Submission{}).
		Where("user_id = ? AND is_correct = ?", userID, true).
		Distinct().
		Pluck("challenge_id", &ids).Error
	return ids, err
}

func (s *Store) Atomically(ctx context.Context, fn func(tx services.Gateway) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// LockUser 对用户行加锁，SQLite 不支持 FOR UPDATE，靠库级写锁串行
func (s *Store) LockUser(ctx context.Context, userID uint32) (*models.User, error) {
	q := s.db.WithContext(ctx)
	if q.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var user models.User
	if err := q.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) HasCorrectSubmission(ctx context.Context, userID, challengeID uint32) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Submission{}).
		Where("user_id = ? AND challenge_id = ? AND is_correct = ?", userID, challengeID, true).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) CountHintUsage(ctx context.Context, userID, challengeID uint32) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.UserHint{}).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		Count(&count).Error
	return count, err
}

func (s *Store) InsertSubmission(ctx context.Context, sub *models.Submission) error {
	return s.db.WithContext(ctx).Create(sub).Error
}

// AddScore 原子加分并返回新总分
func (s *Store) AddScore(ctx context.Context, userID uint32, points int) (int, error) {
	db := s.db.WithContext(ctx)
	res := db.Model(&models.User{}).
		Where("user_id = ?", userID).
		UpdateColumn("score", gorm.Expr("score + ?", points))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	var user models.User
	if err := db.Select("user_id", "score").First(&user, userID).Error; err != nil {
		return 0, err
	}
	return user.Score, nil
}

func (s *Store) FindHint(ctx context.Context, challengeID uint32, orderIndex int) (*models.Hint, error) {
	var hint models.Hint
	err := s.db.WithContext(ctx).
		Where("challenge_id = ? AND order_index = ?", challengeID, orderIndex).
		First(&hint).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &hint, nil
}

// InsertHintUsage (user, challenge, hint_ordinal) 唯一索引冲突时视为重复使用
func (s *Store) InsertHintUsage(ctx context.Context, usage *models.UserHint) error {
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(usage)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return services.ErrDuplicateHintUsage
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrDuplicateHintUsage
	}
	return nil
}
