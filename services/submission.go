// file: services/submission.go
package services

import (
	"context"
	"fmt"
	"strings"

	"ctflab/logger"
	"ctflab/models"
)

// SolveListener 首次解题加分后回调，排行榜用它失效缓存
type SolveListener interface {
	OnSolve(ctx context.Context, userID, challengeID uint32, points int)
}

type SubmitResult struct {
	ChallengeID   uint32 `json:"challenge_id"`
	Correct       bool   `json:"correct"`
	AlreadySolved bool   `json:"already_solved"`
	Points        int    `json:"points"`
	HintsUsed     int    `json:"hints_used"`
	Penalty       int    `json:"penalty"`
	Score         int    `json:"score"`
}

type SubmissionService struct {
	gw        Gateway
	log       *logger.Logger
	listeners []SolveListener
}

func NewSubmissionService(gw Gateway, log *logger.Logger, listeners ...SolveListener) *SubmissionService {
	return &SubmissionService{
		gw:        gw,
		log:       log.With("service", "SubmissionService"),
		listeners: listeners,
	}
}

// SubmitFlag 校验 flag、记录提交、首次答对时加分。
// 提交记录写入成功之前不会改动分数；重复答对只记录，不加分。
func (s *SubmissionService) SubmitFlag(ctx context.Context, sess *Session, challengeRef, rawInput string) (*SubmitResult, error) {
	if sess == nil {
		return nil, ErrNotAuthenticated
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.authenticated() {
		return nil, ErrNotAuthenticated
	}
	flag := strings.TrimSpace(rawInput)
	if flag == "" {
		return nil, ErrEmptyInput
	}

	found, ok := FindChallenge(sess.challenges, challengeRef)
	if !ok {
		s.log.Error("challenge not found for reference", "ref", challengeRef, "session_id", sess.ID)
		return nil, fmt.Errorf("%w: %s", ErrChallengeNotFound, challengeRef)
	}
	challenge := *found
	userID := sess.user.ID

	// 精确比较，大小写敏感，不处理库里的 flag
	isCorrect := flag == challenge.Flag

	result := &SubmitResult{ChallengeID: challenge.ID, Correct: isCorrect}
	awarded := false

	err := s.gw.Atomically(ctx, func(tx Gateway) error {
		user, err := tx.LockUser(ctx, userID)
		if err != nil {
			return persistErr("lock user", err)
		}
		if user == nil {
			return fmt.Errorf("%w: user %d missing", ErrDataMismatch, userID)
		}

		hints, err := tx.CountHintUsage(ctx, userID, challenge.ID)
		if err != nil {
			return persistErr("count hint usage", err)
		}
		result.HintsUsed = int(hints)
		result.Penalty = PenaltyFor(result.HintsUsed)

		alreadySolved := sess.progress[challenge.ID]
		if !alreadySolved {
			// 会话进度可能落后于数据库（其他会话已解出），以数据库为准
			solved, err := tx.HasCorrectSubmission(ctx, userID, challenge.ID)
			if err != nil {
				return persistErr("check prior solve", err)
			}
			alreadySolved = solved
		}
		result.AlreadySolved = alreadySolved

		if isCorrect && !alreadySolved {
			result.Points = FinalPoints(challenge.ScoreBase, result.HintsUsed)
			awarded = true
		}

		sub := &models.Submission{
			UserID:        userID,
			ChallengeID:   challenge.ID,
			FlagSubmitted: flag,
			IsCorrect:     isCorrect,
			Points:        result.Points,
			HintsUsed:     result.HintsUsed,
		}
		if err := tx.InsertSubmission(ctx, sub); err != nil {
			return persistErr("insert submission", err)
		}

		result.Score = user.Score
		if awarded && result.Points > 0 {
			score, err := tx.AddScore(ctx, userID, result.Points)
			if err != nil {
				return persistErr("update score", err)
			}
			result.Score = score
		}
		return nil
	})
	if err != nil {
		s.log.Error("flag submission failed", "user_id", userID, "challenge_id", challenge.ID, "error", err)
		return nil, err
	}

	if awarded || result.AlreadySolved {
		sess.progress[challenge.ID] = true
	}
	// 同步内存中的用户分数
	sess.user.Score = result.Score

	s.log.Info("flag submitted",
		"user_id", userID,
		"challenge_id", challenge.ID,
		"correct", isCorrect,
		"already_solved", result.AlreadySolved,
		"points", result.Points,
		"hints_used", result.HintsUsed,
	)

	if awarded {
		for _, l := range s.listeners {
			l.OnSolve(ctx, userID, challenge.ID, result.Points)
		}
	}
	return result, nil
}
