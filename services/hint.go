// file: services/hint.go
package services

import (
	"context"
	"errors"
	"sync"

	"ctflab/logger"
	"ctflab/models"
)

type HintReveal struct {
	ElementID         string `json:"element_id"`
	ChallengeKey      string `json:"challenge_key,omitempty"`
	Ordinal           int    `json:"ordinal,omitempty"`
	Visible           bool   `json:"visible"`
	NeedsConfirmation bool   `json:"needs_confirmation"`
	Logged            bool   `json:"logged"`
	Penalty           int    `json:"penalty"`
}

type HintService struct {
	gw  Gateway
	log *logger.Logger
	wg  sync.WaitGroup
}

func NewHintService(gw Gateway, log *logger.Logger) *HintService {
	return &HintService{gw: gw, log: log.With("service", "HintService")}
}

// RevealHint 展开/收起提示。
// 已展开的提示再次调用只会收起，不影响已记录的使用情况。
// 确认后立即返回可见，使用记录在后台写入，失败只记日志。
func (s *HintService) RevealHint(ctx context.Context, sess *Session, elementID string, confirmed bool) (*HintReveal, error) {
	if sess == nil {
		return nil, ErrNotAuthenticated
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.authenticated() {
		return nil, ErrNotAuthenticated
	}

	out := &HintReveal{ElementID: elementID, Penalty: HintPenalty}
	if sess.revealed[elementID] {
		delete(sess.revealed, elementID)
		return out, nil
	}

	alias, ordinal, ok := ParseHintElement(elementID)
	if !ok {
		// 无法识别的元素直接展开，不记录
		sess.revealed[elementID] = true
		out.Visible = true
		out.Penalty = 0
		return out, nil
	}
	out.ChallengeKey = ResolveChallengeKey(alias)
	out.Ordinal = ordinal

	if !confirmed {
		out.NeedsConfirmation = true
		return out, nil
	}

	sess.revealed[elementID] = true
	out.Visible = true

	challenge, found := FindChallenge(sess.challenges, out.ChallengeKey)
	if !found {
		s.log.Warn("challenge not found for hint", "challenge_key", out.ChallengeKey, "alias", alias, "element_id", elementID)
		return out, nil
	}
	out.Logged = true

	userID := sess.user.ID
	challengeID := challenge.ID
	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.recordUsage(bg, userID, challengeID, ordinal)
	}()
	return out, nil
}

func (s *HintService) recordUsage(ctx context.Context, userID, challengeID uint32, ordinal int) {
	usage := &models.UserHint{UserID: userID, ChallengeID: challengeID, HintOrdinal: ordinal}

	hint, err := s.gw.FindHint(ctx, challengeID, ordinal)
	if err != nil {
		s.log.Warn("hint lookup failed, recording without hint reference", "challenge_id", challengeID, "ordinal", ordinal, "error", err)
	} else if hint != nil {
		usage.HintID = &hint.ID
	}

	err = s.gw.InsertHintUsage(ctx, usage)
	switch {
	case err == nil:
		s.log.Info("hint usage recorded", "user_id", userID, "challenge_id", challengeID, "ordinal", ordinal)
	case errors.Is(err, ErrDuplicateHintUsage):
		s.log.Debug("hint already used", "user_id", userID, "challenge_id", challengeID, "ordinal", ordinal)
	default:
		s.log.Error("hint usage log failed", "user_id", userID, "challenge_id", challengeID, "error", err)
	}
}

// Wait 等待后台写入完成，用于关停和测试
func (s *HintService) Wait() {
	s.wg.Wait()
}
