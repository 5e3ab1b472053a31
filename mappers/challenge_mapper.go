// file: mappers/challenge_mapper.go
package mappers

import (
	"ctflab/dto"
	"ctflab/models"
)

func MapCreateReqToModel(req dto.CreateChallengeReq) models.Challenge {
	ch := models.Challenge{
		Code:        req.Code,
		Title:       req.Title,
		Category:    req.Category,
		Difficulty:  models.ChallengeDifficulty(req.Difficulty),
		Description: req.Description,
		ScoreBase:   req.ScoreBase,
		Flag:        req.Flag,
		IsActive:    true,
		Visibility:  models.ChallengeVisibility(req.Visibility),
	}
	if req.InteractiveID != "" {
		key := req.InteractiveID
		ch.InteractiveID = &key
	}
	if req.IsActive != nil {
		ch.IsActive = *req.IsActive
	}
	return ch
}

func MapModelToItemResp(ch models.Challenge, solved bool) dto.ChallengeItemResp {
	return dto.ChallengeItemResp{
		ID:         ch.ID,
		Key:        ch.Key(),
		Code:       ch.Code,
		Title:      ch.Title,
		Category:   ch.Category,
		Difficulty: string(ch.Difficulty),
		ScoreBase:  ch.ScoreBase,
		Solved:     solved,
	}
}

func MapModelToDetailResp(ch models.Challenge, hintCount int64, hintPenalty int, solved bool, points int) dto.ChallengeDetailResp {
	return dto.ChallengeDetailResp{
		ID:            ch.ID,
		Key:           ch.Key(),
		Title:         ch.Title,
		Category:      ch.Category,
		Difficulty:    string(ch.Difficulty),
		Description:   ch.Description,
		ScoreBase:     ch.ScoreBase,
		HintCount:     hintCount,
		HintPenalty:   hintPenalty,
		Solved:        solved,
		CurrentPoints: points,
	}
}

func MapModelToAdminItemResp(ch models.Challenge) dto.AdminChallengeItemResp {
	return dto.AdminChallengeItemResp{
		ID:         ch.ID,
		Code:       ch.Code,
		Title:      ch.Title,
		Key:        ch.Key(),
		Category:   ch.Category,
		Difficulty: string(ch.Difficulty),
		ScoreBase:  ch.ScoreBase,
		IsActive:   ch.IsActive,
		Visibility: string(ch.Visibility),
		CreatedAt:  ch.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func MapUserToAdminItemResp(u models.User) dto.AdminUserItemResp {
	return dto.AdminUserItemResp{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		Score:       u.Score,
		Status:      string(u.Status),
	}
}
