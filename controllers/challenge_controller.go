// file: controllers/challenge_controller.go
package controllers

import (
	"strings"

	"ctflab/dto"
	"ctflab/mappers"
	"ctflab/models"
	"ctflab/services"
	"ctflab/utils"

	"github.com/gin-gonic/gin"
)

// ListChallenges 按分类列出启用的题目并标记是否已解
func (h *Controller) ListChallenges(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	category := strings.ToLower(strings.TrimSpace(c.Query("category")))

	items := make([]dto.ChallengeItemResp, 0)
	for _, ch := range sess.Challenges() {
		if !ch.IsActive {
			continue
		}
		if category != "" && strings.ToLower(ch.Category) != category {
			continue
		}
		items = append(items, mappers.MapModelToItemResp(ch, sess.Solved(ch.ID)))
	}

	utils.Success(c, "success", gin.H{
		"total":      len(items),
		"category":   category,
		"challenges": items,
	})
}

// OpenChallenge 打开交互题：返回题目信息、提示数量和当前分数
func (h *Controller) OpenChallenge(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	ch, found := sess.Challenge(c.Param("alias"))
	if !found || !ch.IsActive {
		utils.Error(c, utils.CodeNotFound, "题目不存在")
		return
	}

	var hintCount int64
	if err := h.DB.WithContext(c.Request.Context()).Model(&models.Hint{}).
		Where("challenge_id = ?", ch.ID).
		Count(&hintCount).Error; err != nil {
		h.fail(c, err)
		return
	}

	user, _ := sess.User()
	utils.Success(c, "success", mappers.MapModelToDetailResp(ch, hintCount, services.HintPenalty, sess.Solved(ch.ID), user.Score))
}

// SubmitFlag 提交 flag
func (h *Controller) SubmitFlag(c *gin.Context) {
	var req dto.SubmitFlagReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, utils.CodeInvalidParams, "参数无效: "+err.Error())
		return
	}
	req.Normalize()

	sess, ok := h.session(c)
	if !ok {
		return
	}

	result, err := h.Submissions.SubmitFlag(c.Request.Context(), sess, c.Param("alias"), req.Flag)
	if err != nil {
		h.fail(c, err)
		return
	}

	switch {
	case !result.Correct:
		utils.Success(c, "Flag incorrect", result)
	case result.AlreadySolved:
		utils.Success(c, "Correct! (already solved)", result)
	default:
		utils.Success(c, "Challenge Solved!", result)
	}
}
