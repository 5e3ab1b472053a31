// file: controllers/leaderboard_controller.go
package controllers

import (
	"strconv"

	"ctflab/utils"

	"github.com/gin-gonic/gin"
)

// GetLeaderboard 排行榜；登录用户额外返回自己的排名卡片
func (h *Controller) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.Leaderboard.Top(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := gin.H{"players": entries}
	if userID := currentUserID(c); userID != 0 {
		if me, err := h.Leaderboard.RankOf(c.Request.Context(), userID); err == nil {
			resp["current_user"] = me
		} else {
			h.Log.Warn("current user rank lookup failed", "user_id", userID, "error", err)
		}
	}
	utils.Success(c, "success", resp)
}

// GetHomeStats 首页统计
func (h *Controller) GetHomeStats(c *gin.Context) {
	utils.Success(c, "success", h.Stats.Home(c.Request.Context()))
}
