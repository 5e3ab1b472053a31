// file: controllers/controller.go
package controllers

import (
	"errors"

	"ctflab/logger"
	"ctflab/middlewares"
	"ctflab/services"
	"ctflab/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Controller 持有所有 handler 依赖
type Controller struct {
	DB          *gorm.DB
	Log         *logger.Logger
	Tokens      *utils.TokenIssuer
	Sessions    *services.Sessions
	Submissions *services.SubmissionService
	Hints       *services.HintService
	Leaderboard *services.LeaderboardService
	Stats       *services.StatsService
}

// session 取当前请求对应的会话，失败时已写出响应
func (h *Controller) session(c *gin.Context) (*services.Session, bool) {
	sess, err := h.Sessions.Get(c.Request.Context(), c.GetString(middlewares.CtxSessionID), c.GetString(middlewares.CtxEmail))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return sess, true
}

// fail 把工作流错误映射为业务错误码
func (h *Controller) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		utils.Error(c, utils.CodeNotAuthenticated, "请先登录")
	case errors.Is(err, services.ErrEmptyInput):
		utils.Error(c, utils.CodeEmptyFlag, "请输入 flag")
	case errors.Is(err, services.ErrChallengeNotFound), errors.Is(err, services.ErrDataMismatch):
		utils.Error(c, utils.CodeNotFound, "题目数据不匹配")
	default:
		_ = c.Error(err)
		utils.Error(c, utils.CodePersistence, "连接错误，请重试")
	}
}

// currentUserID 未登录时为 0
func currentUserID(c *gin.Context) uint32 {
	v, ok := c.Get(middlewares.CtxUserID)
	if !ok {
		return 0
	}
	id, _ := v.(uint32)
	return id
}
