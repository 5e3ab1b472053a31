// file: controllers/user_controller.go
package controllers

import (
	"errors"
	"strings"

	"ctflab/dto"
	"ctflab/middlewares"
	"ctflab/models"
	"ctflab/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// --- 公开接口 ---

func (h *Controller) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, utils.CodeInvalidParams, "参数无效: "+err.Error())
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)

	var count int64
	if err := h.DB.Model(&models.User{}).
		Where("username = ? OR email = ?", req.Username, req.Email).
		Count(&count).Error; err != nil {
		h.fail(c, err)
		return
	}
	if count > 0 {
		utils.Error(c, utils.CodeDuplicateUser, "用户名或邮箱已被注册")
		return
	}

	newUser := models.User{
		Username:    req.Username,
		Email:       req.Email,
		DisplayName: strings.TrimSpace(req.DisplayName),
		Password:    req.Password,
		Role:        models.RolePlayer,
		Status:      models.StatusActive,
	}
	if err := h.DB.Create(&newUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(c, utils.CodeDuplicateUser, "用户名或邮箱已被注册")
			return
		}
		h.fail(c, err)
		return
	}
	h.Stats.InvalidateHome(c.Request.Context())

	utils.Success(c, "User registered successfully", gin.H{
		"user_id":  newUser.ID,
		"username": newUser.Username,
		"role":     newUser.Role,
	})
}

func (h *Controller) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, utils.CodeInvalidParams, "参数无效: "+err.Error())
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		utils.Error(c, utils.CodeBadCredentials, "用户不存在或密码错误")
		return
	}
	if !user.CheckPassword(req.Password) {
		utils.Error(c, utils.CodeBadCredentials, "用户不存在或密码错误")
		return
	}
	if user.Status != models.StatusActive {
		utils.Error(c, utils.CodeAccountInactive, "账号未激活")
		return
	}

	token, sessionID, err := h.Tokens.GenerateToken(user)
	if err != nil {
		utils.Error(c, utils.CodeTokenIssue, "Token 生成失败")
		return
	}
	sess, err := h.Sessions.Open(c.Request.Context(), sessionID, user.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	profile, _ := sess.User()

	utils.Success(c, "Login success", gin.H{
		"token": token,
		"user": dto.UserProfileResp{
			ID:          profile.ID,
			Username:    profile.Username,
			DisplayName: profile.DisplayName,
			Score:       profile.Score,
			Role:        string(profile.Role),
			Status:      string(profile.Status),
			Avatar:      profile.Avatar,
		},
	})
}

// --- 需要登录的接口 ---

func (h *Controller) Logout(c *gin.Context) {
	h.Sessions.Close(c.GetString(middlewares.CtxSessionID), c.GetTime(middlewares.CtxTokenExp))
	utils.Success(c, "Logout success", nil)
}

// Me 返回会话内的用户镜像和已解题数
func (h *Controller) Me(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	user, _ := sess.User()
	solved := 0
	for _, ch := range sess.Challenges() {
		if sess.Solved(ch.ID) {
			solved++
		}
	}
	utils.Success(c, "success", dto.UserProfileResp{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Score:       user.Score,
		Role:        string(user.Role),
		Status:      string(user.Status),
		Avatar:      user.Avatar,
		Solved:      solved,
	})
}
