// file: controllers/admin_controller.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"ctflab/dto"
	"ctflab/mappers"
	"ctflab/models"
	"ctflab/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RequireActiveAdmin 每次请求都从 users 表重新读取 role 和 status，
// token 里的角色只作初筛，降级或停用立即生效
func (h *Controller) RequireActiveAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)
		if userID == 0 {
			utils.Error(c, utils.CodeNotAuthenticated, "请先登录")
			c.Abort()
			return
		}
		var user models.User
		err := h.DB.WithContext(c.Request.Context()).
			Select("user_id", "role", "status").
			Where("user_id = ?", userID).
			First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(c, utils.CodeNotAuthenticated, "用户不存在")
			c.Abort()
			return
		}
		if err != nil {
			h.fail(c, err)
			c.Abort()
			return
		}
		if user.Role != models.RoleAdmin || user.Status != models.StatusActive {
			c.JSON(http.StatusForbidden, utils.Response{Code: utils.CodeForbidden, Msg: "权限不足"})
			c.Abort()
			return
		}
		if _, ok := h.session(c); !ok {
			c.Abort()
			return
		}
		c.Next()
	}
}

func (h *Controller) AdminDashboard(c *gin.Context) {
	stats, err := h.Stats.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.Success(c, "success", stats)
}

// --- 题目管理 ---

func (h *Controller) AdminListChallenges(c *gin.Context) {
	var challenges []models.Challenge
	if err := h.DB.WithContext(c.Request.Context()).Order("created_at desc, challenge_id desc").Find(&challenges).Error; err != nil {
		h.fail(c, err)
		return
	}
	items := make([]dto.AdminChallengeItemResp, 0, len(challenges))
	for _, ch := range challenges {
		items = append(items, mappers.MapModelToAdminItemResp(ch))
	}
	utils.Success(c, "success", gin.H{"total": len(items), "challenges": items})
}

func (h *Controller) AdminCreateChallenge(c *gin.Context) {
	var req dto.CreateChallengeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, utils.CodeInvalidParams, "参数无效: "+err.Error())
		return
	}
	req.Normalize()
	if req.Title == "" || req.Category == "" || req.Flag == "" {
		utils.Error(c, utils.CodeInvalidParams, "缺少必填字段（title/category/flag）")
		return
	}
	if req.ScoreBase < 0 {
		utils.Error(c, utils.CodeInvalidParams, "score_base 不能为负数")
		return
	}

	challenge := mappers.MapCreateReqToModel(req)
	if err := h.DB.WithContext(c.Request.Context()).Create(&challenge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(c, utils.CodeInvalidParams, "题目标题或 interactive_id 已存在")
			return
		}
		h.fail(c, err)
		return
	}
	h.afterChallengeChange(c)

	utils.Success(c, "Challenge created successfully", mappers.MapModelToAdminItemResp(challenge))
}

type userPoints struct {
	UserID uint32
	Points int
}

// AdminDeleteChallenge 删除题目及其提示、提交和提示使用记录。
// 该题已发放的分数在同一事务内从用户总分扣回，保持 score = SUM(submissions.points)。
func (h *Controller) AdminDeleteChallenge(c *gin.Context) {
	challengeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, utils.CodeInvalidParams, "无效的题目 ID")
		return
	}

	err = h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var challenge models.Challenge
		if err := tx.First(&challenge, uint32(challengeID)).Error; err != nil {
			return err
		}
		var awarded []userPoints
		if err := tx.Model(&models.Submission{}).
			Select("user_id, SUM(points) AS points").
			Where("challenge_id = ? AND points > 0", challenge.ID).
			Group("user_id").
			Scan(&awarded).Error; err != nil {
			return err
		}
		for _, a := range awarded {
			if err := tx.Model(&models.User{}).
				Where("user_id = ?", a.UserID).
				UpdateColumn("score", gorm.Expr("score - ?", a.Points)).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("challenge_id = ?", challenge.ID).Delete(&models.UserHint{}).Error; err != nil {
			return err
		}
		if err := tx.Where("challenge_id = ?", challenge.ID).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("challenge_id = ?", challenge.ID).Delete(&models.Hint{}).Error; err != nil {
			return err
		}
		return tx.Delete(&challenge).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(c, utils.CodeNotFound, "题目不存在")
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	h.afterChallengeChange(c)
	h.Leaderboard.Invalidate(c.Request.Context())

	utils.Success(c, "Challenge deleted successfully", nil)
}

func (h *Controller) afterChallengeChange(c *gin.Context) {
	if err := h.Sessions.Reload(c.Request.Context()); err != nil {
		h.Log.Warn("session challenge reload failed", "error", err)
	}
	h.Stats.InvalidateHome(c.Request.Context())
}

// --- 提示管理 ---

func (h *Controller) AdminListHints(c *gin.Context) {
	var hints []models.Hint
	if err := h.DB.WithContext(c.Request.Context()).Order("challenge_id asc, order_index asc").Find(&hints).Error; err != nil {
		h.fail(c, err)
		return
	}
	utils.Success(c, "success", gin.H{"total": len(hints), "hints": hints})
}

func (h *Controller) AdminCreateHint(c *gin.Context) {
	var req dto.CreateHintReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, utils.CodeInvalidParams, "参数无效: "+err.Error())
		return
	}

	var count int64
	if err := h.DB.WithContext(c.Request.Context()).Model(&models.Challenge{}).
		Where("challenge_id = ?", req.ChallengeID).Count(&count).Error; err != nil {
		h.fail(c, err)
		return
	}
	if count == 0 {
		utils.Error(c, utils.CodeNotFound, "题目不存在")
		return
	}

	hint := models.Hint{
		ChallengeID: req.ChallengeID,
		Name:        req.Name,
		Content:     req.Content,
		Cost:        req.Cost,
		OrderIndex:  req.OrderIndex,
	}
	if hint.Cost <= 0 {
		hint.Cost = 10
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&hint).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(c, utils.CodeInvalidParams, "该题目已存在相同序号的提示")
			return
		}
		h.fail(c, err)
		return
	}
	utils.Success(c, "Hint created successfully", hint)
}

// --- 用户管理 ---

func (h *Controller) AdminListUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.WithContext(c.Request.Context()).Order("score desc, user_id asc").Find(&users).Error; err != nil {
		h.fail(c, err)
		return
	}
	items := make([]dto.AdminUserItemResp, 0, len(users))
	for _, u := range users {
		items = append(items, mappers.MapUserToAdminItemResp(u))
	}
	utils.Success(c, "success", gin.H{"total": len(items), "users": items})
}

func (h *Controller) AdminUpdateUserRole(c *gin.Context) {
	targetUserID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, utils.CodeInvalidParams, "无效的用户 ID")
		return
	}
	var req dto.UpdateRoleReq
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidRole(req.Role) {
		utils.Error(c, utils.CodeInvalidParams, "role 取值无效（player/moderator/admin）")
		return
	}

	res := h.DB.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("user_id = ?", uint32(targetUserID)).
		Update("role", models.UserRole(req.Role))
	if res.Error != nil {
		h.fail(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(c, utils.CodeNotFound, "用户不存在")
		return
	}
	if err := h.Sessions.Reload(c.Request.Context()); err != nil {
		h.Log.Warn("session reload after role change failed", "error", err)
	}
	utils.Success(c, "User role updated", gin.H{"user_id": targetUserID, "role": req.Role})
}

func (h *Controller) AdminDeleteUser(c *gin.Context) {
	targetUserID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.Error(c, utils.CodeInvalidParams, "无效的用户 ID")
		return
	}
	if uint32(targetUserID) == currentUserID(c) {
		utils.Error(c, utils.CodeForbidden, "不能删除自己")
		return
	}

	err = h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, uint32(targetUserID)).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserHint{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(c, utils.CodeNotFound, "用户不存在")
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	h.Sessions.CloseUser(uint32(targetUserID))
	h.Leaderboard.Invalidate(c.Request.Context())
	h.Stats.InvalidateHome(c.Request.Context())

	utils.Success(c, "User deleted successfully", nil)
}

// --- 提交记录 ---

type submissionRow struct {
	ID            uint64    `json:"submission_id"`
	Username      string    `json:"username"`
	Challenge     string    `json:"challenge"`
	FlagSubmitted string    `json:"flag_submitted"`
	IsCorrect     bool      `json:"is_correct"`
	Points        int       `json:"points"`
	HintsUsed     int       `json:"hints_used"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// AdminListSubmissions 最近 100 条提交
func (h *Controller) AdminListSubmissions(c *gin.Context) {
	var rows []submissionRow
	if err := h.DB.WithContext(c.Request.Context()).
		Table("submissions AS s").
		Select("s.submission_id AS id, u.username, ch.title AS challenge, s.flag_submitted, s.is_correct, s.points, s.hints_used, s.submitted_at").
		Joins("LEFT JOIN users AS u ON u.user_id = s.user_id").
		Joins("LEFT JOIN challenges AS ch ON ch.challenge_id = s.challenge_id").
		Order("s.submitted_at desc, s.submission_id desc").
		Limit(100).
		Scan(&rows).Error; err != nil {
		h.fail(c, err)
		return
	}
	if rows == nil {
		rows = []submissionRow{}
	}
	utils.Success(c, "success", gin.H{"total": len(rows), "submissions": rows})
}
