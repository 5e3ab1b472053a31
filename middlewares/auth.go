// file: middlewares/auth.go
package middlewares

import (
	"net/http"
	"strings"

	"ctflab/models"
	"ctflab/utils"

	"github.com/gin-gonic/gin"
)

// 上下文 key
const (
	CtxUserID    = "user_id"
	CtxUserRole  = "user_role"
	CtxEmail     = "email"
	CtxSessionID = "session_id"
	CtxTokenExp  = "token_exp"
)

func bearerClaims(c *gin.Context, issuer *utils.TokenIssuer) (*utils.Claims, int, string) {
	authHeader := c.Request.Header.Get("Authorization")
	if authHeader == "" {
		return nil, utils.CodeNotAuthenticated, "请求头中 Authorization 为空"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		return nil, utils.CodeNotAuthenticated, "Authorization 格式有误"
	}
	claims, err := issuer.ParseToken(parts[1])
	if err != nil {
		return nil, utils.CodeNotAuthenticated, "无效的 Token"
	}
	return claims, 0, ""
}

func setClaims(c *gin.Context, claims *utils.Claims) {
	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxUserRole, claims.Role)
	c.Set(CtxEmail, claims.Email)
	c.Set(CtxSessionID, claims.ID)
	if claims.ExpiresAt != nil {
		c.Set(CtxTokenExp, claims.ExpiresAt.Time)
	}
}

// JWTAuthMiddleware 验证用户是否登录
func JWTAuthMiddleware(issuer *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, code, msg := bearerClaims(c, issuer)
		if claims == nil {
			utils.Error(c, code, msg)
			c.Abort()
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// JWTTryAuthMiddleware 尝试解析 Token，失败也继续
func JWTTryAuthMiddleware(issuer *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, _, _ := bearerClaims(c, issuer); claims != nil {
			setClaims(c, claims)
		}
		c.Next()
	}
}

// RoleAuthMiddleware 验证用户角色
func RoleAuthMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleAny, exists := c.Get(CtxUserRole)
		if !exists {
			utils.Error(c, utils.CodeNotAuthenticated, "无法获取用户角色信息")
			c.Abort()
			return
		}
		role, _ := roleAny.(models.UserRole)

		hasPermission := false
		for _, requiredRole := range requiredRoles {
			if role == requiredRole {
				hasPermission = true
				break
			}
		}
		if !hasPermission {
			c.JSON(http.StatusForbidden, utils.Response{Code: utils.CodeForbidden, Msg: "权限不足"})
			c.Abort()
			return
		}
		c.Next()
	}
}
