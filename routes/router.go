// file: routes/router.go
package routes

import (
	"time"

	"ctflab/config"
	"ctflab/controllers"
	"ctflab/logger"
	"ctflab/middlewares"
	"ctflab/models"
	"ctflab/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(cfg config.Config, h *controllers.Controller, tokens *utils.TokenIssuer, log *logger.Logger) *gin.Engine {
	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middlewares.HeaderRequestID},
		ExposeHeaders:    []string{middlewares.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	apiV1 := r.Group("/api/v1")
	{
		usersPublic := apiV1.Group("/users")
		{
			usersPublic.POST("/register", h.Register)
			usersPublic.POST("/login", h.Login)
		}
		usersAuth := apiV1.Group("/users")
		usersAuth.Use(middlewares.JWTAuthMiddleware(tokens))
		{
			usersAuth.POST("/logout", h.Logout)
			usersAuth.GET("/me", h.Me)
		}

		// --- 题目与提示 ---
		challengeRoutes := apiV1.Group("/challenges")
		challengeRoutes.Use(middlewares.JWTAuthMiddleware(tokens))
		{
			challengeRoutes.GET("", h.ListChallenges)
			challengeRoutes.GET("/:alias", h.OpenChallenge)
			challengeRoutes.POST("/:alias/submit", h.SubmitFlag)
		}
		hintRoutes := apiV1.Group("/hints")
		hintRoutes.Use(middlewares.JWTAuthMiddleware(tokens))
		{
			hintRoutes.POST("/:element/reveal", h.RevealHint)
		}

		// --- 公开统计 ---
		apiV1.GET("/leaderboard", middlewares.JWTTryAuthMiddleware(tokens), h.GetLeaderboard)
		apiV1.GET("/stats", h.GetHomeStats)

		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(
			middlewares.JWTAuthMiddleware(tokens),
			middlewares.RoleAuthMiddleware(models.RoleAdmin),
			h.RequireActiveAdmin(),
		)
		{
			adminRoutes.GET("/dashboard", h.AdminDashboard)
			adminRoutes.GET("/challenges", h.AdminListChallenges)
			adminRoutes.POST("/challenges", h.AdminCreateChallenge)
			adminRoutes.DELETE("/challenges/:id", h.AdminDeleteChallenge)
			adminRoutes.GET("/hints", h.AdminListHints)
			adminRoutes.POST("/hints", h.AdminCreateHint)
			adminRoutes.GET("/users", h.AdminListUsers)
			adminRoutes.PUT("/users/:id/role", h.AdminUpdateUserRole)
			adminRoutes.DELETE("/users/:id", h.AdminDeleteUser)
			adminRoutes.GET("/submissions", h.AdminListSubmissions)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		utils.Error(c, utils.CodeNotFound, "接口不存在")
	})
	return r
}
