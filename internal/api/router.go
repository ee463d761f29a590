package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qs3c/prv_line_server/config"
	"github.com/qs3c/prv_line_server/internal/api/handler"
	"github.com/qs3c/prv_line_server/internal/api/middleware"
	"github.com/qs3c/prv_line_server/internal/model"
)

type Router struct {
	authHandler      *handler.AuthHandler
	userHandler      *handler.UserHandler
	privilegeHandler *handler.PrivilegeHandler
	rewardHandler    *handler.RewardHandler
	adminHandler     *handler.AdminHandler
	websocketHandler *handler.WebSocketHandler
	statusChecker    middleware.StatusChecker
	cfg              *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	privilegeHandler *handler.PrivilegeHandler,
	rewardHandler *handler.RewardHandler,
	adminHandler *handler.AdminHandler,
	websocketHandler *handler.WebSocketHandler,
	statusChecker middleware.StatusChecker,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:      authHandler,
		userHandler:      userHandler,
		privilegeHandler: privilegeHandler,
		rewardHandler:    rewardHandler,
		adminHandler:     adminHandler,
		websocketHandler: websocketHandler,
		statusChecker:    statusChecker,
		cfg:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - LINE 登录
		auth := api.Group("/auth")
		{
			auth.POST("/line/login", r.authHandler.LineLogin)
			auth.GET("/line", r.authHandler.LineAuthURL)
			auth.GET("/line/callback", r.authHandler.LineCallback)
		}

		// 后台接口
		admin := api.Group("/admin")
		admin.Use(middleware.Admin(r.cfg.Admin.APIKey))
		{
			admin.POST("/expenses", r.adminHandler.AddExpense)
			admin.DELETE("/expenses/:id", r.adminHandler.DeleteExpense)
			admin.POST("/licenses", r.adminHandler.GrantLicense)
			admin.POST("/products", r.adminHandler.AddProducts)
			admin.DELETE("/products/:id", r.adminHandler.DeleteProduct)
			admin.POST("/products/:id/image", r.adminHandler.UploadProductImage)
		}

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// 注册流程
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.userHandler.GetProfile)
				user.PUT("/profile", r.userHandler.SaveProfile)
				user.GET("/profile/card", r.userHandler.GetCardProfile)
				user.PUT("/profile/card", r.userHandler.UpdateCardProfile)
				user.POST("/pdpa", r.userHandler.AcceptPdpa)
				user.GET("/pdpa", r.userHandler.GetPdpa)
				user.POST("/email/otp", r.userHandler.SendEmailOTP)
				user.POST("/email/verify", r.userHandler.VerifyEmailOTP)
				user.GET("/status", r.userHandler.GetStatus)
			}

			// 会员卡和奖励需要完成邮箱验证
			member := authenticated.Group("")
			member.Use(middleware.RequireStatus(r.statusChecker, model.StatusVerified))
			{
				privilege := member.Group("/privilege")
				{
					privilege.GET("", r.privilegeHandler.GetCard)
					privilege.GET("/expenses", r.privilegeHandler.ListExpenses)
				}

				rewards := member.Group("/rewards")
				{
					rewards.GET("", r.rewardHandler.List)
					rewards.GET("/available", r.rewardHandler.Available)
					rewards.POST("/:id/redeem", r.rewardHandler.Redeem)
					rewards.GET("/redemptions", r.rewardHandler.History)
				}
			}
		}
	}

	return engine
}
