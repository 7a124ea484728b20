package api

import (
	"github.com/gin-gonic/gin"

	"github.com/verifake/verifake_server/config"
	"github.com/verifake/verifake_server/internal/api/handler"
	"github.com/verifake/verifake_server/internal/api/middleware"
	"github.com/verifake/verifake_server/internal/repository"
)

type Router struct {
	authHandler      *handler.AuthHandler
	userHandler      *handler.UserHandler
	detectionHandler *handler.DetectionHandler
	adminHandler     *handler.AdminHandler
	websocketHandler *handler.WebSocketHandler
	userRepo         *repository.UserRepository
	cfg              *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	detectionHandler *handler.DetectionHandler,
	adminHandler *handler.AdminHandler,
	websocketHandler *handler.WebSocketHandler,
	userRepo *repository.UserRepository,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:      authHandler,
		userHandler:      userHandler,
		detectionHandler: detectionHandler,
		adminHandler:     adminHandler,
		websocketHandler: websocketHandler,
		userRepo:         userRepo,
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

	api := engine.Group("/api")
	{
		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.GET("/github", r.authHandler.GithubAuth)
			auth.GET("/github/callback", r.authHandler.GithubCallback)
		}

		// 需要 API Token 认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.userRepo))
		{
			authenticated.GET("/user", r.userHandler.Get)
			authenticated.PUT("/user", r.userHandler.Update)
			authenticated.GET("/analyses", r.detectionHandler.List)
			authenticated.POST("/detect", r.detectionHandler.Detect)
		}
	}

	admin := engine.Group("/admin")
	{
		admin.POST("/login", r.adminHandler.Login)

		// 管理后台，JWT Cookie 会话
		protected := admin.Group("")
		protected.Use(middleware.AdminAuth(r.cfg.JWT.Secret, r.userRepo))
		{
			protected.POST("/logout", r.adminHandler.Logout)
			protected.GET("", r.adminHandler.Dashboard)
			protected.GET("/users", r.adminHandler.ListUsers)
			protected.POST("/users/:id/limit", r.adminHandler.UpdateLimit)
			protected.DELETE("/users/:id", r.adminHandler.DeleteUser)
			protected.GET("/users/:id/analyses", r.adminHandler.ListUserAnalyses)
			protected.GET("/analysis/:id", r.adminHandler.GetAnalysis)
			protected.DELETE("/analysis/:id", r.adminHandler.DeleteAnalysis)
			protected.GET("/ws", r.websocketHandler.Handle)
		}
	}

	return engine
}
