package main

import (
	"fmt"
	"log"

	"github.com/verifake/verifake_server/config"
	"github.com/verifake/verifake_server/internal/api"
	"github.com/verifake/verifake_server/internal/api/handler"
	"github.com/verifake/verifake_server/internal/database"
	"github.com/verifake/verifake_server/internal/pkg/email"
	"github.com/verifake/verifake_server/internal/pkg/oauth"
	"github.com/verifake/verifake_server/internal/pkg/oss"
	"github.com/verifake/verifake_server/internal/pkg/sightengine"
	"github.com/verifake/verifake_server/internal/pkg/ws"
	"github.com/verifake/verifake_server/internal/repository"
	"github.com/verifake/verifake_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化 OSS
	ossClient, err := oss.NewClient(&cfg.OSS)
	if err != nil {
		log.Fatalf("Failed to init oss client: %v", err)
	}

	// 初始化检测 API 客户端
	vendorClient := sightengine.NewClient(&cfg.Sightengine)

	// 初始化邮件服务
	mailer := email.NewService(&cfg.Email)

	// 初始化 WebSocket Hub
	wsHub := ws.NewHub()

	// 初始化 OAuth state 存储
	stateStore := oauth.NewStateStore(rdb)

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, cfg, mailer)
	userService := service.NewUserService(userRepo)
	quotaService := service.NewQuotaService(userRepo)
	detectionService := service.NewDetectionService(analysisRepo, quotaService, ossClient, vendorClient, wsHub)
	adminService := service.NewAdminService(userRepo, analysisRepo, quotaService, ossClient, rdb)

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService, stateStore)
	userHandler := handler.NewUserHandler(userService)
	detectionHandler := handler.NewDetectionHandler(detectionService, cfg)
	adminHandler := handler.NewAdminHandler(adminService, authService, cfg)
	websocketHandler := handler.NewWebSocketHandler(wsHub)

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		userHandler,
		detectionHandler,
		adminHandler,
		websocketHandler,
		userRepo,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
