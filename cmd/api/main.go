package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appbook "github.com/Nestly-dev/bookdiscovery/internal/application/book"
	appuser "github.com/Nestly-dev/bookdiscovery/internal/application/user"
	"github.com/Nestly-dev/bookdiscovery/internal/domain/book"
	"github.com/Nestly-dev/bookdiscovery/internal/domain/user"
	"github.com/Nestly-dev/bookdiscovery/internal/infrastructure/config"
	"github.com/Nestly-dev/bookdiscovery/internal/infrastructure/persistence/mysql"
	redisinfra "github.com/Nestly-dev/bookdiscovery/internal/infrastructure/persistence/redis"
	"github.com/Nestly-dev/bookdiscovery/internal/interface/http/handler"
	"github.com/Nestly-dev/bookdiscovery/internal/interface/http/middleware"
	"github.com/Nestly-dev/bookdiscovery/pkg/jwt"
	"github.com/Nestly-dev/bookdiscovery/pkg/metrics"
	"github.com/Nestly-dev/bookdiscovery/pkg/mq"
	"github.com/Nestly-dev/bookdiscovery/pkg/response"
	"github.com/Nestly-dev/bookdiscovery/pkg/tracing"
)

// main 主程序入口
// 手动依赖注入组装（wire.go提供等价的Wire注入器）
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())

	// 2. 初始化指标
	metrics.InitMetrics()

	// 3. 初始化链路追踪（可选）
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatalf("初始化Tracer失败: %v", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Printf("关闭Tracer失败: %v", err)
			}
		}()
	}

	// 4. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 5. 初始化Redis连接
	redisClient, err := redisinfra.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 6. 初始化消息发布者（URL未配置时退化为Noop）
	var publisher mq.EventPublisher = mq.NoopPublisher{}
	if cfg.MQ.URL != "" {
		p, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
		if err != nil {
			log.Fatalf("初始化消息发布者失败: %v", err)
		}
		defer p.Close()
		publisher = p
	}

	// 7. 依赖注入（手动组装）
	// Repository ← Service ← UseCase ← Handler

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	blacklist := redisinfra.NewTokenBlacklist(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	var bookCache appbook.Cache = appbook.NewNoopCache()
	if cfg.Cache.Enabled {
		bookCache = redisinfra.NewBookCache(redisClient, cfg.Cache.DetailTTL, cfg.Cache.ListTTL)
	}

	// 领域层
	userService := user.NewService(userRepo)
	bookService := book.NewService(bookRepo)

	// 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService, jwtManager)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager)
	logoutUseCase := appuser.NewLogoutUseCase(blacklist, jwtManager)
	refreshUseCase := appuser.NewRefreshUseCase(userService, jwtManager)
	createBookUseCase := appbook.NewCreateBookUseCase(bookService, bookCache, publisher)
	getBookUseCase := appbook.NewGetBookUseCase(bookService, bookCache)
	updateBookUseCase := appbook.NewUpdateBookUseCase(bookService, bookCache, publisher)
	deleteBookUseCase := appbook.NewDeleteBookUseCase(bookService, bookCache, publisher)
	listBooksUseCase := appbook.NewListBooksUseCase(bookService, bookCache)
	recordReadUseCase := appbook.NewRecordReadUseCase(bookService, bookCache, publisher)
	recordRatingUseCase := appbook.NewRecordRatingUseCase(bookService, bookCache, publisher)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase, refreshUseCase)
	bookHandler := handler.NewBookHandler(
		createBookUseCase, getBookUseCase, updateBookUseCase, deleteBookUseCase,
		listBooksUseCase, recordReadUseCase, recordRatingUseCase,
	)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, blacklist, userService)

	// 8. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.Metrics())
	if cfg.Tracing.Enabled {
		r.Use(middleware.Tracing())
	}
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}

	// 9. 注册路由
	registerRoutes(r, userHandler, bookHandler, authMiddleware)

	// 10. 启动服务（优雅退出）
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		fmt.Printf("\n🚀 服务启动成功！\n")
		fmt.Printf("   访问地址: http://localhost%s\n", addr)
		fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
		fmt.Printf("   指标采集: http://localhost%s/metrics\n", addr)
		fmt.Printf("   接口文档: http://localhost%s/swagger/index.html\n", addr)
		fmt.Printf("\n按Ctrl+C停止服务\n\n")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("启动服务失败: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Println("收到退出信号，开始优雅关闭...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("关闭HTTP服务失败: %v", err)
	}
	log.Println("服务已退出")
}

// registerRoutes 注册路由
func registerRoutes(r *gin.Engine, userHandler *handler.UserHandler, bookHandler *handler.BookHandler, authMiddleware *middleware.AuthMiddleware) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档（生产环境建议禁用或加访问控制）
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API路由组
	v1 := r.Group("/api/v1")
	{
		// 用户模块
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.POST("/refresh", userHandler.Refresh)
			users.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
		}

		// 图书模块
		books := v1.Group("/books")
		{
			// 公开接口（无需登录）
			books.GET("", bookHandler.List)
			books.GET("/:id", bookHandler.Get)

			// 互动接口（需登录）
			books.POST("/:id/read", authMiddleware.RequireAuth(), bookHandler.RecordRead)
			books.POST("/:id/rating", authMiddleware.RequireAuth(), bookHandler.RecordRating)

			// 管理接口（仅管理员）
			books.POST("", authMiddleware.RequireAdmin(), bookHandler.Create)
			books.PUT("/:id", authMiddleware.RequireAdmin(), bookHandler.Update)
			books.DELETE("/:id", authMiddleware.RequireAdmin(), bookHandler.Delete)
		}
	}
}
