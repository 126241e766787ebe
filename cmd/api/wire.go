//go:build wireinject
// +build wireinject

// Wire依赖注入配置
//
// 与main.go的手动组装等价，运行 `wire gen ./cmd/api` 生成wire_gen.go。
// Wire在编译期生成代码：零运行时开销、类型安全、编译期检测循环依赖。

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

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
	"github.com/Nestly-dev/bookdiscovery/pkg/mq"
)

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,          // 加载配置文件
	mysql.NewDB,          // 创建MySQL连接
	redisinfra.NewClient, // 创建Redis连接
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewUserRepository, // 用户仓储
	mysql.NewBookRepository, // 图书仓储
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	user.NewService, // 用户领域服务
	book.NewService, // 图书领域服务
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewRefreshUseCase,
	appbook.NewCreateBookUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	appbook.NewListBooksUseCase,
	appbook.NewRecordReadUseCase,
	appbook.NewRecordRatingUseCase,
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideBlacklist,
	provideBookCache,
	providePublisher,
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewBookHandler,
)

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideBlacklist Token黑名单（接口绑定）
func provideBlacklist(client *goredis.Client) appuser.TokenBlacklist {
	return redisinfra.NewTokenBlacklist(client)
}

// provideBookCache 图书缓存（未启用时退化为Noop）
func provideBookCache(cfg *config.Config, client *goredis.Client) appbook.Cache {
	if !cfg.Cache.Enabled {
		return appbook.NewNoopCache()
	}
	return redisinfra.NewBookCache(client, cfg.Cache.DetailTTL, cfg.Cache.ListTTL)
}

// providePublisher 消息发布者（URL未配置时退化为Noop）
func providePublisher(cfg *config.Config) (mq.EventPublisher, error) {
	if cfg.MQ.URL == "" {
		return mq.NoopPublisher{}, nil
	}
	return mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
}

// provideGinEngine 创建并配置Gin引擎
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
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

	// registerRoutes已包含/ping、/metrics、/swagger
	registerRoutes(r, userHandler, bookHandler, authMiddleware)

	return r
}

// InitializeApp 初始化整个应用
// 返回配置好的Gin引擎，任何依赖创建失败时返回error
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideGinEngine,
	)

	// 占位返回值，实际代码由wire_gen.go生成
	return nil, nil
}
