package user

import (
	"context"
	"time"

	"github.com/Nestly-dev/bookdiscovery/internal/domain/user"
	"github.com/Nestly-dev/bookdiscovery/pkg/jwt"
)

// TokenBlacklist Token黑名单接口
// 登出时把未过期的Access Token拉黑,鉴权中间件逐请求检查。
// redis实现在infrastructure层。
type TokenBlacklist interface {
	// Add 拉黑Token,ttl为Token剩余有效期
	Add(ctx context.Context, token string, ttl time.Duration) error

	// IsBlacklisted 检查Token是否已拉黑
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

// LoginUseCase 用户登录用例
// 1. 验证邮箱密码
// 2. 签发JWT Token对(无服务端会话,鉴权完全无状态)
type LoginUseCase struct {
	userService user.Service
	jwtManager  *jwt.Manager
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(userService user.Service, jwtManager *jwt.Manager) *LoginUseCase {
	return &LoginUseCase{
		userService: userService,
		jwtManager:  jwtManager,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	// 1. 验证邮箱密码（调用领域服务）
	u, err := uc.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	// 2. 签发JWT Token对
	tokenPair, err := uc.jwtManager.GenerateToken(u.ID, u.Email, u.Nickname, string(u.Role))
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         toUserInfo(u),
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

// LogoutUseCase 用户登出用例
// JWT本身无法作废,登出通过黑名单实现:
// Token拉黑后在原有效期内也无法再使用。
type LogoutUseCase struct {
	blacklist  TokenBlacklist
	jwtManager *jwt.Manager
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(blacklist TokenBlacklist, jwtManager *jwt.Manager) *LogoutUseCase {
	return &LogoutUseCase{
		blacklist:  blacklist,
		jwtManager: jwtManager,
	}
}

// Execute 执行登出
// 黑名单TTL设为Access Token的完整有效期,到期自动清理
func (uc *LogoutUseCase) Execute(ctx context.Context, accessToken string) error {
	return uc.blacklist.Add(ctx, accessToken, uc.jwtManager.AccessTokenTTL())
}
