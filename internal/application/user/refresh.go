package user

import (
	"context"

	"github.com/Nestly-dev/bookdiscovery/internal/domain/user"
	apperrors "github.com/Nestly-dev/bookdiscovery/pkg/errors"
	"github.com/Nestly-dev/bookdiscovery/pkg/jwt"
)

// RefreshUseCase Token刷新用例
// Access Token过期后用Refresh Token换取新的Access Token,
// 换取前回查用户表,已注销的账号拿不到新Token
type RefreshUseCase struct {
	userService user.Service
	jwtManager  *jwt.Manager
}

// NewRefreshUseCase 创建Token刷新用例
func NewRefreshUseCase(userService user.Service, jwtManager *jwt.Manager) *RefreshUseCase {
	return &RefreshUseCase{
		userService: userService,
		jwtManager:  jwtManager,
	}
}

// RefreshResponse Token刷新响应
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Execute 执行Token刷新
func (uc *RefreshUseCase) Execute(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	claims, err := uc.jwtManager.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}

	if _, err := uc.userService.GetByID(ctx, claims.UserID); err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	accessToken, err := uc.jwtManager.RefreshAccessToken(refreshToken)
	if err != nil {
		return nil, err
	}

	return &RefreshResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(uc.jwtManager.AccessTokenTTL().Seconds()),
	}, nil
}
