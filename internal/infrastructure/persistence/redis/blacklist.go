package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/Nestly-dev/bookdiscovery/pkg/errors"
)

// TokenBlacklist Token黑名单(Redis实现)
// 设计说明：
// 1. 登出时把Token拉黑,TTL设为Token剩余有效期,到期自动清理
// 2. Key设计：blacklist:{token}
// 3. 实现application/user.TokenBlacklist接口
type TokenBlacklist struct {
	client *redis.Client
}

// NewTokenBlacklist 创建Token黑名单
func NewTokenBlacklist(client *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{client: client}
}

// Add 将Token加入黑名单
// 使用场景：
// 1. 用户登出
// 2. Token泄露后强制失效
func (s *TokenBlacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	key := fmt.Sprintf("blacklist:%s", token)

	if err := s.client.Set(ctx, key, "revoked", ttl).Err(); err != nil {
		return apperrors.Wrap(err, "添加Token到黑名单失败")
	}

	return nil
}

// IsBlacklisted 检查Token是否在黑名单中
func (s *TokenBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	key := fmt.Sprintf("blacklist:%s", token)

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "检查黑名单失败")
	}

	return exists > 0, nil
}
