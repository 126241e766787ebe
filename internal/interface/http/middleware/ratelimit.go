package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/Nestly-dev/bookdiscovery/pkg/errors"
	"github.com/Nestly-dev/bookdiscovery/pkg/response"
)

// RateLimit 全局限流中间件(令牌桶)
// rps为每秒补充令牌数,burst为桶容量;
// 令牌耗尽时直接返回429,不排队等待。
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			response.Error(c, apperrors.ErrRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}
