package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	appuser "github.com/Nestly-dev/bookdiscovery/internal/application/user"
	"github.com/Nestly-dev/bookdiscovery/internal/domain/user"
	apperrors "github.com/Nestly-dev/bookdiscovery/pkg/errors"
	"github.com/Nestly-dev/bookdiscovery/pkg/jwt"
	"github.com/Nestly-dev/bookdiscovery/pkg/response"
)

// AuthMiddleware JWT认证中间件
// 设计说明：
//  1. 从Header提取Token,验证签名与有效期
//  2. 检查Token黑名单(已登出的Token拒绝)
//  3. 每次请求从用户存储回查当前用户,不信任Token中的快照:
//     用户被删除或角色变更后,旧Token立即失效/降级
//  4. 将用户信息注入Context
type AuthMiddleware struct {
	jwtManager  *jwt.Manager
	blacklist   appuser.TokenBlacklist
	userService user.Service
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, blacklist appuser.TokenBlacklist, userService user.Service) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:  jwtManager,
		blacklist:   blacklist,
		userService: userService,
	}
}

// RequireAuth 要求登录
// 使用方式：
//
//	authorized := r.Group("/api/v1")
//	authorized.Use(authMiddleware.RequireAuth())
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := m.authenticate(c)
		if !ok {
			return // authenticate已写入响应并Abort
		}

		injectUser(c, u)
		c.Next()
	}
}

// RequireAdmin 要求管理员角色
// 先完成登录校验,再检查角色;非管理员返回403
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := m.authenticate(c)
		if !ok {
			return
		}

		if !u.IsAdmin() {
			response.Error(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}

		injectUser(c, u)
		c.Next()
	}
}

// authenticate 完整认证流程
// 失败时写入401响应并Abort,返回(nil, false)
func (m *AuthMiddleware) authenticate(c *gin.Context) (*user.User, bool) {
	// 1. 从Header提取Token
	// 格式：Authorization: Bearer <token>
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		c.Abort()
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		response.Error(c, apperrors.ErrInvalidToken)
		c.Abort()
		return nil, false
	}

	tokenString := parts[1]

	// 2. 检查Token黑名单(用户已登出或Token被强制失效)
	isBlacklisted, err := m.blacklist.IsBlacklisted(c.Request.Context(), tokenString)
	if err != nil {
		response.Error(c, apperrors.Wrap(err, "验证Token失败"))
		c.Abort()
		return nil, false
	}
	if isBlacklisted {
		response.Error(c, apperrors.ErrTokenExpired)
		c.Abort()
		return nil, false
	}

	// 3. 验证Token并解析Claims
	claims, err := m.jwtManager.ParseToken(tokenString)
	if err != nil {
		response.Error(c, err) // ErrTokenExpired或ErrInvalidToken
		c.Abort()
		return nil, false
	}

	// 4. 回查用户(已删除的用户一律401)
	u, err := m.userService.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, apperrors.ErrUnauthorized)
		c.Abort()
		return nil, false
	}

	// 原始Token留在Context,登出时拉黑用
	c.Set("access_token", tokenString)

	return u, true
}

// injectUser 将用户信息注入Context
func injectUser(c *gin.Context, u *user.User) {
	c.Set("user_id", u.ID)
	c.Set("email", u.Email)
	c.Set("nickname", u.Nickname)
	c.Set("role", string(u.Role))
}

// =========================================
// Context辅助函数（供Handler使用）
// =========================================

// GetUserID 从Context获取当前登录用户ID
func GetUserID(c *gin.Context) uint {
	if userID, exists := c.Get("user_id"); exists {
		if uid, ok := userID.(uint); ok {
			return uid
		}
	}
	return 0
}

// GetRole 从Context获取当前登录用户角色
func GetRole(c *gin.Context) string {
	if role, exists := c.Get("role"); exists {
		if r, ok := role.(string); ok {
			return r
		}
	}
	return ""
}

// GetAccessToken 从Context获取原始Access Token
func GetAccessToken(c *gin.Context) string {
	if token, exists := c.Get("access_token"); exists {
		if t, ok := token.(string); ok {
			return t
		}
	}
	return ""
}

// MustGetUserID 从Context获取用户ID（用于已通过RequireAuth的Handler）
func MustGetUserID(c *gin.Context) uint {
	userID := GetUserID(c)
	if userID == 0 {
		panic("user_id not found in context")
	}
	return userID
}
