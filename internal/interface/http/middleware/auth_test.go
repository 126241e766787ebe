package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nestly-dev/bookdiscovery/internal/domain/user"
	apperrors "github.com/Nestly-dev/bookdiscovery/pkg/errors"
	"github.com/Nestly-dev/bookdiscovery/pkg/jwt"
)

// fakeBlacklist 内存黑名单
type fakeBlacklist struct {
	revoked map[string]bool
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{revoked: make(map[string]bool)}
}

func (b *fakeBlacklist) Add(_ context.Context, token string, _ time.Duration) error {
	b.revoked[token] = true
	return nil
}

func (b *fakeBlacklist) IsBlacklisted(_ context.Context, token string) (bool, error) {
	return b.revoked[token], nil
}

// fakeUserService 只实现GetByID的用户服务
type fakeUserService struct {
	users map[uint]*user.User
}

func (s *fakeUserService) Register(context.Context, string, string, string) (*user.User, error) {
	panic("not used")
}

func (s *fakeUserService) Login(context.Context, string, string) (*user.User, error) {
	panic("not used")
}

func (s *fakeUserService) GetByID(_ context.Context, id uint) (*user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeUserService) ValidatePassword(string, string) error {
	panic("not used")
}

// newTestRouter 组装带认证中间件的测试路由
func newTestRouter(jwtManager *jwt.Manager, blacklist *fakeBlacklist, users map[uint]*user.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := NewAuthMiddleware(jwtManager, blacklist, &fakeUserService{users: users})

	r := gin.New()
	r.GET("/me", auth.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "role": GetRole(c)})
	})
	r.POST("/admin", auth.RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func doRequest(r *gin.Engine, method, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// TestRequireAuth_TokenMatrix 测试各种非法Token均返回401
func TestRequireAuth_TokenMatrix(t *testing.T) {
	manager := jwt.NewManager("test-secret", 2*time.Hour, 24*time.Hour)
	expired := jwt.NewManager("test-secret", -time.Hour, 24*time.Hour)
	wrongKey := jwt.NewManager("other-secret", 2*time.Hour, 24*time.Hour)

	alice := &user.User{ID: 1, Email: "alice@example.com", Nickname: "Alice", Role: user.RoleUser}
	blacklist := newFakeBlacklist()
	r := newTestRouter(manager, blacklist, map[uint]*user.User{1: alice})

	validPair, _ := manager.GenerateToken(1, alice.Email, alice.Nickname, string(alice.Role))
	expiredPair, _ := expired.GenerateToken(1, alice.Email, alice.Nickname, string(alice.Role))
	forgedPair, _ := wrongKey.GenerateToken(1, alice.Email, alice.Nickname, string(alice.Role))
	deletedPair, _ := manager.GenerateToken(99, "ghost@example.com", "Ghost", "user")

	revokedPair, _ := manager.GenerateToken(1, alice.Email, alice.Nickname, string(alice.Role))
	_ = blacklist.Add(context.Background(), revokedPair.AccessToken, time.Hour)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"无Token", "", http.StatusUnauthorized},
		{"格式错误", "Token abc", http.StatusUnauthorized},
		{"Token乱码", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"Token过期", "Bearer " + expiredPair.AccessToken, http.StatusUnauthorized},
		{"签名不匹配", "Bearer " + forgedPair.AccessToken, http.StatusUnauthorized},
		{"用户已删除", "Bearer " + deletedPair.AccessToken, http.StatusUnauthorized},
		{"Token已拉黑", "Bearer " + revokedPair.AccessToken, http.StatusUnauthorized},
		{"合法Token", "Bearer " + validPair.AccessToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodGet, "/me", tt.header)
			if w.Code != tt.want {
				t.Errorf("期望状态码%d，实际%d，响应: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

// TestRequireAdmin 测试管理员角色检查
func TestRequireAdmin(t *testing.T) {
	manager := jwt.NewManager("test-secret", 2*time.Hour, 24*time.Hour)

	alice := &user.User{ID: 1, Email: "alice@example.com", Nickname: "Alice", Role: user.RoleUser}
	bob := &user.User{ID: 2, Email: "bob@example.com", Nickname: "Bob", Role: user.RoleAdmin}
	r := newTestRouter(manager, newFakeBlacklist(), map[uint]*user.User{1: alice, 2: bob})

	userPair, _ := manager.GenerateToken(1, alice.Email, alice.Nickname, string(alice.Role))
	adminPair, _ := manager.GenerateToken(2, bob.Email, bob.Nickname, string(bob.Role))

	// 普通用户403
	w := doRequest(r, http.MethodPost, "/admin", "Bearer "+userPair.AccessToken)
	if w.Code != http.StatusForbidden {
		t.Errorf("普通用户期望403，实际%d", w.Code)
	}

	// 管理员200
	w = doRequest(r, http.MethodPost, "/admin", "Bearer "+adminPair.AccessToken)
	if w.Code != http.StatusOK {
		t.Errorf("管理员期望200，实际%d，响应: %s", w.Code, w.Body.String())
	}

	// 未登录401(而非403)
	w = doRequest(r, http.MethodPost, "/admin", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("未登录期望401，实际%d", w.Code)
	}
}

// TestRequireAdmin_RoleDowngrade 测试角色以存储为准而非Token快照
// Token签发时是admin,存储中已降级为user,应返回403
func TestRequireAdmin_RoleDowngrade(t *testing.T) {
	manager := jwt.NewManager("test-secret", 2*time.Hour, 24*time.Hour)

	carol := &user.User{ID: 3, Email: "carol@example.com", Nickname: "Carol", Role: user.RoleUser}
	r := newTestRouter(manager, newFakeBlacklist(), map[uint]*user.User{3: carol})

	// Token中声称admin
	stalePair, _ := manager.GenerateToken(3, carol.Email, carol.Nickname, "admin")

	w := doRequest(r, http.MethodPost, "/admin", "Bearer "+stalePair.AccessToken)
	if w.Code != http.StatusForbidden {
		t.Errorf("角色降级期望403，实际%d", w.Code)
	}
}
