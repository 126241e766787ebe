package user

import (
	"time"
)

// Role 用户角色
// 角色只有user/admin两种，注册用户默认为user，
// admin账号由部署方通过种子数据或直接改库创建。
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid 校验角色取值
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User 用户实体（聚合根）
// 1. 密码已加密存储（bcrypt），不暴露明文
// 2. 领域实体不依赖GORM tag（infrastructure层的Repository实现时处理映射）
type User struct {
	ID        uint
	Email     string
	Password  string // bcrypt哈希值
	Nickname  string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码，角色固定为user
func NewUser(email, hashedPassword, nickname string) *User {
	now := time.Now()
	return &User{
		Email:     email,
		Password:  hashedPassword,
		Nickname:  nickname,
		Role:      RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UpdateNickname 更新昵称（领域行为）
func (u *User) UpdateNickname(nickname string) {
	u.Nickname = nickname
	u.UpdatedAt = time.Now()
}
