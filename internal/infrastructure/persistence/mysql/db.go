package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Nestly-dev/bookdiscovery/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	// 自动迁移表结构（开发环境）
	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&BookModel{},
	)
}

// UserModel GORM用户模型
// 设计说明：
// 1. infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	Role      string         `gorm:"size:20;not null;default:user;comment:角色(user/admin)"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 设计说明:
// 1. 图书是物理删除(无DeletedAt),删除后互动统计一并消失
// 2. Rating用decimal(2,1)存储,均值固定保留1位小数,无浮点面额问题
// 3. 互动统计字段(rating/rating_count/read_count)只通过原子UPDATE变更
// 4. 列表查询的过滤/排序字段均建索引
type BookModel struct {
	ID            uint       `gorm:"primaryKey"`
	Title         string     `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Author        string     `gorm:"index:idx_search;size:100;not null;comment:作者"`
	Description   string     `gorm:"type:text;comment:图书简介"`
	Genre         string     `gorm:"index;size:50;not null;comment:分类"`
	Language      string     `gorm:"size:50;not null;default:English;comment:语言"`
	CoverURL      string     `gorm:"size:500;comment:封面图片URL"`
	ISBN          string     `gorm:"size:20;comment:ISBN号"`
	Publisher     string     `gorm:"size:100;comment:出版社"`
	PublishedDate *time.Time `gorm:"index;type:date;comment:出版日期"`
	PageCount     int        `gorm:"default:0;comment:页数"`
	Rating        float64    `gorm:"index;type:decimal(2,1);not null;default:0;comment:平均评分"`
	RatingCount   int64      `gorm:"not null;default:0;comment:评分人数"`
	ReadCount     int64      `gorm:"index;not null;default:0;comment:已读次数"`
	CreatedByID   uint       `gorm:"index;not null;comment:创建者用户ID"`
	CreatedAt     time.Time  `gorm:"index;comment:创建时间"`
	UpdatedAt     time.Time  `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}
