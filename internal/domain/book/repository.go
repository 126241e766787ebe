package book

import (
	"context"
	"time"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
//  1. 由domain层定义接口,infrastructure层实现
//  2. 便于Mock测试,不依赖具体数据库实现
//  3. IncrementReadCount/ApplyRating由存储层原子执行，
//     并发调用不会丢失更新
type Repository interface {
	// Create 创建图书
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书
	FindByID(ctx context.Context, id uint) (*Book, error)

	// Update 更新图书信息(全量替换可编辑字段)
	// 互动统计字段不在更新范围内
	Update(ctx context.Context, book *Book) error

	// Delete 删除图书(物理删除)
	// 图书删除后所有互动统计一并删除,不保留历史
	Delete(ctx context.Context, id uint) error

	// List 分页查询图书列表
	// 返回当前页数据和过滤后的总数
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// IncrementReadCount 已读计数加一(原子操作)
	// 返回更新后的计数,图书不存在时返回ErrBookNotFound
	IncrementReadCount(ctx context.Context, id uint) (int64, error)

	// ApplyRating 追加一次评分(原子操作)
	// 用增量均值公式在单条UPDATE内完成,返回更新后的均分和人数
	ApplyRating(ctx context.Context, id uint, rating float64) (float64, int64, error)
}

// ListParams 列表查询参数
// 由application层完成默认值填充与合法性校验,仓储直接使用
type ListParams struct {
	Page  int // 页码(从1开始)
	Limit int // 每页数量(1-50)

	Search        string     // 搜索关键词(模糊匹配标题、作者、简介，不区分大小写)
	Genre         Genre      // 分类过滤(空表示不过滤)
	Author        string     // 作者过滤(模糊匹配，不区分大小写)
	MinRating     float64    // 最低评分(0表示不过滤)
	PublishedFrom *time.Time // 出版日期下界(含)
	PublishedTo   *time.Time // 出版日期上界(含)

	SortBy    string // 排序字段(created_at, rating, read_count, published_date, title)
	SortOrder string // 排序方向(asc, desc)，相同排序值按id升序决胜
}

// Offset 计算分页偏移量
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
