package book

import (
	"context"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 领域服务封装业务规则校验(字段合法性、评分范围)
// 2. 不依赖具体的Repository实现(依赖倒置)
// 3. 管理员权限由接口层中间件保证,领域层不做角色判断
type Service interface {
	// CreateBook 创建图书
	// 业务规则:
	// - 书名、作者必填
	// - 分类必须在固定枚举内
	// - 页数如提供必须>0
	CreateBook(ctx context.Context, attrs Attributes, createdByID uint) (*Book, error)

	// GetBookByID 根据ID获取图书详情
	GetBookByID(ctx context.Context, id uint) (*Book, error)

	// UpdateBook 全量替换图书可编辑字段
	// 业务规则与CreateBook一致,互动统计字段保持不变
	UpdateBook(ctx context.Context, id uint, attrs Attributes) (*Book, error)

	// DeleteBook 删除图书(物理删除)
	DeleteBook(ctx context.Context, id uint) error

	// ListBooks 分页查询图书列表
	// 公开接口,params已由application层规范化
	ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// RecordRead 记录一次已读(原子自增)
	// 返回更新后的已读次数
	RecordRead(ctx context.Context, id uint) (int64, error)

	// RecordRating 记录一次评分
	// 业务规则:评分必须在1-5之间(整数或半分粒度由调用方保证,这里只校验范围)
	// 返回更新后的平均分和评分人数
	RecordRating(ctx context.Context, id uint, rating float64) (float64, int64, error)
}

// service 领域服务实现
type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// CreateBook 创建图书
func (s *service) CreateBook(ctx context.Context, attrs Attributes, createdByID uint) (*Book, error) {
	// 1. 字段校验
	if err := validateAttributes(attrs); err != nil {
		return nil, err
	}

	// 2. 创建图书实体
	book := NewBook(attrs, createdByID)

	// 3. 持久化
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

// GetBookByID 根据ID获取图书
func (s *service) GetBookByID(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateBook 全量替换图书信息
func (s *service) UpdateBook(ctx context.Context, id uint, attrs Attributes) (*Book, error) {
	// 1. 字段校验
	if err := validateAttributes(attrs); err != nil {
		return nil, err
	}

	// 2. 查询图书
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3. 替换可编辑字段(互动统计保持不变)
	book.Replace(attrs)

	// 4. 持久化
	if err := s.repo.Update(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

// DeleteBook 删除图书
func (s *service) DeleteBook(ctx context.Context, id uint) error {
	// 先确认存在,保证删除不存在的图书返回404而非静默成功
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ListBooks 分页查询图书列表
func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	return s.repo.List(ctx, params)
}

// RecordRead 记录一次已读
func (s *service) RecordRead(ctx context.Context, id uint) (int64, error) {
	return s.repo.IncrementReadCount(ctx, id)
}

// RecordRating 记录一次评分
func (s *service) RecordRating(ctx context.Context, id uint, rating float64) (float64, int64, error) {
	// 评分范围校验
	if rating < 1 || rating > 5 {
		return 0, 0, ErrInvalidRating
	}
	return s.repo.ApplyRating(ctx, id, rating)
}

// =========================================
// 辅助函数:业务规则校验
// =========================================

// validateAttributes 校验图书可编辑字段
func validateAttributes(attrs Attributes) error {
	if attrs.Title == "" {
		return ErrTitleRequired
	}
	if attrs.Author == "" {
		return ErrAuthorRequired
	}
	if !IsValidGenre(attrs.Genre) {
		return ErrInvalidGenre
	}
	if attrs.PageCount < 0 {
		return ErrInvalidPageCount
	}
	return nil
}
