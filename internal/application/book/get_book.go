package book

import (
	"context"

	"github.com/Nestly-dev/bookdiscovery/internal/domain/book"
)

// GetBookUseCase 图书详情查询用例
// Cache-Aside:先查缓存,未命中回源数据库并回填
type GetBookUseCase struct {
	bookService book.Service
	cache       Cache
}

// NewGetBookUseCase 创建详情查询用例
func NewGetBookUseCase(bookService book.Service, cache Cache) *GetBookUseCase {
	return &GetBookUseCase{
		bookService: bookService,
		cache:       cache,
	}
}

// Execute 执行详情查询
func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*BookDetail, error) {
	// 1. 查缓存
	if b, ok := uc.cache.GetBook(ctx, id); ok {
		detail := toDetail(b)
		return &detail, nil
	}

	// 2. 回源数据库
	b, err := uc.bookService.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3. 回填缓存
	uc.cache.SetBook(ctx, b)

	detail := toDetail(b)
	return &detail, nil
}
