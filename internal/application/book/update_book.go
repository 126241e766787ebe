package book

import (
	"context"
	"time"

	"github.com/Nestly-dev/bookdiscovery/internal/domain/book"
	"github.com/Nestly-dev/bookdiscovery/pkg/mq"
)

// UpdateBookUseCase 图书全量更新用例(仅管理员)
// PUT语义:可编辑字段整体替换,互动统计字段保持不变
type UpdateBookUseCase struct {
	bookService book.Service
	cache       Cache
	publisher   mq.EventPublisher
}

// NewUpdateBookUseCase 创建更新用例
func NewUpdateBookUseCase(bookService book.Service, cache Cache, publisher mq.EventPublisher) *UpdateBookUseCase {
	return &UpdateBookUseCase{
		bookService: bookService,
		cache:       cache,
		publisher:   publisher,
	}
}

// Execute 执行更新用例
func (uc *UpdateBookUseCase) Execute(ctx context.Context, id uint, req BookAttributes) (*BookDetail, error) {
	attrs, err := toDomainAttrs(req)
	if err != nil {
		return nil, err
	}

	b, err := uc.bookService.UpdateBook(ctx, id, attrs)
	if err != nil {
		return nil, err
	}

	// 详情与列表缓存均失效
	uc.cache.DeleteBook(ctx, id)
	uc.cache.InvalidateLists(ctx)

	_ = uc.publisher.Publish(mq.RoutingKeyBookUpdated, mq.BookEvent{
		BookID:     b.ID,
		OccurredAt: time.Now().Unix(),
	})

	detail := toDetail(b)
	return &detail, nil
}

// DeleteBookUseCase 图书删除用例(仅管理员,物理删除)
type DeleteBookUseCase struct {
	bookService book.Service
	cache       Cache
	publisher   mq.EventPublisher
}

// NewDeleteBookUseCase 创建删除用例
func NewDeleteBookUseCase(bookService book.Service, cache Cache, publisher mq.EventPublisher) *DeleteBookUseCase {
	return &DeleteBookUseCase{
		bookService: bookService,
		cache:       cache,
		publisher:   publisher,
	}
}

// Execute 执行删除用例
func (uc *DeleteBookUseCase) Execute(ctx context.Context, id uint) error {
	if err := uc.bookService.DeleteBook(ctx, id); err != nil {
		return err
	}

	uc.cache.DeleteBook(ctx, id)
	uc.cache.InvalidateLists(ctx)

	_ = uc.publisher.Publish(mq.RoutingKeyBookDeleted, mq.BookEvent{
		BookID:     id,
		OccurredAt: time.Now().Unix(),
	})

	return nil
}
