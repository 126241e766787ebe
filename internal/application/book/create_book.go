package book

import (
	"context"
	"time"

	"github.com/Nestly-dev/bookdiscovery/internal/domain/book"
	"github.com/Nestly-dev/bookdiscovery/pkg/metrics"
	"github.com/Nestly-dev/bookdiscovery/pkg/mq"
)

// CreateBookUseCase 图书创建用例(仅管理员)
// 设计说明:
// 1. 字段校验由领域服务负责,应用层只编排流程
// 2. 创建成功后发布book.created事件并清除列表缓存
// 3. 事件发布失败不影响主流程(记录由Publisher内部处理)
type CreateBookUseCase struct {
	bookService book.Service
	cache       Cache
	publisher   mq.EventPublisher
}

// NewCreateBookUseCase 创建图书用例
func NewCreateBookUseCase(bookService book.Service, cache Cache, publisher mq.EventPublisher) *CreateBookUseCase {
	return &CreateBookUseCase{
		bookService: bookService,
		cache:       cache,
		publisher:   publisher,
	}
}

// CreateBookRequest 创建请求DTO
type CreateBookRequest struct {
	BookAttributes
	CreatedByID uint // 创建者用户ID(从认证中间件获取)
}

// Execute 执行创建用例
func (uc *CreateBookUseCase) Execute(ctx context.Context, req CreateBookRequest) (*BookDetail, error) {
	attrs, err := toDomainAttrs(req.BookAttributes)
	if err != nil {
		return nil, err
	}

	b, err := uc.bookService.CreateBook(ctx, attrs, req.CreatedByID)
	if err != nil {
		return nil, err
	}

	// 新图书会出现在列表里,清除列表缓存
	uc.cache.InvalidateLists(ctx)

	metrics.IncCounter(metrics.BooksCreatedTotal)
	_ = uc.publisher.Publish(mq.RoutingKeyBookCreated, mq.BookEvent{
		BookID:     b.ID,
		UserID:     req.CreatedByID,
		OccurredAt: time.Now().Unix(),
	})

	detail := toDetail(b)
	return &detail, nil
}
