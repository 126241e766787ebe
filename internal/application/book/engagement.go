package book

import (
	"context"
	"time"

	"github.com/Nestly-dev/bookdiscovery/internal/domain/book"
	"github.com/Nestly-dev/bookdiscovery/pkg/metrics"
	"github.com/Nestly-dev/bookdiscovery/pkg/mq"
)

// RecordReadUseCase 标记已读用例(需登录)
// 计数自增由存储层原子完成,并发调用不丢失
type RecordReadUseCase struct {
	bookService book.Service
	cache       Cache
	publisher   mq.EventPublisher
}

// NewRecordReadUseCase 创建标记已读用例
func NewRecordReadUseCase(bookService book.Service, cache Cache, publisher mq.EventPublisher) *RecordReadUseCase {
	return &RecordReadUseCase{
		bookService: bookService,
		cache:       cache,
		publisher:   publisher,
	}
}

// RecordReadResponse 标记已读响应DTO
type RecordReadResponse struct {
	BookID    uint  `json:"book_id"`
	ReadCount int64 `json:"read_count"`
}

// Execute 执行标记已读
// userID仅用于事件载荷,同一用户重复标记每次都计数
func (uc *RecordReadUseCase) Execute(ctx context.Context, bookID, userID uint) (*RecordReadResponse, error) {
	readCount, err := uc.bookService.RecordRead(ctx, bookID)
	if err != nil {
		return nil, err
	}

	// 统计字段变了,详情与列表缓存失效
	uc.cache.DeleteBook(ctx, bookID)
	uc.cache.InvalidateLists(ctx)

	metrics.IncCounter(metrics.ReadsRecordedTotal)
	_ = uc.publisher.Publish(mq.RoutingKeyBookRead, mq.BookEvent{
		BookID:     bookID,
		UserID:     userID,
		ReadCount:  readCount,
		OccurredAt: time.Now().Unix(),
	})

	return &RecordReadResponse{BookID: bookID, ReadCount: readCount}, nil
}

// RecordRatingUseCase 提交评分用例(需登录)
// 均分与人数在存储层单条UPDATE内原子更新
type RecordRatingUseCase struct {
	bookService book.Service
	cache       Cache
	publisher   mq.EventPublisher
}

// NewRecordRatingUseCase 创建提交评分用例
func NewRecordRatingUseCase(bookService book.Service, cache Cache, publisher mq.EventPublisher) *RecordRatingUseCase {
	return &RecordRatingUseCase{
		bookService: bookService,
		cache:       cache,
		publisher:   publisher,
	}
}

// RecordRatingResponse 提交评分响应DTO
type RecordRatingResponse struct {
	BookID      uint    `json:"book_id"`
	Rating      float64 `json:"rating"`
	RatingCount int64   `json:"rating_count"`
}

// Execute 执行提交评分
// 同一用户重复评分每次都作为新数据点计入均值
func (uc *RecordRatingUseCase) Execute(ctx context.Context, bookID, userID uint, rating float64) (*RecordRatingResponse, error) {
	newRating, ratingCount, err := uc.bookService.RecordRating(ctx, bookID, rating)
	if err != nil {
		return nil, err
	}

	uc.cache.DeleteBook(ctx, bookID)
	uc.cache.InvalidateLists(ctx)

	metrics.IncCounter(metrics.RatingsRecordedTotal)
	_ = uc.publisher.Publish(mq.RoutingKeyBookRated, mq.BookEvent{
		BookID:      bookID,
		UserID:      userID,
		Rating:      rating,
		RatingCount: ratingCount,
		OccurredAt:  time.Now().Unix(),
	})

	return &RecordRatingResponse{
		BookID:      bookID,
		Rating:      newRating,
		RatingCount: ratingCount,
	}, nil
}
