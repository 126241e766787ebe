package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Nestly-dev/bookdiscovery/internal/domain/book"
	apperrors "github.com/Nestly-dev/bookdiscovery/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 互动统计字段只通过原子UPDATE变更,普通更新不触碰
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// editableColumns 普通更新允许触碰的列
// 互动统计列(rating/rating_count/read_count)不在其中,
// 避免用内存快照覆盖并发的原子更新
var editableColumns = []string{
	"title", "author", "description", "genre", "language",
	"cover_url", "isbn", "publisher", "published_date", "page_count",
	"updated_at",
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建图书失败")
	}

	// 回填自增ID与时间戳
	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := r.db.WithContext(ctx).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}

	return toBookEntity(&model), nil
}

// Update 更新图书可编辑字段
// 只更新白名单内的列,互动统计保持数据库当前值
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	model.ID = b.ID

	result := r.db.WithContext(ctx).
		Model(&BookModel{}).
		Where("id = ?", b.ID).
		Select(editableColumns).
		Updates(model)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新图书失败")
	}

	return nil
}

// Delete 删除图书(物理删除)
// BookModel无DeletedAt字段,GORM的Delete即DELETE语句
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&BookModel{}, id)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除图书失败")
	}

	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}

	return nil
}

// List 分页查询图书列表
// 过滤(搜索/分类/作者/评分/出版日期)→计数→排序(含id升序决胜)→分页
func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	var models []BookModel
	var total int64

	query := r.db.WithContext(ctx).Model(&BookModel{})

	// 关键词搜索(标题、作者、简介,utf8mb4默认排序规则不区分大小写)
	if params.Search != "" {
		keyword := "%" + params.Search + "%"
		query = query.Where("title LIKE ? OR author LIKE ? OR description LIKE ?", keyword, keyword, keyword)
	}

	// 分类精确过滤
	if params.Genre != "" {
		query = query.Where("genre = ?", string(params.Genre))
	}

	// 作者模糊过滤
	if params.Author != "" {
		query = query.Where("author LIKE ?", "%"+params.Author+"%")
	}

	// 最低评分
	if params.MinRating > 0 {
		query = query.Where("rating >= ?", params.MinRating)
	}

	// 出版日期范围(含边界)
	if params.PublishedFrom != nil {
		query = query.Where("published_date >= ?", params.PublishedFrom.Format("2006-01-02"))
	}
	if params.PublishedTo != nil {
		query = query.Where("published_date <= ?", params.PublishedTo.Format("2006-01-02"))
	}

	// 总数独立于分页计算
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书总数失败")
	}

	// 排序:主键升序决胜,保证翻页结果稳定
	query = query.Order(orderClause(params.SortBy, params.SortOrder)).Order("id ASC")

	// 分页
	query = query.Limit(params.Limit).Offset(params.Offset())

	if err := query.Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}

	return books, total, nil
}

// IncrementReadCount 已读计数加一(原子操作)
// UPDATE books SET read_count = read_count + 1 WHERE id = ?
// 存储层原子自增,并发调用不丢失
func (r *bookRepository) IncrementReadCount(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&BookModel{}).
		Where("id = ?", id).
		Update("read_count", gorm.Expr("read_count + 1"))

	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, "更新已读计数失败")
	}

	if result.RowsAffected == 0 {
		return 0, book.ErrBookNotFound
	}

	// 回读新值(并发下可能读到更新的计数,单调不减,可接受)
	var readCount int64
	err := r.db.WithContext(ctx).
		Model(&BookModel{}).
		Where("id = ?", id).
		Pluck("read_count", &readCount).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "查询已读计数失败")
	}

	return readCount, nil
}

// ApplyRating 追加一次评分(原子操作)
// 增量均值在单条UPDATE内完成:
//
//	UPDATE books
//	SET rating = ROUND((rating * rating_count + ?) / (rating_count + 1), 1),
//	    rating_count = rating_count + 1
//	WHERE id = ?
//
// MySQL按赋值顺序求值:rating先用旧rating_count计算,再自增计数。
// 并发提交在行锁上串行,每次评分恰好计入一次。
func (r *bookRepository) ApplyRating(ctx context.Context, id uint, rating float64) (float64, int64, error) {
	result := r.db.WithContext(ctx).Exec(
		"UPDATE books SET rating = ROUND((rating * rating_count + ?) / (rating_count + 1), 1), rating_count = rating_count + 1 WHERE id = ?",
		rating, id,
	)

	if result.Error != nil {
		return 0, 0, apperrors.Wrap(result.Error, "更新评分失败")
	}

	if result.RowsAffected == 0 {
		return 0, 0, book.ErrBookNotFound
	}

	var model BookModel
	if err := r.db.WithContext(ctx).Select("rating", "rating_count").First(&model, id).Error; err != nil {
		return 0, 0, apperrors.Wrap(err, "查询评分失败")
	}

	return model.Rating, model.RatingCount, nil
}

// =========================================
// 辅助函数
// =========================================

// orderClause 构建主排序子句
// SortBy已由application层白名单校验,这里仍只拼接已知列名
func orderClause(sortBy, sortOrder string) string {
	column := "created_at"
	switch sortBy {
	case "title", "rating", "read_count", "published_date", "created_at":
		column = sortBy
	}
	direction := "DESC"
	if sortOrder == "asc" {
		direction = "ASC"
	}
	return fmt.Sprintf("%s %s", column, direction)
}

// toBookModel 领域实体 → GORM模型(不含ID与互动统计)
func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		Title:         b.Title,
		Author:        b.Author,
		Description:   b.Description,
		Genre:         string(b.Genre),
		Language:      b.Language,
		CoverURL:      b.CoverURL,
		ISBN:          b.ISBN,
		Publisher:     b.Publisher,
		PublishedDate: b.PublishedDate,
		PageCount:     b.PageCount,
		CreatedByID:   b.CreatedByID,
	}
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:            model.ID,
		Title:         model.Title,
		Author:        model.Author,
		Description:   model.Description,
		Genre:         book.Genre(model.Genre),
		Language:      model.Language,
		CoverURL:      model.CoverURL,
		ISBN:          model.ISBN,
		Publisher:     model.Publisher,
		PublishedDate: model.PublishedDate,
		PageCount:     model.PageCount,
		Rating:        model.Rating,
		RatingCount:   model.RatingCount,
		ReadCount:     model.ReadCount,
		CreatedByID:   model.CreatedByID,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}
