package book

import (
	"time"

	"github.com/Nestly-dev/bookdiscovery/internal/domain/book"
)

// BookDetail 图书详情DTO
// 列表与详情共用,互动统计字段始终返回
type BookDetail struct {
	ID            uint    `json:"id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Description   string  `json:"description"`
	Genre         string  `json:"genre"`
	Language      string  `json:"language"`
	CoverURL      string  `json:"cover_url"`
	ISBN          string  `json:"isbn"`
	Publisher     string  `json:"publisher"`
	PublishedDate string  `json:"published_date"` // YYYY-MM-DD,未设置时为空串
	PageCount     int     `json:"page_count"`
	Rating        float64 `json:"rating"`
	RatingCount   int64   `json:"rating_count"`
	ReadCount     int64   `json:"read_count"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// toDetail 领域实体 → 详情DTO
func toDetail(b *book.Book) BookDetail {
	d := BookDetail{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		Genre:       string(b.Genre),
		Language:    b.Language,
		CoverURL:    b.CoverURL,
		ISBN:        b.ISBN,
		Publisher:   b.Publisher,
		PageCount:   b.PageCount,
		Rating:      b.Rating,
		RatingCount: b.RatingCount,
		ReadCount:   b.ReadCount,
		CreatedAt:   b.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:   b.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	if b.PublishedDate != nil {
		d.PublishedDate = b.PublishedDate.Format("2006-01-02")
	}
	return d
}

// BookAttributes 创建/全量更新共用的请求DTO
type BookAttributes struct {
	Title         string
	Author        string
	Description   string
	Genre         string
	Language      string
	CoverURL      string
	ISBN          string
	Publisher     string
	PublishedDate string // YYYY-MM-DD,可为空
	PageCount     int
}

// toDomainAttrs 请求DTO → 领域属性
// 出版日期格式错误时返回ErrInvalidPublishedDate
func toDomainAttrs(req BookAttributes) (book.Attributes, error) {
	attrs := book.Attributes{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		Genre:       book.Genre(req.Genre),
		Language:    req.Language,
		CoverURL:    req.CoverURL,
		ISBN:        req.ISBN,
		Publisher:   req.Publisher,
		PageCount:   req.PageCount,
	}
	if req.PublishedDate != "" {
		t, err := time.Parse("2006-01-02", req.PublishedDate)
		if err != nil {
			return book.Attributes{}, book.ErrInvalidPublishedDate
		}
		attrs.PublishedDate = &t
	}
	return attrs, nil
}
