package book

import (
	"math"
	"time"
)

// Book 图书实体(聚合根)
//  1. Rating/RatingCount/ReadCount是派生的互动统计字段，
//     只能通过RecordRead/RecordRating变更，普通更新不触碰
//  2. CreatedByID记录创建图书的管理员(仅作信息记录，不参与鉴权)
//  3. 不变量：0<=Rating<=5；RatingCount>=0且RatingCount==0时Rating==0；
//     ReadCount>=0且只增不减
type Book struct {
	ID          uint
	Title       string // 书名(必填)
	Author      string // 作者(必填)
	Description string // 简介
	Genre       Genre  // 分类(固定枚举)
	Language    string // 语言，默认English

	CoverURL      string     // 封面图片URL(可选)
	ISBN          string     // ISBN号(可选)
	Publisher     string     // 出版社(可选)
	PublishedDate *time.Time // 出版日期(可选)
	PageCount     int        // 页数(可选，>0)

	Rating      float64 // 平均评分[0,5]，无评分时为0
	RatingCount int64   // 评分人数
	ReadCount   int64   // 已读次数

	CreatedByID uint // 创建者(管理员)用户ID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Attributes 图书可编辑字段集合
// 创建与全量替换更新共用，互动统计字段不在其中。
type Attributes struct {
	Title         string
	Author        string
	Description   string
	Genre         Genre
	Language      string
	CoverURL      string
	ISBN          string
	Publisher     string
	PublishedDate *time.Time
	PageCount     int
}

// NewBook 创建新图书(工厂方法)
// 调用方(领域服务)需先完成字段校验；Language为空时默认English。
func NewBook(attrs Attributes, createdByID uint) *Book {
	if attrs.Language == "" {
		attrs.Language = "English"
	}

	now := time.Now()
	return &Book{
		Title:         attrs.Title,
		Author:        attrs.Author,
		Description:   attrs.Description,
		Genre:         attrs.Genre,
		Language:      attrs.Language,
		CoverURL:      attrs.CoverURL,
		ISBN:          attrs.ISBN,
		Publisher:     attrs.Publisher,
		PublishedDate: attrs.PublishedDate,
		PageCount:     attrs.PageCount,
		CreatedByID:   createdByID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Replace 全量替换可编辑字段(领域行为)
// 互动统计字段(Rating/RatingCount/ReadCount)与创建者保持不变。
func (b *Book) Replace(attrs Attributes) {
	if attrs.Language == "" {
		attrs.Language = "English"
	}

	b.Title = attrs.Title
	b.Author = attrs.Author
	b.Description = attrs.Description
	b.Genre = attrs.Genre
	b.Language = attrs.Language
	b.CoverURL = attrs.CoverURL
	b.ISBN = attrs.ISBN
	b.Publisher = attrs.Publisher
	b.PublishedDate = attrs.PublishedDate
	b.PageCount = attrs.PageCount
	b.UpdatedAt = time.Now()
}

// NextRating 计算追加一次评分后的增量均值
// newRating = round1((oldRating*oldCount + r) / (oldCount+1))
// MySQL仓储用同样的表达式在存储层原子更新，这里供内存实现与测试使用。
func NextRating(oldRating float64, oldCount int64, r float64) float64 {
	return Round1((oldRating*float64(oldCount) + r) / float64(oldCount+1))
}

// Round1 四舍五入保留1位小数
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
