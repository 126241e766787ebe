package book

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Nestly-dev/bookdiscovery/internal/domain/book"
	apperrors "github.com/Nestly-dev/bookdiscovery/pkg/errors"
	"github.com/Nestly-dev/bookdiscovery/pkg/response"
)

// 分页默认值与上限
const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 50
)

// ListBooksUseCase 图书列表查询用例
// 设计说明:
// 1. 支持过滤(搜索/分类/作者/评分/出版日期)、排序、分页
// 2. 参数宽松处理:page/limit非法时回退默认值,limit超上限时钳制
// 3. 分类非法是唯一硬错误(固定枚举,给出指明字段的校验错误)
// 4. 结果缓存按参数哈希作键,互动统计变更后整体失效
type ListBooksUseCase struct {
	bookService book.Service
	cache       Cache
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookService book.Service, cache Cache) *ListBooksUseCase {
	return &ListBooksUseCase{
		bookService: bookService,
		cache:       cache,
	}
}

// ListBooksRequest 列表查询请求DTO
// 数值字段已由接口层完成宽松解析(非数字→0,由这里回退默认值)
type ListBooksRequest struct {
	Page  int
	Limit int

	Search        string
	Genre         string
	Author        string
	MinRating     float64
	HasMinRating  bool   // min_rating参数是否出现(0是合法取值,需区分)
	PublishedFrom string // YYYY-MM-DD
	PublishedTo   string // YYYY-MM-DD

	SortBy    string // created_at, rating, read_count, published_date, title
	SortOrder string // asc, desc
}

// ListBooksResponse 列表查询响应DTO,分页信息复用统一响应层的结构
type ListBooksResponse struct {
	Items      []BookDetail        `json:"items"`
	Pagination response.Pagination `json:"pagination"`
}

// sortFields 合法排序字段白名单
var sortFields = map[string]bool{
	"created_at":     true,
	"rating":         true,
	"read_count":     true,
	"published_date": true,
	"title":          true,
}

// Execute 执行列表查询
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	params, err := uc.normalize(req)
	if err != nil {
		return nil, err
	}

	// 1. 查缓存
	key := listCacheKey(params)
	if data, ok := uc.cache.GetList(ctx, key); ok {
		var resp ListBooksResponse
		if json.Unmarshal(data, &resp) == nil {
			return &resp, nil
		}
		// 缓存内容损坏时当作未命中回源
	}

	// 2. 回源数据库
	books, total, err := uc.bookService.ListBooks(ctx, params)
	if err != nil {
		return nil, err
	}

	items := make([]BookDetail, len(books))
	for i, b := range books {
		items[i] = toDetail(b)
	}

	resp := &ListBooksResponse{
		Items:      items,
		Pagination: response.NewPagination(total, params.Page, params.Limit),
	}

	// 3. 回填缓存
	if data, err := json.Marshal(resp); err == nil {
		uc.cache.SetList(ctx, key, data)
	}

	return resp, nil
}

// normalize 参数规范化与校验
// 宽松规则:page/limit非法回退默认值,limit超上限钳制,
// 排序字段/方向非法回退默认值。
// 硬错误:分类不在枚举内、min_rating超出[0,5]、日期格式错误。
func (uc *ListBooksUseCase) normalize(req ListBooksRequest) (book.ListParams, error) {
	params := book.ListParams{
		Search: req.Search,
		Author: req.Author,
	}

	// 分页参数
	params.Page = req.Page
	if params.Page < 1 {
		params.Page = DefaultPage
	}
	params.Limit = req.Limit
	if params.Limit < 1 {
		params.Limit = DefaultLimit
	}
	if params.Limit > MaxLimit {
		params.Limit = MaxLimit
	}

	// 分类过滤(固定枚举,非法值直接拒绝)
	if req.Genre != "" {
		g := book.Genre(req.Genre)
		if !book.IsValidGenre(g) {
			return params, apperrors.Newf(apperrors.ErrCodeInvalidGenre, "genre参数不合法: %s", req.Genre)
		}
		params.Genre = g
	}

	// 最低评分过滤
	if req.HasMinRating {
		if req.MinRating < 0 || req.MinRating > 5 {
			return params, apperrors.New(apperrors.ErrCodeInvalidParams, "min_rating参数必须在0到5之间")
		}
		params.MinRating = req.MinRating
	}

	// 出版日期范围(含边界)
	if req.PublishedFrom != "" {
		t, err := time.Parse("2006-01-02", req.PublishedFrom)
		if err != nil {
			return params, apperrors.New(apperrors.ErrCodeInvalidParams, "published_from参数格式不正确（应为YYYY-MM-DD）")
		}
		params.PublishedFrom = &t
	}
	if req.PublishedTo != "" {
		t, err := time.Parse("2006-01-02", req.PublishedTo)
		if err != nil {
			return params, apperrors.New(apperrors.ErrCodeInvalidParams, "published_to参数格式不正确（应为YYYY-MM-DD）")
		}
		params.PublishedTo = &t
	}

	// 排序参数(白名单外回退默认值)
	params.SortBy = req.SortBy
	if !sortFields[params.SortBy] {
		params.SortBy = "created_at"
	}
	params.SortOrder = req.SortOrder
	if params.SortOrder != "asc" && params.SortOrder != "desc" {
		params.SortOrder = "desc"
	}

	return params, nil
}

// listCacheKey 由规范化后的查询参数生成缓存键
func listCacheKey(p book.ListParams) string {
	from, to := "", ""
	if p.PublishedFrom != nil {
		from = p.PublishedFrom.Format("2006-01-02")
	}
	if p.PublishedTo != nil {
		to = p.PublishedTo.Format("2006-01-02")
	}
	raw := fmt.Sprintf("p=%d&l=%d&s=%s&g=%s&a=%s&r=%.2f&f=%s&t=%s&sb=%s&so=%s",
		p.Page, p.Limit, p.Search, p.Genre, p.Author, p.MinRating, from, to, p.SortBy, p.SortOrder)
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
