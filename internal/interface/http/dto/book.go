package dto

import "strconv"

// BookPayload HTTP创建/全量更新图书请求
// 创建与PUT更新共用同一结构(全量替换语义)
type BookPayload struct {
	Title         string `json:"title" binding:"required,max=200" example:"The Go Programming Language"`
	Author        string `json:"author" binding:"required,max=100" example:"Alan A. A. Donovan"`
	Description   string `json:"description" binding:"max=5000" example:"The authoritative resource to writing clear and idiomatic Go"`
	Genre         string `json:"genre" binding:"required,max=50" example:"Non-Fiction"`
	Language      string `json:"language" binding:"omitempty,max=50" example:"English"`
	CoverURL      string `json:"cover_url" binding:"omitempty,url,max=500" example:"https://example.com/cover.jpg"`
	ISBN          string `json:"isbn" binding:"omitempty,max=20" example:"9780134190440"`
	Publisher     string `json:"publisher" binding:"omitempty,max=100" example:"Addison-Wesley"`
	PublishedDate string `json:"published_date" binding:"omitempty,len=10" example:"2015-11-16"` // YYYY-MM-DD
	PageCount     int    `json:"page_count" binding:"omitempty,min=1" example:"380"`
}

// RatingRequest HTTP提交评分请求
// 指针类型区分"未提供"与"提交0分",0分超出范围由领域层拒绝
type RatingRequest struct {
	Rating *float64 `json:"rating" binding:"required" example:"4.5"`
}

// ListBooksQuery HTTP图书列表查询参数
// page/limit/min_rating按字符串接收:非数字取值宽松回退默认值
// 而非返回400(领域内其他非法值如genre仍严格校验)
type ListBooksQuery struct {
	Page          string `form:"page" example:"1"`
	Limit         string `form:"limit" example:"12"`
	Search        string `form:"search" binding:"omitempty,max=100" example:"golang"`
	Genre         string `form:"genre" binding:"omitempty,max=50" example:"Fiction"`
	Author        string `form:"author" binding:"omitempty,max=100" example:"Donovan"`
	MinRating     string `form:"min_rating" example:"3.5"`
	PublishedFrom string `form:"published_from" binding:"omitempty,len=10" example:"2000-01-01"`
	PublishedTo   string `form:"published_to" binding:"omitempty,len=10" example:"2020-12-31"`
	SortBy        string `form:"sort_by" binding:"omitempty,max=20" example:"rating"`
	SortOrder     string `form:"sort_order" binding:"omitempty,max=4" example:"desc"`
}

// ParsePage 宽松解析页码,非数字返回0(由应用层回退默认值)
func (q ListBooksQuery) ParsePage() int {
	n, err := strconv.Atoi(q.Page)
	if err != nil {
		return 0
	}
	return n
}

// ParseLimit 宽松解析每页数量,非数字返回0
func (q ListBooksQuery) ParseLimit() int {
	n, err := strconv.Atoi(q.Limit)
	if err != nil {
		return 0
	}
	return n
}

// ParseMinRating 解析最低评分
// 返回(值, 是否提供):0是合法取值,需要区分缺省
func (q ListBooksQuery) ParseMinRating() (float64, bool) {
	if q.MinRating == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(q.MinRating, 64)
	if err != nil {
		// 非数字按未提供处理(与page/limit一致的宽松策略)
		return 0, false
	}
	return v, true
}
