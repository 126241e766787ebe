package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appbook "github.com/Nestly-dev/bookdiscovery/internal/application/book"
	"github.com/Nestly-dev/bookdiscovery/internal/interface/http/dto"
	"github.com/Nestly-dev/bookdiscovery/internal/interface/http/middleware"
	apperrors "github.com/Nestly-dev/bookdiscovery/pkg/errors"
	"github.com/Nestly-dev/bookdiscovery/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	createBook   *appbook.CreateBookUseCase
	getBook      *appbook.GetBookUseCase
	updateBook   *appbook.UpdateBookUseCase
	deleteBook   *appbook.DeleteBookUseCase
	listBooks    *appbook.ListBooksUseCase
	recordRead   *appbook.RecordReadUseCase
	recordRating *appbook.RecordRatingUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	createBook *appbook.CreateBookUseCase,
	getBook *appbook.GetBookUseCase,
	updateBook *appbook.UpdateBookUseCase,
	deleteBook *appbook.DeleteBookUseCase,
	listBooks *appbook.ListBooksUseCase,
	recordRead *appbook.RecordReadUseCase,
	recordRating *appbook.RecordRatingUseCase,
) *BookHandler {
	return &BookHandler{
		createBook:   createBook,
		getBook:      getBook,
		updateBook:   updateBook,
		deleteBook:   deleteBook,
		listBooks:    listBooks,
		recordRead:   recordRead,
		recordRating: recordRating,
	}
}

// List 图书列表
// @Summary      图书列表
// @Description  分页查询图书,支持搜索、分类/作者/评分/出版日期过滤与排序
// @Tags         图书
// @Produce      json
// @Param        page query string false "页码(默认1)"
// @Param        limit query string false "每页数量(默认12,上限50)"
// @Param        search query string false "搜索关键词(标题/作者/简介)"
// @Param        genre query string false "分类过滤"
// @Param        author query string false "作者过滤"
// @Param        min_rating query string false "最低评分(0-5)"
// @Param        published_from query string false "出版日期下界(YYYY-MM-DD)"
// @Param        published_to query string false "出版日期上界(YYYY-MM-DD)"
// @Param        sort_by query string false "排序字段(created_at/rating/read_count/published_date/title)"
// @Param        sort_order query string false "排序方向(asc/desc)"
// @Success      200 {object} response.Response{data=appbook.ListBooksResponse}
// @Failure      400 {object} response.Response "分类不合法"
// @Router       /api/v1/books [get]
func (h *BookHandler) List(c *gin.Context) {
	var query dto.ListBooksQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	minRating, hasMinRating := query.ParseMinRating()
	result, err := h.listBooks.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Page:          query.ParsePage(),
		Limit:         query.ParseLimit(),
		Search:        query.Search,
		Genre:         query.Genre,
		Author:        query.Author,
		MinRating:     minRating,
		HasMinRating:  hasMinRating,
		PublishedFrom: query.PublishedFrom,
		PublishedTo:   query.PublishedTo,
		SortBy:        query.SortBy,
		SortOrder:     query.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, result.Items, result.Pagination.Total, result.Pagination.Page, result.Pagination.Limit)
}

// Get 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookDetail}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) Get(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	result, err := h.getBook.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Create 创建图书(仅管理员)
// @Summary      创建图书
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.BookPayload true "图书信息"
// @Success      201 {object} response.Response{data=appbook.BookDetail}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      403 {object} response.Response "非管理员"
// @Router       /api/v1/books [post]
func (h *BookHandler) Create(c *gin.Context) {
	var req dto.BookPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.createBook.Execute(c.Request.Context(), appbook.CreateBookRequest{
		BookAttributes: toAppAttributes(req),
		CreatedByID:    middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// Update 全量更新图书(仅管理员)
// @Summary      更新图书
// @Description  PUT全量替换可编辑字段,互动统计保持不变
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.BookPayload true "图书信息"
// @Success      200 {object} response.Response{data=appbook.BookDetail}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      403 {object} response.Response "非管理员"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [put]
func (h *BookHandler) Update(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	var req dto.BookPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.updateBook.Execute(c.Request.Context(), id, toAppAttributes(req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Delete 删除图书(仅管理员,物理删除)
// @Summary      删除图书
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "非管理员"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) Delete(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	if err := h.deleteBook.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// RecordRead 标记已读(需登录)
// @Summary      标记已读
// @Description  已读计数加一,同一用户重复标记每次都计数
// @Tags         互动
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appbook.RecordReadResponse}
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/read [post]
func (h *BookHandler) RecordRead(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	result, err := h.recordRead.Execute(c.Request.Context(), id, middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RecordRating 提交评分(需登录)
// @Summary      提交评分
// @Description  评分范围1-5,均分增量更新保留1位小数
// @Tags         互动
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.RatingRequest true "评分"
// @Success      200 {object} response.Response{data=appbook.RecordRatingResponse}
// @Failure      400 {object} response.Response "评分不合法"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/rating [post]
func (h *BookHandler) RecordRating(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	var req dto.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.recordRating.Execute(c.Request.Context(), id, middleware.MustGetUserID(c), *req.Rating)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// =========================================
// 辅助函数
// =========================================

// parseBookID 解析路径参数中的图书ID
// 非法ID直接返回404(与不存在的图书一致,不暴露参数细节)
func parseBookID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.Error(c, apperrors.ErrBookNotFound)
		return 0, false
	}
	return uint(id), true
}

// toAppAttributes HTTP请求 → 应用层DTO
func toAppAttributes(req dto.BookPayload) appbook.BookAttributes {
	return appbook.BookAttributes{
		Title:         req.Title,
		Author:        req.Author,
		Description:   req.Description,
		Genre:         req.Genre,
		Language:      req.Language,
		CoverURL:      req.CoverURL,
		ISBN:          req.ISBN,
		Publisher:     req.Publisher,
		PublishedDate: req.PublishedDate,
		PageCount:     req.PageCount,
	}
}
