package response

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Nestly-dev/bookdiscovery/pkg/errors"
)

// Response 统一响应结构
// Code是业务错误码（0表示成功），Message是用户友好提示，
// Data是业务数据，失败时为null。
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应（Code=0表示成功）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应（自动处理AppError）
// HTTP状态码由AppError的错误码推导（400/401/403/404/409/500），
// 内部错误详情只进日志，不返回给客户端。
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	if appErr.Err != nil {
		log.Printf("request failed: %s %s: %v", c.Request.Method, c.Request.URL.Path, appErr.Err)
	}

	c.JSON(appErr.HTTPStatus(), Response{
		Code:    appErr.Code,
		Message: appErr.Message,
		Data:    nil,
	})
}

// ErrorWithCode 自定义错误码和消息
func ErrorWithCode(c *gin.Context, code int, message string) {
	Error(c, apperrors.New(code, message))
}

// =========================================
// 分页响应结构
// =========================================

// Pagination 分页元信息
type Pagination struct {
	Total      int64 `json:"total"`       // 总记录数（精确值）
	Page       int   `json:"page"`        // 当前页码
	Limit      int   `json:"limit"`       // 每页大小
	TotalPages int   `json:"total_pages"` // 总页数
}

// PageData 分页数据封装
type PageData struct {
	Items      interface{} `json:"items"`      // 数据列表
	Pagination Pagination  `json:"pagination"` // 分页信息
}

// NewPageData 创建分页数据
// totalPages = ceil(total / limit)
func NewPageData(items interface{}, total int64, page, limit int) *PageData {
	return &PageData{
		Items:      items,
		Pagination: NewPagination(total, page, limit),
	}
}

// NewPagination 构造分页信息,总页数向上取整
func NewPagination(total int64, page, limit int) Pagination {
	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}

	return Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, items interface{}, total int64, page, limit int) {
	Success(c, NewPageData(items, total, page, limit))
}
