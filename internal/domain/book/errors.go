package book

import (
	apperrors "github.com/Nestly-dev/bookdiscovery/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.ErrBookNotFound

	// ErrTitleRequired 书名不能为空
	ErrTitleRequired = apperrors.New(apperrors.ErrCodeInvalidParams, "书名不能为空")

	// ErrAuthorRequired 作者不能为空
	ErrAuthorRequired = apperrors.New(apperrors.ErrCodeInvalidParams, "作者不能为空")

	// ErrInvalidGenre 图书分类不合法
	ErrInvalidGenre = apperrors.New(apperrors.ErrCodeInvalidGenre, "图书分类不合法")

	// ErrInvalidPageCount 页数不合法
	ErrInvalidPageCount = apperrors.New(apperrors.ErrCodeInvalidParams, "页数必须大于0")

	// ErrInvalidRating 评分不合法
	ErrInvalidRating = apperrors.New(apperrors.ErrCodeInvalidRating, "评分必须在1到5之间")

	// ErrInvalidPublishedDate 出版日期格式不正确
	ErrInvalidPublishedDate = apperrors.New(apperrors.ErrCodeInvalidParams, "出版日期格式不正确（应为YYYY-MM-DD）")
)
