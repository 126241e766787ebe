package book

import (
	"context"

	"github.com/Nestly-dev/bookdiscovery/internal/domain/book"
)

// Cache 图书缓存接口
// 设计说明:
// 1. 接口定义在application层,redis实现在infrastructure层(依赖倒置)
// 2. 缓存未命中/缓存故障对调用方等价:返回miss,用例回源数据库
// 3. 列表缓存存储序列化后的响应字节,键由查询参数派生
type Cache interface {
	// GetBook 读取图书详情缓存
	GetBook(ctx context.Context, id uint) (*book.Book, bool)

	// SetBook 写入图书详情缓存
	SetBook(ctx context.Context, b *book.Book)

	// DeleteBook 删除图书详情缓存
	DeleteBook(ctx context.Context, id uint)

	// GetList 读取列表缓存(序列化后的响应)
	GetList(ctx context.Context, key string) ([]byte, bool)

	// SetList 写入列表缓存
	SetList(ctx context.Context, key string, data []byte)

	// InvalidateLists 清除全部列表缓存
	// 图书创建/更新/删除/互动统计变更后调用
	InvalidateLists(ctx context.Context)
}

// noopCache 空缓存实现,未配置Redis时使用
type noopCache struct{}

// NewNoopCache 创建空缓存
func NewNoopCache() Cache {
	return noopCache{}
}

func (noopCache) GetBook(context.Context, uint) (*book.Book, bool) { return nil, false }
func (noopCache) SetBook(context.Context, *book.Book)              {}
func (noopCache) DeleteBook(context.Context, uint)                 {}
func (noopCache) GetList(context.Context, string) ([]byte, bool)   { return nil, false }
func (noopCache) SetList(context.Context, string, []byte)          {}
func (noopCache) InvalidateLists(context.Context)                  {}
