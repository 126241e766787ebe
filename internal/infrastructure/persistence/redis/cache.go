package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	appbook "github.com/Nestly-dev/bookdiscovery/internal/application/book"
	"github.com/Nestly-dev/bookdiscovery/internal/domain/book"
	"github.com/Nestly-dev/bookdiscovery/pkg/circuitbreaker"
	"github.com/Nestly-dev/bookdiscovery/pkg/metrics"
)

// 缓存Key设计:
// - book:detail:{id}          图书详情(JSON)
// - book:list:ver             列表版本号
// - book:list:{ver}:{hash}    列表结果(带版本前缀)
//
// 列表失效用版本号实现:INCR版本号后旧版本键自然失去引用,
// 靠TTL过期回收,不需要SCAN遍历删除。
const (
	detailKeyFmt   = "book:detail:%d"
	listVersionKey = "book:list:ver"
	listKeyFmt     = "book:list:%d:%s"
)

// BookCache 图书缓存(Redis实现)
// 设计说明:
//  1. 实现application/book.Cache接口,Cache-Aside模式
//  2. 所有Redis访问经过熔断器:Redis故障时快速失败当作miss,
//     请求直接回源数据库,不拖垮主链路
//  3. 命中/未命中计入Prometheus指标
type BookCache struct {
	client    *goredis.Client
	breaker   *circuitbreaker.CircuitBreaker
	detailTTL time.Duration
	listTTL   time.Duration
}

var _ appbook.Cache = (*BookCache)(nil)

// NewBookCache 创建图书缓存
func NewBookCache(client *goredis.Client, detailTTL, listTTL time.Duration) *BookCache {
	breaker := circuitbreaker.NewCircuitBreaker("book-cache", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: circuitbreaker.DefaultReadyToTrip,
	})

	return &BookCache{
		client:    client,
		breaker:   breaker,
		detailTTL: detailTTL,
		listTTL:   listTTL,
	}
}

// GetBook 读取图书详情缓存
func (c *BookCache) GetBook(ctx context.Context, id uint) (*book.Book, bool) {
	var data []byte
	var miss bool
	err := c.breaker.Execute(func() error {
		b, err := c.client.Get(ctx, fmt.Sprintf(detailKeyFmt, id)).Bytes()
		if err == goredis.Nil {
			// 未命中是正常结果,不计入熔断器失败
			miss = true
			return nil
		}
		if err != nil {
			return err
		}
		data = b
		return nil
	})
	// Redis故障/熔断对调用方与未命中等价
	if err != nil || miss {
		metrics.RecordCacheMiss("book_detail")
		return nil, false
	}

	var b book.Book
	if err := json.Unmarshal(data, &b); err != nil {
		metrics.RecordCacheMiss("book_detail")
		return nil, false
	}

	metrics.RecordCacheHit("book_detail")
	return &b, true
}

// SetBook 写入图书详情缓存
func (c *BookCache) SetBook(ctx context.Context, b *book.Book) {
	data, err := json.Marshal(b)
	if err != nil {
		return
	}
	_ = c.breaker.Execute(func() error {
		return c.client.Set(ctx, fmt.Sprintf(detailKeyFmt, b.ID), data, c.detailTTL).Err()
	})
}

// DeleteBook 删除图书详情缓存
func (c *BookCache) DeleteBook(ctx context.Context, id uint) {
	_ = c.breaker.Execute(func() error {
		return c.client.Del(ctx, fmt.Sprintf(detailKeyFmt, id)).Err()
	})
}

// GetList 读取列表缓存
func (c *BookCache) GetList(ctx context.Context, key string) ([]byte, bool) {
	var data []byte
	var miss bool
	err := c.breaker.Execute(func() error {
		ver, err := c.client.Get(ctx, listVersionKey).Int64()
		if err == goredis.Nil {
			miss = true
			return nil
		}
		if err != nil {
			return err
		}
		b, err := c.client.Get(ctx, fmt.Sprintf(listKeyFmt, ver, key)).Bytes()
		if err == goredis.Nil {
			miss = true
			return nil
		}
		if err != nil {
			return err
		}
		data = b
		return nil
	})
	if err != nil || miss {
		metrics.RecordCacheMiss("book_list")
		return nil, false
	}

	metrics.RecordCacheHit("book_list")
	return data, true
}

// SetList 写入列表缓存
func (c *BookCache) SetList(ctx context.Context, key string, data []byte) {
	_ = c.breaker.Execute(func() error {
		// 版本号不存在时初始化为1
		ver, err := c.client.Get(ctx, listVersionKey).Int64()
		if err == goredis.Nil {
			if err := c.client.Set(ctx, listVersionKey, 1, 0).Err(); err != nil {
				return err
			}
			ver = 1
		} else if err != nil {
			return err
		}
		return c.client.Set(ctx, fmt.Sprintf(listKeyFmt, ver, key), data, c.listTTL).Err()
	})
}

// InvalidateLists 清除全部列表缓存
// 版本号自增后旧键不再被读取,由TTL回收
func (c *BookCache) InvalidateLists(ctx context.Context) {
	_ = c.breaker.Execute(func() error {
		return c.client.Incr(ctx, listVersionKey).Err()
	})
}
