package tools

import (
	"github.com/coocood/freecache"
)

// ResultCache 工具结果缓存。内置工具是纯读取，同样的参数得到同样的结果。
type ResultCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Clear()
}

// FreeCache 基于 freecache 的结果缓存
type FreeCache struct {
	cache *freecache.Cache
	ttl   int
}

// NewFreeCache 创建缓存，sizeMB 为缓存容量，ttl 为过期秒数（0 表示不过期）
func NewFreeCache(sizeMB, ttl int) *FreeCache {
	if sizeMB <= 0 {
		sizeMB = 1
	}
	return &FreeCache{
		cache: freecache.NewCache(sizeMB * 1024 * 1024),
		ttl:   ttl,
	}
}

func (c *FreeCache) Get(key string) ([]byte, bool) {
	value, err := c.cache.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	return value, true
}

func (c *FreeCache) Set(key string, value []byte) {
	// 超过单条上限时 freecache 会返回错误，忽略即可
	_ = c.cache.Set([]byte(key), value, c.ttl)
}

func (c *FreeCache) Clear() {
	c.cache.Clear()
}

// HitRate 命中率
func (c *FreeCache) HitRate() float64 {
	return c.cache.HitRate()
}
