package profile

import (
	"context"
	"encoding/json"

	"github.com/rushteam/searchkit/core"
)

const cacheKeyPrefix = "searchkit:profile:"

// DefaultCacheTTL 缓存默认过期时间（秒）。画像特征更新频率低，
// 5 分钟的陈旧窗口对排序效果影响可以忽略。
const DefaultCacheTTL = 300

// CachedProvider 是带 KV 缓存的 Provider 装饰器：
// 命中缓存直接反序列化返回，未命中回源并写回缓存。
// 典型用法是把 FeastProvider 包在 store.RedisStore 之上，
// 避免每次排序请求都打到 Feature Store 在线服务。
//
// 画像不存在（NOT_FOUND）不缓存：新用户首次产生行为后应立即可见。
// 缓存读写失败都降级为回源，不向调用方暴露缓存层错误。
type CachedProvider struct {
	source Provider
	cache  core.Store

	// TTLSeconds 缓存条目过期秒数，默认 DefaultCacheTTL
	TTLSeconds int
}

type CacheOption func(*CachedProvider)

// WithCacheTTL 指定缓存过期秒数
func WithCacheTTL(seconds int) CacheOption {
	return func(p *CachedProvider) {
		if seconds > 0 {
			p.TTLSeconds = seconds
		}
	}
}

func NewCachedProvider(source Provider, cache core.Store, opts ...CacheOption) *CachedProvider {
	p := &CachedProvider{
		source:     source,
		cache:      cache,
		TTLSeconds: DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *CachedProvider) Profile(ctx context.Context, userID string) (*core.UserProfile, error) {
	key := cacheKeyPrefix + userID

	if data, err := p.cache.Get(ctx, key); err == nil {
		var profile core.UserProfile
		if err := json.Unmarshal(data, &profile); err == nil && profile.UserID != "" {
			return &profile, nil
		}
		// 坏条目直接清掉，走回源
		_ = p.cache.Delete(ctx, key)
	}

	profile, err := p.source.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(profile); err == nil {
		_ = p.cache.Set(ctx, key, data, p.TTLSeconds)
	}
	return profile, nil
}

// Invalidate 主动失效某个用户的缓存条目（画像更新后调用）。
func (p *CachedProvider) Invalidate(ctx context.Context, userID string) error {
	return p.cache.Delete(ctx, cacheKeyPrefix+userID)
}

func (p *CachedProvider) Close() error {
	if err := p.cache.Close(); err != nil {
		return err
	}
	return p.source.Close()
}

var _ Provider = (*CachedProvider)(nil)
