// Package profile 提供用户画像的获取抽象。
// 画像存储是排序核心的外部协作方：核心只消费 core.UserProfile，
// 画像缺失（匿名用户、新用户）是完全合法的输入，不是错误。
package profile

import (
	"context"
	"sync"

	"github.com/rushteam/searchkit/core"
)

// Provider 是画像来源的领域接口。
//
// 实现：
//   - MemoryProvider：内存实现，测试/原型用
//   - FeastProvider：Feast Feature Store 在线特征实现
type Provider interface {
	// Profile 按用户 ID 获取画像；不存在时返回 NOT_FOUND。
	// 调用方应把 NOT_FOUND 当作"匿名请求"处理而非失败。
	Profile(ctx context.Context, userID string) (*core.UserProfile, error)

	// Close 关闭连接/释放资源
	Close() error
}

// ErrProfileNotFound 表示画像不存在。
var ErrProfileNotFound = core.NewDomainError(core.ModuleProfile, core.ErrorCodeNotFound, "profile: not found")

// MemoryProvider 是内存实现的 Provider，用于测试/开发。
type MemoryProvider struct {
	mu       sync.RWMutex
	profiles map[string]*core.UserProfile
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{profiles: make(map[string]*core.UserProfile)}
}

func (p *MemoryProvider) Put(profile *core.UserProfile) {
	if profile == nil || profile.UserID == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profiles[profile.UserID] = profile
}

func (p *MemoryProvider) Profile(ctx context.Context, userID string) (*core.UserProfile, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	profile, ok := p.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

func (p *MemoryProvider) Close() error { return nil }

var _ Provider = (*MemoryProvider)(nil)
