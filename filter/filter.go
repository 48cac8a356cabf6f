// Package filter 实现排序前的候选过滤：下架黑名单、区域可售、价格区间。
// 过滤发生在打分之前，砍掉的候选不消耗打分预算。
package filter

import (
	"context"

	"github.com/rushteam/searchkit/core"
)

// Filter 判断一个候选是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断候选是否应该被过滤
	ShouldFilter(ctx context.Context, rctx *core.RankContext, c *core.Candidate) (bool, error)
}

// BlacklistFilter 按候选 ID 黑名单过滤（下架、违规、运营手动屏蔽）。
type BlacklistFilter struct {
	ids map[string]struct{}
}

func NewBlacklistFilter(ids []string) *BlacklistFilter {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return &BlacklistFilter{ids: set}
}

func (f *BlacklistFilter) Name() string { return "filter.blacklist" }

func (f *BlacklistFilter) ShouldFilter(_ context.Context, _ *core.RankContext, c *core.Candidate) (bool, error) {
	_, blocked := f.ids[c.ID]
	return blocked, nil
}

// AvailabilityFilter 过滤在请求方区域不可售的候选。
// 请求没有地理上下文时不过滤（地域是可选信号，缺失不是惩罚）。
type AvailabilityFilter struct{}

func (f *AvailabilityFilter) Name() string { return "filter.availability" }

func (f *AvailabilityFilter) ShouldFilter(_ context.Context, rctx *core.RankContext, c *core.Candidate) (bool, error) {
	if rctx == nil || rctx.Geo == nil {
		return false, nil
	}
	if c.AvailableIn(rctx.Geo.Region) || c.AvailableIn(rctx.Geo.Country) {
		return false, nil
	}
	return true, nil
}

// PriceRangeFilter 按查询的价格区间过滤。区间端点为 0 表示该侧不限制。
type PriceRangeFilter struct{}

func (f *PriceRangeFilter) Name() string { return "filter.price_range" }

func (f *PriceRangeFilter) ShouldFilter(_ context.Context, rctx *core.RankContext, c *core.Candidate) (bool, error) {
	if rctx == nil || rctx.Query == nil {
		return false, nil
	}
	q := rctx.Query
	if q.PriceMin > 0 && c.Price < q.PriceMin {
		return true, nil
	}
	if q.PriceMax > 0 && c.Price > q.PriceMax {
		return true, nil
	}
	return false, nil
}
