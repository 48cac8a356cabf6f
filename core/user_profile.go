package core

import (
	"sort"
	"time"
)

// UserProfile 是用户画像的核心抽象。
//
// 一句话定义：用户画像 = 排序链路的"个性化信号源 + 降级开关"
//
// 它不是某一个 Node，而是：
//   - 被 SimilarityScorer（行为子分）与 PersonalizationScorer 共享
//   - 缺失时是完全合法输入：个性化权重被重分配到其余类别
//   - 可以被交互回流持续演进
//
// 设计要点：
//
//	维度          作用
//	类目/品牌频次  偏好匹配、品牌忠诚度
//	价格带        价格偏好匹配
//	设备/时段     会话上下文匹配
//	购买规律      行为模式匹配
type UserProfile struct {
	UserID string

	// 交互历史摘要（长期）
	// key: 类目/品牌，value: 频次
	CategoryViews  map[string]int64
	BrandPurchases map[string]int64

	// 价格偏好带；两者都为 0 表示无偏好
	PreferredPriceMin float64
	PreferredPriceMax float64

	// 会话上下文信号
	DeviceType      string // mobile / desktop / tablet
	ActiveHourStart int    // 活跃时段 [start, end)，24 小时制
	ActiveHourEnd   int

	// 行为模式信号
	PurchaseRegularity float64  // 购买节奏规律性 0-1
	RecentClicks       []string // 最近点击的商品 ID

	// 元数据
	UpdateTime time.Time
}

// NewUserProfile 创建一个新的用户画像。
func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:         userID,
		CategoryViews:  make(map[string]int64),
		BrandPurchases: make(map[string]int64),
		RecentClicks:   make([]string, 0),
		UpdateTime:     time.Now(),
	}
}

// TopCategories 返回按浏览频次降序的前 n 个类目（频次相同时按名称升序，保证确定性）。
func (p *UserProfile) TopCategories(n int) []string {
	if len(p.CategoryViews) == 0 || n <= 0 {
		return nil
	}
	type pair struct {
		name  string
		count int64
	}
	pairs := make([]pair, 0, len(p.CategoryViews))
	for k, v := range p.CategoryViews {
		pairs = append(pairs, pair{name: k, count: v})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].name < pairs[j].name
	})
	if n > len(pairs) {
		n = len(pairs)
	}
	out := make([]string, 0, n)
	for _, pr := range pairs[:n] {
		out = append(out, pr.name)
	}
	return out
}

// BrandLoyalty 返回品牌忠诚度：该品牌购买次数占全部购买次数的比例（0-1）。
func (p *UserProfile) BrandLoyalty(brand string) float64 {
	if len(p.BrandPurchases) == 0 {
		return 0
	}
	var total int64
	for _, v := range p.BrandPurchases {
		total += v
	}
	if total == 0 {
		return 0
	}
	return float64(p.BrandPurchases[brand]) / float64(total)
}

// InPriceBand 判断价格是否落在用户偏好价格带内。未设置价格带时返回 false。
func (p *UserProfile) InPriceBand(price float64) bool {
	if p.PreferredPriceMin == 0 && p.PreferredPriceMax == 0 {
		return false
	}
	if p.PreferredPriceMax > 0 && price > p.PreferredPriceMax {
		return false
	}
	return price >= p.PreferredPriceMin
}

// ActiveAt 判断给定小时（0-23）是否落在用户活跃时段内。
// 支持跨午夜时段（如 22-06）；未设置时段时返回 false。
func (p *UserProfile) ActiveAt(hour int) bool {
	if p.ActiveHourStart == 0 && p.ActiveHourEnd == 0 {
		return false
	}
	if p.ActiveHourStart <= p.ActiveHourEnd {
		return hour >= p.ActiveHourStart && hour < p.ActiveHourEnd
	}
	return hour >= p.ActiveHourStart || hour < p.ActiveHourEnd
}

// AddRecentClick 添加最近点击记录（去重、限长）。
func (p *UserProfile) AddRecentClick(candidateID string, maxSize int) {
	if p.RecentClicks == nil {
		p.RecentClicks = make([]string, 0)
	}
	for _, id := range p.RecentClicks {
		if id == candidateID {
			return
		}
	}
	p.RecentClicks = append(p.RecentClicks, candidateID)
	if maxSize > 0 && len(p.RecentClicks) > maxSize {
		p.RecentClicks = p.RecentClicks[len(p.RecentClicks)-maxSize:]
	}
	p.UpdateTime = time.Now()
}

// AddCategoryView 累积类目浏览频次。
func (p *UserProfile) AddCategoryView(category string) {
	if p.CategoryViews == nil {
		p.CategoryViews = make(map[string]int64)
	}
	p.CategoryViews[category]++
	p.UpdateTime = time.Now()
}

// AddBrandPurchase 累积品牌购买频次。
func (p *UserProfile) AddBrandPurchase(brand string) {
	if p.BrandPurchases == nil {
		p.BrandPurchases = make(map[string]int64)
	}
	p.BrandPurchases[brand]++
	p.UpdateTime = time.Now()
}
