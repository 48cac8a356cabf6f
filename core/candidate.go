package core

import "github.com/rushteam/searchkit/pkg/utils"

// Candidate 是一个待排序的商品候选：由上游（向量索引 / 商品目录）召回后传入。
// 排序引擎只读取 Candidate，不修改、不持久化；所有打分结果写入 Result。
type Candidate struct {
	ID string

	// 文本字段
	Title       string
	Description string
	Brand       string
	Category    string
	SubCategory string
	Tags        []string

	// Vector 是商品的稠密向量，与 QueryContext.Vector 处于同一 embedding 空间。
	// 维度对引擎透明，但同一部署内必须一致。
	Vector []float64

	// 商业属性
	Price            float64
	OriginalPrice    float64
	CategoryAvgPrice float64 // 同类目均价，用于价格竞争力计算
	StockQuantity    int
	Backorderable    bool // 库存为 0 但可预订

	// 热度与口碑
	PopularityScore float64 // 0-1
	ViewCount       int64
	PurchaseCount   int64
	Rating          float64 // 0-5
	ReviewCount     int64

	// 转化表现
	ConversionRate float64
	AddToCartRate  float64
	ReturnRate     float64

	// 地域属性（可选）
	Regions      []string // 可售区域
	ShippingCost float64
	ShippingDays int
	LocalTrend   float64 // 本地热度趋势 0-1

	// Meta 承载业务自定义属性，引擎不理解其语义
	Meta map[string]any
}

// AvailableIn 判断商品是否在指定区域可售。Regions 为空视为全球可售。
func (c *Candidate) AvailableIn(region string) bool {
	if len(c.Regions) == 0 {
		return true
	}
	for _, r := range c.Regions {
		if r == region {
			return true
		}
	}
	return false
}

// Discount 返回折扣比例（0-1）。无原价或原价不高于现价时返回 0。
func (c *Candidate) Discount() float64 {
	if c.OriginalPrice <= 0 || c.OriginalPrice <= c.Price {
		return 0
	}
	return (c.OriginalPrice - c.Price) / c.OriginalPrice
}

// Result 是排序链路中的统一承载结构：候选、最终分、分数拆解、标签。
// Labels 用于解释与策略驱动；Score 与 Breakdown 用于排序决策与 UI 展示。
type Result struct {
	Candidate *Candidate             `json:"candidate"`
	Score     float64                `json:"score"`
	Breakdown *ScoreBreakdown        `json:"breakdown,omitempty"`
	Labels    map[string]utils.Label `json:"labels,omitempty"`
}

func NewResult(c *Candidate) *Result {
	return &Result{
		Candidate: c,
		Labels:    make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (r *Result) PutLabel(key string, lbl utils.Label) {
	if r.Labels == nil {
		r.Labels = make(map[string]utils.Label)
	}
	if old, ok := r.Labels[key]; ok {
		r.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	r.Labels[key] = lbl
}
