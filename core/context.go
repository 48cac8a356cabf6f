package core

import "github.com/rushteam/searchkit/pkg/utils"

// QueryContext 是一次搜索请求的查询输入，请求期间不可变。
// Text 与 Vector 均为可选，但至少应有其一；二者都缺失时相似度各子分退化为 0。
type QueryContext struct {
	// Text 是用户输入的查询词（可为空，纯以图搜场景）
	Text string

	// Vector 是查询的稠密向量（由外部 embedding 服务产出，可为空）
	Vector []float64

	// 可选的目标过滤条件
	Category string
	PriceMin float64
	PriceMax float64
}

// GeoContext 承载请求方的地理信息，仅供商业分的地域子项使用。
type GeoContext struct {
	Country string
	Region  string
}

// RankContext 承载一次排序请求的用户/会话/场景信息，贯穿整个链路透传。
// Query 必填；User / Geo 可选，缺失时按权重重分配规则优雅降级。
type RankContext struct {
	SessionID string
	UserID    string
	Scene     string

	Query *QueryContext

	// User 是强类型用户画像，可为 nil（匿名请求）
	User *UserProfile

	// Geo 可为 nil，此时地域权重被重分配
	Geo *GeoContext

	// Variant 指定实验变体名；为空时由 Selector 按 SessionID/UserID 哈希分桶
	Variant string

	// Labels 是请求级标签，可驱动链路行为（新用户、价格敏感等）
	Labels map[string]utils.Label

	// Params 请求级上下文参数：time_of_day, device_type, intent 等
	Params map[string]any
}

// AssignKey 返回分桶使用的稳定 key：优先 SessionID，其次 UserID。
// 同一 key 在配置不变期间永远命中同一变体，保证实验曝光一致。
func (rctx *RankContext) AssignKey() string {
	if rctx.SessionID != "" {
		return rctx.SessionID
	}
	return rctx.UserID
}

// Param 按 key 取请求参数，取不到时返回 nil。
func (rctx *RankContext) Param(key string) any {
	if rctx.Params == nil {
		return nil
	}
	return rctx.Params[key]
}

// PutLabel 写入请求级 Label。
func (rctx *RankContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}
