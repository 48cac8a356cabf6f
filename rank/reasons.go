package rank

import "github.com/rushteam/searchkit/scorer"

// reasonCheck 把一个子分映射为一条人类可读的推荐理由。
type reasonCheck struct {
	score float64
	text  string
	// applicable 为 false 的子分不产生理由（如无画像时的行为分）
	applicable bool
}

// reasons 从超过门槛的子分中挑选最多 maxReasons 条理由，
// 优先级固定：相似度 > 商业 > 个性化，类内按子权重重要性排列。
func (e *Engine) reasons(
	sim scorer.SimilarityScores,
	biz scorer.BusinessScores,
	pers scorer.PersonalizationScores,
) []string {
	checks := []reasonCheck{
		// 相似度
		{sim.Visual, "looks similar to your search", sim.VisualApplicable},
		{sim.Textual, "title matches query", true},
		{sim.Categorical, "matches your category", true},
		{sim.Behavioral, "fits your shopping history", sim.BehavioralApplicable},
		// 商业
		{biz.Popularity, "popular and highly rated", true},
		{biz.Stock, "in stock", true},
		{biz.Price, "good price", true},
		{biz.Conversion, "frequently purchased", true},
		{biz.Geographic, "available in your region", biz.GeoApplicable},
		// 个性化
		{pers.Preference, "matches your preferences", pers.Applicable},
		{pers.Behavioral, "matches your buying pattern", pers.Applicable},
		{pers.Session, "fits this session", pers.Applicable},
		{pers.Temporal, "trending right now", pers.Applicable},
	}

	var out []string
	for _, c := range checks {
		if len(out) >= e.maxReasons {
			break
		}
		if c.applicable && c.score > e.reasonThreshold {
			out = append(out, c.text)
		}
	}
	return out
}
