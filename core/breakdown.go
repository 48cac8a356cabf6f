package core

// Category 标记一个信号类别（similarity / business / personalization / geographic）。
type Category string

const (
	CategorySimilarity      Category = "similarity"
	CategoryBusiness        Category = "business"
	CategoryPersonalization Category = "personalization"
	CategoryGeographic      Category = "geographic"
)

// ScoreBreakdown 是单个候选的分数拆解：各类别分（0-1）、最终加权分、
// 以及最多若干条人类可读的推荐理由，用于 UI 解释与离线归因。
// 生命周期限于一次排序调用，引擎不持久化。
type ScoreBreakdown struct {
	Similarity      float64 `json:"similarity"`
	Business        float64 `json:"business"`
	Personalization float64 `json:"personalization"`
	Geographic      float64 `json:"geographic"`

	// EffectiveWeights 是本次请求实际生效的类别权重（重分配之后），
	// 各项之和恒为 1.0，便于复现最终分。
	EffectiveWeights Weights `json:"effective_weights"`

	Final float64 `json:"final"`

	Reasons []string `json:"reasons,omitempty"`
}

// ByCategory 按类别取对应的类别分。
func (b *ScoreBreakdown) ByCategory(c Category) float64 {
	switch c {
	case CategorySimilarity:
		return b.Similarity
	case CategoryBusiness:
		return b.Business
	case CategoryPersonalization:
		return b.Personalization
	case CategoryGeographic:
		return b.Geographic
	}
	return 0
}
