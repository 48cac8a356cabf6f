package rank

import (
	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/scorer"
)

// EffectiveWeights 按结构性缺失重分配类别权重：
// 无用户画像 ⇒ 个性化不适用，无地理上下文 ⇒ 地域不适用；
// 不适用类别的权重按比例摊给其余类别，总和保持 1.0 ——
// 缺可选上下文的请求不应吃隐性降分。
func EffectiveWeights(w core.Weights, hasUser, hasGeo bool) core.Weights {
	if !hasUser {
		w.Personalization = 0
	}
	if !hasGeo {
		w.Geographic = 0
	}

	sum := w.Sum()
	if sum <= 0 {
		// 变体把全部权重压在不适用类别上的退化情形：
		// 回退到始终适用的相似度与商业分均分
		return core.Weights{Similarity: 0.5, Business: 0.5}
	}

	w.Similarity /= sum
	w.Business /= sum
	w.Personalization /= sum
	w.Geographic /= sum
	return w
}

// Combine 把三类打分器的子分归约为类别分，再按生效权重合成最终分。
// weights 必须已经过 EffectiveWeights 处理（总和为 1.0）。
func Combine(
	sim scorer.SimilarityScores,
	biz scorer.BusinessScores,
	pers scorer.PersonalizationScores,
	weights core.Weights,
	sub core.SubWeights,
) *core.ScoreBreakdown {
	b := &core.ScoreBreakdown{
		Similarity:       reduceSimilarity(sim, sub.Similarity),
		Business:         reduceBusiness(biz, sub.Business),
		Personalization:  reducePersonalization(pers, sub.Personalization),
		EffectiveWeights: weights,
	}
	if biz.GeoApplicable {
		b.Geographic = biz.Geographic
	}

	b.Final = weights.Similarity*b.Similarity +
		weights.Business*b.Business +
		weights.Personalization*b.Personalization +
		weights.Geographic*b.Geographic
	return b
}

// reduceSimilarity 对相似度子分做类内加权归约。
// 结构性缺失的子分（向量缺失 ⇒ visual，画像缺失 ⇒ behavioral）
// 被排除于归一化之外，其权重摊给其余子分 —— 与顶层类别的重分配同一规则。
func reduceSimilarity(s scorer.SimilarityScores, w core.SimilaritySubWeights) float64 {
	var score, total float64
	if s.VisualApplicable {
		score += w.Visual * s.Visual
		total += w.Visual
	}
	score += w.Textual * s.Textual
	total += w.Textual
	score += w.Categorical * s.Categorical
	total += w.Categorical
	if s.BehavioralApplicable {
		score += w.Behavioral * s.Behavioral
		total += w.Behavioral
	}
	if total <= 0 {
		return 0
	}
	return score / total
}

// reduceBusiness 对商业子分做类内加权归约。
// 地域子分不在其中：它作为独立顶层类别参与合成（见 Combine）。
func reduceBusiness(s scorer.BusinessScores, w core.BusinessSubWeights) float64 {
	return w.Popularity*s.Popularity +
		w.Stock*s.Stock +
		w.Price*s.Price +
		w.Conversion*s.Conversion
}

// reducePersonalization 对个性化子分做类内加权归约；画像缺失时整类记 0
// （对应权重已在 EffectiveWeights 中重分配）。
func reducePersonalization(s scorer.PersonalizationScores, w core.PersonalizationSubWeights) float64 {
	if !s.Applicable {
		return 0
	}
	return w.Preference*s.Preference +
		w.Behavioral*s.Behavioral +
		w.Session*s.Session +
		w.Temporal*s.Temporal
}
