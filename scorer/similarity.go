package scorer

import (
	"strings"

	"github.com/rushteam/searchkit/core"
)

// SimilarityScores 是相似度类别的子分数，每项取值 [0,1]。
// VisualApplicable / BehavioralApplicable 标记子分是否结构性缺失：
// 缺失的子分在类内归约时被排除于权重归一化之外，而不是以 0 参与拉低类别分。
type SimilarityScores struct {
	Visual      float64
	Textual     float64
	Categorical float64
	Behavioral  float64

	VisualApplicable     bool // 查询与候选向量齐备
	BehavioralApplicable bool // 用户画像存在
}

// Similarity 计算查询与单个候选之间的相似度子分。
// 纯函数，无跨请求状态；任何缺失字段只会让对应子分记 0，绝不报错。
type Similarity struct {
	Params core.ScoringParams
}

func NewSimilarity(params core.ScoringParams) *Similarity {
	return &Similarity{Params: params}
}

// Score 返回 visual / textual / categorical / behavioral 四个子分。
func (s *Similarity) Score(query *core.QueryContext, c *core.Candidate, user *core.UserProfile) SimilarityScores {
	var out SimilarityScores
	if query == nil || c == nil {
		return out
	}

	out.Visual, out.VisualApplicable = s.visual(query, c)
	out.Textual = s.textual(query, c)
	out.Categorical = s.categorical(query, c)
	if user != nil {
		out.Behavioral = s.behavioral(c, user)
		out.BehavioralApplicable = true
	}
	return out
}

// visual 是余弦相似度经 logistic 压缩后的视觉分。
// 任一向量缺失时返回 (0, false)，该子分被排除于类内归一化。
func (s *Similarity) visual(query *core.QueryContext, c *core.Candidate) (float64, bool) {
	cos, ok := cosine(query.Vector, c.Vector)
	if !ok {
		return 0, false
	}
	return clamp01(logistic(cos, s.Params.LogisticSteepness, s.Params.LogisticMidpoint)), true
}

// textual 是查询词与标题+描述的 token 集合 Jaccard 相似度，外加三档加法 boost：
//
//	+0.3 查询词是标题子串
//	+0.2 查询词命中品牌
//	+0.1 查询词命中类目
func (s *Similarity) textual(query *core.QueryContext, c *core.Candidate) float64 {
	qnorm := normalize(query.Text)
	if qnorm == "" {
		return 0
	}
	qtokens := tokenSet(tokenize(query.Text))
	dtokens := tokenSet(tokenize(c.Title + " " + c.Description))

	score := jaccard(qtokens, dtokens)

	if title := normalize(c.Title); title != "" && strings.Contains(title, qnorm) {
		score += 0.3
	}
	if s.matchesField(qnorm, qtokens, c.Brand) {
		score += 0.2
	}
	if s.matchesField(qnorm, qtokens, c.Category) {
		score += 0.1
	}
	return clamp01(score)
}

// matchesField 判断查询是否命中字段：整词相等，或字段 token 全部出现在查询 token 中。
func (s *Similarity) matchesField(qnorm string, qtokens map[string]struct{}, field string) bool {
	fnorm := normalize(field)
	if fnorm == "" {
		return false
	}
	if qnorm == fnorm {
		return true
	}
	ftokens := tokenize(field)
	if len(ftokens) == 0 {
		return false
	}
	for _, t := range ftokens {
		if _, ok := qtokens[t]; !ok {
			return false
		}
	}
	return true
}

// categorical 是类目/标签匹配分：
//
//	+0.4 目标类目与候选类目精确匹配
//	+0.3 目标类目与候选子类目匹配
//	+0.1/个 标签命中查询 token，封顶 +0.3
func (s *Similarity) categorical(query *core.QueryContext, c *core.Candidate) float64 {
	var score float64

	target := normalize(query.Category)
	if target != "" {
		if target == normalize(c.Category) {
			score += 0.4
		} else if target == normalize(c.SubCategory) {
			score += 0.3
		}
	}

	qtokens := tokenSet(tokenize(query.Text))
	var tagBoost float64
	for _, tag := range c.Tags {
		if _, ok := qtokens[normalize(tag)]; ok {
			tagBoost += 0.1
		}
	}
	if tagBoost > 0.3 {
		tagBoost = 0.3
	}
	return clamp01(score + tagBoost)
}

// behavioral 是用户历史行为与候选的对齐度：
//
//	0.40 候选类目是否在用户高频类目里
//	0.35 品牌忠诚度（该品牌购买占比）
//	0.25 价格是否落在用户偏好价格带
func (s *Similarity) behavioral(c *core.Candidate, user *core.UserProfile) float64 {
	var categoryHit float64
	for _, cat := range user.TopCategories(3) {
		if normalize(cat) == normalize(c.Category) {
			categoryHit = 1
			break
		}
	}

	loyalty := user.BrandLoyalty(c.Brand)

	var bandHit float64
	if user.InPriceBand(c.Price) {
		bandHit = 1
	}

	return clamp01(0.40*categoryHit + 0.35*loyalty + 0.25*bandHit)
}
