// Package scorer 实现三类独立打分器：相似度、商业价值、个性化。
//
// 设计要点：
//   - 打分器是输入的纯函数，不持有跨请求可变状态，可被多请求并发调用
//   - 缺失输入只会让对应子分退化为 0，绝不让整个排序请求失败
//   - 所有数值常量来自 core.ScoringParams，是产品调参值而非硬性不变量
package scorer

import (
	"math"
	"strings"
	"unicode"
)

// clamp01 把分数限制在 [0,1]。
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// cosine 计算两个向量的余弦相似度。维度不一致或任一为零向量时返回 (0, false)。
func cosine(a, b []float64) (float64, bool) {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}

// logistic 是余弦相似度的压缩函数：1 / (1 + e^(-k*(x-mid)))。
// embedding 空间的余弦值聚集在均值附近，线性打分区分度不足；
// 压缩后近重复向量趋向 1，无关向量趋向 0。
func logistic(x, steepness, midpoint float64) float64 {
	return 1 / (1 + math.Exp(-steepness*(x-midpoint)))
}

// tokenize 归一化并切分文本：小写化，按非字母数字切分，去空。
func tokenize(s string) []string {
	s = strings.ToLower(s)
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// tokenSet 把 token 列表转为集合。
func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// jaccard 计算两个 token 集合的 Jaccard 相似度。任一为空时返回 0。
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// normalize 返回小写、去首尾空白的字符串，用于类目/品牌等字段的宽松比较。
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
