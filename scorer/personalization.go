package scorer

import (
	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/pkg/conv"
)

// PersonalizationScores 是个性化类别的子分数，每项取值 [0,1]。
// 用户画像缺失时四项全零且 Applicable 为 false：
// 个性化权重会被重分配到其余类别，而不是让匿名请求吃隐性降权。
type PersonalizationScores struct {
	Preference float64
	Behavioral float64
	Session    float64
	Temporal   float64

	Applicable bool
}

// 个性化打分的数值常量。产品调参值，非硬性不变量。
const (
	categoryFreqNorm = 10  // 类目交互频次的归一化基准
	neutralFit       = 0.5 // 会话信号缺失时的中性分
	trendingShare    = 0.4 // temporal 中 trending 信号的占比
	seasonalShare    = 0.6 // temporal 中季节信号的占比
)

// Personalization 计算单个候选与用户的个性化对齐度。纯函数，可并发调用。
type Personalization struct {
	Params core.ScoringParams
}

func NewPersonalization(params core.ScoringParams) *Personalization {
	return &Personalization{Params: params}
}

// Score 返回 preference / behavioral / session / temporal 四个子分。
// rctx.User 为 nil 时返回全零（匿名请求是完全合法输入）。
func (s *Personalization) Score(rctx *core.RankContext, c *core.Candidate) PersonalizationScores {
	var out PersonalizationScores
	if rctx == nil || c == nil || rctx.User == nil {
		return out
	}
	user := rctx.User

	out.Preference = s.preference(c, user)
	out.Behavioral = s.behavioral(c, user)
	out.Session = s.session(rctx, c, user)
	out.Temporal = s.temporal(rctx, c)
	out.Applicable = true
	return out
}

// preference 是静态偏好匹配：0.4×类目命中 + 0.3×品牌忠诚 + 0.3×价格带命中。
func (s *Personalization) preference(c *core.Candidate, user *core.UserProfile) float64 {
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

	return clamp01(0.4*categoryHit + 0.3*loyalty + 0.3*bandHit)
}

// behavioral 是行为模式匹配：购买节奏规律性与同类商品交互频次的均匀混合。
func (s *Personalization) behavioral(c *core.Candidate, user *core.UserProfile) float64 {
	freq := capRatio(float64(user.CategoryViews[c.Category]), categoryFreqNorm)
	return clamp01(0.5*clamp01(user.PurchaseRegularity) + 0.5*freq)
}

// session 是会话上下文匹配：0.4×搜索意图 + 0.3×设备习惯 + 0.3×活跃时段。
// 对应 Params 缺失时该信号取中性分 0.5，避免信息不足变成惩罚。
func (s *Personalization) session(rctx *core.RankContext, c *core.Candidate, user *core.UserProfile) float64 {
	intentFit := neutralFit
	if intent, ok := conv.ToString(rctx.Param("intent")); ok && intent != "" {
		if normalize(intent) == normalize(c.Category) || normalize(intent) == normalize(c.SubCategory) {
			intentFit = 1
		} else {
			intentFit = 0
		}
	}

	deviceFit := neutralFit
	if device, ok := conv.ToString(rctx.Param("device_type")); ok && device != "" && user.DeviceType != "" {
		if normalize(device) == normalize(user.DeviceType) {
			deviceFit = 1
		} else {
			deviceFit = 0
		}
	}

	timeFit := neutralFit
	if hour, ok := conv.ToInt(rctx.Param("time_of_day")); ok {
		if user.ActiveAt(hour) {
			timeFit = 1
		} else {
			timeFit = 0
		}
	}

	return clamp01(0.4*intentFit + 0.3*deviceFit + 0.3*timeFit)
}

// temporal 是时效相关性：0.6×应季 + 0.4×当前趋势热度。
// 应季判定依赖请求参数 month（1-12），以保证同输入同输出的确定性。
func (s *Personalization) temporal(rctx *core.RankContext, c *core.Candidate) float64 {
	var seasonal float64
	if month, ok := conv.ToInt(rctx.Param("month")); ok && month >= 1 && month <= 12 {
		season := seasonOf(month)
		for _, tag := range c.Tags {
			if normalize(tag) == season {
				seasonal = 1
				break
			}
		}
	}

	trending := clamp01(c.PopularityScore)

	return clamp01(seasonalShare*seasonal + trendingShare*trending)
}

// seasonOf 返回北半球季节名（用于匹配商品的季节标签）。
func seasonOf(month int) string {
	switch month {
	case 12, 1, 2:
		return "winter"
	case 3, 4, 5:
		return "spring"
	case 6, 7, 8:
		return "summer"
	default:
		return "fall"
	}
}
