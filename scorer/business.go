package scorer

import "github.com/rushteam/searchkit/core"

// BusinessScores 是商业价值类别的子分数，每项取值 [0,1]。
// Geographic 不参与商业类别的类内归约，而是作为独立顶层类别
// （core.CategoryGeographic）参与最终加权；GeoApplicable 标记其是否生效。
type BusinessScores struct {
	Popularity float64
	Stock      float64
	Price      float64
	Conversion float64
	Geographic float64

	GeoApplicable bool // 请求带 GeoContext
}

// 地域子分的判定阈值。产品调参值，非硬性不变量。
const (
	geoCheapShippingMax = 5.0 // 运费不高于此视为低运费
	geoFastShippingDays = 3   // 时效不超过此天数视为快运
	geoTrendingMin      = 0.5 // 本地热度高于此视为趋势上行
)

// Business 计算单个候选的商业价值子分。纯函数，可并发调用。
type Business struct {
	Params core.ScoringParams
}

func NewBusiness(params core.ScoringParams) *Business {
	return &Business{Params: params}
}

// Score 返回 popularity / stock / price / conversion / geographic 五个子分。
// geo 为 nil 时 geographic 记 0 且不生效（顶层权重被重分配）。
func (s *Business) Score(c *core.Candidate, geo *core.GeoContext) BusinessScores {
	var out BusinessScores
	if c == nil {
		return out
	}

	out.Popularity = s.popularity(c)
	out.Stock = s.stock(c)
	out.Price = s.price(c)
	out.Conversion = s.conversion(c)
	if geo != nil {
		out.Geographic = s.geographic(c, geo)
		out.GeoApplicable = true
	}
	return out
}

// popularity 是热度口碑的加权和：
//
//	popularity_score×0.30 + min(views/cap,1)×0.20 + min(purchases/cap,1)×0.30
//	+ (rating/5)×0.15 + min(reviews/cap,1)×0.05
func (s *Business) popularity(c *core.Candidate) float64 {
	views := capRatio(float64(c.ViewCount), s.Params.ViewCap)
	purchases := capRatio(float64(c.PurchaseCount), s.Params.PurchaseCap)
	reviews := capRatio(float64(c.ReviewCount), s.Params.ReviewCap)
	rating := clamp01(c.Rating / 5)

	return clamp01(0.30*clamp01(c.PopularityScore) +
		0.20*views +
		0.30*purchases +
		0.15*rating +
		0.05*reviews)
}

// stock 是库存档位的阶梯函数。零库存不归零：在榜单被消费前可能补货，
// 刻意保留 0.1 的保底分而不是把商品彻底沉底。
func (s *Business) stock(c *core.Candidate) float64 {
	switch {
	case c.StockQuantity > 50:
		return 1.0
	case c.StockQuantity >= 10:
		return 0.8
	case c.StockQuantity >= 1:
		return 0.6
	case c.StockQuantity == 0 && c.Backorderable:
		return 0.2
	default:
		return 0.1
	}
}

// price 结合折扣力度与相对类目均价的位置：折扣越大、价格越低于均价，分越高。
// 无类目均价时价格位置取中性值 0.5。
func (s *Business) price(c *core.Candidate) float64 {
	discount := c.Discount()

	position := 0.5
	if c.CategoryAvgPrice > 0 {
		// 均价 → 0.5，免费 → 1.0，两倍均价 → 0.0
		position = clamp01(0.5 + 0.5*(c.CategoryAvgPrice-c.Price)/c.CategoryAvgPrice)
	}

	return clamp01(0.5*discount + 0.5*position)
}

// conversion 是转化表现分：
//
//	conversion_rate/norm×0.5 + add_to_cart_rate/norm×0.3 + max(0, 1−return_rate/norm)×0.2
func (s *Business) conversion(c *core.Candidate) float64 {
	cr := c.ConversionRate / s.Params.ConversionRateNorm
	atc := c.AddToCartRate / s.Params.AddToCartRateNorm
	rr := 1 - c.ReturnRate/s.Params.ReturnRateNorm
	if rr < 0 {
		rr = 0
	}
	return clamp01(0.5*cr + 0.3*atc + 0.2*rr)
}

// geographic 是地域相关性分（仅 geo 非空时计算）：
//
//	+0.3 区域可售；+0.1 低运费；+0.1 快运；+0.1 本地趋势上行
func (s *Business) geographic(c *core.Candidate, geo *core.GeoContext) float64 {
	var score float64
	if c.AvailableIn(geo.Region) || c.AvailableIn(geo.Country) {
		score += 0.3
	}
	if c.ShippingCost <= geoCheapShippingMax {
		score += 0.1
	}
	if c.ShippingDays > 0 && c.ShippingDays <= geoFastShippingDays {
		score += 0.1
	}
	if c.LocalTrend >= geoTrendingMin {
		score += 0.1
	}
	return clamp01(score)
}

// capRatio 返回 min(v/cap, 1)，cap 非正时返回 0。
func capRatio(v, cap float64) float64 {
	if cap <= 0 || v <= 0 {
		return 0
	}
	r := v / cap
	if r > 1 {
		return 1
	}
	return r
}
