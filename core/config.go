package core

import (
	"fmt"
	"math"
	"time"
)

// WeightEpsilon 是权重求和校验的容差。
const WeightEpsilon = 1e-6

// Weights 是类别权重向量：similarity / business / personalization / geographic，
// 每项取值 [0,1]，四项之和必须为 1.0 ± WeightEpsilon。
// 校验失败属于配置错误，在启动期失败，绝不发生在请求期。
type Weights struct {
	Similarity      float64 `yaml:"similarity" json:"similarity"`
	Business        float64 `yaml:"business" json:"business"`
	Personalization float64 `yaml:"personalization" json:"personalization"`
	Geographic      float64 `yaml:"geographic" json:"geographic"`
}

// Sum 返回四项权重之和。
func (w Weights) Sum() float64 {
	return w.Similarity + w.Business + w.Personalization + w.Geographic
}

// Validate 校验权重：无负值且求和为 1.0。
func (w Weights) Validate() error {
	for _, v := range []float64{w.Similarity, w.Business, w.Personalization, w.Geographic} {
		if v < 0 {
			return NewDomainError(ModuleConfig, ErrorCodeInvalidConfig,
				fmt.Sprintf("config: negative weight %v", v))
		}
	}
	if math.Abs(w.Sum()-1.0) > WeightEpsilon {
		return NewDomainError(ModuleConfig, ErrorCodeInvalidConfig,
			fmt.Sprintf("config: weights sum to %v, want 1.0", w.Sum()))
	}
	return nil
}

// Variant 是一个命名的排序算法变体：固定的类别权重向量 + 实验流量占比。
// 变体集合是静态配置，不在运行期派生。
type Variant struct {
	Name    string  `yaml:"name" json:"name"`
	Weights Weights `yaml:"weights" json:"weights"`

	// Proportion 是该变体的实验流量占比；全部为 0 时按等比切分。
	Proportion float64 `yaml:"proportion" json:"proportion"`
}

// SimilaritySubWeights 是相似度类别内部的子权重（visual/textual/categorical/behavioral）。
type SimilaritySubWeights struct {
	Visual      float64 `yaml:"visual" json:"visual"`
	Textual     float64 `yaml:"textual" json:"textual"`
	Categorical float64 `yaml:"categorical" json:"categorical"`
	Behavioral  float64 `yaml:"behavioral" json:"behavioral"`
}

func (w SimilaritySubWeights) Sum() float64 {
	return w.Visual + w.Textual + w.Categorical + w.Behavioral
}

// BusinessSubWeights 是商业分类别内部的子权重。
// 地域子分不在其中：地域作为独立的顶层类别参与加权（见 Weights.Geographic）。
type BusinessSubWeights struct {
	Popularity float64 `yaml:"popularity" json:"popularity"`
	Stock      float64 `yaml:"stock" json:"stock"`
	Price      float64 `yaml:"price" json:"price"`
	Conversion float64 `yaml:"conversion" json:"conversion"`
}

func (w BusinessSubWeights) Sum() float64 {
	return w.Popularity + w.Stock + w.Price + w.Conversion
}

// PersonalizationSubWeights 是个性化类别内部的子权重。
type PersonalizationSubWeights struct {
	Preference float64 `yaml:"preference" json:"preference"`
	Behavioral float64 `yaml:"behavioral" json:"behavioral"`
	Session    float64 `yaml:"session" json:"session"`
	Temporal   float64 `yaml:"temporal" json:"temporal"`
}

func (w PersonalizationSubWeights) Sum() float64 {
	return w.Preference + w.Behavioral + w.Session + w.Temporal
}

// SubWeights 汇总各类别的类内子权重，每组之和必须为 1.0。
type SubWeights struct {
	Similarity      SimilaritySubWeights      `yaml:"similarity" json:"similarity"`
	Business        BusinessSubWeights        `yaml:"business" json:"business"`
	Personalization PersonalizationSubWeights `yaml:"personalization" json:"personalization"`
}

// Validate 校验各组子权重求和为 1.0。
func (w SubWeights) Validate() error {
	for name, sum := range map[string]float64{
		"similarity":      w.Similarity.Sum(),
		"business":        w.Business.Sum(),
		"personalization": w.Personalization.Sum(),
	} {
		if math.Abs(sum-1.0) > WeightEpsilon {
			return NewDomainError(ModuleConfig, ErrorCodeInvalidConfig,
				fmt.Sprintf("config: %s sub-weights sum to %v, want 1.0", name, sum))
		}
	}
	return nil
}

// ScoringParams 汇总打分函数的数值常量。
// 这些是产品调参值而非硬性不变量，默认值来自线上调优结果，允许按部署覆盖。
type ScoringParams struct {
	// LogisticSteepness / LogisticMidpoint 控制余弦相似度的 logistic 压缩：
	// 1 / (1 + e^(-k*(cos-mid)))。embedding 空间的余弦分布聚集在均值附近，
	// 线性打分区分度不足，需要这个非线性拉开差距。
	LogisticSteepness float64 `yaml:"logistic_steepness" json:"logistic_steepness"`
	LogisticMidpoint  float64 `yaml:"logistic_midpoint" json:"logistic_midpoint"`

	// 热度归一化上限
	ViewCap     float64 `yaml:"view_cap" json:"view_cap"`
	PurchaseCap float64 `yaml:"purchase_cap" json:"purchase_cap"`
	ReviewCap   float64 `yaml:"review_cap" json:"review_cap"`

	// 转化率归一化基准
	ConversionRateNorm float64 `yaml:"conversion_rate_norm" json:"conversion_rate_norm"`
	AddToCartRateNorm  float64 `yaml:"add_to_cart_rate_norm" json:"add_to_cart_rate_norm"`
	ReturnRateNorm     float64 `yaml:"return_rate_norm" json:"return_rate_norm"`
}

// Validate 校验打分常量均为正数。
func (p ScoringParams) Validate() error {
	for name, v := range map[string]float64{
		"logistic_steepness":    p.LogisticSteepness,
		"view_cap":              p.ViewCap,
		"purchase_cap":          p.PurchaseCap,
		"review_cap":            p.ReviewCap,
		"conversion_rate_norm":  p.ConversionRateNorm,
		"add_to_cart_rate_norm": p.AddToCartRateNorm,
		"return_rate_norm":      p.ReturnRateNorm,
	} {
		if v <= 0 {
			return NewDomainError(ModuleConfig, ErrorCodeInvalidConfig,
				fmt.Sprintf("config: scoring param %s must be positive, got %v", name, v))
		}
	}
	return nil
}

// TrackerParams 是实验指标聚合的配置。
type TrackerParams struct {
	// Retention 是事件保留窗口；聚合时窗口外事件被忽略并可被清理。
	Retention time.Duration `yaml:"retention" json:"retention"`

	// MinSamples 是 Recommend 参与比较所需的最小曝光事件数，避免在噪声上推荐。
	MinSamples int64 `yaml:"min_samples" json:"min_samples"`
}

// Validate 校验追踪配置。
func (p TrackerParams) Validate() error {
	if p.Retention <= 0 {
		return NewDomainError(ModuleConfig, ErrorCodeInvalidConfig,
			"config: tracker retention must be positive")
	}
	if p.MinSamples < 0 {
		return NewDomainError(ModuleConfig, ErrorCodeInvalidConfig,
			"config: tracker min_samples must not be negative")
	}
	return nil
}
