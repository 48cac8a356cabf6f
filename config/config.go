// Package config 提供排序引擎的静态配置：变体集合、类内子权重、打分常量、
// 实验追踪参数。配置在启动期一次性加载并校验，请求期不重读；
// 校验失败立即失败（fail fast），绝不带着劣化的排序质量静默运行。
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/searchkit/core"
)

// 内置变体名。至少这五个变体开箱可用。
const (
	VariantSimilarityFirst = "similarity_first"
	VariantBusinessFirst   = "business_first"
	VariantBalanced        = "balanced"
	VariantPersonalized    = "personalized"
	VariantGeographic      = "geographic"
)

// Config 是排序引擎的全量静态配置。
type Config struct {
	// Variants 是实验变体集合；为空时使用内置五变体等比切分。
	Variants []core.Variant `yaml:"variants" json:"variants"`

	// SubWeights 是各类别的类内子权重（相似度类别 = 0.4×visual + 0.3×textual + ...）。
	SubWeights core.SubWeights `yaml:"sub_weights" json:"sub_weights"`

	// Scoring 是打分函数的数值常量（logistic 陡度、归一化上限等）。
	Scoring core.ScoringParams `yaml:"scoring" json:"scoring"`

	// Tracker 是实验指标聚合配置（保留窗口、最小样本量）。
	Tracker core.TrackerParams `yaml:"tracker" json:"tracker"`

	// ReasonThreshold 是子分进入推荐理由的门槛；MaxReasons 是每个候选的理由上限。
	ReasonThreshold float64 `yaml:"reason_threshold" json:"reason_threshold"`
	MaxReasons      int     `yaml:"max_reasons" json:"max_reasons"`

	// MaxConcurrent 是单次排序请求的候选打分并发上限；0 表示取 CPU 核数。
	MaxConcurrent int `yaml:"max_concurrent" json:"max_concurrent"`
}

// Default 返回内置默认配置（五个变体等比切分，常量取线上调优值）。
func Default() *Config {
	return &Config{
		Variants: DefaultVariants(),
		SubWeights: core.SubWeights{
			Similarity: core.SimilaritySubWeights{
				Visual: 0.4, Textual: 0.3, Categorical: 0.2, Behavioral: 0.1,
			},
			Business: core.BusinessSubWeights{
				Popularity: 0.35, Stock: 0.25, Price: 0.20, Conversion: 0.20,
			},
			Personalization: core.PersonalizationSubWeights{
				Preference: 0.4, Behavioral: 0.2, Session: 0.2, Temporal: 0.2,
			},
		},
		Scoring: core.ScoringParams{
			LogisticSteepness:  10,
			LogisticMidpoint:   0.5,
			ViewCap:            10000,
			PurchaseCap:        1000,
			ReviewCap:          500,
			ConversionRateNorm: 0.20,
			AddToCartRateNorm:  0.30,
			ReturnRateNorm:     0.10,
		},
		Tracker: core.TrackerParams{
			Retention:  7 * 24 * time.Hour,
			MinSamples: 100,
		},
		ReasonThreshold: 0.5,
		MaxReasons:      3,
	}
}

// DefaultVariants 返回内置的五个变体（similarity/business/personalization[/geographic]）。
func DefaultVariants() []core.Variant {
	return []core.Variant{
		{Name: VariantSimilarityFirst, Proportion: 0.2, Weights: core.Weights{
			Similarity: 0.7, Business: 0.2, Personalization: 0.1,
		}},
		{Name: VariantBusinessFirst, Proportion: 0.2, Weights: core.Weights{
			Similarity: 0.3, Business: 0.5, Personalization: 0.2,
		}},
		{Name: VariantBalanced, Proportion: 0.2, Weights: core.Weights{
			Similarity: 0.4, Business: 0.3, Personalization: 0.3,
		}},
		{Name: VariantPersonalized, Proportion: 0.2, Weights: core.Weights{
			Similarity: 0.2, Business: 0.3, Personalization: 0.5,
		}},
		{Name: VariantGeographic, Proportion: 0.2, Weights: core.Weights{
			Similarity: 0.4, Business: 0.2, Personalization: 0.2, Geographic: 0.2,
		}},
	}
}

// LoadFromYAML 从 YAML 文件加载配置。未出现的字段保持 Default 的值。
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromJSON 从 JSON 文件加载配置。未出现的字段保持 Default 的值。
func LoadFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验整份配置，任何一处不合法都返回 INVALID_CONFIG 错误。
// 调用方应在启动期调用并在出错时终止进程。
func (c *Config) Validate() error {
	if len(c.Variants) == 0 {
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig,
			"config: at least one variant is required")
	}

	seen := make(map[string]bool, len(c.Variants))
	var proportionSum float64
	for _, v := range c.Variants {
		if v.Name == "" {
			return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig,
				"config: variant name must not be empty")
		}
		if seen[v.Name] {
			return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig,
				fmt.Sprintf("config: duplicate variant %q", v.Name))
		}
		seen[v.Name] = true

		if err := v.Weights.Validate(); err != nil {
			return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig,
				fmt.Sprintf("config: variant %q: %v", v.Name, err))
		}
		if v.Proportion < 0 {
			return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig,
				fmt.Sprintf("config: variant %q: negative proportion", v.Name))
		}
		proportionSum += v.Proportion
	}
	// 占比要么全为 0（等比切分），要么求和为 1.0
	if proportionSum > 0 && math.Abs(proportionSum-1.0) > core.WeightEpsilon {
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig,
			fmt.Sprintf("config: variant proportions sum to %v, want 1.0", proportionSum))
	}

	if err := c.SubWeights.Validate(); err != nil {
		return err
	}
	if err := c.Scoring.Validate(); err != nil {
		return err
	}
	if err := c.Tracker.Validate(); err != nil {
		return err
	}

	if c.ReasonThreshold < 0 || c.ReasonThreshold > 1 {
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig,
			fmt.Sprintf("config: reason_threshold %v out of [0,1]", c.ReasonThreshold))
	}
	if c.MaxReasons < 0 {
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig,
			"config: max_reasons must not be negative")
	}
	if c.MaxConcurrent < 0 {
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig,
			"config: max_concurrent must not be negative")
	}
	return nil
}

// Variant 按名称取变体。
func (c *Config) Variant(name string) (core.Variant, bool) {
	for _, v := range c.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return core.Variant{}, false
}
