// Package experiment 实现 A/B 实验的两个构件：
//   - Selector：把请求确定性地分配到某个排序算法变体（分桶）
//   - Tracker：记录曝光/点击/购买事件并按变体聚合在线指标
package experiment

import (
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/rushteam/searchkit/core"
)

// assignSpace 是哈希映射到 [0,1) 的离散空间大小。
// 取 1e6 使占比精度达到 0.0001%，远小于任何现实的流量切分粒度。
const assignSpace = 1_000_000

// Selector 把 session/user id 确定性地映射到实验变体：
// 同一 id 在配置不变期间永远命中同一变体，保证实验曝光一致。
//
// 构造后只读，可被多请求并发调用；变体表是静态配置而非运行期状态。
type Selector struct {
	variants []core.Variant
	bounds   []float64 // 各变体在 [0,1) 上的累积上界
}

// NewSelector 按变体配置构建 Selector。
// 配置不合法（空表、重名、权重求和不为 1、占比非法）立即返回 INVALID_CONFIG。
func NewSelector(variants []core.Variant) (*Selector, error) {
	if len(variants) == 0 {
		return nil, core.NewDomainError(core.ModuleExperiment, core.ErrorCodeInvalidConfig,
			"experiment: at least one variant is required")
	}

	seen := make(map[string]bool, len(variants))
	var proportionSum float64
	for _, v := range variants {
		if v.Name == "" {
			return nil, core.NewDomainError(core.ModuleExperiment, core.ErrorCodeInvalidConfig,
				"experiment: variant name must not be empty")
		}
		if seen[v.Name] {
			return nil, core.NewDomainError(core.ModuleExperiment, core.ErrorCodeInvalidConfig,
				fmt.Sprintf("experiment: duplicate variant %q", v.Name))
		}
		seen[v.Name] = true
		if err := v.Weights.Validate(); err != nil {
			return nil, core.NewDomainError(core.ModuleExperiment, core.ErrorCodeInvalidConfig,
				fmt.Sprintf("experiment: variant %q: %v", v.Name, err))
		}
		if v.Proportion < 0 {
			return nil, core.NewDomainError(core.ModuleExperiment, core.ErrorCodeInvalidConfig,
				fmt.Sprintf("experiment: variant %q: negative proportion", v.Name))
		}
		proportionSum += v.Proportion
	}
	if proportionSum > 0 && math.Abs(proportionSum-1.0) > core.WeightEpsilon {
		return nil, core.NewDomainError(core.ModuleExperiment, core.ErrorCodeInvalidConfig,
			fmt.Sprintf("experiment: variant proportions sum to %v, want 1.0", proportionSum))
	}

	// 占比全为 0 时等比切分
	bounds := make([]float64, len(variants))
	acc := 0.0
	for i, v := range variants {
		share := v.Proportion
		if proportionSum == 0 {
			share = 1.0 / float64(len(variants))
		}
		acc += share
		bounds[i] = acc
	}
	// 吸收浮点累积误差，保证最后一个桶覆盖到 1.0
	bounds[len(bounds)-1] = 1.0

	cp := make([]core.Variant, len(variants))
	copy(cp, variants)
	return &Selector{variants: cp, bounds: bounds}, nil
}

// Assign 把 id 确定性地映射到一个变体。
// 空 id（无 session 也无 user）落入第一个变体，同样是确定性行为。
func (s *Selector) Assign(id string) core.Variant {
	if id == "" {
		return s.variants[0]
	}
	u := float64(xxhash.Sum64String(id)%assignSpace) / assignSpace
	for i, bound := range s.bounds {
		if u < bound {
			return s.variants[i]
		}
	}
	return s.variants[len(s.variants)-1]
}

// Resolve 返回请求应使用的变体：rctx.Variant 显式指定且存在时优先，
// 否则按 AssignKey（SessionID 优先于 UserID）哈希分桶。
func (s *Selector) Resolve(rctx *core.RankContext) core.Variant {
	if rctx != nil && rctx.Variant != "" {
		if v, ok := s.Variant(rctx.Variant); ok {
			return v
		}
	}
	key := ""
	if rctx != nil {
		key = rctx.AssignKey()
	}
	return s.Assign(key)
}

// Variant 按名称取变体。
func (s *Selector) Variant(name string) (core.Variant, bool) {
	for _, v := range s.variants {
		if v.Name == name {
			return v, true
		}
	}
	return core.Variant{}, false
}

// Variants 返回全部变体（副本，调用方修改不影响 Selector）。
func (s *Selector) Variants() []core.Variant {
	cp := make([]core.Variant, len(s.variants))
	copy(cp, s.variants)
	return cp
}
