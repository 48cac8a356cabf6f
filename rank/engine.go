// Package rank 实现多信号排序引擎：按请求解析实验变体，
// 对候选集并发执行三类打分器，按变体权重合成最终分并输出可解释的排序结果。
package rank

import (
	"context"
	"runtime"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/experiment"
	"github.com/rushteam/searchkit/pkg/utils"
	"github.com/rushteam/searchkit/scorer"
)

// Engine 是排序引擎。构造后只读，可被多请求并发调用；
// 除注入的 Selector（启动后只读）外不持有任何共享可变状态。
type Engine struct {
	similarity      *scorer.Similarity
	business        *scorer.Business
	personalization *scorer.Personalization
	selector        *experiment.Selector

	subWeights      core.SubWeights
	reasonThreshold float64
	maxReasons      int
	maxConcurrent   int
	logger          zerolog.Logger
}

// Option 是 Engine 的可选配置。
type Option func(*Engine)

// WithLogger 注入日志器（默认丢弃日志）。
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMaxConcurrent 设置单次请求的候选打分并发上限（默认 CPU 核数）。
func WithMaxConcurrent(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxConcurrent = n
		}
	}
}

// WithReasonPolicy 设置推荐理由的子分门槛与条数上限。
func WithReasonPolicy(threshold float64, max int) Option {
	return func(e *Engine) {
		e.reasonThreshold = threshold
		e.maxReasons = max
	}
}

// NewEngine 创建排序引擎。变体表 / 子权重 / 打分常量任一不合法时
// 返回 INVALID_CONFIG —— 配置错误只在启动期暴露，绝不留到请求期。
func NewEngine(variants []core.Variant, subWeights core.SubWeights, scoring core.ScoringParams, opts ...Option) (*Engine, error) {
	selector, err := experiment.NewSelector(variants)
	if err != nil {
		return nil, err
	}
	if err := subWeights.Validate(); err != nil {
		return nil, err
	}
	if err := scoring.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		similarity:      scorer.NewSimilarity(scoring),
		business:        scorer.NewBusiness(scoring),
		personalization: scorer.NewPersonalization(scoring),
		selector:        selector,
		subWeights:      subWeights,
		reasonThreshold: 0.5,
		maxReasons:      3,
		maxConcurrent:   runtime.NumCPU(),
		logger:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Selector 返回引擎使用的变体选择器（供埋点方查询变体表）。
func (e *Engine) Selector() *experiment.Selector {
	return e.selector
}

// Rank 对候选集执行一次完整排序。
//
// 语义：
//   - 输出顺序是 (query, candidates, variant, user, geo) 的纯函数：
//     同输入必同输出，分数相同时按候选 ID 升序，保证实验可复现
//   - User/Geo 缺失不是错误：对应类别权重按比例重分配到其余类别
//   - ctx 截止期到达后放弃未打分的候选，返回已打分子集 ——
//     对在线搜索来说部分结果严格优于整次失败
//   - 空候选列表返回空结果；唯一会被拒绝的输入是 Query 缺失
//
// 解析出的变体名会写回 rctx.Variant，供调用方埋点使用。
func (e *Engine) Rank(ctx context.Context, rctx *core.RankContext, candidates []*core.Candidate) ([]*core.Result, error) {
	if rctx == nil || rctx.Query == nil {
		return nil, core.ErrMissingQuery
	}

	variant := e.selector.Resolve(rctx)
	rctx.Variant = variant.Name

	weights := EffectiveWeights(variant.Weights, rctx.User != nil, rctx.Geo != nil)

	if len(candidates) == 0 {
		return []*core.Result{}, nil
	}

	// 候选之间无数据依赖，按固定下标写入避免锁竞争与顺序抖动
	slots := make([]*core.Result, len(candidates))

	eg := &errgroup.Group{}
	sem := make(chan struct{}, e.maxConcurrent)
	for i, c := range candidates {
		i, c := i, c
		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			// 截止期已过则放弃该候选，保留已完成的部分结果
			select {
			case <-ctx.Done():
				return nil
			default:
			}

			slots[i] = e.scoreCandidate(rctx, c, weights)
			return nil
		})
	}
	_ = eg.Wait()

	results := make([]*core.Result, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			results = append(results, r)
		}
	}
	if len(results) < len(candidates) {
		e.logger.Debug().
			Str("variant", variant.Name).
			Int("scored", len(results)).
			Int("total", len(candidates)).
			Msg("deadline reached, returning partial ranking")
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Candidate.ID < results[j].Candidate.ID
	})
	return results, nil
}

// scoreCandidate 对单个候选执行三类打分并合成最终分。
// 打分器对缺失字段一律记 0 而非报错：单个坏候选绝不拖垮整页结果。
func (e *Engine) scoreCandidate(rctx *core.RankContext, c *core.Candidate, weights core.Weights) *core.Result {
	if c == nil {
		return nil
	}

	sim := e.similarity.Score(rctx.Query, c, rctx.User)
	biz := e.business.Score(c, rctx.Geo)
	pers := e.personalization.Score(rctx, c)

	breakdown := Combine(sim, biz, pers, weights, e.subWeights)
	breakdown.Reasons = e.reasons(sim, biz, pers)

	r := core.NewResult(c)
	r.Score = breakdown.Final
	r.Breakdown = breakdown
	r.PutLabel("variant", utils.Label{Value: rctx.Variant, Source: "rank"})
	for _, reason := range breakdown.Reasons {
		r.PutLabel("reason", utils.Label{Value: reason, Source: "rank"})
	}
	return r
}
