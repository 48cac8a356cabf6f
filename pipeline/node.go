package pipeline

import (
	"context"

	"github.com/rushteam/searchkit/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindFilter      Kind = "filter"      // 过滤阶段：剔除不符合约束的候选
	KindRank        Kind = "rank"        // 排序阶段：多信号打分并排序
	KindReRank      Kind = "rerank"      // 重排阶段：截断/多样性/规则调优
	KindPostProcess Kind = "postprocess" // 后处理阶段：补充标签或最终结果修饰
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 results -> 输出 results”的形态，方便过滤截断、重排、规则调权等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RankContext,
		results []*core.Result,
	) ([]*core.Result, error)
}

// Hook 在每个 Node 前后插入横切逻辑（埋点、曝光记录、观测）。
// AfterNode 在 Node 出错时也会被调用，err 为该 Node 返回的错误。
type Hook interface {
	BeforeNode(ctx context.Context, rctx *core.RankContext, node Node, results []*core.Result) ([]*core.Result, error)
	AfterNode(ctx context.Context, rctx *core.RankContext, node Node, results []*core.Result, err error) ([]*core.Result, error)
}
