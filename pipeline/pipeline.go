package pipeline

import (
	"context"

	"github.com/rushteam/searchkit/core"
)

// Pipeline 是 searchkit 的核心抽象：把排序链路拆成可组合的 Node 链
// （Rank → ReRank → PostProcess），Hooks 在每个 Node 前后执行横切逻辑。
type Pipeline struct {
	Nodes []Node
	Hooks []Hook
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RankContext,
	results []*core.Result,
) ([]*core.Result, error) {
	cur := results
	for _, node := range p.Nodes {
		var err error
		for _, h := range p.Hooks {
			cur, err = h.BeforeNode(ctx, rctx, node, cur)
			if err != nil {
				return nil, err
			}
		}

		next, err := node.Process(ctx, rctx, cur)

		for _, h := range p.Hooks {
			next, err = h.AfterNode(ctx, rctx, node, next, err)
		}
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// WrapCandidates 把候选列表包装为未打分的 Result 列表，作为 Pipeline 的输入。
func WrapCandidates(candidates []*core.Candidate) []*core.Result {
	out := make([]*core.Result, 0, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		out = append(out, core.NewResult(c))
	}
	return out
}
