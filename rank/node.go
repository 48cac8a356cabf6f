package rank

import (
	"context"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/pipeline"
)

// Node 把 Engine 包装为 pipeline.Node，使排序引擎可以与
// 截断/多样性/规则节点组合成完整的搜索结果链路。
type Node struct {
	Engine *Engine
}

func (n *Node) Name() string        { return "rank.engine" }
func (n *Node) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *Node) Process(
	ctx context.Context,
	rctx *core.RankContext,
	results []*core.Result,
) ([]*core.Result, error) {
	if n.Engine == nil || len(results) == 0 {
		return results, nil
	}

	candidates := make([]*core.Candidate, 0, len(results))
	for _, r := range results {
		if r == nil || r.Candidate == nil {
			continue
		}
		candidates = append(candidates, r.Candidate)
	}
	return n.Engine.Rank(ctx, rctx, candidates)
}
