package rule

import (
	"context"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/pipeline"
)

// Node 把规则引擎包装为 pipeline.Node，通常放在 rank.engine 之后。
type Node struct {
	Engine *Engine
}

func (n *Node) Name() string        { return "rule.boost" }
func (n *Node) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *Node) Process(
	ctx context.Context,
	rctx *core.RankContext,
	results []*core.Result,
) ([]*core.Result, error) {
	if n.Engine == nil {
		return results, nil
	}
	return n.Engine.Apply(ctx, rctx, results)
}
