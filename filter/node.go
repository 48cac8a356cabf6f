package filter

import (
	"context"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/pipeline"
	"github.com/rushteam/searchkit/pkg/utils"
)

// FilterNode 是过滤 Node，可以组合多个过滤器。
// 任何一个过滤器返回 true，该候选就被移除；
// 单个过滤器出错只跳过该过滤器，不让整页结果失败。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string {
	return "filter"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RankContext,
	results []*core.Result,
) ([]*core.Result, error) {
	if len(n.Filters) == 0 || len(results) == 0 {
		return results, nil
	}

	out := make([]*core.Result, 0, len(results))
	for _, r := range results {
		if r == nil || r.Candidate == nil {
			continue
		}

		filtered := false
		for _, f := range n.Filters {
			hit, err := f.ShouldFilter(ctx, rctx, r.Candidate)
			if err != nil {
				continue
			}
			if hit {
				filtered = true
				r.PutLabel("filtered_by", utils.Label{Value: f.Name(), Source: "filter"})
				break
			}
		}
		if !filtered {
			out = append(out, r)
		}
	}
	return out, nil
}
