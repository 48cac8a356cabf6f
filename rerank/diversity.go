package rerank

import (
	"context"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/pipeline"
)

// DiversityNode 是一个类目多样性重排节点：限制每个类目在结果页中的出现次数，
// 避免首屏被单一类目刷满。超出配额的结果被顺延剔除（保持原有相对顺序）。
type DiversityNode struct {
	// MaxPerCategory 是每个类目允许保留的最大结果数，<= 0 时默认 3。
	MaxPerCategory int
}

func (n *DiversityNode) Name() string {
	return "rerank.diversity"
}

func (n *DiversityNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *DiversityNode) Process(
	_ context.Context,
	_ *core.RankContext,
	results []*core.Result,
) ([]*core.Result, error) {
	if len(results) == 0 {
		return results, nil
	}

	max := n.MaxPerCategory
	if max <= 0 {
		max = 3
	}

	seen := make(map[string]int, 16)
	out := make([]*core.Result, 0, len(results))
	for _, r := range results {
		if r == nil || r.Candidate == nil {
			continue
		}
		cate := r.Candidate.Category
		if cate == "" {
			out = append(out, r)
			continue
		}
		if seen[cate] >= max {
			continue
		}
		seen[cate]++
		out = append(out, r)
	}
	return out, nil
}
