package rerank

import (
	"context"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，在排序后截取前 N 个结果。
// 通常放在 rank.engine 之后，控制返回给搜索页的结果数量。
//
// 示例：
//
//	p := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &rank.Node{Engine: engine},   // 排序
//	        &rerank.TopNNode{N: 20},      // 截取 Top 20
//	        &rerank.DiversityNode{},      // 类目多样性
//	    },
//	}
type TopNNode struct {
	// N 要保留的结果数量（Top N）
	// 如果 N <= 0 或 N >= len(results)，不截断
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RankContext,
	results []*core.Result,
) ([]*core.Result, error) {
	if n.N <= 0 || len(results) <= n.N {
		return results, nil
	}
	return results[:n.N], nil
}
