package experiment

import (
	"context"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/pipeline"
)

// ImpressionHook 是 Pipeline Hook：在后处理阶段（或链路最后一个重排节点）
// 完成后，把最终结果列表作为曝光写入 Tracker。
//
// 曝光必须记在链路末端而不是排序节点之后 —— 截断/多样性/规则节点
// 会改变最终呈现给用户的列表，CTR 的分母应当是用户真正看到的候选。
type ImpressionHook struct {
	tracker *Tracker

	// After 指定在哪类节点之后记录曝光，默认 KindPostProcess。
	// 链路没有后处理节点时，调用方应设置为链路最后一个节点的 Kind。
	After pipeline.Kind
}

// NewImpressionHook 创建曝光埋点 Hook。
func NewImpressionHook(tracker *Tracker) *ImpressionHook {
	return &ImpressionHook{tracker: tracker, After: pipeline.KindPostProcess}
}

func (h *ImpressionHook) BeforeNode(ctx context.Context, rctx *core.RankContext,
	node pipeline.Node, results []*core.Result) ([]*core.Result, error) {
	return results, nil
}

// AfterNode 在目标阶段的节点成功返回后记录曝光。
// Tracker.RecordImpressions 是 fire-and-forget，不会阻塞链路。
func (h *ImpressionHook) AfterNode(ctx context.Context, rctx *core.RankContext,
	node pipeline.Node, results []*core.Result, err error) ([]*core.Result, error) {
	if err == nil && h.tracker != nil && node.Kind() == h.After && len(results) > 0 {
		h.tracker.RecordImpressions(ctx, rctx, results)
	}
	return results, err
}

var _ pipeline.Hook = (*ImpressionHook)(nil)
