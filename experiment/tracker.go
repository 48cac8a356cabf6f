package experiment

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/searchkit/core"
)

// 指标名。Performance 也接受 "conversion" 作为 MetricConversion 的别名。
const (
	MetricCTR        = "ctr"
	MetricConversion = "cvr"
)

// VariantPerformance 是单个变体在保留窗口内的聚合指标。
type VariantPerformance struct {
	Variant string `json:"variant"`

	Impressions int64 `json:"impressions"`
	Clicks      int64 `json:"clicks"`
	Purchases   int64 `json:"purchases"`

	DistinctImpressed int64 `json:"distinct_impressed"`
	DistinctClicked   int64 `json:"distinct_clicked"`

	// CTR = 被点击的候选去重数 / 被曝光的候选去重数
	CTR float64 `json:"ctr"`

	// ConversionRate = 购买事件数 / 点击事件数
	ConversionRate float64 `json:"conversion_rate"`
}

// Tracker 记录实验事件并按变体聚合在线指标。
//
// Record 是 fire-and-forget：写失败只记日志，绝不向调用方传播 ——
// 丢一条埋点不能打断一次在线搜索。事件存储通过 core.EventStore 注入，
// 测试可替换为内存实现。
type Tracker struct {
	store  core.EventStore
	params core.TrackerParams
	logger zerolog.Logger
	now    func() time.Time
}

// TrackerOption 是 Tracker 的可选配置。
type TrackerOption func(*Tracker)

// WithLogger 注入日志器（默认丢弃日志）。
func WithLogger(logger zerolog.Logger) TrackerOption {
	return func(t *Tracker) { t.logger = logger }
}

// WithClock 注入时钟，测试用。
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

// NewTracker 创建 Tracker。params 不合法时返回 INVALID_CONFIG。
func NewTracker(store core.EventStore, params core.TrackerParams, opts ...TrackerOption) (*Tracker, error) {
	if store == nil {
		return nil, core.NewDomainError(core.ModuleExperiment, core.ErrorCodeInvalidConfig,
			"experiment: event store is required")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	t := &Tracker{
		store:  store,
		params: params,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Record 追加一条实验事件。不合法或写失败的事件被丢弃并记日志，不返回错误。
func (t *Tracker) Record(ctx context.Context, event *core.ExperimentEvent) {
	if !event.Valid() {
		t.logger.Debug().Str("component", "tracker").Msg("drop invalid experiment event")
		return
	}
	if event.Timestamp.IsZero() {
		ev := *event
		ev.Timestamp = t.now()
		event = &ev
	}
	if err := t.store.Append(ctx, event); err != nil {
		t.logger.Warn().Err(err).
			Str("variant", event.Variant).
			Str("kind", string(event.Kind)).
			Msg("drop experiment event: append failed")
	}
}

// RecordImpressions 为一页排序结果批量记录曝光，位置按列表顺序。
func (t *Tracker) RecordImpressions(ctx context.Context, rctx *core.RankContext, results []*core.Result) {
	if rctx == nil {
		return
	}
	for i, r := range results {
		if r == nil || r.Candidate == nil {
			continue
		}
		t.Record(ctx, &core.ExperimentEvent{
			SessionID:   rctx.SessionID,
			Variant:     rctx.Variant,
			CandidateID: r.Candidate.ID,
			Kind:        core.EventImpression,
			Position:    i,
		})
	}
}

// Performance 返回指定变体的单个指标。
// metric 支持 "ctr" 与 "cvr"（或别名 "conversion"）；其余返回 NOT_SUPPORTED。
func (t *Tracker) Performance(ctx context.Context, variant, metric string) (float64, error) {
	perf, err := t.aggregate(ctx, variant)
	if err != nil {
		return 0, err
	}
	switch metric {
	case MetricCTR:
		return perf.CTR, nil
	case MetricConversion, "conversion":
		return perf.ConversionRate, nil
	}
	return 0, core.NewDomainError(core.ModuleExperiment, core.ErrorCodeNotSupported,
		"experiment: unknown metric "+metric)
}

// Report 返回全部出现过事件的变体的聚合指标，按变体名升序。
func (t *Tracker) Report(ctx context.Context) ([]VariantPerformance, error) {
	names, err := t.store.Variants(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	out := make([]VariantPerformance, 0, len(names))
	for _, name := range names {
		perf, err := t.aggregate(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, perf)
	}
	return out, nil
}

// Recommend 返回样本量达标（曝光数 ≥ MinSamples）的变体中 CTR 最优者；
// CTR 持平时比转化率，仍持平则全部返回。样本都不达标时返回空列表 ——
// 在噪声上不做推荐。
func (t *Tracker) Recommend(ctx context.Context) ([]string, error) {
	report, err := t.Report(ctx)
	if err != nil {
		return nil, err
	}

	qualified := report[:0:0]
	for _, perf := range report {
		if perf.Impressions >= t.params.MinSamples {
			qualified = append(qualified, perf)
		}
	}
	if len(qualified) == 0 {
		return nil, nil
	}

	sort.Slice(qualified, func(i, j int) bool {
		if qualified[i].CTR != qualified[j].CTR {
			return qualified[i].CTR > qualified[j].CTR
		}
		if qualified[i].ConversionRate != qualified[j].ConversionRate {
			return qualified[i].ConversionRate > qualified[j].ConversionRate
		}
		return qualified[i].Variant < qualified[j].Variant
	})

	best := qualified[0]
	var names []string
	for _, perf := range qualified {
		if perf.CTR == best.CTR && perf.ConversionRate == best.ConversionRate {
			names = append(names, perf.Variant)
		}
	}
	return names, nil
}

// aggregate 扫描保留窗口内的事件并汇总指标，同时顺手清理窗口外事件。
func (t *Tracker) aggregate(ctx context.Context, variant string) (VariantPerformance, error) {
	cutoff := t.now().Add(-t.params.Retention)

	// 清理是尽力而为：失败不影响本次聚合
	if _, err := t.store.Prune(ctx, cutoff); err != nil {
		t.logger.Warn().Err(err).Msg("prune expired experiment events failed")
	}

	events, err := t.store.Events(ctx, variant, cutoff)
	if err != nil {
		return VariantPerformance{}, err
	}

	perf := VariantPerformance{Variant: variant}
	impressed := make(map[string]struct{})
	clicked := make(map[string]struct{})
	for _, ev := range events {
		switch ev.Kind {
		case core.EventImpression:
			perf.Impressions++
			impressed[ev.CandidateID] = struct{}{}
		case core.EventClick:
			perf.Clicks++
			clicked[ev.CandidateID] = struct{}{}
		case core.EventPurchase:
			perf.Purchases++
		}
	}
	perf.DistinctImpressed = int64(len(impressed))
	perf.DistinctClicked = int64(len(clicked))
	if perf.DistinctImpressed > 0 {
		perf.CTR = float64(perf.DistinctClicked) / float64(perf.DistinctImpressed)
	}
	if perf.Clicks > 0 {
		perf.ConversionRate = float64(perf.Purchases) / float64(perf.Clicks)
	}
	return perf, nil
}
