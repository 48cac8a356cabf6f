// Package searchkit 是一个商品搜索多信号排序工具包（Search Ranking Kit）。
//
// 设计要点：
// - Pipeline-first: 排序逻辑通过 Node 串联（Rank → ReRank → PostProcess）
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
// - 实验内建: 变体切流、指标埋点、CTR/CVR 聚合是排序引擎的一等公民
// - 优雅降级: 画像缺失、地理缺失、单候选坏数据均不产生错误，权重按比例重分配
package searchkit

import (
	"github.com/rushteam/searchkit/config"
	"github.com/rushteam/searchkit/pipeline"
	"github.com/rushteam/searchkit/rank"
)

// 轻量 facade：便于用户直接 import "searchkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)

// NewEngine 根据配置构建排序引擎。cfg 为 nil 时使用内置默认配置。
func NewEngine(cfg *config.Config, opts ...rank.Option) (*rank.Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if len(cfg.Variants) == 0 {
		cfg.Variants = config.DefaultVariants()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	engineOpts := []rank.Option{
		rank.WithReasonPolicy(cfg.ReasonThreshold, cfg.MaxReasons),
	}
	if cfg.MaxConcurrent > 0 {
		engineOpts = append(engineOpts, rank.WithMaxConcurrent(cfg.MaxConcurrent))
	}
	engineOpts = append(engineOpts, opts...)

	return rank.NewEngine(cfg.Variants, cfg.SubWeights, cfg.Scoring, engineOpts...)
}
