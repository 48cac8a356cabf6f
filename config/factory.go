package config

import (
	"fmt"

	"github.com/rushteam/searchkit/filter"
	"github.com/rushteam/searchkit/pipeline"
	"github.com/rushteam/searchkit/pkg/conv"
	"github.com/rushteam/searchkit/rank"
	"github.com/rushteam/searchkit/rerank"
	"github.com/rushteam/searchkit/rule"
)

// DefaultFactory 返回一个包含所有内置 Node 的默认工厂。
//
// 注册的节点类型：
//   - rerank.topn:      Top-N 截断
//   - rerank.diversity: 类目多样性
//   - rule.boost:       运营调权规则
//
// rank.engine 依赖打分器与实验配置，无法单靠节点配置构建，
// 由调用方通过 RegisterEngine 注入。
func DefaultFactory() *pipeline.NodeFactory {
	factory := pipeline.NewNodeFactory()

	// 注册 ReRank Nodes
	factory.Register("rerank.topn", buildTopNNode)
	factory.Register("rerank.diversity", buildDiversityNode)

	// 注册 Rule Nodes
	factory.Register("rule.boost", buildRuleNode)

	// 注册 Filter Nodes
	factory.Register("filter", buildFilterNode)

	return factory
}

// RegisterEngine 把已构建的排序引擎注册为 "rank.engine" 节点类型。
func RegisterEngine(factory *pipeline.NodeFactory, engine *rank.Engine) {
	factory.Register("rank.engine", func(_ map[string]any) (pipeline.Node, error) {
		return &rank.Node{Engine: engine}, nil
	})
}

func buildTopNNode(config map[string]any) (pipeline.Node, error) {
	n := conv.ConfigGetInt64(config, "n", 0)
	if n <= 0 {
		return nil, fmt.Errorf("n must be positive")
	}
	return &rerank.TopNNode{N: int(n)}, nil
}

func buildDiversityNode(config map[string]any) (pipeline.Node, error) {
	max := conv.ConfigGetInt64(config, "max_per_category", 0)
	return &rerank.DiversityNode{MaxPerCategory: int(max)}, nil
}

func buildRuleNode(config map[string]any) (pipeline.Node, error) {
	rulesConfig, ok := config["rules"].([]any)
	if !ok {
		return nil, fmt.Errorf("rules not found or invalid")
	}

	rules := make([]rule.Rule, 0, len(rulesConfig))
	for _, rc := range rulesConfig {
		ruleMap, ok := rc.(map[string]any)
		if !ok {
			continue
		}
		factor, _ := conv.ToFloat64(ruleMap["factor"])
		rules = append(rules, rule.Rule{
			Name:   conv.ConfigGet[string](ruleMap, "name", ""),
			When:   conv.ConfigGet[string](ruleMap, "when", ""),
			Action: conv.ConfigGet[string](ruleMap, "action", ""),
			Factor: factor,
		})
	}

	engine, err := rule.NewEngine(rules)
	if err != nil {
		return nil, err
	}
	return &rule.Node{Engine: engine}, nil
}

func buildFilterNode(config map[string]any) (pipeline.Node, error) {
	filtersConfig, ok := config["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		switch filterType := conv.ConfigGet[string](filterMap, "type", ""); filterType {
		case "blacklist":
			ids := conv.SliceAnyToString(filterMap["ids"])
			filters = append(filters, filter.NewBlacklistFilter(ids))
		case "availability":
			filters = append(filters, &filter.AvailabilityFilter{})
		case "price_range":
			filters = append(filters, &filter.PriceRangeFilter{})
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}

	return &filter.FilterNode{Filters: filters}, nil
}
