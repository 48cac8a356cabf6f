// Package rule 实现运营配置的商品调权规则（merchandising rules）：
// 用 CEL (Common Expression Language) 表达式描述命中条件，
// 对命中的候选执行加权 / 降权 / 剔除。
//
// 表达式语法（CEL 标准语法），可用变量：
//   - candidate: id / title / brand / category / price / stock_quantity / rating / tags ...
//   - query:     text / category
//   - rctx:      user_id / session_id / scene / params
//
// 示例：
//   - `candidate.brand == "acme" && candidate.stock_quantity > 0` → 自有品牌置顶
//   - `candidate.price > 1000.0` → 高客单价降权
//   - `candidate.rating < 2.0` → 低口碑剔除
package rule

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/pkg/utils"
)

// 规则动作。
const (
	ActionBoost   = "boost"   // 分数乘以 Factor（Factor > 1）
	ActionBury    = "bury"    // 分数乘以 Factor（0 < Factor < 1）
	ActionExclude = "exclude" // 从结果中剔除
)

// Rule 是一条运营规则：CEL 命中条件 + 动作。
type Rule struct {
	Name   string  `yaml:"name" json:"name"`
	When   string  `yaml:"when" json:"when"`     // CEL 布尔表达式
	Action string  `yaml:"action" json:"action"` // boost / bury / exclude
	Factor float64 `yaml:"factor" json:"factor"` // boost/bury 的乘数
}

type compiledRule struct {
	rule Rule
	prg  cel.Program
}

// Engine 持有编译后的规则集。表达式在构造期编译，
// 语法错误属于配置错误，启动即失败，绝不留到请求期。
// 构造后只读，可被多请求并发调用。
type Engine struct {
	rules []compiledRule
}

// NewEngine 编译规则集。任何一条规则不合法都返回 INVALID_CONFIG。
func NewEngine(rules []Rule) (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("candidate", cel.DynType),
		cel.Variable("query", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleRule, core.ErrorCodeInternalError,
			fmt.Sprintf("rule: create cel env: %v", err))
	}

	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if r.Name == "" || r.When == "" {
			return nil, core.NewDomainError(core.ModuleRule, core.ErrorCodeInvalidConfig,
				"rule: name and when expression are required")
		}
		switch r.Action {
		case ActionBoost, ActionBury:
			if r.Factor <= 0 {
				return nil, core.NewDomainError(core.ModuleRule, core.ErrorCodeInvalidConfig,
					fmt.Sprintf("rule %q: factor must be positive", r.Name))
			}
		case ActionExclude:
		default:
			return nil, core.NewDomainError(core.ModuleRule, core.ErrorCodeInvalidConfig,
				fmt.Sprintf("rule %q: unknown action %q", r.Name, r.Action))
		}

		ast, issues := env.Compile(r.When)
		if issues != nil && issues.Err() != nil {
			return nil, core.NewDomainError(core.ModuleRule, core.ErrorCodeInvalidConfig,
				fmt.Sprintf("rule %q: compile error: %v", r.Name, issues.Err()))
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, core.NewDomainError(core.ModuleRule, core.ErrorCodeInvalidConfig,
				fmt.Sprintf("rule %q: program error: %v", r.Name, err))
		}
		compiled = append(compiled, compiledRule{rule: r, prg: prg})
	}
	return &Engine{rules: compiled}, nil
}

// Apply 按顺序对每个结果评估规则集并执行命中动作，最后按新分数重排。
// 单个候选上的表达式求值失败只跳过该条规则（与打分级失败同一策略），
// 不影响其他候选与其他规则。
func (e *Engine) Apply(ctx context.Context, rctx *core.RankContext, results []*core.Result) ([]*core.Result, error) {
	if len(e.rules) == 0 || len(results) == 0 {
		return results, nil
	}

	out := make([]*core.Result, 0, len(results))
	for _, r := range results {
		if r == nil || r.Candidate == nil {
			continue
		}

		excluded := false
		input := buildInput(rctx, r)
		for _, cr := range e.rules {
			val, _, err := cr.prg.Eval(input)
			if err != nil {
				continue
			}
			hit, ok := val.Value().(bool)
			if !ok || !hit {
				continue
			}

			switch cr.rule.Action {
			case ActionExclude:
				excluded = true
			case ActionBoost, ActionBury:
				r.Score *= cr.rule.Factor
			}
			r.PutLabel("rule", utils.Label{Value: cr.rule.Name, Source: "rule"})
			if excluded {
				break
			}
		}
		if !excluded {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Candidate.ID < out[j].Candidate.ID
	})
	return out, nil
}

// buildInput 构建 CEL 求值输入。候选字段展开为 map，保持表达式书写直观。
func buildInput(rctx *core.RankContext, r *core.Result) map[string]any {
	c := r.Candidate
	candidate := map[string]any{
		"id":             c.ID,
		"title":          c.Title,
		"brand":          c.Brand,
		"category":       c.Category,
		"sub_category":   c.SubCategory,
		"tags":           c.Tags,
		"price":          c.Price,
		"original_price": c.OriginalPrice,
		"stock_quantity": c.StockQuantity,
		"rating":         c.Rating,
		"popularity":     c.PopularityScore,
		"score":          r.Score,
	}

	query := map[string]any{}
	rc := map[string]any{}
	if rctx != nil {
		if rctx.Query != nil {
			query["text"] = rctx.Query.Text
			query["category"] = rctx.Query.Category
		}
		rc["user_id"] = rctx.UserID
		rc["session_id"] = rctx.SessionID
		rc["scene"] = rctx.Scene
		rc["params"] = rctx.Params
	}

	return map[string]any{
		"candidate": candidate,
		"query":     query,
		"rctx":      rc,
	}
}
