package filter

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/CapYuno/Book-Share-App/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

// getCELEnv 获取或创建 CEL 环境，定义规则可引用的变量。
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("book", cel.DynType),
			cel.Variable("score", cel.DoubleType),
		)
	})
	return celEnv, celEnvErr
}

// RuleFilter 是 CEL (Common Expression Language) 表达式驱动的过滤器。
// 规则写在配置里，命中（求值为 true）的候选被移除。
//
// 表达式语法（CEL 标准语法）：
//   - 类别屏蔽：book.genre == "Reference"
//   - 低分截断：score < 0.05
//   - 组合条件：book.genre == "Reference" || book.year < 1900
//
// 表达式在构造时编译并缓存，之后可以并发求值。
type RuleFilter struct {
	expr string
	prg  cel.Program
}

// NewRuleFilter 编译一条过滤规则。
// 规则语法错误属于配置错误，在启动期致命。
func NewRuleFilter(expr string) (*RuleFilter, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, core.ErrInvalidConfig(fmt.Sprintf("filter rule env: %v", err))
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, core.ErrInvalidConfig(
			fmt.Sprintf("filter rule %q: %v", expr, issues.Err()))
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, core.ErrInvalidConfig(
			fmt.Sprintf("filter rule %q: %v", expr, err))
	}
	return &RuleFilter{expr: expr, prg: prg}, nil
}

func (f *RuleFilter) Name() string { return "filter.rule" }

// ShouldFilter 对候选求值。非布尔结果视为规则故障。
func (f *RuleFilter) ShouldFilter(ctx context.Context, book *core.Book, score float64) (bool, error) {
	vars := map[string]any{
		"book": map[string]any{
			"id":     book.ID,
			"title":  book.Title,
			"author": book.Author,
			"genre":  book.Genre,
			"year":   book.Year,
		},
		"score": score,
	}
	out, _, err := f.prg.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("eval rule %q: %w", f.expr, err)
	}
	drop, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule %q is not a boolean expression", f.expr)
	}
	return drop, nil
}

var _ Filter = (*RuleFilter)(nil)
