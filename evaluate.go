package prefs

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNoEvaluator = errors.New("prefs: evaluator not configured")

// RuleContext carries inputs needed when evaluating a declarative callback.
type RuleContext struct {
	Setting string
	Value   string
	// Values holds the current value of every setting.
	Values map[string]string
	Args   map[string]any
	Now    *time.Time
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Values == nil {
		ctx.Values = map[string]string{}
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	return *ctx.withDefaults().Now
}

// binding exposes the context under the variable names shared by every
// evaluator: setting, value, values, args, now.
func (ctx RuleContext) binding() map[string]any {
	values := make(map[string]any, len(ctx.Values))
	for key, value := range ctx.Values {
		values[key] = value
	}
	return map[string]any{
		"setting": ctx.Setting,
		"value":   ctx.Value,
		"values":  values,
		"args":    ctx.Args,
		"now":     ctx.timestamp(),
	}
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
}

// Rule is a Callable backed by an expression. The expression result decides
// success: booleans as is, nil as false, anything else as true.
type Rule struct {
	Evaluator Evaluator
	Expr      string
}

// Call implements Callable.
func (r Rule) Call(ctx context.Context, args Args) (bool, error) {
	out, err := r.evaluate(ctx, args)
	if err != nil {
		return false, err
	}
	return truthy(out), nil
}

func (r Rule) evaluate(ctx context.Context, args Args) (any, error) {
	if r.Evaluator == nil {
		return nil, ErrNoEvaluator
	}
	if r.Expr == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	rc := RuleContext{
		Setting: args.Setting.Name,
		Value:   args.Value,
		Args:    copyExtra(args.Extra),
	}
	if args.Engine != nil {
		rc.Values = args.Engine.Snapshot(ctx)
	}
	out, err := r.Evaluator.Evaluate(rc.withDefaults(), r.Expr)
	if err != nil {
		return nil, wrapEvaluationError(evaluatorEngineName(r.Evaluator), r.Expr, args.Setting.Name, err)
	}
	return out, nil
}

// InitRule is an Init callable whose expression yields the starting choice
// key, which is then applied through Engine.Set.
type InitRule struct {
	Evaluator Evaluator
	Expr      string
}

// Call implements Callable.
func (r InitRule) Call(ctx context.Context, args Args) (bool, error) {
	out, err := Rule(r).evaluate(ctx, args)
	if err != nil {
		return false, err
	}
	value, ok := out.(string)
	if !ok {
		value = fmt.Sprint(out)
	}
	if args.Engine == nil {
		return false, fmt.Errorf("init rule for %q has no engine", args.Setting.Name)
	}
	if err := args.Engine.Set(ctx, args.Setting.Name, value); err != nil {
		return false, err
	}
	return true, nil
}

func truthy(value any) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		return typed != ""
	case int:
		return typed != 0
	case int64:
		return typed != 0
	case float64:
		return typed != 0
	default:
		return true
	}
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*prefs.exprEvaluator":
		return "expr"
	case "*prefs.celEvaluator":
		return "cel"
	case "*prefs.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
