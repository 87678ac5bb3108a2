//go:build js_eval

package prefs

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"
)

type jsEvaluator struct {
	registry *FunctionRegistry

	mu       sync.Mutex
	programs map[string]*goja.Program
}

// NewJSEvaluator constructs an Evaluator backed by goja.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	cfg := applyJSEvaluatorOptions(opts)
	return &jsEvaluator{
		registry: cfg.registry,
		programs: map[string]*goja.Program{},
	}
}

// JSEvaluatorAvailable reports whether the binary was built with js_eval.
func JSEvaluatorAvailable() bool {
	return true
}

func (e *jsEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	ctx = ctx.withDefaults()
	program, err := e.compile(expression)
	if err != nil {
		return nil, wrapEvaluationError("js", expression, ctx.Setting, err)
	}
	// goja runtimes are not goroutine safe; one per evaluation.
	vm := goja.New()
	for key, value := range ctx.binding() {
		if err := vm.Set(key, value); err != nil {
			return nil, wrapEvaluationError("js", expression, ctx.Setting, err)
		}
	}
	if e.registry != nil {
		_ = vm.Set("call", func(name string, arguments ...any) (any, error) {
			return e.registry.Call(name, arguments...)
		})
	}
	value, err := vm.RunProgram(program)
	if err != nil {
		return nil, wrapEvaluationError("js", expression, ctx.Setting, err)
	}
	return value.Export(), nil
}

func (e *jsEvaluator) compile(expression string) (*goja.Program, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if program, ok := e.programs[expression]; ok {
		return program, nil
	}
	program, err := goja.Compile("", fmt.Sprintf("(function(){ return (%s); })()", expression), false)
	if err != nil {
		return nil, err
	}
	e.programs[expression] = program
	return program, nil
}
