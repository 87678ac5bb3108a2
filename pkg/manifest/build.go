package manifest

import (
	"fmt"

	prefs "github.com/goliatone/go-prefs"
)

// BuildOption configures Registry.
type BuildOption func(*buildConfig)

type buildConfig struct {
	evaluator prefs.Evaluator
	functions *prefs.FunctionRegistry
	cache     prefs.ProgramCache
}

// WithEvaluator overrides the evaluator named in the manifest.
func WithEvaluator(evaluator prefs.Evaluator) BuildOption {
	return func(cfg *buildConfig) {
		cfg.evaluator = evaluator
	}
}

// WithFunctions exposes registry functions to expressions.
func WithFunctions(functions *prefs.FunctionRegistry) BuildOption {
	return func(cfg *buildConfig) {
		cfg.functions = functions
	}
}

// WithProgramCache shares compiled programs across rules.
func WithProgramCache(cache prefs.ProgramCache) BuildOption {
	return func(cfg *buildConfig) {
		cfg.cache = cache
	}
}

// Registry builds a prefs.Registry from the manifest. Expressions become
// prefs.Rule and prefs.InitRule callables.
func (m Manifest) Registry(opts ...BuildOption) (*prefs.Registry, error) {
	cfg := buildConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	evaluator := cfg.evaluator
	if evaluator == nil && m.needsEvaluator() {
		var err error
		if evaluator, err = m.newEvaluator(cfg); err != nil {
			return nil, err
		}
	}

	settings := make([]prefs.Setting, 0, len(m.Settings))
	for _, spec := range m.Settings {
		setting := prefs.Setting{
			Name:  spec.Name,
			Value: spec.Value,
			Details: prefs.Details{
				DisplayName: spec.DisplayName,
				Description: spec.Description,
				Control:     prefs.ControlType(spec.Control),
			},
		}
		for _, attr := range spec.Attributes {
			setting.Attributes = append(setting.Attributes, prefs.Attribute{Key: attr.Key, Value: attr.Value})
		}
		if spec.Init != "" {
			setting.Init = prefs.InitRule{Evaluator: evaluator, Expr: spec.Init}
		}
		for _, choice := range spec.Choices {
			c := prefs.Choice{
				Key:         choice.Key,
				DisplayName: choice.DisplayName,
				Disabled:    choice.Disabled,
				Hidden:      choice.Hidden,
			}
			if choice.OnSelect != "" {
				c.OnSelect = prefs.Rule{Evaluator: evaluator, Expr: choice.OnSelect}
			}
			setting.Choices = append(setting.Choices, c)
		}
		settings = append(settings, setting)
	}

	registry, err := prefs.NewRegistry(settings...)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return registry, nil
}

func (m Manifest) needsEvaluator() bool {
	for _, setting := range m.Settings {
		if setting.Init != "" {
			return true
		}
		for _, choice := range setting.Choices {
			if choice.OnSelect != "" {
				return true
			}
		}
	}
	return false
}

func (m Manifest) newEvaluator(cfg buildConfig) (prefs.Evaluator, error) {
	switch m.Evaluator {
	case "", EvaluatorExpr:
		return prefs.NewExprEvaluator(
			prefs.ExprWithProgramCache(cfg.cache),
			prefs.ExprWithFunctionRegistry(cfg.functions),
		), nil
	case EvaluatorCEL:
		return prefs.NewCELEvaluator(
			prefs.CELWithProgramCache(cfg.cache),
			prefs.CELWithFunctionRegistry(cfg.functions),
		), nil
	case EvaluatorJS:
		if !prefs.JSEvaluatorAvailable() {
			return nil, fmt.Errorf("%w: %s requires the js_eval build tag", ErrEvaluatorUnavailable, EvaluatorJS)
		}
		return prefs.NewJSEvaluator(prefs.JSWithFunctionRegistry(cfg.functions)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrEvaluatorUnavailable, m.Evaluator)
	}
}
