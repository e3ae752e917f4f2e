package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"
)

// Evaluator compiles and evaluates CEL expressions against the effective
// site configuration. The configuration document is bound to the variable
// "_", so rules read like "_.site_name != ''".
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates an evaluator with the common extension libraries
// enabled so rules can use string, list, and math helpers.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("_", cel.DynType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	if err != nil {
		return nil, fmt.Errorf("create rule environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Evaluate compiles expr and evaluates it with data bound to "_".
func (e *Evaluator) Evaluate(expr string, data interface{}) (interface{}, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile rule: %w", issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build rule program: %w", err)
	}

	result, _, err := prg.Eval(map[string]interface{}{"_": data})
	if err != nil {
		return nil, fmt.Errorf("evaluate rule: %w", err)
	}
	return toGo(result), nil
}

// EvaluateBool evaluates expr and requires a boolean result. Rules are
// assertions: true means the configuration passes.
func (e *Evaluator) EvaluateBool(expr string, data interface{}) (bool, error) {
	out, err := e.Evaluate(expr, data)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("rule must evaluate to bool, got %T", out)
	}
	return b, nil
}

// toGo converts CEL values to native Go types recursively.
func toGo(val ref.Val) interface{} {
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	}

	if valuer, ok := val.(interface{ Value() interface{} }); ok {
		inner := valuer.Value()

		switch iv := inner.(type) {
		case []ref.Val:
			out := make([]interface{}, len(iv))
			for i, elem := range iv {
				out[i] = toGo(elem)
			}
			return out
		case []interface{}:
			out := make([]interface{}, len(iv))
			for i, elem := range iv {
				if rv, ok := elem.(ref.Val); ok {
					out[i] = toGo(rv)
				} else {
					out[i] = elem
				}
			}
			return out
		case map[ref.Val]ref.Val:
			out := make(map[string]interface{}, len(iv))
			for k, v := range iv {
				out[fmt.Sprintf("%v", toGoAny(k))] = toGo(v)
			}
			return out
		}
		return inner
	}
	return val
}

func toGoAny(val ref.Val) interface{} {
	if v := toGo(val); v != nil {
		if rv, ok := v.(ref.Val); ok {
			return rv.Value()
		}
		return v
	}
	return nil
}
