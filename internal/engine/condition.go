package engine

import (
	"encoding/json"
	"reflect"
	"strings"

	types "github.com/yungbote/journey-backend/internal/domain"
)

// EvaluateGroup evaluates a condition tree against the fact set. A nil
// group always matches. An empty all is vacuously true while an empty any
// is vacuously false; callers depend on that asymmetry.
func EvaluateGroup(g *types.ConditionGroup, facts Facts) bool {
	if g == nil {
		return true
	}
	if g.All != nil {
		for _, n := range g.All {
			if !evaluateNode(n, facts) {
				return false
			}
		}
		return true
	}
	if g.Any != nil {
		for _, n := range g.Any {
			if evaluateNode(n, facts) {
				return true
			}
		}
		return false
	}
	return true
}

func evaluateNode(n types.ConditionNode, facts Facts) bool {
	switch {
	case n.Cond != nil:
		return evaluateCondition(*n.Cond, facts)
	case n.Group != nil:
		return EvaluateGroup(n.Group, facts)
	default:
		return false
	}
}

// evaluateCondition applies one operator. An absent fact fails every
// operator, neq included; missing data never routes a learner anywhere.
func evaluateCondition(c types.Condition, facts Facts) bool {
	have, ok := facts[c.Fact]
	if !ok {
		return false
	}
	switch c.Op {
	case types.OpEq:
		return looseEqual(have, c.Value)
	case types.OpNeq:
		return !looseEqual(have, c.Value)
	case types.OpGt:
		a, b, ok := numericPair(have, c.Value)
		return ok && a > b
	case types.OpGte:
		a, b, ok := numericPair(have, c.Value)
		return ok && a >= b
	case types.OpLt:
		a, b, ok := numericPair(have, c.Value)
		return ok && a < b
	case types.OpLte:
		a, b, ok := numericPair(have, c.Value)
		return ok && a <= b
	case types.OpContains:
		return containsValue(have, c.Value)
	case types.OpIn:
		return memberOf(have, c.Value)
	default:
		return false
	}
}

// looseEqual compares with numeric normalization so 70 and 70.0 agree
// regardless of how either side was decoded.
func looseEqual(a, b any) bool {
	if fa, ok := asNumber(a); ok {
		fb, ok := asNumber(b)
		return ok && fa == fb
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return reflect.DeepEqual(a, b)
}

func numericPair(a, b any) (float64, float64, bool) {
	fa, ok := asNumber(a)
	if !ok {
		return 0, 0, false
	}
	fb, ok := asNumber(b)
	if !ok {
		return 0, 0, false
	}
	return fa, fb, true
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// containsValue is a substring test for strings and a membership test for
// lists.
func containsValue(have, want any) bool {
	switch h := have.(type) {
	case string:
		w, ok := want.(string)
		return ok && strings.Contains(h, w)
	case []any:
		for _, e := range h {
			if looseEqual(e, want) {
				return true
			}
		}
		return false
	case []string:
		for _, e := range h {
			if looseEqual(e, want) {
				return true
			}
		}
		return false
	}
	return false
}

// memberOf tests the fact value against a right-hand list.
func memberOf(have, want any) bool {
	switch w := want.(type) {
	case []any:
		for _, e := range w {
			if looseEqual(have, e) {
				return true
			}
		}
	case []string:
		for _, e := range w {
			if looseEqual(have, e) {
				return true
			}
		}
	}
	return false
}
