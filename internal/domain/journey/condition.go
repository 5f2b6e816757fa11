package journey

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Op is a comparison operator usable in edge conditions.
type Op string

const (
	OpEq       Op = "eq"
	OpNeq      Op = "neq"
	OpGt       Op = "gt"
	OpGte      Op = "gte"
	OpLt       Op = "lt"
	OpLte      Op = "lte"
	OpContains Op = "contains"
	OpIn       Op = "in"
)

func (o Op) Valid() bool {
	switch o {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpContains, OpIn:
		return true
	}
	return false
}

// Condition compares one named fact against a literal value.
type Condition struct {
	Fact  string `json:"fact"`
	Op    Op     `json:"op"`
	Value any    `json:"value"`
}

// ConditionGroup combines child nodes with all (AND) or any (OR) semantics.
// An empty all is vacuously true, an empty any vacuously false. When both
// keys are present, all wins and any is ignored.
type ConditionGroup struct {
	All []ConditionNode `json:"all,omitempty"`
	Any []ConditionNode `json:"any,omitempty"`
}

// MarshalJSON keeps "all": [] and "any": [] distinguishable from an absent
// key. The empty-any group is vacuously false, so dropping the key would
// change its meaning.
func (g ConditionGroup) MarshalJSON() ([]byte, error) {
	type wire struct {
		All *[]ConditionNode `json:"all,omitempty"`
		Any *[]ConditionNode `json:"any,omitempty"`
	}
	var w wire
	if g.All != nil {
		w.All = &g.All
	}
	if g.Any != nil {
		w.Any = &g.Any
	}
	return json.Marshal(w)
}

// ConditionNode is one element of a group: either a leaf Condition or a
// nested ConditionGroup.
type ConditionNode struct {
	Cond  *Condition
	Group *ConditionGroup
}

func (n *ConditionNode) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if _, ok := probe["fact"]; ok {
		var c Condition
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		n.Cond = &c
		n.Group = nil
		return nil
	}
	_, hasAll := probe["all"]
	_, hasAny := probe["any"]
	if hasAll || hasAny {
		var g ConditionGroup
		if err := json.Unmarshal(data, &g); err != nil {
			return err
		}
		n.Group = &g
		n.Cond = nil
		return nil
	}
	return fmt.Errorf("condition node has neither a fact nor an all/any key")
}

func (n ConditionNode) MarshalJSON() ([]byte, error) {
	switch {
	case n.Cond != nil:
		return json.Marshal(n.Cond)
	case n.Group != nil:
		return json.Marshal(n.Group)
	default:
		return nil, errors.New("empty condition node")
	}
}
