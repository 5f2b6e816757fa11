package journey

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestConditionNode_DecodesLeafAndGroup(t *testing.T) {
	var leaf ConditionNode
	if err := json.Unmarshal([]byte(`{"fact": "quiz.passed", "op": "eq", "value": true}`), &leaf); err != nil {
		t.Fatalf("unmarshal leaf: %v", err)
	}
	if leaf.Cond == nil || leaf.Group != nil {
		t.Fatalf("expected leaf, got %#v", leaf)
	}
	if leaf.Cond.Fact != "quiz.passed" || leaf.Cond.Op != OpEq {
		t.Fatalf("unexpected condition: %#v", leaf.Cond)
	}

	var group ConditionNode
	if err := json.Unmarshal([]byte(`{"any": [{"fact": "a", "op": "eq", "value": 1}]}`), &group); err != nil {
		t.Fatalf("unmarshal group: %v", err)
	}
	if group.Group == nil || group.Cond != nil {
		t.Fatalf("expected group, got %#v", group)
	}
	if len(group.Group.Any) != 1 {
		t.Fatalf("unexpected group children: %#v", group.Group)
	}
}

func TestConditionNode_RejectsShapelessObject(t *testing.T) {
	var n ConditionNode
	err := json.Unmarshal([]byte(`{"foo": "bar"}`), &n)
	if err == nil {
		t.Fatalf("expected error for shapeless node")
	}
}

func TestConditionGroup_EmptyAnySurvivesRoundTrip(t *testing.T) {
	var g ConditionGroup
	if err := json.Unmarshal([]byte(`{"any": []}`), &g); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if g.Any == nil || g.All != nil {
		t.Fatalf("expected empty any, got %#v", g)
	}
	out, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"any":[]`) {
		t.Fatalf("empty any dropped on marshal: %s", out)
	}
}

func TestConditionGroup_EmptyAllSurvivesRoundTrip(t *testing.T) {
	var g ConditionGroup
	if err := json.Unmarshal([]byte(`{"all": []}`), &g); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"all":[]`) {
		t.Fatalf("empty all dropped on marshal: %s", out)
	}
}

func TestOp_Valid(t *testing.T) {
	for _, op := range []Op{OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpContains, OpIn} {
		if !op.Valid() {
			t.Fatalf("expected %q valid", op)
		}
	}
	if Op("matches").Valid() {
		t.Fatalf("expected unknown op invalid")
	}
}
