package engine

import (
	"encoding/json"
	"testing"

	types "github.com/yungbote/journey-backend/internal/domain"
)

func mustGroup(t *testing.T, raw string) *types.ConditionGroup {
	t.Helper()
	var g types.ConditionGroup
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		t.Fatalf("unmarshal group: %v", err)
	}
	return &g
}

func TestEvaluateGroup_NilGroupMatches(t *testing.T) {
	if !EvaluateGroup(nil, Facts{}) {
		t.Fatalf("expected nil group to match")
	}
}

func TestEvaluateGroup_EmptyAllIsTrue(t *testing.T) {
	g := mustGroup(t, `{"all": []}`)
	if !EvaluateGroup(g, Facts{}) {
		t.Fatalf("expected empty all to be vacuously true")
	}
	if !EvaluateGroup(g, Facts{"quiz.scorePercent": 10.0}) {
		t.Fatalf("expected empty all to be true for any fact set")
	}
}

func TestEvaluateGroup_EmptyAnyIsFalse(t *testing.T) {
	g := mustGroup(t, `{"any": []}`)
	if EvaluateGroup(g, Facts{}) {
		t.Fatalf("expected empty any to be vacuously false")
	}
	if EvaluateGroup(g, Facts{"quiz.scorePercent": 10.0}) {
		t.Fatalf("expected empty any to be false for any fact set")
	}
}

func TestEvaluateGroup_MissingFactFailsEveryOperator(t *testing.T) {
	ops := []string{"eq", "neq", "gt", "gte", "lt", "lte", "contains", "in"}
	for _, op := range ops {
		g := mustGroup(t, `{"all": [{"fact": "quiz.scorePercent", "op": "`+op+`", "value": 50}]}`)
		if EvaluateGroup(g, Facts{}) {
			t.Fatalf("op %q: expected false when fact is absent", op)
		}
	}
}

func TestEvaluateGroup_OperatorSemantics(t *testing.T) {
	facts := Facts{
		"quiz.scorePercent": 70.0,
		"block.status":      "completed",
		"quiz.weakTopics":   []any{"loops", "types"},
	}
	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"eq number", `{"all": [{"fact": "quiz.scorePercent", "op": "eq", "value": 70}]}`, true},
		{"eq number mismatch", `{"all": [{"fact": "quiz.scorePercent", "op": "eq", "value": 71}]}`, false},
		{"eq string", `{"all": [{"fact": "block.status", "op": "eq", "value": "completed"}]}`, true},
		{"neq", `{"all": [{"fact": "quiz.scorePercent", "op": "neq", "value": 50}]}`, true},
		{"gt", `{"all": [{"fact": "quiz.scorePercent", "op": "gt", "value": 69}]}`, true},
		{"gt equal is false", `{"all": [{"fact": "quiz.scorePercent", "op": "gt", "value": 70}]}`, false},
		{"gte equal", `{"all": [{"fact": "quiz.scorePercent", "op": "gte", "value": 70}]}`, true},
		{"lt", `{"all": [{"fact": "quiz.scorePercent", "op": "lt", "value": 71}]}`, true},
		{"lte", `{"all": [{"fact": "quiz.scorePercent", "op": "lte", "value": 70}]}`, true},
		{"gt on non-numeric", `{"all": [{"fact": "block.status", "op": "gt", "value": 1}]}`, false},
		{"contains substring", `{"all": [{"fact": "block.status", "op": "contains", "value": "plete"}]}`, true},
		{"contains array member", `{"all": [{"fact": "quiz.weakTopics", "op": "contains", "value": "loops"}]}`, true},
		{"contains array miss", `{"all": [{"fact": "quiz.weakTopics", "op": "contains", "value": "recursion"}]}`, false},
		{"in", `{"all": [{"fact": "block.status", "op": "in", "value": ["completed", "skipped"]}]}`, true},
		{"in miss", `{"all": [{"fact": "block.status", "op": "in", "value": ["failed", "skipped"]}]}`, false},
		{"in non-list value", `{"all": [{"fact": "block.status", "op": "in", "value": "completed"}]}`, false},
		{"unknown op", `{"all": [{"fact": "block.status", "op": "matches", "value": "x"}]}`, false},
	}
	for _, tc := range cases {
		got := EvaluateGroup(mustGroup(t, tc.raw), facts)
		if got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestEvaluateGroup_NestedGroups(t *testing.T) {
	raw := `{
		"any": [
			{"all": [
				{"fact": "quiz.scorePercent", "op": "gte", "value": 50},
				{"fact": "block.attemptsCount", "op": "lte", "value": 2}
			]},
			{"fact": "block.status", "op": "eq", "value": "skipped"}
		]
	}`
	g := mustGroup(t, raw)

	pass := Facts{"quiz.scorePercent": 60.0, "block.attemptsCount": 1.0}
	if !EvaluateGroup(g, pass) {
		t.Fatalf("expected nested all branch to match")
	}

	skip := Facts{"block.status": "skipped"}
	if !EvaluateGroup(g, skip) {
		t.Fatalf("expected leaf branch to match")
	}

	neither := Facts{"quiz.scorePercent": 40.0, "block.attemptsCount": 5.0}
	if EvaluateGroup(g, neither) {
		t.Fatalf("expected no branch to match")
	}
}

func TestEvaluateGroup_AllWinsWhenBothKeysPresent(t *testing.T) {
	raw := `{
		"all": [{"fact": "quiz.scorePercent", "op": "gte", "value": 50}],
		"any": [{"fact": "quiz.scorePercent", "op": "lt", "value": 10}]
	}`
	g := mustGroup(t, raw)
	if !EvaluateGroup(g, Facts{"quiz.scorePercent": 80.0}) {
		t.Fatalf("expected all branch to decide when both keys are present")
	}
	if EvaluateGroup(g, Facts{"quiz.scorePercent": 5.0}) {
		t.Fatalf("expected all branch to decide, ignoring any")
	}
}

func TestEvaluateGroup_NumericNormalization(t *testing.T) {
	g := mustGroup(t, `{"all": [{"fact": "quiz.totalCount", "op": "eq", "value": 4}]}`)
	if !EvaluateGroup(g, Facts{"quiz.totalCount": float64(4)}) {
		t.Fatalf("expected float64 fact to equal int value")
	}
	if !EvaluateGroup(g, Facts{"quiz.totalCount": 4}) {
		t.Fatalf("expected int fact to equal int value")
	}
}
