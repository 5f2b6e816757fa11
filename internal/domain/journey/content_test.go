package journey

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestBlock_DecodesQuizContent(t *testing.T) {
	raw := `{
		"id": "check",
		"type": "quiz",
		"content": {
			"title": "Check your understanding",
			"passingScore": 70,
			"questions": [
				{"id": "q1", "prompt": "Pick one", "options": ["a", "b", "c"], "correctIndex": 2, "tags": ["union-types"]}
			]
		}
	}`
	var b Block
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if b.ID != "check" || b.Type != BlockTypeQuiz {
		t.Fatalf("unexpected envelope: %#v", b)
	}
	q, ok := b.Content.(QuizContent)
	if !ok {
		t.Fatalf("expected QuizContent, got %T", b.Content)
	}
	if q.PassingScore == nil || *q.PassingScore != 70 {
		t.Fatalf("passingScore = %v", q.PassingScore)
	}
	if len(q.Questions) != 1 || q.Questions[0].CorrectIndex != 2 {
		t.Fatalf("questions = %#v", q.Questions)
	}
	if len(q.Questions[0].Tags) != 1 || q.Questions[0].Tags[0] != "union-types" {
		t.Fatalf("tags = %v", q.Questions[0].Tags)
	}
}

func TestBlock_QuizWithoutPassingScoreKeepsNil(t *testing.T) {
	raw := `{"id": "q", "type": "quiz", "content": {"questions": []}}`
	var b Block
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	q := b.Content.(QuizContent)
	if q.PassingScore != nil {
		t.Fatalf("expected nil passingScore, got %v", *q.PassingScore)
	}
}

func TestBlock_DecodesEveryKnownType(t *testing.T) {
	cases := []struct {
		typ  BlockType
		body string
		want func(BlockContent) bool
	}{
		{BlockTypeRead, `{"title": "t", "body": "b"}`, func(c BlockContent) bool { r, ok := c.(ReadContent); return ok && r.Body == "b" }},
		{BlockTypeVideo, `{"title": "t", "url": "u"}`, func(c BlockContent) bool { v, ok := c.(VideoContent); return ok && v.URL == "u" }},
		{BlockTypeImage, `{"url": "u", "alt": "a"}`, func(c BlockContent) bool { v, ok := c.(ImageContent); return ok && v.Alt == "a" }},
		{BlockTypeQuiz, `{"questions": []}`, func(c BlockContent) bool { _, ok := c.(QuizContent); return ok }},
		{BlockTypeForm, `{"fields": [{"id": "f", "label": "l", "kind": "text"}]}`, func(c BlockContent) bool { v, ok := c.(FormContent); return ok && len(v.Fields) == 1 }},
		{BlockTypeMission, `{"title": "m", "steps": ["s1"]}`, func(c BlockContent) bool { v, ok := c.(MissionContent); return ok && len(v.Steps) == 1 }},
		{BlockTypeAnimation, `{"url": "u", "loop": true}`, func(c BlockContent) bool { v, ok := c.(AnimationContent); return ok && v.Loop }},
		{BlockTypeAIHelp, `{"prompt": "p"}`, func(c BlockContent) bool { v, ok := c.(AIHelpContent); return ok && v.Prompt == "p" }},
		{BlockTypeCheckpoint, `{"passWhen": {"all": []}, "revealDelaySeconds": 2}`, func(c BlockContent) bool {
			v, ok := c.(CheckpointContent)
			return ok && v.PassWhen != nil && v.RevealDelaySeconds == 2
		}},
		{BlockTypeCode, `{"language": "go", "starter": "package main"}`, func(c BlockContent) bool { v, ok := c.(CodeContent); return ok && v.Language == "go" }},
		{BlockTypeExercise, `{"title": "e", "hints": ["h"]}`, func(c BlockContent) bool { v, ok := c.(ExerciseContent); return ok && len(v.Hints) == 1 }},
		{BlockTypeResource, `{"links": [{"label": "l", "url": "u"}]}`, func(c BlockContent) bool { v, ok := c.(ResourceContent); return ok && len(v.Links) == 1 }},
	}
	for _, tc := range cases {
		raw := `{"id": "x", "type": "` + string(tc.typ) + `", "content": ` + tc.body + `}`
		var b Block
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			t.Fatalf("%s: unmarshal: %v", tc.typ, err)
		}
		if !tc.want(b.Content) {
			t.Fatalf("%s: unexpected content %#v", tc.typ, b.Content)
		}
	}
}

func TestBlock_UnknownTypeRoundTripsVerbatim(t *testing.T) {
	payload := `{"shape":"cube","spin":true,"frames":[1,2,3]}`
	raw := `{"id":"h1","type":"hologram","content":` + payload + `}`
	var b Block
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	u, ok := b.Content.(UnknownContent)
	if !ok {
		t.Fatalf("expected UnknownContent, got %T", b.Content)
	}
	if u.Type != "hologram" {
		t.Fatalf("type = %q", u.Type)
	}

	out, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var in, rt map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		t.Fatalf("reparse input: %v", err)
	}
	if err := json.Unmarshal(out, &rt); err != nil {
		t.Fatalf("reparse output: %v", err)
	}
	if !bytes.Equal(compactJSON(t, in["content"]), compactJSON(t, rt["content"])) {
		t.Fatalf("content changed: in=%s out=%s", in["content"], rt["content"])
	}
}

func compactJSON(t *testing.T, raw json.RawMessage) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		t.Fatalf("compact: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeGraph_ParsesWireShape(t *testing.T) {
	raw := `{
		"startBlockId": "a",
		"blocks": [
			{"id": "a", "type": "quiz", "content": {"passingScore": 50, "questions": [{"id": "q1", "prompt": "?", "options": ["x", "y"], "correctIndex": 0}]}},
			{"id": "b", "type": "mission", "content": {"title": "Go"}},
			{"id": "c", "type": "ai_help", "content": {"prompt": "help"}}
		],
		"edges": [
			{"from": "a", "to": "b", "condition": {"all": [{"fact": "quiz.scorePercent", "op": "gte", "value": 50}]}, "label": "passed"},
			{"from": "a", "to": "c", "condition": {"all": [{"fact": "quiz.scorePercent", "op": "lt", "value": 50}]}},
			{"from": "c", "to": "a"}
		]
	}`
	g, err := DecodeGraph([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if g.StartBlockID != "a" || len(g.Blocks) != 3 || len(g.Edges) != 3 {
		t.Fatalf("unexpected graph: %#v", g)
	}
	if g.Edges[0].Label != "passed" {
		t.Fatalf("label = %q", g.Edges[0].Label)
	}
	if g.Edges[2].Condition != nil {
		t.Fatalf("expected unconditional edge")
	}
	if b := g.BlockByID("b"); b == nil || b.Type != BlockTypeMission {
		t.Fatalf("BlockByID(b) = %#v", b)
	}
	if g.BlockByID("ghost") != nil {
		t.Fatalf("expected nil for unknown id")
	}
}

func TestDecodeGraph_RejectsEmptyAndMalformed(t *testing.T) {
	if _, err := DecodeGraph(nil); err == nil {
		t.Fatalf("expected error for empty document")
	}
	if _, err := DecodeGraph([]byte(`{"startBlockId": `)); err == nil {
		t.Fatalf("expected error for malformed document")
	}
}
