package engine

import (
	"encoding/json"
	"sort"

	types "github.com/yungbote/journey-backend/internal/domain"
)

// Facts is the named value set edge conditions evaluate against. It is
// rebuilt fresh for every evaluation and never persisted.
type Facts map[string]any

// CompletionSnapshot carries the outcome of one block completion into fact
// building. Numeric payload values arrive as float64, matching JSON decode.
type CompletionSnapshot struct {
	Score            *float64
	WeakTopics       []string
	AttemptsCount    int
	TimeSpentSeconds int
	Status           types.BlockStatus
	OutputPayload    map[string]any
}

// BuildFacts derives the fact set for a completed block. quiz is the
// block's content when the block is a quiz, nil otherwise. Scalar output
// payload entries surface as output.<key> so forms and missions can drive
// routing too.
func BuildFacts(snap CompletionSnapshot, quiz *types.QuizContent) Facts {
	facts := Facts{
		"block.attemptsCount":    float64(snap.AttemptsCount),
		"block.timeSpentSeconds": float64(snap.TimeSpentSeconds),
	}
	if snap.Status != "" {
		facts["block.status"] = string(snap.Status)
	}
	if snap.Score != nil {
		facts["quiz.scorePercent"] = *snap.Score
	}
	if snap.WeakTopics != nil {
		facts["quiz.weakTopics"] = stringsToAny(snap.WeakTopics)
	}
	if quiz != nil {
		facts["quiz.totalCount"] = float64(len(quiz.Questions))
		if snap.Score != nil {
			facts["quiz.passed"] = *snap.Score >= PassingScoreOf(quiz)
		}
	}
	for key, val := range snap.OutputPayload {
		if fv, ok := factValue(val); ok {
			facts["output."+key] = fv
		}
	}
	if c, ok := payloadNumber(snap.OutputPayload, "correctCount"); ok {
		facts["quiz.correctCount"] = c
	}
	return facts
}

// BuildRunFacts folds every completed block state of the run into one fact
// set, in completion order, so later completions win when keys collide. A
// checkpoint that routes on the preceding quiz's score therefore still sees
// quiz.scorePercent even though its own state carries no score. Checkpoint
// verdicts stored in the output payload surface as checkpoint.passed.
func BuildRunFacts(g *types.Graph, states []*types.BlockState) Facts {
	ordered := make([]*types.BlockState, 0, len(states))
	for _, st := range states {
		if st != nil && st.CompletedAt != nil {
			ordered = append(ordered, st)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CompletedAt.Before(*ordered[j].CompletedAt)
	})

	facts := Facts{}
	for _, st := range ordered {
		var quiz *types.QuizContent
		var blockType types.BlockType
		if g != nil {
			if b := g.BlockByID(st.BlockID); b != nil {
				blockType = b.Type
				if qc, ok := b.Content.(types.QuizContent); ok {
					quiz = &qc
				}
			}
		}
		snap := SnapshotOf(st)
		for k, v := range BuildFacts(snap, quiz) {
			facts[k] = v
		}
		if blockType == types.BlockTypeCheckpoint && snap.OutputPayload != nil {
			if passed, ok := snap.OutputPayload["passed"].(bool); ok {
				facts["checkpoint.passed"] = passed
			}
		}
	}
	return facts
}

// SnapshotOf adapts a persisted block state into a completion snapshot.
func SnapshotOf(bs *types.BlockState) CompletionSnapshot {
	snap := CompletionSnapshot{
		Score:            bs.Score,
		AttemptsCount:    bs.AttemptsCount,
		TimeSpentSeconds: bs.TimeSpentSeconds,
		Status:           bs.Status,
	}
	if len(bs.WeakTopics) > 0 {
		var topics []string
		if err := json.Unmarshal(bs.WeakTopics, &topics); err == nil {
			snap.WeakTopics = topics
		}
	}
	if len(bs.OutputPayload) > 0 {
		var payload map[string]any
		if err := json.Unmarshal(bs.OutputPayload, &payload); err == nil {
			snap.OutputPayload = payload
		}
	}
	return snap
}

// factValue filters payload values down to the shapes conditions can
// compare: scalars and lists of scalars. Nested objects are dropped.
func factValue(v any) (any, bool) {
	switch t := v.(type) {
	case string, bool, float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case []any:
		out := make([]any, 0, len(t))
		for _, e := range t {
			fe, ok := factValue(e)
			if !ok {
				return nil, false
			}
			out = append(out, fe)
		}
		return out, true
	case []string:
		return stringsToAny(t), true
	default:
		return nil, false
	}
}

func payloadNumber(payload map[string]any, key string) (float64, bool) {
	if payload == nil {
		return 0, false
	}
	return asNumber(payload[key])
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
