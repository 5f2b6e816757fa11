package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/journey-backend/internal/domain"
)

// GraphJSON is a small three-block graph used by repo and service tests:
// a read block, a quiz gating on quiz.passed, and a mission. The failing
// quiz edge loops back onto the quiz itself.
const GraphJSON = `{
  "startBlockId": "intro",
  "blocks": [
    {"id": "intro", "type": "read", "content": {"title": "Welcome", "body": "Read me first."}},
    {"id": "check", "type": "quiz", "content": {"questions": [
      {"id": "q1", "prompt": "Pick the second option.", "options": ["first", "second"], "correctIndex": 1, "tags": ["basics"]}
    ]}},
    {"id": "build", "type": "mission", "content": {"title": "Build something", "steps": ["one step"]}}
  ],
  "edges": [
    {"from": "intro", "to": "check"},
    {"from": "check", "to": "build", "condition": {"all": [{"fact": "quiz.passed", "op": "eq", "value": true}]}, "priority": 1},
    {"from": "check", "to": "check", "condition": {"all": [{"fact": "quiz.passed", "op": "eq", "value": false}]}}
  ]
}`

func SeedJourney(tb testing.TB, ctx context.Context, tx *gorm.DB, slug string) *types.Journey {
	tb.Helper()
	j := &types.Journey{
		ID:         uuid.New(),
		TrackID:    uuid.New(),
		OrderIndex: 0,
		Slug:       slug,
		Title:      "Fixture Journey",
		Status:     types.JourneyPublished,
		Graph:      datatypes.JSON([]byte(GraphJSON)),
	}
	if err := tx.WithContext(ctx).Create(j).Error; err != nil {
		tb.Fatalf("seed journey: %v", err)
	}
	return j
}

func SeedRun(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, journeyID uuid.UUID, status types.RunStatus) *types.Run {
	tb.Helper()
	r := &types.Run{
		ID:             uuid.New(),
		UserID:         userID,
		JourneyID:      journeyID,
		Status:         status,
		CurrentBlockID: "intro",
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed run: %v", err)
	}
	return r
}

func SeedBlockState(tb testing.TB, ctx context.Context, tx *gorm.DB, runID uuid.UUID, blockID string, status types.BlockStatus) *types.BlockState {
	tb.Helper()
	bs := &types.BlockState{
		ID:      uuid.New(),
		RunID:   runID,
		BlockID: blockID,
		Status:  status,
	}
	if err := tx.WithContext(ctx).Create(bs).Error; err != nil {
		tb.Fatalf("seed block state: %v", err)
	}
	return bs
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }

func PtrFloat(v float64) *float64 { return &v }
