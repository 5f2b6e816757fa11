package journey

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/journey-backend/internal/data/repos/testutil"
	types "github.com/yungbote/journey-backend/internal/domain"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
)

func TestJourneyRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewJourneyRepo(db, testutil.Logger(t))

	trackID := uuid.New()
	first := &types.Journey{
		TrackID:    trackID,
		OrderIndex: 0,
		Slug:       "graphs-101",
		Title:      "Graphs 101",
		Status:     types.JourneyPublished,
		Graph:      datatypes.JSON([]byte(testutil.GraphJSON)),
	}
	if err := repo.Upsert(dbc, first); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if first.ID == uuid.Nil {
		t.Fatalf("Upsert: id not stamped")
	}

	got, err := repo.GetByID(dbc, first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Slug != "graphs-101" {
		t.Fatalf("GetByID: got %#v", got)
	}

	bySlug, err := repo.GetBySlug(dbc, "graphs-101")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if bySlug == nil || bySlug.ID != first.ID {
		t.Fatalf("GetBySlug: got %#v", bySlug)
	}

	// Upserting the same slug updates the existing row in place.
	again := &types.Journey{
		TrackID:    trackID,
		OrderIndex: 0,
		Slug:       "graphs-101",
		Title:      "Graphs 101, revised",
		Status:     types.JourneyPublished,
		Graph:      datatypes.JSON([]byte(testutil.GraphJSON)),
	}
	if err := repo.Upsert(dbc, again); err != nil {
		t.Fatalf("Upsert same slug: %v", err)
	}
	updated, err := repo.GetBySlug(dbc, "graphs-101")
	if err != nil {
		t.Fatalf("GetBySlug after upsert: %v", err)
	}
	if updated == nil || updated.ID != first.ID {
		t.Fatalf("Upsert same slug: expected row %v kept, got %#v", first.ID, updated)
	}
	if updated.Title != "Graphs 101, revised" {
		t.Fatalf("Upsert same slug: title not updated, got %q", updated.Title)
	}

	second := &types.Journey{
		TrackID:    trackID,
		OrderIndex: 1,
		Slug:       "graphs-201",
		Title:      "Graphs 201",
		Status:     types.JourneyPublished,
		Graph:      datatypes.JSON([]byte(testutil.GraphJSON)),
	}
	if err := repo.Upsert(dbc, second); err != nil {
		t.Fatalf("Upsert second: %v", err)
	}
	draft := &types.Journey{
		TrackID:    trackID,
		OrderIndex: 2,
		Slug:       "graphs-301-draft",
		Title:      "Graphs 301",
		Status:     types.JourneyDraft,
		Graph:      datatypes.JSON([]byte(testutil.GraphJSON)),
	}
	if err := repo.Upsert(dbc, draft); err != nil {
		t.Fatalf("Upsert draft: %v", err)
	}

	// ListPublished orders by (track, order_index) and excludes drafts.
	list, err := repo.ListPublished(dbc)
	if err != nil {
		t.Fatalf("ListPublished: %v", err)
	}
	posFirst, posSecond := -1, -1
	for i, j := range list {
		switch j.Slug {
		case "graphs-101":
			posFirst = i
		case "graphs-201":
			posSecond = i
		case "graphs-301-draft":
			t.Fatalf("ListPublished: draft included")
		}
	}
	if posFirst == -1 || posSecond == -1 {
		t.Fatalf("ListPublished: seeded journeys missing (first=%d second=%d)", posFirst, posSecond)
	}
	if posFirst > posSecond {
		t.Fatalf("ListPublished: order_index ordering violated (first=%d second=%d)", posFirst, posSecond)
	}

	// GetPublishedByTrackAndOrder finds the published successor only.
	next, err := repo.GetPublishedByTrackAndOrder(dbc, trackID, 1)
	if err != nil {
		t.Fatalf("GetPublishedByTrackAndOrder: %v", err)
	}
	if next == nil || next.ID != second.ID {
		t.Fatalf("GetPublishedByTrackAndOrder: got %#v", next)
	}
	if miss, err := repo.GetPublishedByTrackAndOrder(dbc, trackID, 2); err != nil || miss != nil {
		t.Fatalf("GetPublishedByTrackAndOrder draft slot: err=%v got=%#v", err, miss)
	}
	if miss, err := repo.GetPublishedByTrackAndOrder(dbc, trackID, 99); err != nil || miss != nil {
		t.Fatalf("GetPublishedByTrackAndOrder missing slot: err=%v got=%#v", err, miss)
	}

	// UpdateFields
	if err := repo.UpdateFields(dbc, first.ID, map[string]any{"status": types.JourneyArchived}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	archived, err := repo.GetByID(dbc, first.ID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if archived.Status != types.JourneyArchived {
		t.Fatalf("UpdateFields: status = %q", archived.Status)
	}

	// Nil and empty lookups are quiet misses.
	if row, err := repo.GetByID(dbc, uuid.Nil); err != nil || row != nil {
		t.Fatalf("GetByID nil: err=%v row=%#v", err, row)
	}
	if row, err := repo.GetBySlug(dbc, ""); err != nil || row != nil {
		t.Fatalf("GetBySlug empty: err=%v row=%#v", err, row)
	}
}
