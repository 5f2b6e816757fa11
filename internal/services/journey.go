package services

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/journey-backend/internal/data/repos"
	types "github.com/yungbote/journey-backend/internal/domain"
	"github.com/yungbote/journey-backend/internal/domain/journeyerr"
	"github.com/yungbote/journey-backend/internal/engine"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

// JourneyDefinition is the authoring shape accepted by UpsertDefinition.
// Graph carries the definition document verbatim; it is validated before
// anything is stored.
type JourneyDefinition struct {
	TrackID     uuid.UUID
	OrderIndex  int
	Slug        string
	Title       string
	Description string
	Status      types.JourneyStatus
	Graph       json.RawMessage
}

type JourneyService interface {
	ListPublished(dbc dbctx.Context) ([]*types.Journey, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Journey, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Journey, error)
	// LoadGraph decodes and validates the stored graph document. A journey
	// whose graph fails here is unrunnable and every run operation on it
	// surfaces the same error.
	LoadGraph(j *types.Journey) (*types.Graph, error)
	NextPublishedInTrack(dbc dbctx.Context, current *types.Journey) (*types.Journey, error)
	UpsertDefinition(dbc dbctx.Context, def JourneyDefinition) (*types.Journey, error)
}

type journeyService struct {
	db       *gorm.DB
	log      *logger.Logger
	journeys repos.JourneyRepo
}

func NewJourneyService(db *gorm.DB, baseLog *logger.Logger, journeys repos.JourneyRepo) JourneyService {
	return &journeyService{
		db:       db,
		log:      baseLog.With("service", "JourneyService"),
		journeys: journeys,
	}
}

func (s *journeyService) ListPublished(dbc dbctx.Context) ([]*types.Journey, error) {
	return s.journeys.ListPublished(dbc)
}

func (s *journeyService) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Journey, error) {
	if id == uuid.Nil {
		return nil, journeyerr.New(journeyerr.CodeValidation, "journey.get", "journey id required", nil)
	}
	row, err := s.journeys.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, journeyerr.New(journeyerr.CodeNotFound, "journey.get", "journey not found", nil)
	}
	return row, nil
}

func (s *journeyService) GetBySlug(dbc dbctx.Context, slug string) (*types.Journey, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, journeyerr.New(journeyerr.CodeValidation, "journey.get", "journey slug required", nil)
	}
	row, err := s.journeys.GetBySlug(dbc, slug)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, journeyerr.New(journeyerr.CodeNotFound, "journey.get", "journey not found", nil)
	}
	return row, nil
}

func (s *journeyService) LoadGraph(j *types.Journey) (*types.Graph, error) {
	if j == nil {
		return nil, journeyerr.New(journeyerr.CodeNotFound, "journey.load_graph", "journey not found", nil)
	}
	g, err := types.DecodeGraph([]byte(j.Graph))
	if err != nil {
		return nil, journeyerr.New(journeyerr.CodeInitialization, "journey.load_graph", "graph document unreadable", err)
	}
	if err := engine.ValidateGraph(g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *journeyService) NextPublishedInTrack(dbc dbctx.Context, current *types.Journey) (*types.Journey, error) {
	if current == nil || current.TrackID == uuid.Nil {
		return nil, nil
	}
	return s.journeys.GetPublishedByTrackAndOrder(dbc, current.TrackID, current.OrderIndex+1)
}

func (s *journeyService) UpsertDefinition(dbc dbctx.Context, def JourneyDefinition) (*types.Journey, error) {
	def.Slug = strings.TrimSpace(def.Slug)
	def.Title = strings.TrimSpace(def.Title)
	if def.Slug == "" {
		return nil, journeyerr.New(journeyerr.CodeValidation, "journey.upsert", "slug required", nil)
	}
	if def.Title == "" {
		return nil, journeyerr.New(journeyerr.CodeValidation, "journey.upsert", "title required", nil)
	}
	if def.TrackID == uuid.Nil {
		return nil, journeyerr.New(journeyerr.CodeValidation, "journey.upsert", "track id required", nil)
	}
	switch def.Status {
	case "":
		def.Status = types.JourneyDraft
	case types.JourneyDraft, types.JourneyPublished, types.JourneyArchived:
	default:
		return nil, journeyerr.New(journeyerr.CodeValidation, "journey.upsert", "unknown status "+string(def.Status), nil)
	}

	g, err := types.DecodeGraph(def.Graph)
	if err != nil {
		return nil, journeyerr.New(journeyerr.CodeValidation, "journey.upsert", "graph document unreadable", err)
	}
	if err := engine.ValidateGraph(g); err != nil {
		return nil, err
	}

	row := &types.Journey{
		TrackID:     def.TrackID,
		OrderIndex:  def.OrderIndex,
		Slug:        def.Slug,
		Title:       def.Title,
		Description: def.Description,
		Status:      def.Status,
		Graph:       datatypes.JSON(append([]byte(nil), def.Graph...)),
	}
	if err := s.journeys.Upsert(dbc, row); err != nil {
		return nil, err
	}
	stored, err := s.journeys.GetBySlug(dbc, def.Slug)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, journeyerr.New(journeyerr.CodeInternal, "journey.upsert", "journey missing after upsert", nil)
	}
	s.log.Info("journey definition upserted", "slug", stored.Slug, "journey_id", stored.ID, "status", stored.Status)
	return stored, nil
}
