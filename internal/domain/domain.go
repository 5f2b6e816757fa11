package domain

import (
	"github.com/yungbote/journey-backend/internal/domain/journey"
	"github.com/yungbote/journey-backend/internal/domain/journeyerr"
)

// Persisted models.
type Journey = journey.Journey
type Run = journey.Run
type BlockState = journey.BlockState
type RunTransition = journey.RunTransition

type JourneyStatus = journey.JourneyStatus
type RunStatus = journey.RunStatus
type BlockStatus = journey.BlockStatus
type TransitionKind = journey.TransitionKind

const (
	JourneyDraft     = journey.JourneyDraft
	JourneyPublished = journey.JourneyPublished
	JourneyArchived  = journey.JourneyArchived

	RunNotStarted = journey.RunNotStarted
	RunInProgress = journey.RunInProgress
	RunCompleted  = journey.RunCompleted
	RunAbandoned  = journey.RunAbandoned

	BlockNotStarted = journey.BlockNotStarted
	BlockInProgress = journey.BlockInProgress
	BlockCompleted  = journey.BlockCompleted
	BlockFailed     = journey.BlockFailed
	BlockSkipped    = journey.BlockSkipped

	TransitionAdvance  = journey.TransitionAdvance
	TransitionFinalize = journey.TransitionFinalize
	TransitionRestart  = journey.TransitionRestart
)

// Graph wire types.
type Graph = journey.Graph
type Block = journey.Block
type Edge = journey.Edge
type BlockType = journey.BlockType
type BlockContent = journey.BlockContent
type Condition = journey.Condition
type ConditionGroup = journey.ConditionGroup
type ConditionNode = journey.ConditionNode
type Op = journey.Op

const (
	OpEq       = journey.OpEq
	OpNeq      = journey.OpNeq
	OpGt       = journey.OpGt
	OpGte      = journey.OpGte
	OpLt       = journey.OpLt
	OpLte      = journey.OpLte
	OpContains = journey.OpContains
	OpIn       = journey.OpIn
)

const (
	BlockTypeRead       = journey.BlockTypeRead
	BlockTypeVideo      = journey.BlockTypeVideo
	BlockTypeImage      = journey.BlockTypeImage
	BlockTypeQuiz       = journey.BlockTypeQuiz
	BlockTypeForm       = journey.BlockTypeForm
	BlockTypeMission    = journey.BlockTypeMission
	BlockTypeAnimation  = journey.BlockTypeAnimation
	BlockTypeAIHelp     = journey.BlockTypeAIHelp
	BlockTypeCheckpoint = journey.BlockTypeCheckpoint
	BlockTypeCode       = journey.BlockTypeCode
	BlockTypeExercise   = journey.BlockTypeExercise
	BlockTypeResource   = journey.BlockTypeResource
)

type ReadContent = journey.ReadContent
type VideoContent = journey.VideoContent
type ImageContent = journey.ImageContent
type QuizContent = journey.QuizContent
type QuizQuestion = journey.QuizQuestion
type FormContent = journey.FormContent
type FormField = journey.FormField
type MissionContent = journey.MissionContent
type AnimationContent = journey.AnimationContent
type AIHelpContent = journey.AIHelpContent
type CheckpointContent = journey.CheckpointContent
type CodeContent = journey.CodeContent
type ExerciseContent = journey.ExerciseContent
type ResourceContent = journey.ResourceContent
type ResourceLink = journey.ResourceLink
type UnknownContent = journey.UnknownContent

func DecodeGraph(raw []byte) (*Graph, error) { return journey.DecodeGraph(raw) }

// Error taxonomy.
type Error = journeyerr.Error
type ErrorCode = journeyerr.Code

const (
	CodeValidation     = journeyerr.CodeValidation
	CodeNotFound       = journeyerr.CodeNotFound
	CodeConflict       = journeyerr.CodeConflict
	CodeUnauthorized   = journeyerr.CodeUnauthorized
	CodeInitialization = journeyerr.CodeInitialization
	CodePersistence    = journeyerr.CodePersistence
	CodeGraphIntegrity = journeyerr.CodeGraphIntegrity
	CodeUnknownBlock   = journeyerr.CodeUnknownBlock
	CodeRetryable      = journeyerr.CodeRetryable
	CodeInternal       = journeyerr.CodeInternal
)
