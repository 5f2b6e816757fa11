package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/journey-backend/internal/data/repos"
	types "github.com/yungbote/journey-backend/internal/domain"
	"github.com/yungbote/journey-backend/internal/domain/journeyerr"
	"github.com/yungbote/journey-backend/internal/engine"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

// CompletionEvent is one block-completion submission from the UI. EventID
// makes the submission replayable: the same id applied twice produces one
// set of effects and two identical responses. Answers carries quiz
// submissions (question id -> chosen option index) and triggers
// server-side grading; Score and WeakTopics are taken verbatim only when
// no answers are present.
type CompletionEvent struct {
	EventID    uuid.UUID
	BlockID    string
	Output     map[string]any
	Score      *float64
	WeakTopics []string
	Answers    map[string]int
}

// RunStats are the aggregates computed when a run finishes (and on demand
// for the summary endpoint). TotalTimeSeconds sums every block state of
// the run including the final one; AverageScore is the rounded mean of the
// states that carry a score, nil when none do.
type RunStats struct {
	TotalTimeSeconds int      `json:"total_time_seconds"`
	AverageScore     *float64 `json:"average_score,omitempty"`
	BlocksCompleted  int      `json:"blocks_completed"`
}

// NextModuleRef points at the published journey that follows the finished
// one inside its track. The journey row doubles as the module version, so
// VersionID is that journey's id.
type NextModuleRef struct {
	VersionID uuid.UUID `json:"version_id"`
	Title     string    `json:"title"`
}

// ActiveBlock pairs a graph block with its state row for this run.
type ActiveBlock struct {
	Block *types.Block      `json:"block"`
	State *types.BlockState `json:"state"`
}

// EnterResult is the resume point handed to the UI: the run, the block the
// pointer rests on, and that block's state.
type EnterResult struct {
	Run     *types.Run        `json:"run"`
	Block   *types.Block      `json:"block"`
	State   *types.BlockState `json:"block_state"`
	Created bool              `json:"created"`
}

// RunCompletion is the terminal payload: aggregate stats plus the next
// published module of the track when one exists.
type RunCompletion struct {
	Stats      RunStats       `json:"stats"`
	NextModule *NextModuleRef `json:"next_module,omitempty"`
}

// CompleteResult reports what one completion event did. Exactly one of
// Next and Completion is set: Next when an edge matched, Completion when
// none did and the run was finalized.
type CompleteResult struct {
	Run        *types.Run        `json:"run"`
	BlockState *types.BlockState `json:"block_state"`
	Next       *ActiveBlock      `json:"next,omitempty"`
	Completion *RunCompletion    `json:"completion,omitempty"`
	Finished   bool              `json:"finished"`
	Replayed   bool              `json:"replayed,omitempty"`
}

// RunSummary is the on-demand stats read, available mid-run.
type RunSummary struct {
	Run   *types.Run `json:"run"`
	Stats RunStats   `json:"stats"`
}

// FlowService is the journey orchestrator. Every operation loads the
// journey graph, validates it, and runs its writes inside one
// transaction, so a failure leaves the run exactly where the last
// completed event put it.
type FlowService interface {
	// Enter resolves the resume point: the active run (created at the
	// start block when absent) and the block its pointer rests on, with
	// that block's state promoted to in_progress.
	Enter(ctx context.Context, userID, journeyID uuid.UUID) (*EnterResult, error)
	// Complete consumes one completion event: persist the outcome, build
	// facts, resolve the next edge, then advance or finalize.
	Complete(ctx context.Context, userID, journeyID uuid.UUID, event CompletionEvent) (*CompleteResult, error)
	// Restart resets the newest run of the journey back to the start
	// block, deleting its block states. Idempotent.
	Restart(ctx context.Context, userID, journeyID uuid.UUID) (*EnterResult, error)
	// Summary computes aggregate stats for the newest run at any time.
	Summary(ctx context.Context, userID, journeyID uuid.UUID) (*RunSummary, error)
}

type flowService struct {
	log         *logger.Logger
	journeys    JourneyService
	runs        RunService
	blockStates BlockStateService
	transitions repos.RunTransitionRepo
	tx          repos.TxRunner
	notifier    RunNotifier
}

func NewFlowService(
	baseLog *logger.Logger,
	journeys JourneyService,
	runs RunService,
	blockStates BlockStateService,
	transitions repos.RunTransitionRepo,
	tx repos.TxRunner,
	notifier RunNotifier,
) FlowService {
	return &flowService{
		log:         baseLog.With("service", "FlowService"),
		journeys:    journeys,
		runs:        runs,
		blockStates: blockStates,
		transitions: transitions,
		tx:          tx,
		notifier:    notifier,
	}
}

// errEventRaced marks the case where a concurrent submission of the same
// event id recorded its transition first. The losing transaction rolls
// back and the caller re-reads the winner's outcome.
var errEventRaced = errors.New("completion event already recorded")

func (s *flowService) loadJourneyGraph(ctx context.Context, journeyID uuid.UUID) (*types.Journey, *types.Graph, error) {
	dbc := dbctx.Context{Ctx: ctx}
	j, err := s.journeys.GetByID(dbc, journeyID)
	if err != nil {
		return nil, nil, err
	}
	g, err := s.journeys.LoadGraph(j)
	if err != nil {
		return nil, nil, err
	}
	return j, g, nil
}

func (s *flowService) Enter(ctx context.Context, userID, journeyID uuid.UUID) (*EnterResult, error) {
	if userID == uuid.Nil {
		return nil, journeyerr.New(journeyerr.CodeUnauthorized, "flow.enter", "user required", nil)
	}
	j, graph, err := s.loadJourneyGraph(ctx, journeyID)
	if err != nil {
		return nil, err
	}

	var res *EnterResult
	err = s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		run, created, err := s.runs.LoadOrCreateActive(dbc, userID, j.ID, graph.StartBlockID)
		if err != nil {
			return err
		}
		if graph.BlockByID(run.CurrentBlockID) == nil {
			// The definition changed underneath a live run; resume from
			// the start block rather than pointing into the void.
			s.log.Warn("run pointer references a block absent from the graph; resetting to start",
				"run_id", run.ID, "block_id", run.CurrentBlockID, "start_block_id", graph.StartBlockID)
			if err := s.runs.AdvancePointer(dbc, run.ID, graph.StartBlockID); err != nil {
				return err
			}
			run.CurrentBlockID = graph.StartBlockID
			run.Status = types.RunInProgress
		}
		state, err := s.blockStates.LoadOrCreate(dbc, run.ID, run.CurrentBlockID)
		if err != nil {
			return err
		}
		if s.notifier != nil {
			if created {
				s.notifier.RunStarted(dbc.Ctx, userID, run)
			}
			s.notifier.BlockEntered(dbc.Ctx, userID, run, run.CurrentBlockID)
		}
		res = &EnterResult{
			Run:     run,
			Block:   graph.BlockByID(run.CurrentBlockID),
			State:   state,
			Created: created,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *flowService) Complete(ctx context.Context, userID, journeyID uuid.UUID, event CompletionEvent) (*CompleteResult, error) {
	if userID == uuid.Nil {
		return nil, journeyerr.New(journeyerr.CodeUnauthorized, "flow.complete", "user required", nil)
	}
	if event.BlockID == "" {
		return nil, journeyerr.New(journeyerr.CodeValidation, "flow.complete", "block id required", nil)
	}
	if event.EventID == uuid.Nil {
		// No client event id means no replay protection for this submission.
		event.EventID = uuid.New()
	}
	j, graph, err := s.loadJourneyGraph(ctx, journeyID)
	if err != nil {
		return nil, err
	}

	var res *CompleteResult
	err = s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		r, err := s.completeInTx(dbc, userID, j, graph, event)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if errors.Is(err, errEventRaced) {
		// The concurrent twin committed; answer with its outcome.
		err = s.tx.InTx(ctx, func(dbc dbctx.Context) error {
			r, err := s.replayFromLog(dbc, userID, j, graph, event)
			if err != nil {
				return err
			}
			res = r
			return nil
		})
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *flowService) completeInTx(dbc dbctx.Context, userID uuid.UUID, j *types.Journey, graph *types.Graph, event CompletionEvent) (*CompleteResult, error) {
	const op = "flow.complete"

	run, err := s.runs.GetActive(dbc, userID, j.ID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		// The run may have been finalized by an earlier delivery of this
		// same event; check the newest run's transition log before failing.
		latest, err := s.runs.LatestForJourney(dbc, userID, j.ID)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			tr, err := s.transitions.GetByEvent(dbc, latest.ID, event.EventID)
			if err != nil {
				return nil, err
			}
			if tr != nil {
				return s.resultFromTransition(dbc, latest, graph, tr, event)
			}
		}
		return nil, journeyerr.New(journeyerr.CodeNotFound, op, "no active run for journey", nil)
	}

	if tr, err := s.transitions.GetByEvent(dbc, run.ID, event.EventID); err != nil {
		return nil, err
	} else if tr != nil {
		return s.resultFromTransition(dbc, run, graph, tr, event)
	}

	block := graph.BlockByID(event.BlockID)
	if block == nil {
		return nil, journeyerr.New(journeyerr.CodeValidation, op, "block "+event.BlockID+" is not part of the journey", nil)
	}

	all, err := s.blockStates.ListByRun(dbc, run.ID)
	if err != nil {
		return nil, err
	}

	outcome := s.buildOutcome(block, all, graph, event)
	state, err := s.blockStates.Complete(dbc, run.ID, event.BlockID, outcome)
	if err != nil {
		return nil, err
	}
	all = replaceState(all, state)

	facts := engine.BuildRunFacts(graph, all)
	nextID, ok := engine.ResolveNext(event.BlockID, graph.Edges, facts)

	if s.notifier != nil {
		s.notifier.BlockCompleted(dbc.Ctx, userID, run, state)
	}

	if ok {
		next := graph.BlockByID(nextID)
		if next == nil {
			return nil, journeyerr.New(journeyerr.CodeGraphIntegrity, op, "edge target "+nextID+" is not part of the journey", nil)
		}
		if err := s.runs.AdvancePointer(dbc, run.ID, nextID); err != nil {
			return nil, err
		}
		run.CurrentBlockID = nextID
		run.Status = types.RunInProgress
		nextState, err := s.blockStates.LoadOrCreate(dbc, run.ID, nextID)
		if err != nil {
			return nil, err
		}
		if err := s.recordTransition(dbc, run, userID, event.EventID, types.TransitionAdvance, event.BlockID, &nextID); err != nil {
			return nil, err
		}
		if s.notifier != nil {
			s.notifier.BlockEntered(dbc.Ctx, userID, run, nextID)
		}
		return &CompleteResult{
			Run:        run,
			BlockState: state,
			Next:       &ActiveBlock{Block: next, State: nextState},
		}, nil
	}

	// No outgoing match: this path ends the journey.
	stats := ComputeRunStats(all)
	if err := s.runs.Finalize(dbc, run.ID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	run.Status = types.RunCompleted
	run.CompletedAt = &now
	nextModule, err := s.nextModuleRef(dbc, j)
	if err != nil {
		return nil, err
	}
	if err := s.recordTransition(dbc, run, userID, event.EventID, types.TransitionFinalize, event.BlockID, nil); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.RunFinished(dbc.Ctx, userID, run, stats)
	}
	return &CompleteResult{
		Run:        run,
		BlockState: state,
		Completion: &RunCompletion{Stats: stats, NextModule: nextModule},
		Finished:   true,
	}, nil
}

// buildOutcome grades the event against the block's content. Quizzes with
// submitted answers are rescored server-side; checkpoints derive their
// verdict from facts the run has already produced; everything else passes
// the reported outcome through. Unknown block types are inert.
func (s *flowService) buildOutcome(block *types.Block, priorStates []*types.BlockState, graph *types.Graph, event CompletionEvent) BlockOutcome {
	outcome := BlockOutcome{
		Score:      event.Score,
		WeakTopics: event.WeakTopics,
		Output:     event.Output,
	}
	switch content := block.Content.(type) {
	case types.QuizContent:
		if event.Answers == nil {
			return outcome
		}
		result := engine.ScoreQuiz(content, event.Answers)
		output := cloneOutput(event.Output)
		output["answers"] = answersOutput(event.Answers)
		output["correctCount"] = result.CorrectCount
		output["totalCount"] = result.TotalCount
		output["passed"] = result.Passed
		outcome.Score = &result.ScorePercent
		outcome.WeakTopics = result.WeakTopics
		outcome.Output = output
	case types.CheckpointContent:
		// The reveal delay in the content is presentation only; the
		// verdict is available the moment the event arrives.
		passed := engine.EvaluateCheckpoint(content, engine.BuildRunFacts(graph, priorStates))
		output := cloneOutput(event.Output)
		output["passed"] = passed
		outcome.Output = output
	}
	return outcome
}

func (s *flowService) recordTransition(dbc dbctx.Context, run *types.Run, userID, eventID uuid.UUID, kind types.TransitionKind, from string, to *string) error {
	created, err := s.transitions.Create(dbc, &types.RunTransition{
		RunID:       run.ID,
		EventID:     eventID,
		UserID:      userID,
		Kind:        kind,
		FromBlockID: from,
		ToBlockID:   to,
	})
	if err != nil {
		return err
	}
	if !created {
		return journeyerr.New(journeyerr.CodeConflict, "flow.complete", "completion event already recorded", errEventRaced)
	}
	return nil
}

// replayFromLog serves a completion whose transaction lost the unique-index
// race on (run, event): the winner's transition row now exists, so the
// response is reconstructed from it.
func (s *flowService) replayFromLog(dbc dbctx.Context, userID uuid.UUID, j *types.Journey, graph *types.Graph, event CompletionEvent) (*CompleteResult, error) {
	run, err := s.runs.GetActive(dbc, userID, j.ID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		run, err = s.runs.LatestForJourney(dbc, userID, j.ID)
		if err != nil {
			return nil, err
		}
	}
	if run == nil {
		return nil, journeyerr.New(journeyerr.CodeNotFound, "flow.complete", "no run for journey", nil)
	}
	tr, err := s.transitions.GetByEvent(dbc, run.ID, event.EventID)
	if err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, journeyerr.New(journeyerr.CodeInternal, "flow.complete", "raced completion event has no transition", nil)
	}
	return s.resultFromTransition(dbc, run, graph, tr, event)
}

// resultFromTransition rebuilds the response a previous delivery of this
// event produced, without applying any effects.
func (s *flowService) resultFromTransition(dbc dbctx.Context, run *types.Run, graph *types.Graph, tr *types.RunTransition, event CompletionEvent) (*CompleteResult, error) {
	state, err := s.blockStates.Get(dbc, run.ID, event.BlockID)
	if err != nil {
		return nil, err
	}

	switch tr.Kind {
	case types.TransitionFinalize:
		all, err := s.blockStates.ListByRun(dbc, run.ID)
		if err != nil {
			return nil, err
		}
		j, err := s.journeys.GetByID(dbc, run.JourneyID)
		if err != nil {
			return nil, err
		}
		nextModule, err := s.nextModuleRef(dbc, j)
		if err != nil {
			return nil, err
		}
		return &CompleteResult{
			Run:        run,
			BlockState: state,
			Completion: &RunCompletion{Stats: ComputeRunStats(all), NextModule: nextModule},
			Finished:   true,
			Replayed:   true,
		}, nil
	default:
		// advance (or a reused restart id): the pointer already rests on
		// the destination block.
		current := graph.BlockByID(run.CurrentBlockID)
		currentState, err := s.blockStates.Get(dbc, run.ID, run.CurrentBlockID)
		if err != nil {
			return nil, err
		}
		return &CompleteResult{
			Run:        run,
			BlockState: state,
			Next:       &ActiveBlock{Block: current, State: currentState},
			Replayed:   true,
		}, nil
	}
}

func (s *flowService) nextModuleRef(dbc dbctx.Context, j *types.Journey) (*NextModuleRef, error) {
	next, err := s.journeys.NextPublishedInTrack(dbc, j)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, nil
	}
	return &NextModuleRef{VersionID: next.ID, Title: next.Title}, nil
}

func (s *flowService) Restart(ctx context.Context, userID, journeyID uuid.UUID) (*EnterResult, error) {
	if userID == uuid.Nil {
		return nil, journeyerr.New(journeyerr.CodeUnauthorized, "flow.restart", "user required", nil)
	}
	j, graph, err := s.loadJourneyGraph(ctx, journeyID)
	if err != nil {
		return nil, err
	}

	var res *EnterResult
	err = s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		run, err := s.newestRun(dbc, userID, j.ID)
		if err != nil {
			return err
		}
		if run == nil {
			return journeyerr.New(journeyerr.CodeNotFound, "flow.restart", "no run to restart", nil)
		}
		if err := s.runs.Restart(dbc, run.ID, graph.StartBlockID); err != nil {
			return err
		}
		run.CurrentBlockID = graph.StartBlockID
		run.Status = types.RunInProgress
		run.CompletedAt = nil

		state, err := s.blockStates.LoadOrCreate(dbc, run.ID, graph.StartBlockID)
		if err != nil {
			return err
		}
		start := graph.StartBlockID
		if err := s.recordTransition(dbc, run, userID, uuid.New(), types.TransitionRestart, "", &start); err != nil {
			return err
		}
		if s.notifier != nil {
			s.notifier.RunRestarted(dbc.Ctx, userID, run)
			s.notifier.BlockEntered(dbc.Ctx, userID, run, graph.StartBlockID)
		}
		res = &EnterResult{
			Run:   run,
			Block: graph.BlockByID(graph.StartBlockID),
			State: state,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *flowService) Summary(ctx context.Context, userID, journeyID uuid.UUID) (*RunSummary, error) {
	if userID == uuid.Nil {
		return nil, journeyerr.New(journeyerr.CodeUnauthorized, "flow.summary", "user required", nil)
	}
	dbc := dbctx.Context{Ctx: ctx}
	run, err := s.newestRun(dbc, userID, journeyID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, journeyerr.New(journeyerr.CodeNotFound, "flow.summary", "no run for journey", nil)
	}
	states, err := s.blockStates.ListByRun(dbc, run.ID)
	if err != nil {
		return nil, err
	}
	return &RunSummary{Run: run, Stats: ComputeRunStats(states)}, nil
}

// newestRun prefers the active run and falls back to the most recent
// terminal one, so summary and restart keep working after a finalize.
func (s *flowService) newestRun(dbc dbctx.Context, userID, journeyID uuid.UUID) (*types.Run, error) {
	run, err := s.runs.GetActive(dbc, userID, journeyID)
	if err != nil {
		return nil, err
	}
	if run != nil {
		return run, nil
	}
	return s.runs.LatestForJourney(dbc, userID, journeyID)
}

// ComputeRunStats aggregates a run's block states: total time across all
// of them, completed count, and the rounded mean of the non-null scores.
func ComputeRunStats(states []*types.BlockState) RunStats {
	stats := RunStats{}
	var scoreSum float64
	var scoreCount int
	for _, st := range states {
		if st == nil {
			continue
		}
		stats.TotalTimeSeconds += st.TimeSpentSeconds
		if st.Status == types.BlockCompleted {
			stats.BlocksCompleted++
		}
		if st.Score != nil {
			scoreSum += *st.Score
			scoreCount++
		}
	}
	if scoreCount > 0 {
		avg := math.Round(scoreSum / float64(scoreCount))
		stats.AverageScore = &avg
	}
	return stats
}

func replaceState(states []*types.BlockState, updated *types.BlockState) []*types.BlockState {
	if updated == nil {
		return states
	}
	for i, st := range states {
		if st != nil && st.ID == updated.ID {
			states[i] = updated
			return states
		}
	}
	return append(states, updated)
}

func cloneOutput(in map[string]any) map[string]any {
	out := make(map[string]any, len(in)+4)
	for k, v := range in {
		out[k] = v
	}
	return out
}

// answersOutput normalizes the answer map for storage so it round-trips
// as plain JSON numbers.
func answersOutput(answers map[string]int) map[string]any {
	out := make(map[string]any, len(answers))
	for k, v := range answers {
		out[k] = v
	}
	return out
}
