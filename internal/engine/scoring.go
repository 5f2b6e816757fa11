package engine

import (
	"math"

	types "github.com/yungbote/journey-backend/internal/domain"
)

// DefaultPassingScore applies when a quiz does not set its own threshold.
const DefaultPassingScore = 50

// PassingScoreOf returns the quiz's pass threshold.
func PassingScoreOf(q *types.QuizContent) float64 {
	if q != nil && q.PassingScore != nil {
		return *q.PassingScore
	}
	return DefaultPassingScore
}

// QuizResult is the server-side grade of one quiz submission.
type QuizResult struct {
	ScorePercent float64  `json:"scorePercent"`
	Passed       bool     `json:"passed"`
	CorrectCount int      `json:"correctCount"`
	TotalCount   int      `json:"totalCount"`
	WeakTopics   []string `json:"weakTopics"`
}

// ScoreQuiz grades submitted answers against the quiz content. answers maps
// question id to the chosen option index; a missing or out-of-range answer
// counts as wrong. WeakTopics is the deduplicated union of tags on wrongly
// answered questions, in first-seen order.
func ScoreQuiz(q types.QuizContent, answers map[string]int) QuizResult {
	total := len(q.Questions)
	if total == 0 {
		// a quiz with no questions grades as a perfect score
		return QuizResult{ScorePercent: 100, Passed: true, WeakTopics: []string{}}
	}

	correct := 0
	seen := make(map[string]struct{})
	weak := []string{}
	for _, question := range q.Questions {
		idx, answered := answers[question.ID]
		if answered && idx >= 0 && idx < len(question.Options) && idx == question.CorrectIndex {
			correct++
			continue
		}
		for _, tag := range question.Tags {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			weak = append(weak, tag)
		}
	}

	score := math.Round(100 * float64(correct) / float64(total))
	return QuizResult{
		ScorePercent: score,
		Passed:       score >= PassingScoreOf(&q),
		CorrectCount: correct,
		TotalCount:   total,
		WeakTopics:   weak,
	}
}

// EvaluateCheckpoint derives a checkpoint's verdict from facts the run has
// already produced. A checkpoint without a PassWhen tree always passes.
// Any reveal delay in the content is presentation only.
func EvaluateCheckpoint(c types.CheckpointContent, facts Facts) bool {
	return EvaluateGroup(c.PassWhen, facts)
}
