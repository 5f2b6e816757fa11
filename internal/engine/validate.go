package engine

import (
	"fmt"
	"strings"

	types "github.com/yungbote/journey-backend/internal/domain"
	"github.com/yungbote/journey-backend/internal/domain/journeyerr"
)

// ValidateGraph checks structural integrity of a journey definition before
// it is ever run: unique block ids, a resolvable start block, edges that
// reference existing blocks, well-formed conditions, and the per-type
// content requirements. Every problem found is reported in one error.
// Unrecognized block types pass validation; the renderer owns the fallback.
func ValidateGraph(g *types.Graph) error {
	const op = "engine.ValidateGraph"
	if g == nil {
		return journeyerr.New(journeyerr.CodeGraphIntegrity, op, "graph is nil", nil)
	}

	var problems []string
	ids := make(map[string]struct{}, len(g.Blocks))
	for i := range g.Blocks {
		b := &g.Blocks[i]
		if b.ID == "" {
			problems = append(problems, fmt.Sprintf("block at index %d has an empty id", i))
			continue
		}
		if _, dup := ids[b.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate block id %q", b.ID))
			continue
		}
		ids[b.ID] = struct{}{}
		problems = append(problems, validateContent(b)...)
	}

	if g.StartBlockID == "" {
		problems = append(problems, "startBlockId is empty")
	} else if _, ok := ids[g.StartBlockID]; !ok {
		problems = append(problems, fmt.Sprintf("startBlockId %q does not reference a block", g.StartBlockID))
	}

	for i := range g.Edges {
		e := &g.Edges[i]
		if _, ok := ids[e.From]; !ok {
			problems = append(problems, fmt.Sprintf("edge %d: from %q does not reference a block", i, e.From))
		}
		if _, ok := ids[e.To]; !ok {
			problems = append(problems, fmt.Sprintf("edge %d: to %q does not reference a block", i, e.To))
		}
		problems = append(problems, validateConditionGroup(e.Condition, fmt.Sprintf("edge %d", i))...)
	}

	if len(problems) > 0 {
		return journeyerr.New(journeyerr.CodeGraphIntegrity, op, strings.Join(problems, "; "), nil)
	}
	return nil
}

func validateContent(b *types.Block) []string {
	var problems []string
	switch c := b.Content.(type) {
	case types.QuizContent:
		if len(c.Questions) == 0 {
			problems = append(problems, fmt.Sprintf("quiz block %q has no questions", b.ID))
		}
		for _, q := range c.Questions {
			if q.ID == "" {
				problems = append(problems, fmt.Sprintf("quiz block %q has a question with an empty id", b.ID))
			}
			if len(q.Options) == 0 {
				problems = append(problems, fmt.Sprintf("quiz block %q question %q has no options", b.ID, q.ID))
			} else if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
				problems = append(problems, fmt.Sprintf("quiz block %q question %q correctIndex %d out of range", b.ID, q.ID, q.CorrectIndex))
			}
		}
	case types.CheckpointContent:
		problems = append(problems, validateConditionGroup(c.PassWhen, fmt.Sprintf("checkpoint block %q", b.ID))...)
	case types.FormContent:
		for _, f := range c.Fields {
			if f.ID == "" {
				problems = append(problems, fmt.Sprintf("form block %q has a field with an empty id", b.ID))
			}
		}
	}
	return problems
}

func validateConditionGroup(g *types.ConditionGroup, where string) []string {
	if g == nil {
		return nil
	}
	var problems []string
	for _, n := range g.All {
		problems = append(problems, validateConditionNode(n, where)...)
	}
	for _, n := range g.Any {
		problems = append(problems, validateConditionNode(n, where)...)
	}
	return problems
}

func validateConditionNode(n types.ConditionNode, where string) []string {
	switch {
	case n.Cond != nil:
		var problems []string
		if n.Cond.Fact == "" {
			problems = append(problems, fmt.Sprintf("%s: condition has an empty fact", where))
		}
		if !n.Cond.Op.Valid() {
			problems = append(problems, fmt.Sprintf("%s: unknown operator %q", where, n.Cond.Op))
		}
		return problems
	case n.Group != nil:
		return validateConditionGroup(n.Group, where)
	default:
		return []string{fmt.Sprintf("%s: empty condition node", where)}
	}
}
