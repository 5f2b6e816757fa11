package engine

import (
	types "github.com/yungbote/journey-backend/internal/domain"
)

// ResolveNext picks the single next block id from the current block. Edges
// whose condition fails are skipped, the highest priority wins among the
// survivors, and declaration order breaks ties. ok is false when nothing
// matches, which the orchestrator reads as journey completion.
func ResolveNext(currentBlockID string, edges []types.Edge, facts Facts) (next string, ok bool) {
	best := -1
	for i := range edges {
		e := &edges[i]
		if e.From != currentBlockID {
			continue
		}
		if !EvaluateGroup(e.Condition, facts) {
			continue
		}
		if best == -1 || e.Priority > edges[best].Priority {
			best = i
		}
	}
	if best == -1 {
		return "", false
	}
	return edges[best].To, true
}
