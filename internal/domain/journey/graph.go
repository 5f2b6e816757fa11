package journey

import (
	"encoding/json"
	"fmt"
)

// Graph is the wire and storage shape of a journey definition. The engine
// consumes it verbatim; the jsonb column stores exactly these bytes.
type Graph struct {
	StartBlockID string  `json:"startBlockId"`
	Blocks       []Block `json:"blocks"`
	Edges        []Edge  `json:"edges"`
}

// Edge is a possible transition between two blocks. A nil Condition always
// matches. Among matching edges the highest Priority wins and declaration
// order breaks ties.
type Edge struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Condition *ConditionGroup `json:"condition,omitempty"`
	Priority  float64         `json:"priority,omitempty"`
	Label     string          `json:"label,omitempty"`
}

// BlockByID returns the block with the given id, nil when absent.
func (g *Graph) BlockByID(id string) *Block {
	for i := range g.Blocks {
		if g.Blocks[i].ID == id {
			return &g.Blocks[i]
		}
	}
	return nil
}

// DecodeGraph parses a stored journey graph document.
func DecodeGraph(raw []byte) (*Graph, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty graph document")
	}
	var g Graph
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	return &g, nil
}
