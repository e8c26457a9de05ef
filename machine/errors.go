package machine

import "errors"

// ErrCheckpointNotInScenario is returned by Scenario.IncomingEdge when the
// requested checkpoint never occurs in the scenario's walk.
var ErrCheckpointNotInScenario = errors.New("checkpoint does not occur in this scenario")

// ErrNoIncomingEdge is returned by Scenario.IncomingEdge for the scenario's
// leading start checkpoint, which occurs in the walk but has no predecessor.
var ErrNoIncomingEdge = errors.New("checkpoint has no incoming edge")

// ConstructionError represents a graph shape violation detected while the
// caller is building a Machine, or during the synchronous validation pass
// at the start of Run. A machine that produces a ConstructionError never
// starts executing.
type ConstructionError struct {
	Message string
	Code    string
}

func (e *ConstructionError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}
