package machine

import "context"

// Guard is a predicate evaluated against a Scenario before the owning
// edge's interaction runs.
//
// A false result aborts the scenario silently: no further elements execute
// and no more records are produced. This is a short-circuit, not a failure.
//
// Guards should be pure reads of the scenario's scratch store or target;
// they run inside the scenario's worker, so they may safely touch both.
type Guard func(sc *Scenario) bool

// Edge is a directed interaction step between two checkpoints.
//
// The target may be left unset at construction and bound later via
// Machine.AddCheckpoint; a machine with reachable unbound edges fails
// validation at the start of Run and never executes.
type Edge struct {
	label       string
	source      *Checkpoint
	target      *Checkpoint
	interaction Action
	guard       Guard
}

// Source returns the checkpoint this edge leads out of.
func (e *Edge) Source() *Checkpoint {
	return e.source
}

// Target returns the checkpoint this edge leads into, or nil if the edge
// has not been bound yet.
func (e *Edge) Target() *Checkpoint {
	return e.target
}

// Label returns the edge's display label. Empty if none was set.
func (e *Edge) Label() string {
	return e.label
}

// Guarded reports whether a guard predicate is attached to this edge.
func (e *Edge) Guarded() bool {
	return e.guard != nil
}

// evaluateGuard returns the guard's verdict for the scenario.
// Unguarded edges always pass.
func (e *Edge) evaluateGuard(sc *Scenario) bool {
	if e.guard == nil {
		return true
	}
	return e.guard(sc)
}

// run invokes the interaction action against the scenario.
func (e *Edge) run(ctx context.Context, sc *Scenario) error {
	return e.interaction(ctx, sc)
}

// isElement marks Edge as a Scenario element.
func (e *Edge) isElement() {}

// EdgeOption configures an edge at construction time.
//
// Options are applied and validated synchronously by Machine.AddEdge, so a
// bad option surfaces as a construction error before any run starts.
type EdgeOption func(*edgeConfig) error

// edgeConfig collects edge options before validation.
type edgeConfig struct {
	label  string
	source *Checkpoint
	target *Checkpoint
	guard  Guard
}

// From sets the edge's source checkpoint. If omitted, the edge leads out of
// the machine's start checkpoint. The checkpoint must belong to the machine
// the edge is added to.
func From(cp *Checkpoint) EdgeOption {
	return func(cfg *edgeConfig) error {
		if cp == nil {
			return &ConstructionError{
				Message: "edge source checkpoint cannot be nil",
				Code:    "NIL_SOURCE",
			}
		}
		cfg.source = cp
		return nil
	}
}

// To binds the edge's target checkpoint immediately. If omitted, the target
// is bound later by passing this edge to Machine.AddCheckpoint.
func To(cp *Checkpoint) EdgeOption {
	return func(cfg *edgeConfig) error {
		if cp == nil {
			return &ConstructionError{
				Message: "edge target checkpoint cannot be nil",
				Code:    "NIL_TARGET",
			}
		}
		cfg.target = cp
		return nil
	}
}

// When attaches a guard predicate to the edge.
func When(guard Guard) EdgeOption {
	return func(cfg *edgeConfig) error {
		if guard == nil {
			return &ConstructionError{
				Message: "edge guard cannot be nil",
				Code:    "NIL_GUARD",
			}
		}
		cfg.guard = guard
		return nil
	}
}

// Labeled sets a human-readable label for the edge, used by the dot
// renderers and Scenario.String.
func Labeled(label string) EdgeOption {
	return func(cfg *edgeConfig) error {
		cfg.label = label
		return nil
	}
}
