// Package machine models end-to-end test scenarios as a directed graph.
//
// Checkpoints are assertion points, edges are the interactions that move the
// test target between them, optionally gated by a guard predicate. A Machine
// enumerates every maximal simple walk from its start checkpoint, runs each
// walk as an isolated concurrent Scenario against a live test target, and
// folds the outcomes into a Report that can trace any failure back to the
// edge that led into the failing checkpoint.
package machine

import "context"

// Action is the executable unit attached to checkpoints and edges.
//
// A checkpoint's action performs assertions against the state the incoming
// interaction produced; an edge's action performs the interaction itself.
// Both receive the owning Scenario, which gives them access to the
// scenario's private target handle and scratch store.
//
// Returning a non-nil error marks the action as failed. For a checkpoint
// this produces a failure Record; for an edge it produces an interaction
// failure Record attributed to the edge's target checkpoint. Neither stops
// the scenario.
type Action func(ctx context.Context, sc *Scenario) error

// Checkpoint is a node in the scenario graph: an assertion to verify plus
// the ordered set of interactions leading out of it.
//
// Checkpoints are identity-addressed. Two checkpoints built from the same
// assertion are still distinct nodes, and all membership bookkeeping
// (discovery, walk enumeration, result indexing) keys on the pointer.
type Checkpoint struct {
	name      string
	assertion Action
	outgoing  []*Edge
}

// CheckpointOption configures a checkpoint at construction time.
type CheckpointOption func(*Checkpoint)

// Named sets a human-readable name for the checkpoint, used by the dot
// renderers. Unnamed checkpoints render with an empty label.
func Named(name string) CheckpointOption {
	return func(c *Checkpoint) {
		c.name = name
	}
}

func newCheckpoint(assertion Action, opts ...CheckpointOption) *Checkpoint {
	c := &Checkpoint{
		assertion: assertion,
		outgoing:  make([]*Edge, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the checkpoint's display name. Empty if none was set.
func (c *Checkpoint) Name() string {
	return c.name
}

// Outgoing returns the checkpoint's outgoing edges in insertion order.
// The returned slice is the live edge list; callers must not mutate it.
func (c *Checkpoint) Outgoing() []*Edge {
	return c.outgoing
}

// run invokes the assertion action against the scenario.
func (c *Checkpoint) run(ctx context.Context, sc *Scenario) error {
	return c.assertion(ctx, sc)
}

// isElement marks Checkpoint as a Scenario element.
func (c *Checkpoint) isElement() {}
