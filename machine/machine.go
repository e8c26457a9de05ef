package machine

import (
	"context"
	"sync"
)

// Machine is the scenario graph: it owns the synthetic start checkpoint and
// provides the construction API for adding checkpoints and edges.
//
// All construction validation is synchronous. AddCheckpoint and AddEdge fail
// fast with a ConstructionError on a shape violation, so a malformed machine
// never starts executing.
//
// A Machine is built once by the caller; Run may then be invoked any number
// of times. Each run rediscovers the reachable checkpoint set and
// re-enumerates the walks, so checkpoint indices in result records are
// stable only within one run.
//
// Example:
//
//	m := machine.New()
//	visit, _ := m.AddEdge(visitHome, machine.Labeled("visit_home"))
//	home, _ := m.AddCheckpoint(visit, assertHomeLoaded, machine.Named("home"))
//	login, _ := m.AddEdge(submitLogin, machine.From(home), machine.Labeled("log_in"))
//	_, _ = m.AddCheckpoint(login, assertLoggedIn, machine.Named("dashboard"))
//
//	report, err := m.Run(ctx, machine.WithTargets(target.HTTPFactory(baseURL)))
type Machine struct {
	mu      sync.RWMutex
	start   *Checkpoint
	members map[*Checkpoint]struct{}
}

// New creates an empty Machine. The start checkpoint carries an always-true
// assertion and is skipped by the execution engine.
func New() *Machine {
	start := newCheckpoint(func(ctx context.Context, sc *Scenario) error {
		return nil
	})
	return &Machine{
		start:   start,
		members: map[*Checkpoint]struct{}{start: {}},
	}
}

// Start returns the machine's start checkpoint. Every enumerated scenario
// begins here.
func (m *Machine) Start() *Checkpoint {
	return m.start
}

// AddCheckpoint creates a checkpoint carrying the given assertion and binds
// it as the target of incoming. It returns the new checkpoint so further
// edges can lead out of it.
//
// Fails with a ConstructionError if the assertion is nil or incoming is not
// an edge of this machine.
func (m *Machine) AddCheckpoint(incoming *Edge, assertion Action, opts ...CheckpointOption) (*Checkpoint, error) {
	if assertion == nil {
		return nil, &ConstructionError{
			Message: "checkpoint assertion cannot be nil",
			Code:    "NIL_ASSERTION",
		}
	}
	if incoming == nil {
		return nil, &ConstructionError{
			Message: "incoming edge cannot be nil",
			Code:    "NIL_EDGE",
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.members[incoming.source]; !ok {
		return nil, &ConstructionError{
			Message: "incoming edge does not belong to this machine",
			Code:    "UNKNOWN_EDGE",
		}
	}

	cp := newCheckpoint(assertion, opts...)
	incoming.target = cp
	m.members[cp] = struct{}{}
	return cp, nil
}

// AddEdge creates an edge carrying the given interaction and appends it to
// its source checkpoint's outgoing list. The source defaults to the start
// checkpoint; override with From. The target may be bound immediately with
// To or later via AddCheckpoint.
//
// Fails with a ConstructionError if the interaction is nil, a supplied
// source is not a checkpoint of this machine, or a supplied guard is nil.
func (m *Machine) AddEdge(interaction Action, opts ...EdgeOption) (*Edge, error) {
	if interaction == nil {
		return nil, &ConstructionError{
			Message: "edge interaction cannot be nil",
			Code:    "NIL_INTERACTION",
		}
	}

	var cfg edgeConfig
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	source := cfg.source
	if source == nil {
		source = m.start
	}
	if _, ok := m.members[source]; !ok {
		return nil, &ConstructionError{
			Message: "edge source is not a checkpoint of this machine",
			Code:    "UNKNOWN_SOURCE",
		}
	}

	edge := &Edge{
		label:       cfg.label,
		source:      source,
		target:      cfg.target,
		interaction: interaction,
		guard:       cfg.guard,
	}
	source.outgoing = append(source.outgoing, edge)
	return edge, nil
}

// Checkpoints returns the discovered-checkpoint-set: every checkpoint
// reachable from start, as a stable, index-addressable slice. The slice
// position is the checkpoint index used in result records for the run that
// computed it.
//
// Traversal is a depth-first walk with a pointer-keyed visited set, so
// duplicate-content checkpoints are deduplicated by identity, not value.
// Traversal order is deterministic (reverse-edge-order DFS) but carries no
// semantic meaning beyond index stability within a run.
func (m *Machine) Checkpoints() []*Checkpoint {
	discovered, _ := m.discover()
	return discovered
}

// discover performs the DFS and also returns the checkpoint→index lookup
// the engine uses when emitting records.
func (m *Machine) discover() ([]*Checkpoint, map[*Checkpoint]int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	visited := map[*Checkpoint]struct{}{m.start: {}}
	discovered := []*Checkpoint{m.start}

	stack := make([]*Checkpoint, 0)
	for _, e := range m.start.outgoing {
		if e.target != nil {
			stack = append(stack, e.target)
		}
	}

	for len(stack) > 0 {
		cp := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := visited[cp]; ok {
			continue
		}
		visited[cp] = struct{}{}
		discovered = append(discovered, cp)
		for _, e := range cp.outgoing {
			if e.target == nil {
				continue
			}
			if _, ok := visited[e.target]; !ok {
				stack = append(stack, e.target)
			}
		}
	}

	index := make(map[*Checkpoint]int, len(discovered))
	for i, cp := range discovered {
		index[cp] = i
	}
	return discovered, index
}

// validate checks that every edge reachable from start has a bound target.
// Called at the start of Run; an unbound reachable edge means the caller
// created an edge with AddEdge and never passed it to AddCheckpoint.
func (m *Machine) validate(discovered []*Checkpoint) error {
	for _, cp := range discovered {
		for _, e := range cp.outgoing {
			if e.target == nil {
				return &ConstructionError{
					Message: "reachable edge has no target checkpoint (bind it with To or AddCheckpoint)",
					Code:    "UNBOUND_EDGE",
				}
			}
		}
	}
	return nil
}
