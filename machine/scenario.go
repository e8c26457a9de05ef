package machine

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Element is one entry in a scenario's interleaved execution list.
// The only implementations are *Checkpoint and *Edge.
type Element interface {
	isElement()
}

// Scratch is a scenario-private mutable key→value store.
//
// Every scenario gets its own empty Scratch at construction; it is never
// shared across scenarios. Actions and guards use it to pass data between
// steps of the same walk (a session token captured by one interaction and
// asserted on by a later checkpoint, for instance).
type Scratch struct {
	mu   sync.RWMutex
	data map[string]any
}

func newScratch() *Scratch {
	return &Scratch{data: make(map[string]any)}
}

// Put stores a value under key, replacing any previous value.
func (s *Scratch) Put(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Get returns the value stored under key. The second return value reports
// whether the key was present.
func (s *Scratch) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Scenario binds one enumerated walk to an isolated execution context.
//
// A scenario exclusively owns one Scratch and one Target for its entire
// lifetime; no other scenario may read or mutate them. The integer label is
// the walk's position in the enumeration and keys the scenario's records in
// the run's Report.
type Scenario struct {
	label    int
	machine  *Machine
	elements []Element
	scratch  *Scratch
	target   Target
}

// newScenario derives the interleaved [checkpoint, edge, checkpoint, ...]
// element list from the walk and eagerly creates the scenario's scratch
// store and target handle. Both are created exactly once and never
// recreated.
//
// For each consecutive checkpoint pair the first outgoing edge of the
// earlier checkpoint whose target is the later one is selected. Walks
// produced by enumerate always have such an edge.
func newScenario(ctx context.Context, m *Machine, walk []*Checkpoint, label int, factory TargetFactory) (*Scenario, error) {
	elements := make([]Element, 0, 2*len(walk)-1)
	for i, cp := range walk {
		elements = append(elements, cp)
		if i == len(walk)-1 {
			break
		}
		var next *Edge
		for _, e := range cp.outgoing {
			if e.target == walk[i+1] {
				next = e
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("scenario %d: no edge from walk position %d to %d", label, i, i+1)
		}
		elements = append(elements, next)
	}

	target, err := factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("scenario %d: creating target: %w", label, err)
	}

	return &Scenario{
		label:    label,
		machine:  m,
		elements: elements,
		scratch:  newScratch(),
		target:   target,
	}, nil
}

// Label returns the scenario's position in the enumeration.
func (s *Scenario) Label() int {
	return s.label
}

// Target returns the scenario's private target handle for use by actions
// and guards.
func (s *Scenario) Target() Target {
	return s.target
}

// Scratch returns the scenario's private scratch store.
func (s *Scenario) Scratch() *Scratch {
	return s.scratch
}

// Elements returns the interleaved checkpoint/edge list this scenario
// executes. The first element is always the machine's start checkpoint.
func (s *Scenario) Elements() []Element {
	return s.elements
}

// IncomingEdge returns the element immediately preceding the first
// occurrence of cp in this scenario's interleaved list: the edge whose
// interaction led into cp. It is the primitive behind post-hoc failure
// attribution.
//
// Returns ErrNoIncomingEdge for the walk's leading start checkpoint, and
// ErrCheckpointNotInScenario if cp never occurs in this scenario; the
// latter cannot happen for checkpoints taken from the scenario's own walk.
func (s *Scenario) IncomingEdge(cp *Checkpoint) (*Edge, error) {
	for i, el := range s.elements {
		if c, ok := el.(*Checkpoint); !ok || c != cp {
			continue
		}
		if i == 0 {
			return nil, fmt.Errorf("scenario %d: start checkpoint: %w", s.label, ErrNoIncomingEdge)
		}
		return s.elements[i-1].(*Edge), nil
	}
	return nil, fmt.Errorf("scenario %d: %w", s.label, ErrCheckpointNotInScenario)
}

// String renders the scenario as its chain of edge labels, mirroring dot
// output: "visit_home -> log_in -> log_out".
func (s *Scenario) String() string {
	labels := make([]string, 0, len(s.elements)/2)
	for _, el := range s.elements {
		if e, ok := el.(*Edge); ok {
			labels = append(labels, e.label)
		}
	}
	return strings.Join(labels, " -> ")
}
