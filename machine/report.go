package machine

import (
	"context"
	"sort"
)

// Kind distinguishes which element of a scenario produced a Record.
type Kind string

const (
	// KindAssertion records come from checkpoint assertions: one per
	// checkpoint visited, success or failure.
	KindAssertion Kind = "assertion"

	// KindInteraction records come from edge interactions and exist only
	// for failures; a successful interaction produces no record. The
	// Checkpoint field carries the index of the edge's target checkpoint.
	KindInteraction Kind = "interaction"
)

// Record is the outcome of executing one element within one scenario.
//
// Checkpoint is an index into the run's discovered-checkpoint-set, so it is
// stable only within the run that produced it. Element is the producing
// element's position in the owning scenario's interleaved list; because a
// walk may revisit a checkpoint when closing a cycle, the element position
// is what identifies the exact failing step, not the checkpoint index.
type Record struct {
	Scenario   int    `json:"scenario"`
	Checkpoint int    `json:"checkpoint"`
	Element    int    `json:"element"`
	Kind       Kind   `json:"kind"`
	OK         bool   `json:"ok"`
	Detail     string `json:"detail,omitempty"`
}

// RunStore persists the folded records of a finished run. Implementations
// live in the store subpackage; wire one with WithStore.
type RunStore interface {
	SaveRun(ctx context.Context, runID string, records []Record) error
}

// Report is the aggregated outcome of one Machine.Run: all records folded
// by scenario label, alongside the run's discovered-checkpoint-set and
// scenario list so failures can be attributed back to graph elements.
//
// A Report is immutable once Run returns and is safe for concurrent reads.
// The next run produces a fresh Report; checkpoint indices do not carry
// over.
type Report struct {
	runID       string
	results     map[int][]Record
	scenarios   []*Scenario
	checkpoints []*Checkpoint
}

// RunID returns the identifier of the run that produced this report.
func (r *Report) RunID() string {
	return r.runID
}

// Scenarios returns the run's scenarios in enumeration order; the slice
// index is the scenario label.
func (r *Report) Scenarios() []*Scenario {
	return r.scenarios
}

// Checkpoints returns the run's discovered-checkpoint-set. The slice index
// is the checkpoint index carried by this run's records.
func (r *Report) Checkpoints() []*Checkpoint {
	return r.checkpoints
}

// ResultsFor returns the records a scenario produced, in visitation order.
// A scenario truncated by a guard before its first checkpoint yields nil.
func (r *Report) ResultsFor(label int) []Record {
	return r.results[label]
}

// Labels returns the scenario labels that produced at least one record,
// ascending.
func (r *Report) Labels() []int {
	labels := make([]int, 0, len(r.results))
	for label := range r.results {
		labels = append(labels, label)
	}
	sort.Ints(labels)
	return labels
}

// Records returns every record of the run, grouped by ascending scenario
// label, preserving visitation order within each scenario.
func (r *Report) Records() []Record {
	var all []Record
	for _, label := range r.Labels() {
		all = append(all, r.results[label]...)
	}
	return all
}

// Failed reports whether any record in the run is a failure.
func (r *Report) Failed() bool {
	for _, recs := range r.results {
		for _, rec := range recs {
			if !rec.OK {
				return true
			}
		}
	}
	return false
}

// ProblematicElements derives the diagnostic set of edges and checkpoints
// implicated in failures. Each failing record's element position resolves
// the exact failing step in its owning scenario: a failed assertion
// implicates its checkpoint and the edge immediately before it, a failed
// interaction implicates the edge itself and its target checkpoint. Element
// positions stay correct on walks that revisit a checkpoint to close a
// cycle, where a first-occurrence lookup would name the wrong edge. Both
// sets are deduplicated by identity.
func (r *Report) ProblematicElements() (edges []*Edge, checkpoints []*Checkpoint) {
	edgeSeen := make(map[*Edge]struct{})
	cpSeen := make(map[*Checkpoint]struct{})

	for _, label := range r.Labels() {
		elements := r.scenarios[label].elements
		for _, rec := range r.results[label] {
			if rec.OK {
				continue
			}
			var edge *Edge
			var cp *Checkpoint
			if rec.Kind == KindInteraction {
				edge = elements[rec.Element].(*Edge)
				cp = edge.target
			} else {
				cp = elements[rec.Element].(*Checkpoint)
				edge = elements[rec.Element-1].(*Edge)
			}
			if _, ok := edgeSeen[edge]; !ok {
				edgeSeen[edge] = struct{}{}
				edges = append(edges, edge)
			}
			if _, ok := cpSeen[cp]; !ok {
				cpSeen[cp] = struct{}{}
				checkpoints = append(checkpoints, cp)
			}
		}
	}
	return edges, checkpoints
}
