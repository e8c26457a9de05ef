package machine

import (
	"fmt"
	"io"
	"strings"
)

// Dot rendering is a presentation concern with no feedback path into the
// core: the renderers consume the discovered-checkpoint-set and, for result
// coloring, a finished Report.

const (
	dotShape = "Mrecord"
	dotFont  = "monaco"
)

// WriteDot renders the machine's reachable graph as Graphviz dot source.
// Checkpoint names and edge labels become node and edge labels; unnamed
// elements render with empty labels.
func (m *Machine) WriteDot(w io.Writer) error {
	discovered, index := m.discover()
	return writeDot(w, discovered, index, nil, nil)
}

// WriteResultsDot renders the graph colored by a run's outcome: checkpoints
// and edges implicated in failures (per Report.ProblematicElements) render
// red, everything else dark green.
func (m *Machine) WriteResultsDot(w io.Writer, report *Report) error {
	badEdges, badCheckpoints := report.ProblematicElements()
	edgeSet := make(map[*Edge]struct{}, len(badEdges))
	for _, e := range badEdges {
		edgeSet[e] = struct{}{}
	}
	cpSet := make(map[*Checkpoint]struct{}, len(badCheckpoints))
	for _, cp := range badCheckpoints {
		cpSet[cp] = struct{}{}
	}

	discovered, index := m.discover()
	return writeDot(w, discovered, index, edgeSet, cpSet)
}

// writeDot emits the dot source. Nil implicated sets mean plain black
// rendering; non-nil sets switch to red/darkgreen result coloring.
func writeDot(w io.Writer, discovered []*Checkpoint, index map[*Checkpoint]int, badEdges map[*Edge]struct{}, badCheckpoints map[*Checkpoint]struct{}) error {
	colored := badEdges != nil || badCheckpoints != nil

	var b strings.Builder
	b.WriteString("digraph {\n")
	b.WriteString("\tgraph [fontsize=10];\n")

	for i, cp := range discovered {
		color := "black"
		if colored {
			color = "darkgreen"
			if _, bad := badCheckpoints[cp]; bad {
				color = "red"
			}
		}
		fmt.Fprintf(&b, "\tn%d [label=%q shape=%s fontname=%q color=%q fontcolor=%q];\n",
			i, cp.name, dotShape, dotFont, color, color)
	}

	for i, cp := range discovered {
		for _, e := range cp.outgoing {
			if e.target == nil {
				continue
			}
			color := "black"
			if colored {
				color = "darkgreen"
				if _, bad := badEdges[e]; bad {
					color = "red"
				}
			}
			fmt.Fprintf(&b, "\tn%d -> n%d [label=%q fontname=%q color=%q fontcolor=%q];\n",
				i, index[e.target], e.label, dotFont, color, color)
		}
	}

	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}
