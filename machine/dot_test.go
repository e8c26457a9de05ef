package machine

import (
	"context"
	"strings"
	"testing"
)

func TestWriteDot(t *testing.T) {
	m, _, _, _, _ := chainMachine(t)

	var buf strings.Builder
	if err := m.WriteDot(&buf); err != nil {
		t.Fatalf("WriteDot failed: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "digraph {\n") || !strings.HasSuffix(out, "}\n") {
		t.Errorf("output not wrapped in digraph block:\n%s", out)
	}
	for _, want := range []string{
		`n0 [label=""`,
		`n1 [label="b"`,
		`n2 [label="c"`,
		`n0 -> n1 [label="e1"`,
		`n1 -> n2 [label="e2"`,
		`shape=Mrecord`,
		`fontname="monaco"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "darkgreen") || strings.Contains(out, "red") {
		t.Error("plain rendering should not use result colors")
	}
}

func TestWriteResultsDot_Coloring(t *testing.T) {
	m := New()
	e1, _ := m.AddEdge(nopInteract, Labeled("e1"))
	b, _ := m.AddCheckpoint(e1, failWith("broken"), Named("b"))
	e2, _ := m.AddEdge(nopInteract, From(b), Labeled("e2"))
	if _, err := m.AddCheckpoint(e2, passAssert, Named("c")); err != nil {
		t.Fatalf("AddCheckpoint failed: %v", err)
	}

	report, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var buf strings.Builder
	if err := m.WriteResultsDot(&buf, report); err != nil {
		t.Fatalf("WriteResultsDot failed: %v", err)
	}
	out := buf.String()

	// b and its incoming edge failed; c and e2 passed.
	for _, want := range []string{
		`n1 [label="b" shape=Mrecord fontname="monaco" color="red" fontcolor="red"];`,
		`n2 [label="c" shape=Mrecord fontname="monaco" color="darkgreen" fontcolor="darkgreen"];`,
		`n0 -> n1 [label="e1" fontname="monaco" color="red" fontcolor="red"];`,
		`n1 -> n2 [label="e2" fontname="monaco" color="darkgreen" fontcolor="darkgreen"];`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteResultsDot_CleanRunAllGreen(t *testing.T) {
	m, _, _, _, _ := chainMachine(t)
	report, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var buf strings.Builder
	if err := m.WriteResultsDot(&buf, report); err != nil {
		t.Fatalf("WriteResultsDot failed: %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "red") {
		t.Errorf("clean run rendered red elements:\n%s", out)
	}
	if !strings.Contains(out, "darkgreen") {
		t.Errorf("result rendering missing darkgreen:\n%s", out)
	}
}
