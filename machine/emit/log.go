package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// LogEmitter writes structured event output to a writer.
//
// Two output modes:
//   - text (default): one human-readable line per event with key=value pairs
//   - JSON: one JSON object per line (JSONL), for machine consumption
//
// Example text output:
//
//	[assertion_fail] run=run-001 scenario=2 checkpoint=3 meta={"error":"title mismatch"}
//
// Example JSON output:
//
//	{"run_id":"run-001","scenario":2,"checkpoint":3,"msg":"assertion_fail","meta":{"error":"title mismatch"}}
//
// A LogEmitter serializes concurrent Emit calls so lines from parallel
// scenarios never interleave mid-line.
type LogEmitter struct {
	mu       sync.Mutex
	writer   io.Writer
	jsonMode bool
}

// NewLogEmitter creates a LogEmitter writing to w (os.Stdout if nil).
// jsonMode selects JSONL output instead of text.
func NewLogEmitter(w io.Writer, jsonMode bool) *LogEmitter {
	if w == nil {
		w = os.Stdout
	}
	return &LogEmitter{writer: w, jsonMode: jsonMode}
}

// Emit writes the event in the configured format.
func (l *LogEmitter) Emit(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.jsonMode {
		l.emitJSON(event)
		return
	}
	l.emitText(event)
}

func (l *LogEmitter) emitJSON(event Event) {
	data, err := json.Marshal(struct {
		RunID      string         `json:"run_id"`
		Scenario   int            `json:"scenario"`
		Checkpoint int            `json:"checkpoint"`
		Msg        string         `json:"msg"`
		Meta       map[string]any `json:"meta,omitempty"`
	}{
		RunID:      event.RunID,
		Scenario:   event.Scenario,
		Checkpoint: event.Checkpoint,
		Msg:        event.Msg,
		Meta:       event.Meta,
	})
	if err != nil {
		fmt.Fprintf(l.writer, "{\"error\":\"failed to marshal event: %v\"}\n", err)
		return
	}
	fmt.Fprintf(l.writer, "%s\n", data)
}

func (l *LogEmitter) emitText(event Event) {
	fmt.Fprintf(l.writer, "[%s] run=%s scenario=%d", event.Msg, event.RunID, event.Scenario)
	if event.Checkpoint >= 0 {
		fmt.Fprintf(l.writer, " checkpoint=%d", event.Checkpoint)
	}
	if len(event.Meta) > 0 {
		if metaJSON, err := json.Marshal(event.Meta); err == nil {
			fmt.Fprintf(l.writer, " meta=%s", metaJSON)
		} else {
			fmt.Fprintf(l.writer, " meta=%v", event.Meta)
		}
	}
	fmt.Fprint(l.writer, "\n")
}
