// Package emit provides pluggable observability for machine runs.
//
// The execution engine emits one Event per notable step of a scenario's
// life; an Emitter routes them to a backend: a log writer, an in-memory
// buffer for tests, or OpenTelemetry spans.
package emit

// Standard event messages emitted by the execution engine.
const (
	MsgScenarioStart    = "scenario_start"
	MsgScenarioComplete = "scenario_complete"
	MsgGuardAbort       = "guard_abort"
	MsgAssertionPass    = "assertion_pass"
	MsgAssertionFail    = "assertion_fail"
	MsgInteractionError = "interaction_error"
	MsgTargetCloseError = "target_close_error"
)

// Event is one observability record from a machine run.
type Event struct {
	// RunID identifies the run that emitted this event.
	RunID string

	// Scenario is the emitting scenario's label.
	Scenario int

	// Checkpoint is the index of the implicated checkpoint in the run's
	// discovered-checkpoint-set, or -1 for scenario-level events
	// (scenario_start, scenario_complete, target_close_error).
	Checkpoint int

	// Msg names the event; see the Msg constants.
	Msg string

	// Meta carries event-specific detail. Common keys: "error" for
	// failure events, "edge" for the implicated edge's label.
	Meta map[string]any
}
