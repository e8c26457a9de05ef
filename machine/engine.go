package machine

import (
	"context"

	"github.com/statewalk/statewalk/machine/emit"
)

// outcome classifies how a scenario's execution ended, for metrics and
// events.
type outcome string

const (
	outcomeCompleted outcome = "completed"
	outcomeAborted   outcome = "aborted"
)

// execute runs one scenario's interleaved element list, pushing records
// onto the shared channel as they are produced.
//
// The synthetic start checkpoint is skipped; it has no meaningful
// assertion. For every subsequent element:
//
//   - an edge whose guard evaluates false aborts the scenario immediately
//     and silently: no further elements run, no further records appear;
//   - an edge whose interaction fails produces an interaction failure
//     record attributed to the edge's target checkpoint, and execution
//     continues;
//   - a checkpoint emits a success record on a nil assertion error, a
//     failure record with the captured detail otherwise, and execution
//     continues either way. Only guards abort a scenario.
func execute(ctx context.Context, sc *Scenario, index map[*Checkpoint]int, records chan<- Record, cfg *runConfig) outcome {
	cfg.emitter.Emit(emit.Event{
		RunID:      cfg.runID,
		Scenario:   sc.label,
		Checkpoint: -1,
		Msg:        emit.MsgScenarioStart,
	})

	for pos := 1; pos < len(sc.elements); pos++ {
		switch el := sc.elements[pos].(type) {
		case *Edge:
			if !el.evaluateGuard(sc) {
				cfg.emitter.Emit(emit.Event{
					RunID:      cfg.runID,
					Scenario:   sc.label,
					Checkpoint: index[el.target],
					Msg:        emit.MsgGuardAbort,
					Meta:       map[string]any{"edge": el.label},
				})
				return outcomeAborted
			}
			if err := el.run(ctx, sc); err != nil {
				records <- Record{
					Scenario:   sc.label,
					Checkpoint: index[el.target],
					Element:    pos,
					Kind:       KindInteraction,
					OK:         false,
					Detail:     err.Error(),
				}
				cfg.emitter.Emit(emit.Event{
					RunID:      cfg.runID,
					Scenario:   sc.label,
					Checkpoint: index[el.target],
					Msg:        emit.MsgInteractionError,
					Meta:       map[string]any{"edge": el.label, "error": err.Error()},
				})
			}

		case *Checkpoint:
			rec := Record{
				Scenario:   sc.label,
				Checkpoint: index[el],
				Element:    pos,
				Kind:       KindAssertion,
				OK:         true,
			}
			msg := emit.MsgAssertionPass
			var meta map[string]any
			if err := el.run(ctx, sc); err != nil {
				rec.OK = false
				rec.Detail = err.Error()
				msg = emit.MsgAssertionFail
				meta = map[string]any{"error": err.Error()}
			}
			records <- rec
			cfg.metrics.assertionObserved(rec.OK)
			cfg.emitter.Emit(emit.Event{
				RunID:      cfg.runID,
				Scenario:   sc.label,
				Checkpoint: rec.Checkpoint,
				Msg:        msg,
				Meta:       meta,
			})
		}
	}

	cfg.emitter.Emit(emit.Event{
		RunID:      cfg.runID,
		Scenario:   sc.label,
		Checkpoint: -1,
		Msg:        emit.MsgScenarioComplete,
	})
	return outcomeCompleted
}
