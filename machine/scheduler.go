package machine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/statewalk/statewalk/machine/emit"
)

// RunOption configures one run of a Machine.
type RunOption func(*runConfig) error

// runConfig collects run options before the scheduler starts.
type runConfig struct {
	runID   string
	factory TargetFactory
	emitter emit.Emitter
	metrics *Metrics
	store   RunStore
}

// WithRunID sets the run identifier carried by events and persisted
// reports. Defaults to a fresh UUID per run.
func WithRunID(runID string) RunOption {
	return func(cfg *runConfig) error {
		if runID == "" {
			return &ConstructionError{Message: "run ID cannot be empty", Code: "EMPTY_RUN_ID"}
		}
		cfg.runID = runID
		return nil
	}
}

// WithTargets sets the factory that creates each scenario's private target
// handle. Defaults to NopTargets.
func WithTargets(factory TargetFactory) RunOption {
	return func(cfg *runConfig) error {
		if factory == nil {
			return &ConstructionError{Message: "target factory cannot be nil", Code: "NIL_FACTORY"}
		}
		cfg.factory = factory
		return nil
	}
}

// WithEmitter routes run events to the given emitter. Defaults to the null
// emitter.
func WithEmitter(emitter emit.Emitter) RunOption {
	return func(cfg *runConfig) error {
		if emitter == nil {
			return &ConstructionError{Message: "emitter cannot be nil", Code: "NIL_EMITTER"}
		}
		cfg.emitter = emitter
		return nil
	}
}

// WithMetrics records run metrics on the given collector.
func WithMetrics(metrics *Metrics) RunOption {
	return func(cfg *runConfig) error {
		if metrics == nil {
			return &ConstructionError{Message: "metrics cannot be nil", Code: "NIL_METRICS"}
		}
		cfg.metrics = metrics
		return nil
	}
}

// WithStore persists the run's folded records after the drain completes.
// Persistence failures fail the run after all scenarios have executed.
func WithStore(store RunStore) RunOption {
	return func(cfg *runConfig) error {
		if store == nil {
			return &ConstructionError{Message: "run store cannot be nil", Code: "NIL_STORE"}
		}
		cfg.store = store
		return nil
	}
}

// Run executes the machine once:
//
//  1. recompute the discovered-checkpoint-set and validate reachable edges;
//  2. enumerate every maximal simple walk and bind each to a Scenario with
//     its own scratch store and target handle;
//  3. launch one goroutine per scenario (full fan-out, no pooling or
//     admission control), each pushing records onto a single shared channel;
//  4. join all workers, then close and drain the channel to exhaustion,
//     folding records into the Report.
//
// The channel's capacity is the total element count across all scenarios,
// so producers never block on it and the drain never races a writer. Within
// one scenario, records preserve checkpoint visitation order; across
// scenarios no order is guaranteed.
//
// There is no cancellation of the join barrier and no per-scenario timeout:
// a worker that never returns stalls the run. The context is passed through
// to actions, guards and the target factory only.
func (m *Machine) Run(ctx context.Context, opts ...RunOption) (*Report, error) {
	cfg := &runConfig{
		factory: NopTargets,
		emitter: emit.NewNullEmitter(),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.runID == "" {
		cfg.runID = uuid.NewString()
	}

	discovered, index := m.discover()
	if err := m.validate(discovered); err != nil {
		return nil, err
	}

	walks := enumerate(m.start)

	// Target factories run here, sequentially, so every scenario owns its
	// handle before any worker starts. A factory failure releases the
	// handles already created and aborts the run.
	scenarios := make([]*Scenario, 0, len(walks))
	capacity := 0
	for label, walk := range walks {
		sc, err := newScenario(ctx, m, walk, label, cfg.factory)
		if err != nil {
			for _, prev := range scenarios {
				_ = prev.target.Close()
			}
			return nil, err
		}
		scenarios = append(scenarios, sc)
		capacity += len(sc.elements)
	}

	records := make(chan Record, capacity)

	var wg sync.WaitGroup
	for _, sc := range scenarios {
		wg.Add(1)
		go func(sc *Scenario) {
			defer wg.Done()
			defer func() {
				if err := sc.target.Close(); err != nil {
					cfg.emitter.Emit(emit.Event{
						RunID:      cfg.runID,
						Scenario:   sc.label,
						Checkpoint: -1,
						Msg:        emit.MsgTargetCloseError,
						Meta:       map[string]any{"error": err.Error()},
					})
				}
			}()

			cfg.metrics.scenarioStarted()
			start := time.Now()
			result := execute(ctx, sc, index, records, cfg)
			cfg.metrics.scenarioFinished(string(result), time.Since(start))
		}(sc)
	}

	// Barrier: the run does not proceed until every worker has terminated.
	wg.Wait()
	close(records)

	results := make(map[int][]Record)
	for rec := range records {
		results[rec.Scenario] = append(results[rec.Scenario], rec)
	}

	report := &Report{
		runID:       cfg.runID,
		results:     results,
		scenarios:   scenarios,
		checkpoints: discovered,
	}

	if cfg.store != nil {
		if err := cfg.store.SaveRun(ctx, cfg.runID, report.Records()); err != nil {
			return report, fmt.Errorf("persisting run %s: %w", cfg.runID, err)
		}
	}
	return report, nil
}
