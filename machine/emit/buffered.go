package emit

import "sync"

// BufferedEmitter captures events in memory, keyed by run ID, for tests and
// post-run analysis.
//
// All events are held until cleared; long-lived processes running many
// machines should Clear finished runs or use a different emitter.
type BufferedEmitter struct {
	mu     sync.RWMutex
	events map[string][]Event
}

// Filter narrows History results. Zero-valued fields match everything;
// set fields combine with AND.
type Filter struct {
	// Scenario restricts to one scenario label.
	Scenario *int

	// Msg restricts to one event message.
	Msg string
}

// NewBufferedEmitter creates an empty BufferedEmitter.
func NewBufferedEmitter() *BufferedEmitter {
	return &BufferedEmitter{events: make(map[string][]Event)}
}

// Emit appends the event to its run's history.
func (b *BufferedEmitter) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[event.RunID] = append(b.events[event.RunID], event)
}

// History returns the run's events in emission order. The slice is a copy.
func (b *BufferedEmitter) History(runID string) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Event(nil), b.events[runID]...)
}

// HistoryWithFilter returns the run's events matching the filter, in
// emission order.
func (b *BufferedEmitter) HistoryWithFilter(runID string, filter Filter) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var matched []Event
	for _, ev := range b.events[runID] {
		if filter.Scenario != nil && ev.Scenario != *filter.Scenario {
			continue
		}
		if filter.Msg != "" && ev.Msg != filter.Msg {
			continue
		}
		matched = append(matched, ev)
	}
	return matched
}

// Clear drops one run's history, or every run's if runID is empty.
func (b *BufferedEmitter) Clear(runID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if runID == "" {
		b.events = make(map[string][]Event)
		return
	}
	delete(b.events, runID)
}
