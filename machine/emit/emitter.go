package emit

// Emitter receives observability events from scenario workers.
//
// Implementations must be safe for concurrent use: every scenario runs in
// its own goroutine and all of them share the run's single emitter. They
// should also be non-blocking and resilient: a slow or failing backend
// must not stall or crash a run, so Emit neither returns an error nor
// panics.
type Emitter interface {
	Emit(event Event)
}
