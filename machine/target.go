package machine

import "context"

// Target is the opaque capability handle a scenario drives its test subject
// through: a browser session, an HTTP client, or anything else the
// caller's actions know how to use. The core never interprets it beyond
// calling Close when the owning scenario's worker exits.
//
// Concrete implementations live in the target subpackage.
type Target interface {
	// Close releases whatever the handle holds. Called exactly once per
	// scenario, after its last element ran, whether it completed, guard
	// aborted, or failed.
	Close() error
}

// TargetFactory creates one fresh Target per scenario, before the
// scenario's first action runs. Factories are invoked sequentially during
// scenario construction, so they need no internal synchronization.
type TargetFactory func(ctx context.Context) (Target, error)

// NopTarget is a Target with no capabilities, for machines whose actions
// operate purely on the scratch store.
type NopTarget struct{}

// Close implements Target. It never fails.
func (NopTarget) Close() error { return nil }

// NopTargets is a TargetFactory producing NopTarget handles.
func NopTargets(ctx context.Context) (Target, error) {
	return NopTarget{}, nil
}
