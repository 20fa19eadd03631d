// Package optimistic implements the client-side half of the toggle
// contract: flip local state immediately, then reconcile against the
// server's exact answer or revert on failure.
package optimistic

// Phase is the reconciler's position in its state machine.
type Phase int

const (
	// Idle means local state matches the last server-confirmed values.
	Idle Phase = iota
	// Predicted means a toggle is in flight and local state reflects the
	// expected outcome, not a confirmed one.
	Predicted
	// Confirmed means the last response replaced the prediction.
	Confirmed
)

// Reconciler tracks one (actor, target) toggle button. At most one
// toggle may be in flight: Trigger while Predicted is ignored so the
// local projection can never drift more than one step from the server.
type Reconciler struct {
	phase Phase

	state bool
	count int64

	// values to restore if the in-flight toggle fails
	prevState bool
	prevCount int64

	lastErr error
}

// New returns a reconciler seeded with the server-rendered state.
func New(state bool, count int64) *Reconciler {
	return &Reconciler{phase: Idle, state: state, count: count}
}

// Trigger applies the optimistic flip. It reports false when a toggle
// is already pending and the trigger was dropped.
func (r *Reconciler) Trigger() bool {
	if r.phase == Predicted {
		return false
	}

	r.prevState = r.state
	r.prevCount = r.count
	r.lastErr = nil

	r.state = !r.state
	if r.state {
		r.count++
	} else {
		r.count--
	}
	r.phase = Predicted
	return true
}

// Confirm replaces the prediction with the server's exact values. The
// server recounts rather than incrementing, so its count wins even if
// it differs from the prediction.
func (r *Reconciler) Confirm(state bool, count int64) {
	r.state = state
	r.count = count
	r.phase = Confirmed
	r.lastErr = nil
}

// Fail reverts to the pre-trigger values and records the error.
func (r *Reconciler) Fail(err error) {
	if r.phase != Predicted {
		return
	}
	r.state = r.prevState
	r.count = r.prevCount
	r.phase = Idle
	r.lastErr = err
}

func (r *Reconciler) Phase() Phase { return r.phase }
func (r *Reconciler) State() bool  { return r.state }
func (r *Reconciler) Count() int64 { return r.count }
func (r *Reconciler) Err() error   { return r.lastErr }

// Pending reports whether a toggle is awaiting its server response.
func (r *Reconciler) Pending() bool { return r.phase == Predicted }
