package orders

// statusRank orders the forward workflow path. Cancelled sits outside the
// path and is handled explicitly.
var statusRank = map[Status]int{
	StatusNew:        0,
	StatusProcessing: 1,
	StatusShipping:   2,
	StatusCompleted:  3,
}

// CanTransition reports whether the workflow allows moving from one status
// to another. Same-status moves are not transitions; callers treat them as
// no-ops before consulting the table.
//
//   - forward moves along New -> Processing -> Shipping -> Completed are
//     allowed, including skips
//   - any non-terminal status may move to Cancelled
//   - Cancelled may return to New, Processing or Shipping (un-cancel)
//   - Completed is terminal
//   - backward moves other than through Cancelled are rejected
func CanTransition(from, to Status) bool {
	if from == to || from.IsTerminal() {
		return false
	}
	if to == StatusCancelled {
		return from != StatusCancelled
	}
	if from == StatusCancelled {
		return to == StatusNew || to == StatusProcessing || to == StatusShipping
	}
	return statusRank[to] > statusRank[from]
}

// LedgerEffect is the inventory side effect of a status transition.
type LedgerEffect int

const (
	// EffectNone leaves the ledger untouched.
	EffectNone LedgerEffect = iota
	// EffectReturnToShelf restocks each item quantity and releases its
	// reservation. Applied exactly once, when entering Cancelled.
	EffectReturnToShelf
	// EffectTakeFromShelf is the exact inverse of EffectReturnToShelf.
	// Applied when leaving Cancelled back into the active workflow.
	EffectTakeFromShelf
)

// TransitionEffect returns the ledger effect of an allowed transition.
func TransitionEffect(from, to Status) LedgerEffect {
	switch {
	case to == StatusCancelled && from != StatusCancelled:
		return EffectReturnToShelf
	case from == StatusCancelled && to != StatusCancelled:
		return EffectTakeFromShelf
	default:
		return EffectNone
	}
}
