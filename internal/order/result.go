package order

// Outcome classifies what a store operation did.
type Outcome int

const (
	Applied Outcome = iota
	NoOp
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case NoOp:
		return "noop"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Reasons attached to NoOp and Rejected results.
const (
	ReasonItemNotFound   = "item not found"
	ReasonProtected      = "update protection active"
	ReasonTotalsMismatch = "declared totals do not match items"
	ReasonStaleSignature = "matches stale echo signature"
	ReasonNegativePrice  = "negative unit price"
	ReasonAddressType    = "unknown address type"
)

// Result reports the outcome of a store operation. Expected races surface
// here instead of as errors; callers re-read the store rather than branch
// on it.
type Result struct {
	Outcome Outcome
	Reason  string
}

// OK reports whether the operation changed state.
func (r Result) OK() bool {
	return r.Outcome == Applied
}

func applied() Result { return Result{Outcome: Applied} }

func noop(reason string) Result { return Result{Outcome: NoOp, Reason: reason} }

func rejected(reason string) Result { return Result{Outcome: Rejected, Reason: reason} }
