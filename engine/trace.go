package engine

// TraceEvent is an optional diagnostic record keyed by employee/day. Traces
// are emitted only when a sink is installed and are never required for
// correctness.
type TraceEvent struct {
	EmployeeID EmployeeID
	WorkDate   WorkDate
	Stage      string // "validate", "periods", "classify", "money"
	Detail     string
}

// Trace receives diagnostic events. A nil Trace disables tracing entirely.
type Trace func(TraceEvent)

func (t Trace) emit(id EmployeeID, d WorkDate, stage, detail string) {
	if t != nil {
		t(TraceEvent{EmployeeID: id, WorkDate: d, Stage: stage, Detail: detail})
	}
}
