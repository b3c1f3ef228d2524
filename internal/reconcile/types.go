package reconcile

// Change is one applied A record edit.
type Change struct {
	Host string
	Old  string
	New  string
}

// Failure is one per-target error that did not stop the rest of the cycle.
type Failure struct {
	Host  string
	Op    string
	Error string
}

// Results summarizes one reconciliation cycle across all targets.
type Results struct {
	Updated   []Change
	Unchanged []string
	Missing   []string
	Failures  []Failure
}
