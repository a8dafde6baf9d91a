package world

// #region delta

// Delta records the effect one applied block had on the bindings.
type Delta struct {
	Var    string  `json:"var"`
	Before float64 `json:"before"`
	After  float64 `json:"after"`
	Output bool    `json:"output,omitempty"` // true when the block emitted Var's value
}

// #endregion delta

// #region snapshot

// Snapshot is an immutable view of a context, captured for the caller
// after execution ends. The presentation layer renders from this; the
// live context is discarded.
type Snapshot struct {
	Vars      map[string]float64 `json:"vars"`
	Outputs   []float64          `json:"outputs,omitempty"`
	Remaining int                `json:"remaining_budget"`
	Goal      string             `json:"goal"`
}

// #endregion snapshot
