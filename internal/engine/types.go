package engine

// #region imports
import (
	"github.com/danielpatrickdp/blockquest/go-engine/internal/block"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/world"
)

// #endregion imports

// #region outcome

// Outcome is the terminal state of one execution. Every run ends in
// exactly one of these; nothing is silently swallowed.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeAborted Outcome = "aborted"
)

// AbortReason explains an aborted outcome.
type AbortReason string

const (
	AbortNone           AbortReason = ""
	AbortBudgetExceeded AbortReason = "budget_exceeded"
)

// #endregion outcome

// #region trace

// TraceEntry records one applied block: which block, in what order, and
// what it did to the context.
type TraceEntry struct {
	Step    int         `json:"step"`
	BlockID string      `json:"block_id"`
	Kind    block.Kind  `json:"kind"`
	Pos     string      `json:"pos"`
	Delta   world.Delta `json:"delta"`
}

// Trace is the ordered, append-only log of one run. Read-only once
// execution ends; used for feedback and debugging, never for control.
type Trace []TraceEntry

// #endregion trace

// #region result

// Result bundles everything a caller needs after one execution: the
// terminal context snapshot, the trace, and the outcome.
type Result struct {
	Outcome     Outcome
	AbortReason AbortReason
	Steps       int
	Snapshot    world.Snapshot
	Trace       Trace
}

// #endregion result
