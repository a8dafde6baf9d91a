package tracker

// #region imports
import (
	"time"

	"github.com/danielpatrickdp/blockquest/go-engine/internal/engine"
)

// #endregion imports

// #region attempt-record

// AttemptRecord is the immutable result of one student's one run.
// Rows are append-only: never edited, never deleted, preserving a full
// audit trail of how each student got where they are.
type AttemptRecord struct {
	ID          string
	StudentID   string
	ProblemID   string
	Tier        int
	Outcome     engine.Outcome
	AbortReason engine.AbortReason
	Steps       int
	Duration    time.Duration
	ProgramJSON string // the submitted sequence, for replay/export
	TraceJSON   string // the execution trace, for feedback/debugging
	CreatedAt   time.Time
}

// #endregion attempt-record

// #region profile

// Profile is the per-student rolling aggregate derived from attempt
// records. Tier and streaks are mutated only through the adaptive
// agent; the rest is recomputed from the attempt rows.
type Profile struct {
	StudentID      string
	TotalAttempts  int
	SuccessRate    float64 // over the configured window
	AvgSteps       float64 // over the configured window, solved attempts only
	Tier           int     // 0 = never assigned; callers treat as lowest
	SuccessStreak  int
	FailureStreak  int
	LastAttemptAt  time.Time
}

// #endregion profile

// #region config

// Config bounds profile aggregation.
type Config struct {
	Window int // number of most recent attempts feeding the rolling aggregates
}

// DefaultConfig returns the standard aggregation window.
func DefaultConfig() Config {
	return Config{Window: 20}
}

// #endregion config
