package adaptive

// #region decision

// Decision labels what the policy did with a student's tier.
type Decision string

const (
	DecisionHold    Decision = "hold"
	DecisionPromote Decision = "promote"
	DecisionDemote  Decision = "demote"
)

// TierChange reports the policy's reaction to one attempt record.
type TierChange struct {
	StudentID string
	Decision  Decision
	OldTier   int
	NewTier   int
	Reason    string
}

// #endregion decision

// #region config

// Config holds the hysteresis thresholds for tier movement. The
// defaults are placeholders pending the original curriculum design;
// the shape (streak thresholds, single-step movement) is the contract.
type Config struct {
	StreakUp       int  // consecutive successes before promoting
	StreakDown     int  // consecutive failures/timeouts before demoting
	RetryOnFailure bool // re-queue a failed problem at the front
}

// DefaultConfig returns the standard policy thresholds.
func DefaultConfig() Config {
	return Config{
		StreakUp:       3,
		StreakDown:     2,
		RetryOnFailure: true,
	}
}

// #endregion config
