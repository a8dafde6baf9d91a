package adaptive

// #region imports
import (
	"fmt"
	"sync"
	"time"

	"github.com/danielpatrickdp/blockquest/go-engine/internal/engine"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/problems"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/queue"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/tracker"
	"github.com/google/uuid"
)

// #endregion imports

// #region agent

// Agent owns per-student difficulty. It reads profiles from the tracker
// and is the only component that mutates tier state, so the policy is
// deterministic given what has been recorded. The profile store is an
// explicit dependency, not a singleton: tests and concurrent sessions
// run against isolated stores.
type Agent struct {
	mu      sync.Mutex
	config  Config
	store   *tracker.Store
	catalog *problems.Catalog
}

// NewAgent creates an agent over the given tracker store and catalog.
func NewAgent(config Config, store *tracker.Store, catalog *problems.Catalog) *Agent {
	return &Agent{config: config, store: store, catalog: catalog}
}

// #endregion agent

// #region observe

// Observe reacts to one committed attempt record: streaks update, and a
// full streak moves the tier by exactly one step before resetting both
// streaks. Single-step movement bounds how fast difficulty can swing;
// the streak thresholds keep one outlier attempt from causing churn.
func (a *Agent) Observe(rec tracker.AttemptRecord) (TierChange, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	profile, err := a.store.ProfileFor(rec.StudentID)
	if err != nil {
		return TierChange{}, fmt.Errorf("observe: %w", err)
	}

	tier := a.clampTier(profile.Tier)
	sStreak := profile.SuccessStreak
	fStreak := profile.FailureStreak

	// Aborted runs count as failures for pacing purposes: "took too
	// long" and "tried and failed" both argue against promotion, and
	// the outcome distinction stays visible in the attempt record.
	if rec.Outcome == engine.OutcomeSuccess {
		sStreak++
		fStreak = 0
	} else {
		fStreak++
		sStreak = 0
	}

	change := TierChange{
		StudentID: rec.StudentID,
		Decision:  DecisionHold,
		OldTier:   tier,
		NewTier:   tier,
		Reason:    fmt.Sprintf("streaks %d up / %d down", sStreak, fStreak),
	}

	switch {
	case sStreak >= a.config.StreakUp && tier < a.catalog.MaxTier():
		change.Decision = DecisionPromote
		change.NewTier = tier + 1
		change.Reason = fmt.Sprintf("%d consecutive successes at tier %d", sStreak, tier)
		sStreak, fStreak = 0, 0
	case sStreak >= a.config.StreakUp:
		// Full streak at the top tier: reset so the next promotion
		// requires a fresh streak rather than firing every attempt.
		change.Reason = fmt.Sprintf("%d consecutive successes, streak reset at top tier %d", sStreak, tier)
		sStreak = 0
	case fStreak >= a.config.StreakDown && tier > a.catalog.MinTier():
		change.Decision = DecisionDemote
		change.NewTier = tier - 1
		change.Reason = fmt.Sprintf("%d consecutive failures at tier %d", fStreak, tier)
		sStreak, fStreak = 0, 0
	case fStreak >= a.config.StreakDown:
		change.Reason = fmt.Sprintf("%d consecutive failures, streak reset at bottom tier %d", fStreak, tier)
		fStreak = 0
	}

	if err := a.store.SetTierState(rec.StudentID, change.NewTier, sStreak, fStreak); err != nil {
		return TierChange{}, fmt.Errorf("observe: %w", err)
	}
	return change, nil
}

// #endregion observe

// #region next-assignment

// NextAssignment builds the next queue entry for a student. A student
// with no recorded attempts gets the lowest defined tier. Repeated
// calls with no intervening Observe return the same tier and problem;
// only the entry's identity and timestamp differ.
func (a *Agent) NextAssignment(studentID string) (queue.Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	profile, err := a.store.ProfileFor(studentID)
	if err != nil {
		return queue.Entry{}, fmt.Errorf("next assignment: %w", err)
	}

	tier := a.clampTier(profile.Tier)
	pool := a.catalog.ForTier(tier)
	// Deterministic rotation keyed by how many attempts the student
	// has made, so the same state always picks the same problem.
	p := pool[profile.TotalAttempts%len(pool)]

	return queue.Entry{
		ID:         uuid.New().String(),
		StudentID:  studentID,
		ProblemID:  p.ID,
		Tier:       tier,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

// RetryAssignment re-issues the same problem at front-of-queue priority
// after a failed attempt, when the policy allows immediate retries.
func (a *Agent) RetryAssignment(rec tracker.AttemptRecord) (queue.Entry, bool) {
	if !a.config.RetryOnFailure || rec.Outcome == engine.OutcomeSuccess {
		return queue.Entry{}, false
	}
	return queue.Entry{
		ID:         uuid.New().String(),
		StudentID:  rec.StudentID,
		ProblemID:  rec.ProblemID,
		Tier:       rec.Tier,
		Priority:   1,
		EnqueuedAt: time.Now().UTC(),
	}, true
}

func (a *Agent) clampTier(tier int) int {
	if tier < a.catalog.MinTier() {
		return a.catalog.MinTier()
	}
	if tier > a.catalog.MaxTier() {
		return a.catalog.MaxTier()
	}
	return tier
}

// #endregion next-assignment
