package adaptive

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielpatrickdp/blockquest/go-engine/internal/engine"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/problems"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/tracker"
	"github.com/google/uuid"
)

func testAgent(t *testing.T) (*Agent, *tracker.Store) {
	t.Helper()
	dir := t.TempDir()
	store, err := tracker.NewStore(filepath.Join(dir, "test.db"), tracker.DefaultConfig())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	catalog, err := problems.NewCatalog([]problems.Problem{
		{ID: "p1a", Tier: 1, Goal: "x == 1", Budget: 5},
		{ID: "p1b", Tier: 1, Goal: "x == 2", Budget: 5},
		{ID: "p2", Tier: 2, Goal: "x == 3", Budget: 5},
		{ID: "p3", Tier: 3, Goal: "x == 4", Budget: 5},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return NewAgent(DefaultConfig(), store, catalog), store
}

// observe records an attempt and feeds it to the agent, the way the
// session driver does.
func observe(t *testing.T, agent *Agent, store *tracker.Store, student string, outcome engine.Outcome, tier int) TierChange {
	t.Helper()
	rec := tracker.AttemptRecord{
		ID:          uuid.New().String(),
		StudentID:   student,
		ProblemID:   "p1a",
		Tier:        tier,
		Outcome:     outcome,
		Steps:       3,
		Duration:    100 * time.Millisecond,
		ProgramJSON: "[]",
		TraceJSON:   "[]",
		CreatedAt:   time.Now().UTC(),
	}
	if err := store.Record(rec); err != nil {
		t.Fatalf("Record: %v", err)
	}
	change, err := agent.Observe(rec)
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	return change
}

func TestNextAssignment_NewStudentGetsLowestTier(t *testing.T) {
	agent, _ := testAgent(t)

	entry, err := agent.NextAssignment("fresh")
	if err != nil {
		t.Fatalf("NextAssignment: %v", err)
	}
	if entry.Tier != 1 {
		t.Errorf("tier = %d, want lowest (1)", entry.Tier)
	}
	if entry.StudentID != "fresh" || entry.ProblemID == "" || entry.ID == "" {
		t.Errorf("incomplete entry: %+v", entry)
	}
}

func TestNextAssignment_IdempotentWithoutObserve(t *testing.T) {
	agent, store := testAgent(t)
	observe(t, agent, store, "ida", engine.OutcomeSuccess, 1)

	first, err := agent.NextAssignment("ida")
	if err != nil {
		t.Fatalf("NextAssignment: %v", err)
	}
	second, err := agent.NextAssignment("ida")
	if err != nil {
		t.Fatalf("NextAssignment: %v", err)
	}
	if first.Tier != second.Tier {
		t.Errorf("tiers differ across idempotent calls: %d vs %d", first.Tier, second.Tier)
	}
	if first.ProblemID != second.ProblemID {
		t.Errorf("problems differ across idempotent calls: %s vs %s", first.ProblemID, second.ProblemID)
	}
	if first.ID == second.ID {
		t.Error("queue entries must have distinct identities")
	}
}

func TestObserve_PromotionAfterStreak(t *testing.T) {
	agent, store := testAgent(t)

	// Two successes hold; the third promotes, and only by one tier.
	for i := 0; i < 2; i++ {
		change := observe(t, agent, store, "amy", engine.OutcomeSuccess, 1)
		if change.Decision != DecisionHold {
			t.Fatalf("attempt %d: decision = %s, want hold", i, change.Decision)
		}
	}
	change := observe(t, agent, store, "amy", engine.OutcomeSuccess, 1)
	if change.Decision != DecisionPromote {
		t.Fatalf("decision = %s, want promote", change.Decision)
	}
	if change.OldTier != 1 || change.NewTier != 2 {
		t.Fatalf("tier %d→%d, want 1→2", change.OldTier, change.NewTier)
	}

	entry, err := agent.NextAssignment("amy")
	if err != nil {
		t.Fatalf("NextAssignment: %v", err)
	}
	if entry.Tier != 2 {
		t.Errorf("next assignment tier = %d, want 2 and no higher", entry.Tier)
	}
}

func TestObserve_PromotionNeedsFreshStreak(t *testing.T) {
	agent, store := testAgent(t)

	// Promote 1→2 with three successes.
	for i := 0; i < 3; i++ {
		observe(t, agent, store, "ben", engine.OutcomeSuccess, 1)
	}
	// A single further success must not promote again: hysteresis
	// demands a full new streak.
	change := observe(t, agent, store, "ben", engine.OutcomeSuccess, 2)
	if change.Decision != DecisionHold {
		t.Fatalf("decision = %s, want hold after tier change", change.Decision)
	}
	if change.NewTier != 2 {
		t.Fatalf("tier = %d, want 2", change.NewTier)
	}
}

func TestObserve_DemotionAfterFailures(t *testing.T) {
	agent, store := testAgent(t)

	// Lift carol to tier 2 first.
	for i := 0; i < 3; i++ {
		observe(t, agent, store, "carol", engine.OutcomeSuccess, 1)
	}

	change := observe(t, agent, store, "carol", engine.OutcomeFailure, 2)
	if change.Decision != DecisionHold {
		t.Fatalf("decision = %s, want hold after one failure", change.Decision)
	}
	change = observe(t, agent, store, "carol", engine.OutcomeFailure, 2)
	if change.Decision != DecisionDemote {
		t.Fatalf("decision = %s, want demote after streak", change.Decision)
	}
	if change.NewTier != 1 {
		t.Fatalf("tier = %d, want 1", change.NewTier)
	}
}

func TestObserve_DemotionFloorsAtLowestTier(t *testing.T) {
	agent, store := testAgent(t)

	for i := 0; i < 5; i++ {
		change := observe(t, agent, store, "dan", engine.OutcomeFailure, 1)
		if change.NewTier != 1 {
			t.Fatalf("attempt %d: tier = %d, want floor of 1", i, change.NewTier)
		}
		if change.Decision == DecisionDemote {
			t.Fatalf("attempt %d: demoted below the lowest tier", i)
		}
	}
}

func TestObserve_AbortedCountsAsFailure(t *testing.T) {
	agent, store := testAgent(t)

	for i := 0; i < 3; i++ {
		observe(t, agent, store, "eve", engine.OutcomeSuccess, 1)
	}
	observe(t, agent, store, "eve", engine.OutcomeAborted, 2)
	change := observe(t, agent, store, "eve", engine.OutcomeAborted, 2)
	if change.Decision != DecisionDemote {
		t.Fatalf("decision = %s, want demote (timeouts count toward the failure streak)", change.Decision)
	}
}

func TestObserve_MixedOutcomesResetStreaks(t *testing.T) {
	agent, store := testAgent(t)

	observe(t, agent, store, "fay", engine.OutcomeSuccess, 1)
	observe(t, agent, store, "fay", engine.OutcomeSuccess, 1)
	observe(t, agent, store, "fay", engine.OutcomeFailure, 1)
	// Streak broken: two more successes must not promote.
	observe(t, agent, store, "fay", engine.OutcomeSuccess, 1)
	change := observe(t, agent, store, "fay", engine.OutcomeSuccess, 1)
	if change.Decision != DecisionHold {
		t.Fatalf("decision = %s, want hold (streak was broken)", change.Decision)
	}
	// The third consecutive success promotes.
	change = observe(t, agent, store, "fay", engine.OutcomeSuccess, 1)
	if change.Decision != DecisionPromote {
		t.Fatalf("decision = %s, want promote", change.Decision)
	}
}

func TestObserve_PromotionCapsAtHighestTier(t *testing.T) {
	agent, store := testAgent(t)

	// 3 successes per promotion, tiers 1→2→3; then keep succeeding.
	for i := 0; i < 12; i++ {
		change := observe(t, agent, store, "gus", engine.OutcomeSuccess, tierAfter(i))
		if change.NewTier > 3 {
			t.Fatalf("tier = %d, beyond the highest defined tier", change.NewTier)
		}
	}
	entry, err := agent.NextAssignment("gus")
	if err != nil {
		t.Fatalf("NextAssignment: %v", err)
	}
	if entry.Tier != 3 {
		t.Errorf("tier = %d, want cap of 3", entry.Tier)
	}
}

func TestObserve_BoundResetReasonsRecorded(t *testing.T) {
	agent, store := testAgent(t)

	// Bottom of the catalog: the failure streak fills but no demotion
	// can happen; the recorded reason must name the reset, not carry
	// the generic streak text.
	var change TierChange
	for i := 0; i < 2; i++ {
		change = observe(t, agent, store, "hal", engine.OutcomeFailure, 1)
	}
	if change.Decision != DecisionHold {
		t.Fatalf("decision = %s, want hold at the bottom tier", change.Decision)
	}
	if !strings.Contains(change.Reason, "reset at bottom tier 1") {
		t.Errorf("reason = %q, want a bottom-tier streak reset", change.Reason)
	}

	// Top of the catalog: climb to tier 3, then fill another success
	// streak that has nowhere to go.
	for i := 0; i < 6; i++ {
		observe(t, agent, store, "kim", engine.OutcomeSuccess, tierAfter(i))
	}
	for i := 0; i < 3; i++ {
		change = observe(t, agent, store, "kim", engine.OutcomeSuccess, 3)
	}
	if change.Decision != DecisionHold {
		t.Fatalf("decision = %s, want hold at the top tier", change.Decision)
	}
	if !strings.Contains(change.Reason, "reset at top tier 3") {
		t.Errorf("reason = %q, want a top-tier streak reset", change.Reason)
	}
}

// tierAfter approximates the tier a student would be at after i
// straight successes with StreakUp=3; only used to fill the record.
func tierAfter(i int) int {
	tier := 1 + i/3
	if tier > 3 {
		tier = 3
	}
	return tier
}

func TestRetryAssignment(t *testing.T) {
	agent, _ := testAgent(t)

	rec := tracker.AttemptRecord{
		ID:        uuid.New().String(),
		StudentID: "hal",
		ProblemID: "p1a",
		Tier:      1,
		Outcome:   engine.OutcomeFailure,
	}
	entry, ok := agent.RetryAssignment(rec)
	if !ok {
		t.Fatal("expected a retry entry for a failed attempt")
	}
	if entry.ProblemID != "p1a" || entry.Priority != 1 {
		t.Errorf("retry entry = %+v, want same problem at priority 1", entry)
	}

	rec.Outcome = engine.OutcomeSuccess
	if _, ok := agent.RetryAssignment(rec); ok {
		t.Error("no retry should be issued after a success")
	}
}
