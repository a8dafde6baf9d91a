package session

// #region imports
import (
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/blockquest/go-engine/internal/adaptive"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/block"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/engine"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/logging"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/problems"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/queue"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/tracker"
)

// #endregion imports

// #region helpers

func testRunner(t *testing.T) (*Runner, *tracker.Store, *queue.Queue) {
	t.Helper()

	store, err := tracker.NewStore(filepath.Join(t.TempDir(), "session.db"), tracker.DefaultConfig())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	catalog := problems.DefaultCatalog()
	q := queue.New()
	eng := engine.New(block.NewRegistry(), block.DefaultRules())
	agent := adaptive.NewAgent(adaptive.DefaultConfig(), store, catalog)
	return NewRunner(catalog, q, eng, store, agent, false), store, q
}

func parseProgram(t *testing.T, src string) block.Sequence {
	t.Helper()
	seq, err := block.ParseSequence([]byte(src), block.NewRegistry(), block.DefaultRules())
	if err != nil {
		t.Fatalf("ParseSequence: %v", err)
	}
	return seq
}

// walk-3 is the lowest-tier assignment for a fresh student: reach
// position 3 within a budget of 5.
const solveWalk3 = `[{"kind": "move", "params": {"steps": 3}}]`

// stallWalk3 burns the whole budget without ever reaching the goal.
const stallWalk3 = `[
	{"kind": "move", "params": {"steps": 0}},
	{"kind": "move", "params": {"steps": 0}},
	{"kind": "move", "params": {"steps": 0}},
	{"kind": "move", "params": {"steps": 0}},
	{"kind": "move", "params": {"steps": 0}},
	{"kind": "move", "params": {"steps": 0}}
]`

// #endregion helpers

// #region loop

func TestRunner_StartNextRun(t *testing.T) {
	r, store, q := testRunner(t)

	entry, err := r.Start("ana")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if entry.StudentID != "ana" {
		t.Errorf("Start entry student = %q, want %q", entry.StudentID, "ana")
	}
	if entry.ProblemID != "walk-3" {
		t.Errorf("Start entry problem = %q, want %q (lowest tier rotation head)", entry.ProblemID, "walk-3")
	}

	got, p, ok := r.Next()
	if !ok {
		t.Fatal("Next: queue empty after Start")
	}
	if got.ID != entry.ID {
		t.Errorf("Next entry = %q, want %q", got.ID, entry.ID)
	}
	if p.ID != entry.ProblemID {
		t.Errorf("Next problem = %q, want %q", p.ID, entry.ProblemID)
	}

	res, err := r.Run(got, parseProgram(t, solveWalk3))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Run.Outcome != engine.OutcomeSuccess {
		t.Errorf("outcome = %s, want %s", res.Run.Outcome, engine.OutcomeSuccess)
	}
	if res.Run.Steps != 1 {
		t.Errorf("steps = %d, want 1", res.Run.Steps)
	}

	// The attempt is persisted and the next assignment is already queued.
	attempts, err := store.ListAttempts("ana", 10)
	if err != nil {
		t.Fatalf("ListAttempts: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("ListAttempts = %d records, want 1", len(attempts))
	}
	if attempts[0].ID != res.Record.ID {
		t.Errorf("stored attempt id = %q, want %q", attempts[0].ID, res.Record.ID)
	}
	if q.Len() != 1 {
		t.Errorf("queue length after Run = %d, want 1", q.Len())
	}
}

func TestRunner_FailureQueuesPriorityRetry(t *testing.T) {
	r, _, q := testRunner(t)

	if _, err := r.Start("ben"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	entry, _, ok := r.Next()
	if !ok {
		t.Fatal("Next: queue empty")
	}

	res, err := r.Run(entry, parseProgram(t, stallWalk3))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Run.Outcome != engine.OutcomeAborted {
		t.Fatalf("outcome = %s, want %s", res.Run.Outcome, engine.OutcomeAborted)
	}

	retry, _, ok := r.Next()
	if !ok {
		t.Fatal("Next: no retry queued after failure")
	}
	if retry.ProblemID != entry.ProblemID {
		t.Errorf("retry problem = %q, want same problem %q", retry.ProblemID, entry.ProblemID)
	}
	if retry.Priority <= 0 {
		t.Errorf("retry priority = %d, want > 0", retry.Priority)
	}
	if q.Len() != 0 {
		t.Errorf("queue length = %d after consuming retry, want 0", q.Len())
	}
}

func TestRunner_RunRejectsInvalidProgramWithoutRecording(t *testing.T) {
	r, store, _ := testRunner(t)

	if _, err := r.Start("cara"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	entry, _, ok := r.Next()
	if !ok {
		t.Fatal("Next: queue empty")
	}

	// output is not in walk-3's allowed kinds; rejection happens before
	// any block executes.
	seq := block.Sequence{{Kind: "output", Params: map[string]any{"value": "hi"}}}
	if _, err := r.Run(entry, seq); err == nil {
		t.Fatal("Run accepted a program outside the allowed kinds")
	}

	attempts, err := store.ListAttempts("cara", 10)
	if err != nil {
		t.Fatalf("ListAttempts: %v", err)
	}
	if len(attempts) != 0 {
		t.Errorf("rejected attempt was recorded: %d records", len(attempts))
	}
}

func TestRunner_ProvenanceLogged(t *testing.T) {
	r, store, _ := testRunner(t)

	if _, err := r.Start("dee"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	entry, _, ok := r.Next()
	if !ok {
		t.Fatal("Next: queue empty")
	}
	res, err := r.Run(entry, parseProgram(t, solveWalk3))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	entries, err := logging.ListByStudent(store.DB(), "dee", 10)
	if err != nil {
		t.Fatalf("ListByStudent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("provenance entries = %d, want 1", len(entries))
	}
	if entries[0].AttemptID != res.Record.ID {
		t.Errorf("provenance attempt id = %q, want %q", entries[0].AttemptID, res.Record.ID)
	}
	if entries[0].Decision != string(res.TierChange.Decision) {
		t.Errorf("provenance decision = %q, want %q", entries[0].Decision, res.TierChange.Decision)
	}
}

// #endregion loop
