package session

// #region imports
import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/danielpatrickdp/blockquest/go-engine/internal/adaptive"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/block"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/engine"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/logging"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/problems"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/queue"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/tracker"
	"github.com/google/uuid"
)

// #endregion imports

// #region runner

// Runner drives the attempt loop: queue feeds (student, problem) pairs
// to the engine, outcomes land in the tracker, and the adaptive agent
// decides what each student sees next.
type Runner struct {
	catalog *problems.Catalog
	queue   *queue.Queue
	engine  *engine.Engine
	store   *tracker.Store
	agent   *adaptive.Agent
	verbose bool
}

// NewRunner wires the full pipeline.
func NewRunner(
	catalog *problems.Catalog,
	q *queue.Queue,
	eng *engine.Engine,
	store *tracker.Store,
	agent *adaptive.Agent,
	verbose bool,
) *Runner {
	return &Runner{
		catalog: catalog,
		queue:   q,
		engine:  eng,
		store:   store,
		agent:   agent,
		verbose: verbose,
	}
}

// #endregion runner

// #region attempt-result

// AttemptResult is everything one run produced, returned to the caller
// for presentation. The engine result is read-only at this point.
type AttemptResult struct {
	Entry      queue.Entry
	Problem    *problems.Problem
	Record     tracker.AttemptRecord
	Run        engine.Result
	TierChange adaptive.TierChange
}

// #endregion attempt-result

// #region start

// Start seeds the queue with a student's first assignment. Safe to call
// for returning students: the agent reads their current tier.
func (r *Runner) Start(studentID string) (queue.Entry, error) {
	entry, err := r.agent.NextAssignment(studentID)
	if err != nil {
		return queue.Entry{}, err
	}
	r.queue.Enqueue(entry)
	if r.verbose {
		log.Printf("[SESSION] queued student=%s problem=%s tier=%d",
			entry.StudentID, entry.ProblemID, entry.Tier)
	}
	return entry, nil
}

// Next pops the pending assignment at the head of the queue.
func (r *Runner) Next() (queue.Entry, *problems.Problem, bool) {
	entry, ok := r.queue.Dequeue()
	if !ok {
		return queue.Entry{}, nil, false
	}
	p, ok := r.catalog.ByID(entry.ProblemID)
	if !ok {
		// A queue entry referencing a missing problem means the catalog
		// changed underneath a live queue; surface it loudly.
		log.Printf("[SESSION] dropping entry %s: unknown problem %q", entry.ID, entry.ProblemID)
		return queue.Entry{}, nil, false
	}
	return entry, p, true
}

// #endregion start

// #region run

// Run executes a submitted program against the dequeued assignment,
// records the attempt, applies the adaptive policy, and queues the
// student's next assignment. Validation failures reject before any
// block executes and nothing is recorded.
func (r *Runner) Run(entry queue.Entry, seq block.Sequence) (AttemptResult, error) {
	p, ok := r.catalog.ByID(entry.ProblemID)
	if !ok {
		return AttemptResult{}, fmt.Errorf("run: unknown problem %q", entry.ProblemID)
	}

	ctx := p.NewContext()
	started := time.Now()
	result, err := r.engine.WithAllowed(p.Allowed).Execute(seq, ctx)
	if err != nil {
		return AttemptResult{}, err
	}
	duration := time.Since(started)

	programJSON, err := block.EncodeSequence(seq)
	if err != nil {
		return AttemptResult{}, err
	}
	traceJSON, err := json.Marshal(result.Trace)
	if err != nil {
		return AttemptResult{}, fmt.Errorf("encode trace: %w", err)
	}

	rec := tracker.AttemptRecord{
		ID:          uuid.New().String(),
		StudentID:   entry.StudentID,
		ProblemID:   entry.ProblemID,
		Tier:        entry.Tier,
		Outcome:     result.Outcome,
		AbortReason: result.AbortReason,
		Steps:       result.Steps,
		Duration:    duration,
		ProgramJSON: programJSON,
		TraceJSON:   string(traceJSON),
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.store.Record(rec); err != nil {
		return AttemptResult{}, err
	}

	change, err := r.agent.Observe(rec)
	if err != nil {
		return AttemptResult{}, err
	}

	r.logProvenance(rec, result, change)
	r.enqueueNext(rec)

	if r.verbose {
		log.Printf("[SESSION] student=%s problem=%s outcome=%s steps=%d tier %d→%d",
			rec.StudentID, rec.ProblemID, rec.Outcome, rec.Steps,
			change.OldTier, change.NewTier)
	}

	return AttemptResult{
		Entry:      entry,
		Problem:    p,
		Record:     rec,
		Run:        result,
		TierChange: change,
	}, nil
}

func (r *Runner) enqueueNext(rec tracker.AttemptRecord) {
	if retry, ok := r.agent.RetryAssignment(rec); ok {
		r.queue.Enqueue(retry)
		return
	}
	next, err := r.agent.NextAssignment(rec.StudentID)
	if err != nil {
		log.Printf("[SESSION] next assignment for %s: %v", rec.StudentID, err)
		return
	}
	r.queue.Enqueue(next)
}

func (r *Runner) logProvenance(rec tracker.AttemptRecord, result engine.Result, change adaptive.TierChange) {
	signals, _ := json.Marshal(map[string]any{
		"outcome":      rec.Outcome,
		"abort_reason": rec.AbortReason,
		"steps":        rec.Steps,
		"duration_ms":  rec.Duration.Milliseconds(),
		"remaining":    result.Snapshot.Remaining,
	})
	err := logging.LogAttempt(r.store.DB(), logging.AttemptEntry{
		AttemptID:   rec.ID,
		StudentID:   rec.StudentID,
		ProblemID:   rec.ProblemID,
		Decision:    string(change.Decision),
		Reason:      change.Reason,
		SignalsJSON: string(signals),
		CreatedAt:   rec.CreatedAt,
	})
	if err != nil {
		log.Printf("[SESSION] provenance log: %v", err)
	}
}

// #endregion run
