package engine

// #region imports
import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/blockquest/go-engine/internal/block"
	"github.com/danielpatrickdp/blockquest/go-engine/internal/world"
)

// #endregion imports

// #region engine

// Engine interprets validated block sequences against a problem context.
// It performs no I/O and holds no mutable state of its own: all mutation
// happens inside the context the caller passes in, so concurrent
// sessions over independent contexts are safe.
type Engine struct {
	registry *block.Registry
	rules    block.Rules
}

// New creates an engine with the given kind registry and sequence rules.
func New(registry *block.Registry, rules block.Rules) *Engine {
	return &Engine{registry: registry, rules: rules}
}

// Rules returns the sequence bounds this engine enforces.
func (e *Engine) Rules() block.Rules {
	return e.rules
}

// WithAllowed returns an engine enforcing the same block cap but
// restricted to the given kinds (a problem's allowed set). Nil leaves
// the engine unrestricted.
func (e *Engine) WithAllowed(allowed []block.Kind) *Engine {
	if allowed == nil {
		return e
	}
	rules := e.rules
	rules.Allowed = allowed
	return &Engine{registry: e.registry, rules: rules}
}

// #endregion engine

// #region execute

// Execute runs a sequence against a context. The sequence is validated
// up front, all-or-nothing: a rejected sequence returns an error and
// an empty trace with nothing partially run. Otherwise the result is
// one of success (goal met, short-circuits remaining blocks), aborted
// (budget spent mid-run), or failure (sequence finished, goal unmet).
func (e *Engine) Execute(seq block.Sequence, ctx *world.Context) (Result, error) {
	if err := block.ValidateSequence(seq, e.registry, e.rules); err != nil {
		return Result{}, err
	}

	run := &run{ctx: ctx}

	// A goal that is already satisfied is an immediate success with an
	// empty trace, mirroring how an empty sequence against an unmet
	// goal is an immediate failure.
	met, err := ctx.GoalMet()
	if err != nil {
		return Result{}, err
	}
	if met {
		return run.finish(OutcomeSuccess, AbortNone), nil
	}

	done, err := run.blocks(seq)
	if err != nil {
		return Result{}, err
	}
	if done {
		return run.result, nil
	}
	return run.finish(OutcomeFailure, AbortNone), nil
}

// #endregion execute

// #region run

// run carries per-execution state: the context, the growing trace, and
// the step counter.
type run struct {
	ctx    *world.Context
	trace  Trace
	steps  int
	result Result
}

// blocks drives one ordered block list. Returns done=true when a
// terminal outcome (success or abort) was reached and stored.
func (r *run) blocks(list []*block.Block) (bool, error) {
	for _, b := range list {
		done, err := r.block(b)
		if err != nil || done {
			return done, err
		}
	}
	return false, nil
}

func (r *run) block(b *block.Block) (bool, error) {
	switch b.Kind {
	case block.KindLoop:
		count := b.IntParam("count")
		for i := 0; i < count; i++ {
			before := r.ctx.Remaining()
			done, err := r.blocks(b.Children)
			if err != nil || done {
				return done, err
			}
			// An iteration that spent no budget applied no leaf block,
			// so the context is unchanged and every remaining iteration
			// would repeat it exactly. Stop here: total work stays
			// bounded by the budget, not by count.
			if r.ctx.Remaining() == before {
				break
			}
		}
		return false, nil

	case block.KindIf:
		take, err := r.ctx.EvalCond(b.Cond())
		if err != nil {
			return false, fmt.Errorf("block %s at %s: %w", b.Kind, b.Pos, err)
		}
		if !take {
			return false, nil
		}
		return r.blocks(b.Children)
	}

	// Leaf: apply against the live context. Mutation is sequential and
	// visible to every later block.
	delta, err := r.ctx.Apply(b)
	if errors.Is(err, world.ErrBudgetExceeded) {
		r.result = r.finish(OutcomeAborted, AbortBudgetExceeded)
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("block %s at %s: %w", b.Kind, b.Pos, err)
	}

	r.steps++
	r.trace = append(r.trace, TraceEntry{
		Step:    r.steps,
		BlockID: b.ID,
		Kind:    b.Kind,
		Pos:     b.Pos,
		Delta:   delta,
	})

	met, err := r.ctx.GoalMet()
	if err != nil {
		return false, err
	}
	if met {
		r.result = r.finish(OutcomeSuccess, AbortNone)
		return true, nil
	}
	return false, nil
}

func (r *run) finish(outcome Outcome, reason AbortReason) Result {
	return Result{
		Outcome:     outcome,
		AbortReason: reason,
		Steps:       r.steps,
		Snapshot:    r.ctx.Snapshot(),
		Trace:       r.trace,
	}
}

// #endregion run
