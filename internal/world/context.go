package world

// #region imports
import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/blockquest/go-engine/internal/block"
)

// #endregion imports

// #region errors

// ErrBudgetExceeded is returned by Apply once the step budget is spent.
// It is a normal terminal condition, not a programming error: the engine
// maps it to an aborted outcome.
var ErrBudgetExceeded = errors.New("step budget exceeded")

// #endregion errors

// #region context

// Context is the mutable world-state one block sequence runs against.
// Created fresh per attempt and owned exclusively by one engine
// invocation; Apply is a pure function of (state, block) with no I/O
// and no clock, so re-running an identical sequence against an
// identically-initialized context produces identical results.
type Context struct {
	vars    map[string]float64
	outputs []float64
	budget  int
	goal    *block.CondProgram
}

// NewContext builds a context from initial bindings, a step budget, and
// a compiled goal predicate.
func NewContext(vars map[string]float64, budget int, goal *block.CondProgram) *Context {
	copied := make(map[string]float64, len(vars))
	for k, v := range vars {
		copied[k] = v
	}
	return &Context{vars: copied, budget: budget, goal: goal}
}

// #endregion context

// #region apply

// Apply executes one leaf block against the bindings through the apply
// func validation bound to it, consuming one unit of budget on success.
// A dispatch that fails consumes nothing. Composite kinds never reach
// Apply; the engine drives their children instead.
func (c *Context) Apply(b *block.Block) (Delta, error) {
	if c.budget <= 0 {
		return Delta{}, ErrBudgetExceeded
	}
	eff, err := b.Apply(c)
	if err != nil {
		return Delta{}, err
	}
	c.budget--
	return Delta(eff), nil
}

// #endregion apply

// #region bindings

// Get, Set and Emit implement block.Bindings, the surface apply funcs
// mutate.

func (c *Context) Get(name string) float64 {
	return c.vars[name]
}

func (c *Context) Set(name string, v float64) {
	c.vars[name] = v
}

func (c *Context) Emit(v float64) {
	c.outputs = append(c.outputs, v)
}

// #endregion bindings

// #region goal

// GoalMet evaluates the goal predicate against the current bindings.
func (c *Context) GoalMet() (bool, error) {
	met, err := c.goal.Eval(c.env())
	if err != nil {
		return false, fmt.Errorf("goal: %w", err)
	}
	return met, nil
}

// EvalCond evaluates an if block's condition against the current bindings.
func (c *Context) EvalCond(cond *block.CondProgram) (bool, error) {
	return cond.Eval(c.env())
}

func (c *Context) env() map[string]any {
	env := make(map[string]any, len(c.vars))
	for k, v := range c.vars {
		env[k] = v
	}
	return env
}

// #endregion goal

// #region accessors

// Remaining reports the unspent step budget.
func (c *Context) Remaining() int {
	return c.budget
}

// Snapshot captures an immutable view of the context.
func (c *Context) Snapshot() Snapshot {
	vars := make(map[string]float64, len(c.vars))
	for k, v := range c.vars {
		vars[k] = v
	}
	var outputs []float64
	if len(c.outputs) > 0 {
		outputs = append(outputs, c.outputs...)
	}
	return Snapshot{
		Vars:      vars,
		Outputs:   outputs,
		Remaining: c.budget,
		Goal:      c.goal.Src(),
	}
}

// #endregion accessors
