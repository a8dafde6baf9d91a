package block

// #region imports
import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// #endregion imports

// #region cond-program

// CondProgram is a compiled boolean expression over context bindings.
// Compilation happens once at validation/load time; evaluation is a
// pure function of the bindings, keeping execution deterministic.
type CondProgram struct {
	src  string
	prog *vm.Program
}

// CompileCond compiles a boolean expression. The expression must
// evaluate to bool; anything else is rejected here, not at run time.
func CompileCond(src string) (*CondProgram, error) {
	prog, err := expr.Compile(src, expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", src, err)
	}
	return &CondProgram{src: src, prog: prog}, nil
}

// Src returns the original expression source.
func (c *CondProgram) Src() string {
	return c.src
}

// Eval runs the expression against the given bindings.
func (c *CondProgram) Eval(env map[string]any) (bool, error) {
	out, err := expr.Run(c.prog, env)
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", c.src, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("eval %q: expected bool, got %T", c.src, out)
	}
	return b, nil
}

// #endregion cond-program
