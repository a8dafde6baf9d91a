package block

// #region imports
import "fmt"

// #endregion imports

// #region kind

// Kind identifies what a block does. The set is open: games register
// additional leaf kinds through Registry.Register, supplying a
// contract with an apply func.
type Kind string

const (
	KindMove   Kind = "move"
	KindSet    Kind = "set"
	KindAdd    Kind = "add"
	KindOutput Kind = "output"
	KindLoop   Kind = "loop"
	KindIf     Kind = "if"
)

// #endregion kind

// #region param-type

// ParamType constrains the value a block parameter may hold.
type ParamType string

const (
	ParamInt    ParamType = "int"
	ParamNumber ParamType = "number"
	ParamString ParamType = "string"
	ParamExpr   ParamType = "expr" // boolean expression over context bindings
)

// #endregion param-type

// #region contract

// ParamSpec declares one required parameter of a kind.
type ParamSpec struct {
	Name string
	Type ParamType
}

// Contract defines the shape every block of a kind must satisfy:
// its parameter list, whether it carries child blocks, and the apply
// func giving a leaf kind its runtime behavior. Composite contracts
// (loop, if) carry no apply func; the engine drives their children.
type Contract struct {
	Kind      Kind
	Params    []ParamSpec
	Composite bool
	Apply     ApplyFunc
}

// Bindings is the mutable state surface an apply func operates on.
type Bindings interface {
	Get(name string) float64
	Set(name string, v float64)
	Emit(v float64)
}

// Effect records the binding change one applied block produced.
type Effect struct {
	Var    string
	Before float64
	After  float64
	Output bool
}

// ApplyFunc executes one leaf block against the bindings.
type ApplyFunc func(b *Block, st Bindings) (Effect, error)

// #endregion contract

// #region block

// Block is one instruction unit in a student-authored program.
// Composite blocks (loop, if) drive their Children; leaf blocks are
// applied directly to the problem context.
type Block struct {
	ID       string         `json:"id,omitempty"`
	Kind     Kind           `json:"kind"`
	Params   map[string]any `json:"params,omitempty"`
	Children []*Block       `json:"children,omitempty"`

	// Pos is the index path within the submitted sequence ("2.0.1"),
	// assigned during validation and used for error reporting.
	Pos string `json:"-"`

	cond  *CondProgram // compiled "cond" param, set by validation
	apply ApplyFunc    // contract apply func, bound by validation
}

// Cond returns the compiled condition program for an if block,
// or nil for any other kind.
func (b *Block) Cond() *CondProgram {
	return b.cond
}

// Apply runs the block's bound apply func against the bindings.
// Validation binds the func; an unvalidated block is not applicable.
func (b *Block) Apply(st Bindings) (Effect, error) {
	if b.apply == nil {
		return Effect{}, fmt.Errorf("kind %q is not applicable", b.Kind)
	}
	return b.apply(b, st)
}

// #endregion block

// #region sequence

// Sequence is the ordered list of blocks submitted for one execution.
type Sequence []*Block

// NodeCount returns the total number of blocks including nested children.
func (s Sequence) NodeCount() int {
	n := 0
	for _, b := range s {
		n += countNodes(b)
	}
	return n
}

func countNodes(b *Block) int {
	n := 1
	for _, c := range b.Children {
		n += countNodes(c)
	}
	return n
}

// #endregion sequence
