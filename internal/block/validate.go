package block

// #region imports
import (
	"fmt"
	"math"
)

// #endregion imports

// #region validation-error

// ValidationError rejects a malformed block or an over-length sequence
// before any block executes.
type ValidationError struct {
	Pos  string // index path of the offending block, "" for sequence-level errors
	Kind Kind
	Msg  string
}

func (e *ValidationError) Error() string {
	if e.Pos == "" {
		return fmt.Sprintf("invalid sequence: %s", e.Msg)
	}
	return fmt.Sprintf("invalid block %s at %s: %s", e.Kind, e.Pos, e.Msg)
}

// #endregion validation-error

// #region rules

// Rules bounds what a submitted sequence may contain.
type Rules struct {
	MaxBlocks int    // cap on total node count, nested children included
	Allowed   []Kind // nil = every registered kind
}

// DefaultRules returns the standard sequence bounds.
func DefaultRules() Rules {
	return Rules{MaxBlocks: 32}
}

// #endregion rules

// #region validate-sequence

// ValidateSequence checks every block against its kind contract and the
// sequence against the given rules. Validation is all-or-nothing: on
// success every block has its Pos assigned, its condition compiled, and
// its apply func bound; on failure nothing is suitable for execution.
func ValidateSequence(seq Sequence, reg *Registry, rules Rules) error {
	if n := seq.NodeCount(); rules.MaxBlocks > 0 && n > rules.MaxBlocks {
		return &ValidationError{Msg: fmt.Sprintf("%d blocks exceeds cap of %d", n, rules.MaxBlocks)}
	}

	var allowed map[Kind]bool
	if rules.Allowed != nil {
		allowed = make(map[Kind]bool, len(rules.Allowed))
		for _, k := range rules.Allowed {
			allowed[k] = true
		}
	}

	for i, b := range seq {
		if err := validateBlock(b, fmt.Sprintf("%d", i), reg, allowed); err != nil {
			return err
		}
	}
	return nil
}

func validateBlock(b *Block, pos string, reg *Registry, allowed map[Kind]bool) error {
	b.Pos = pos

	contract, ok := reg.Contract(b.Kind)
	if !ok {
		return &ValidationError{Pos: pos, Kind: b.Kind, Msg: "unknown kind"}
	}
	if allowed != nil && !allowed[b.Kind] {
		return &ValidationError{Pos: pos, Kind: b.Kind, Msg: "kind not allowed for this problem"}
	}

	// Every kind must be executable before anything runs: leaves need
	// their contract's apply func, and the only composites the engine
	// drives are loop and if.
	if contract.Composite {
		if b.Kind != KindLoop && b.Kind != KindIf {
			return &ValidationError{Pos: pos, Kind: b.Kind, Msg: "composite kind has no driver"}
		}
	} else {
		if contract.Apply == nil {
			return &ValidationError{Pos: pos, Kind: b.Kind, Msg: "kind has no apply behavior"}
		}
		b.apply = contract.Apply
	}

	for _, spec := range contract.Params {
		raw, ok := b.Params[spec.Name]
		if !ok {
			return &ValidationError{Pos: pos, Kind: b.Kind, Msg: fmt.Sprintf("missing param %q", spec.Name)}
		}
		if err := checkParam(b, spec, raw); err != nil {
			return &ValidationError{Pos: pos, Kind: b.Kind, Msg: err.Error()}
		}
	}
	for name := range b.Params {
		if !contract.hasParam(name) {
			return &ValidationError{Pos: pos, Kind: b.Kind, Msg: fmt.Sprintf("unexpected param %q", name)}
		}
	}

	if !contract.Composite && len(b.Children) > 0 {
		return &ValidationError{Pos: pos, Kind: b.Kind, Msg: "leaf kind cannot have children"}
	}
	for i, c := range b.Children {
		if err := validateBlock(c, fmt.Sprintf("%s.%d", pos, i), reg, allowed); err != nil {
			return err
		}
	}
	return nil
}

func (c Contract) hasParam(name string) bool {
	for _, spec := range c.Params {
		if spec.Name == name {
			return true
		}
	}
	return false
}

// #endregion validate-sequence

// #region param-checks

func checkParam(b *Block, spec ParamSpec, raw any) error {
	switch spec.Type {
	case ParamInt:
		f, ok := asNumber(raw)
		if !ok || f != math.Trunc(f) {
			return fmt.Errorf("param %q must be an integer (got %v)", spec.Name, raw)
		}
		if f < 0 {
			return fmt.Errorf("param %q must be non-negative (got %v)", spec.Name, raw)
		}
	case ParamNumber:
		if _, ok := asNumber(raw); !ok {
			return fmt.Errorf("param %q must be a number (got %T)", spec.Name, raw)
		}
	case ParamString:
		s, ok := raw.(string)
		if !ok || s == "" {
			return fmt.Errorf("param %q must be a non-empty string", spec.Name)
		}
	case ParamExpr:
		s, ok := raw.(string)
		if !ok || s == "" {
			return fmt.Errorf("param %q must be a non-empty expression", spec.Name)
		}
		prog, err := CompileCond(s)
		if err != nil {
			return fmt.Errorf("param %q: %v", spec.Name, err)
		}
		b.cond = prog
	default:
		return fmt.Errorf("param %q has unsupported type %q", spec.Name, spec.Type)
	}
	return nil
}

// asNumber accepts the numeric shapes JSON decoding produces.
func asNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// IntParam reads a validated integer param.
func (b *Block) IntParam(name string) int {
	f, _ := asNumber(b.Params[name])
	return int(f)
}

// NumberParam reads a validated numeric param.
func (b *Block) NumberParam(name string) float64 {
	f, _ := asNumber(b.Params[name])
	return f
}

// StringParam reads a validated string param.
func (b *Block) StringParam(name string) string {
	s, _ := b.Params[name].(string)
	return s
}

// #endregion param-checks
