package block

// #region builtin-contracts

// builtinContracts covers the shipped block taxonomy.
var builtinContracts = map[Kind]Contract{
	KindMove: {
		Kind:   KindMove,
		Params: []ParamSpec{{Name: "steps", Type: ParamInt}},
		Apply: func(b *Block, st Bindings) (Effect, error) {
			before := st.Get("position")
			after := before + float64(b.IntParam("steps"))
			st.Set("position", after)
			return Effect{Var: "position", Before: before, After: after}, nil
		},
	},
	KindSet: {
		Kind: KindSet,
		Params: []ParamSpec{
			{Name: "var", Type: ParamString},
			{Name: "value", Type: ParamNumber},
		},
		Apply: func(b *Block, st Bindings) (Effect, error) {
			name := b.StringParam("var")
			before := st.Get(name)
			after := b.NumberParam("value")
			st.Set(name, after)
			return Effect{Var: name, Before: before, After: after}, nil
		},
	},
	KindAdd: {
		Kind: KindAdd,
		Params: []ParamSpec{
			{Name: "var", Type: ParamString},
			{Name: "delta", Type: ParamNumber},
		},
		Apply: func(b *Block, st Bindings) (Effect, error) {
			name := b.StringParam("var")
			before := st.Get(name)
			after := before + b.NumberParam("delta")
			st.Set(name, after)
			return Effect{Var: name, Before: before, After: after}, nil
		},
	},
	KindOutput: {
		Kind:   KindOutput,
		Params: []ParamSpec{{Name: "var", Type: ParamString}},
		Apply: func(b *Block, st Bindings) (Effect, error) {
			name := b.StringParam("var")
			v := st.Get(name)
			st.Emit(v)
			return Effect{Var: name, Before: v, After: v, Output: true}, nil
		},
	},
	KindLoop: {
		Kind:      KindLoop,
		Params:    []ParamSpec{{Name: "count", Type: ParamInt}},
		Composite: true,
	},
	KindIf: {
		Kind:      KindIf,
		Params:    []ParamSpec{{Name: "cond", Type: ParamExpr}},
		Composite: true,
	},
}

// #endregion builtin-contracts

// #region registry

// Registry maps kinds to their contracts. The zero value is unusable;
// construct with NewRegistry.
type Registry struct {
	contracts map[Kind]Contract
}

// NewRegistry returns a registry preloaded with the built-in contracts.
func NewRegistry() *Registry {
	m := make(map[Kind]Contract, len(builtinContracts))
	for k, c := range builtinContracts {
		m[k] = c
	}
	return &Registry{contracts: m}
}

// Register adds or replaces a contract for a kind.
func (r *Registry) Register(c Contract) {
	r.contracts[c.Kind] = c
}

// Contract looks up the contract for a kind.
func (r *Registry) Contract(k Kind) (Contract, bool) {
	c, ok := r.contracts[k]
	return c, ok
}

// Kinds returns all registered kinds.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.contracts))
	for k := range r.contracts {
		kinds = append(kinds, k)
	}
	return kinds
}

// #endregion registry
