package instr

import "github.com/afed-lang/afed/value"

// Binding is a named (or anonymous) entry a Namespace owns: a plain
// arity-0 variable or an arity>=1 function, possibly still a forward
// declaration (Expr == nil).
//
// Package ns owns the binding list, dependency graph, and cycle
// detection; Binding itself only carries the per-binding state spec.md's
// data model names (name, arity, expression, cache). Keeping Binding here
// rather than in package ns lets Expression hold non-owning *Binding
// references without an import cycle, matching spec.md's "Expression ...
// holds non-owning references to its Bindings."
type Binding struct {
	// Name is empty for an anonymous binding (an unlabeled document line).
	Name string

	// Arity is -1 until determined: a call fixes it to the call's
	// argument count (>=1), and a definition fixes it to its parameter
	// count (0 for a label without a parameter list). A plain, uncalled
	// reference leaves it undetermined. Once fixed it cannot change.
	Arity int

	// Expr is nil for a forward declaration; it is attached exactly once
	// by Namespace.Define.
	Expr *Expression

	hasCache  bool
	cached    value.Value
	cachedErr error
}

// NewBinding returns a fresh forward declaration with undetermined arity.
func NewBinding(name string) *Binding {
	return &Binding{Name: name, Arity: -1}
}

// IsForward reports whether b has not yet been given an Expression.
func (b *Binding) IsForward() bool { return b.Expr == nil }

// Cache returns the binding's cached result, if any. Only arity-0
// bindings are ever cached (spec.md §4.4).
func (b *Binding) Cache() (v value.Value, err error, ok bool) {
	return b.cached, b.cachedErr, b.hasCache
}

// SetCache stores v/err as the binding's cached evaluation result.
func (b *Binding) SetCache(v value.Value, err error) {
	b.cached, b.cachedErr, b.hasCache = v, err, true
}

// ClearCache invalidates any cached result, called whenever Expr is
// (re)assigned.
func (b *Binding) ClearCache() {
	b.hasCache = false
	b.cached = value.Value{}
	b.cachedErr = nil
}

// Expression is an ordered sequence of Instructions plus its local
// constant and referenced-binding tables (spec.md §3/§4.3).
type Expression struct {
	Instructions []Word
	Constants    []value.Value
	Vars         []*Binding

	// MaxStack is the highest stack height reached while simulating this
	// Expression's instructions at parse time (spec.md §4.4's "stack size
	// >= maximum height ever reached during parsing"); the evaluator uses
	// it only as the initial capacity of its stack, which is a plain
	// growable slice rather than a fixed-capacity buffer, and never
	// checks the height against it.
	MaxStack int
}

// NewExpression returns an empty, appendable Expression.
func NewExpression() *Expression {
	return &Expression{}
}

// Emit appends an instruction and returns its position.
func (e *Expression) Emit(w Word) int {
	e.Instructions = append(e.Instructions, w)
	return len(e.Instructions) - 1
}

// AddConstant deduplicates v by value-equality against the existing
// constant table, returning the index of the (possibly pre-existing)
// slot. Go's garbage collector retires the afed source's "free the
// offered value if it was a duplicate" step.
func (e *Expression) AddConstant(v value.Value) int {
	for i, c := range e.Constants {
		if value.Equal(c, v) {
			return i
		}
	}
	e.Constants = append(e.Constants, v)
	return len(e.Constants) - 1
}

// AddVar deduplicates b by identity against the existing referenced-
// binding table, returning the index of the (possibly pre-existing) slot.
func (e *Expression) AddVar(b *Binding) int {
	for i, existing := range e.Vars {
		if existing == b {
			return i
		}
	}
	e.Vars = append(e.Vars, b)
	return len(e.Vars) - 1
}
