package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afed-lang/afed/builtin"
	"github.com/afed-lang/afed/instr"
	"github.com/afed-lang/afed/value"
)

func constExpr(v value.Value) *instr.Expression {
	e := instr.NewExpression()
	idx := e.AddConstant(v)
	e.Emit(instr.MakeLoadConst(idx))
	e.MaxStack = 1
	return e
}

func TestEvalConstant(t *testing.T) {
	b := &instr.Binding{Arity: 0, Expr: constExpr(value.FromInt(5))}
	v, err := Eval(b)
	require.NoError(t, err)
	assert.Equal(t, "5", v.String())
}

func TestEvalCachesResult(t *testing.T) {
	b := &instr.Binding{Arity: 0, Expr: constExpr(value.FromInt(1))}
	v1, err := Eval(b)
	require.NoError(t, err)

	// Mutate the underlying expression; the cached result must not change.
	b.Expr = constExpr(value.FromInt(99))
	v2, err := Eval(b)
	require.NoError(t, err)
	assert.Equal(t, v1.String(), v2.String())
}

func TestEvalForwardDeclarationErrors(t *testing.T) {
	b := instr.NewBinding("x")
	_, err := Eval(b)
	assert.Error(t, err)
}

func TestCallNeverCaches(t *testing.T) {
	// f(arg) = arg + 1, called with two different arguments; both calls
	// must run fresh rather than reuse a cached value.
	e := instr.NewExpression()
	e.Emit(instr.MakeLoadArg(0))
	oneIdx := e.AddConstant(value.FromInt(1))
	e.Emit(instr.MakeLoadConst(oneIdx))
	_, id, ok := builtin.ByOperName("+", false)
	require.True(t, ok)
	e.Emit(instr.MakeApplyBuiltin(id))
	e.MaxStack = 2

	b := &instr.Binding{Name: "f", Arity: 1, Expr: e}

	v1, err := Call(b, []value.Value{value.FromInt(1)})
	require.NoError(t, err)
	assert.Equal(t, "2", v1.String())

	v2, err := Call(b, []value.Value{value.FromInt(10)})
	require.NoError(t, err)
	assert.Equal(t, "11", v2.String())

	_, _, ok = b.Cache()
	assert.False(t, ok, "function bindings must never populate the cache")
}

func TestCallOnArityZeroBindingErrors(t *testing.T) {
	b := &instr.Binding{Arity: 0, Expr: constExpr(value.FromInt(1))}
	_, err := Call(b, nil)
	assert.Error(t, err)
}

func TestRunDetectsStackSurplus(t *testing.T) {
	e := instr.NewExpression()
	i1 := e.AddConstant(value.FromInt(1))
	i2 := e.AddConstant(value.FromInt(2))
	e.Emit(instr.MakeLoadConst(i1))
	e.Emit(instr.MakeLoadConst(i2))
	e.MaxStack = 2

	b := &instr.Binding{Arity: 0, Expr: e}
	_, err := Eval(b)
	assert.Error(t, err)
}

func TestRunDetectsStackUnderflow(t *testing.T) {
	e := instr.NewExpression()
	_, id, ok := builtin.ByOperName("+", false)
	require.True(t, ok)
	e.Emit(instr.MakeApplyBuiltin(id))

	b := &instr.Binding{Arity: 0, Expr: e}
	_, err := Eval(b)
	assert.Error(t, err)
}

func TestLoadVarEvaluatesReferencedBinding(t *testing.T) {
	dep := &instr.Binding{Name: "dep", Arity: 0, Expr: constExpr(value.FromInt(7))}

	e := instr.NewExpression()
	idx := e.AddVar(dep)
	e.Emit(instr.MakeLoadVar(idx))
	e.MaxStack = 1

	b := &instr.Binding{Arity: 0, Expr: e}
	v, err := Eval(b)
	require.NoError(t, err)
	assert.Equal(t, "7", v.String())
}
