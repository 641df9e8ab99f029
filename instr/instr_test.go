package instr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/afed-lang/afed/builtin"
	"github.com/afed-lang/afed/value"
)

func TestMakeAndDecodeLoadFamily(t *testing.T) {
	cases := []struct {
		word Word
		op   Op
		idx  int
	}{
		{MakeLoadConst(5), OpLoadConst, 5},
		{MakeLoadVar(3), OpLoadVar, 3},
		{MakeLoadArg(1), OpLoadArg, 1},
	}
	for _, c := range cases {
		op, idx := c.word.Decode()
		assert.Equal(t, c.op, op)
		assert.Equal(t, c.idx, idx)
	}
}

func TestMakeAndDecodeApplyFamily(t *testing.T) {
	op, idx := MakeApplyBuiltin(builtin.ID(7)).Decode()
	assert.Equal(t, OpApplyBuiltin, op)
	assert.Equal(t, 7, idx)

	op, idx = MakeCallVar(42).Decode()
	assert.Equal(t, OpCallVar, op)
	assert.Equal(t, 42, idx)
}

func TestWordString(t *testing.T) {
	assert.Equal(t, "LOAD_CONST 0", MakeLoadConst(0).String())
	assert.Equal(t, "CALL_VAR 2", MakeCallVar(2).String())
}

func TestExpressionAddConstantDeduplicates(t *testing.T) {
	e := NewExpression()
	a := e.AddConstant(mustValue(t, "1"))
	b := e.AddConstant(mustValue(t, "1"))
	c := e.AddConstant(mustValue(t, "2"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, e.Constants, 2)
}

func TestExpressionAddVarDeduplicatesByIdentity(t *testing.T) {
	e := NewExpression()
	b1 := NewBinding("x")
	i1 := e.AddVar(b1)
	i2 := e.AddVar(b1)
	assert.Equal(t, i1, i2)
	assert.Len(t, e.Vars, 1)
}

func TestBindingCacheRoundTrip(t *testing.T) {
	b := NewBinding("x")
	assert.True(t, b.IsForward())
	_, _, ok := b.Cache()
	assert.False(t, ok)

	b.SetCache(mustValue(t, "3"), nil)
	v, err, ok := b.Cache()
	assert.True(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, "3", v.String())

	b.ClearCache()
	_, _, ok = b.Cache()
	assert.False(t, ok)
}

func mustValue(t *testing.T, s string) value.Value {
	t.Helper()
	v, _, ok := value.Parse(s)
	if !ok {
		t.Fatalf("bad literal %q", s)
	}
	return v
}
