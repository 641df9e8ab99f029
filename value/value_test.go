package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLiteralPrefix(t *testing.T) {
	v, rest, ok := Parse("3.25foo")
	require.True(t, ok)
	assert.Equal(t, "foo", rest)
	assert.Equal(t, "3.25", v.String())
}

func TestParseExponent(t *testing.T) {
	v, rest, ok := Parse("1e3")
	require.True(t, ok)
	assert.Equal(t, "", rest)
	assert.Equal(t, "1000", v.String())
}

func TestParseNoMatch(t *testing.T) {
	_, rest, ok := Parse("abc")
	assert.False(t, ok)
	assert.Equal(t, "abc", rest)
}

func TestAddSubMulExact(t *testing.T) {
	a, _, _ := Parse("1.1")
	b, _, _ := Parse("2.2")
	assert.Equal(t, "3.3", Add(a, b).String())
	assert.Equal(t, "-1.1", Sub(a, b).String())
	assert.Equal(t, "2.42", Mul(a, b).String())
}

func TestDivByZero(t *testing.T) {
	a := FromInt(1)
	b := FromInt(0)
	_, err := Div(a, b)
	require.Error(t, err)
}

func TestIntDivFloors(t *testing.T) {
	a := FromInt(-7)
	b := FromInt(2)
	q, err := IntDiv(a, b)
	require.NoError(t, err)
	assert.Equal(t, "-4", q.String())
}

func TestModMatchesFloorDivisionSign(t *testing.T) {
	a := FromInt(-7)
	b := FromInt(2)
	m, err := Mod(a, b)
	require.NoError(t, err)
	assert.Equal(t, "1", m.String())
}

func TestPowIntegerExponentExact(t *testing.T) {
	a := FromInt(2)
	b := FromInt(10)
	r, err := Pow(a, b)
	require.NoError(t, err)
	assert.Equal(t, "1024", r.String())
}

func TestPowZeroToNegative(t *testing.T) {
	_, err := Pow(FromInt(0), FromInt(-1))
	assert.Error(t, err)
}

func TestEqualIgnoresRepresentation(t *testing.T) {
	a, _, _ := Parse("1")
	b, _, _ := Parse("1.0")
	assert.True(t, Equal(a, b))
}
