// Package value implements the expression engine's numeric value backend.
//
// The engine (package instr/eval/parser/ns) treats Value as an opaque
// scalar with a fixed capability surface: Parse, String, Clone, Equal.
// This backend is built on github.com/shopspring/decimal so that integer
// and exact-decimal literals stay exact through addition, subtraction,
// multiplication and the integer operators (//, %), while the inherently
// irrational builtins (sqrt, log, ln, sin, cos, tan, ^) round-trip through
// float64. Arbitrary precision is not guaranteed — only exactness for the
// operations decimal.Decimal itself performs exactly.
package value

import (
	"math"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/afed-lang/afed/aferr"
)

// Value is an opaque numeric scalar. It is a plain Go value (not a
// pointer), so assignment already performs the "clone" the engine's
// ownership model asks for; Clone is kept as an explicit method so
// call sites can spell out the engine's ownership contract.
type Value struct {
	d decimal.Decimal
}

// literalPattern matches the longest numeric prefix Parse will accept:
// digits, an optional fractional part, and an optional exponent.
var literalPattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?`)

// Parse consumes the longest numeric literal prefix of s and returns the
// resulting Value along with the unconsumed remainder. ok is false if no
// prefix of s parses as a number ("no parse" in spec terms).
func Parse(s string) (v Value, rest string, ok bool) {
	match := literalPattern.FindString(s)
	if match == "" {
		return Value{}, s, false
	}
	d, err := decimal.NewFromString(match)
	if err != nil {
		return Value{}, s, false
	}
	return Value{d: d}, s[len(match):], true
}

// FromInt builds a Value from a plain integer.
func FromInt(i int64) Value { return Value{d: decimal.NewFromInt(i)} }

// FromFloat builds a Value from a float64 result, used by the builtins
// that round-trip through float64 (sqrt, trig, log, ^).
func FromFloat(f float64) Value { return Value{d: decimal.NewFromFloat(f)} }

// Float64 converts v to a float64 for use by the math package.
func (v Value) Float64() float64 {
	f, _ := v.d.Float64()
	return f
}

// Clone returns an independent copy of v. Because Value holds no pointers
// observable outside this package, Clone is simply a copy; it exists so
// that callers in eval/instr can spell out "this slot now owns its own
// Value" the way the afed source's clone() does.
func (v Value) Clone() Value { return v }

// String prints v in the engine's canonical textual form.
func (v Value) String() string { return v.d.String() }

// Equal reports whether a and b represent the same numeric value,
// independent of how they were constructed (e.g. "1" and "1.0").
func Equal(a, b Value) bool { return a.d.Equal(b.d) }

// IsZero reports whether v is exactly zero, used by division/modulo
// builtins to detect an arithmetic error before dividing.
func (v Value) IsZero() bool { return v.d.IsZero() }

// Sign returns -1, 0, or 1 according to v's sign.
func (v Value) Sign() int { return v.d.Sign() }

// Add, Sub, Mul implement the exact decimal operators.
func Add(a, b Value) Value { return Value{d: a.d.Add(b.d)} }
func Sub(a, b Value) Value { return Value{d: a.d.Sub(b.d)} }
func Mul(a, b Value) Value { return Value{d: a.d.Mul(b.d)} }

// Div implements true division (`/`), reported as an ArithError on
// division by zero rather than returning an infinite or NaN Value.
func Div(a, b Value) (Value, error) {
	if b.IsZero() {
		return Value{}, aferr.NewArith(1, "division by zero")
	}
	// DivRound with generous precision; this is the one place decimal's
	// own rational division can't stay exact in general (1/3 has no
	// terminating decimal expansion), so afed's "no arbitrary-precision
	// guarantee" non-goal applies here specifically.
	return Value{d: a.d.DivRound(b.d, 34)}, nil
}

// IntDiv implements floor division (`//`).
func IntDiv(a, b Value) (Value, error) {
	if b.IsZero() {
		return Value{}, aferr.NewArith(2, "integer division by zero")
	}
	// Work in decimal to respect fractional operands: floor(a/b).
	floored := a.d.Div(b.d).Floor()
	return Value{d: decimal.NewFromBigInt(floored.BigInt(), 0)}, nil
}

// Mod implements the modulo operator (`%`), defined as a - b*floor(a/b),
// matching floor-division's sign convention.
func Mod(a, b Value) (Value, error) {
	if b.IsZero() {
		return Value{}, aferr.NewArith(3, "modulo by zero")
	}
	q, err := IntDiv(a, b)
	if err != nil {
		return Value{}, err
	}
	return Sub(a, Mul(q, b)), nil
}

// Neg implements unary minus.
func Neg(a Value) Value { return Value{d: a.d.Neg()} }

// Pow implements the `^` operator. Integer exponents on exact operands
// stay exact via decimal.Pow; otherwise it round-trips through float64.
func Pow(a, b Value) (Value, error) {
	if a.IsZero() && b.Sign() < 0 {
		return Value{}, aferr.NewArith(4, "zero raised to a negative power")
	}
	if b.d.Exponent() >= 0 {
		// b is an integer-valued decimal: decimal.Pow stays exact.
		return Value{d: a.d.Pow(b.d)}, nil
	}
	return FromFloat(math.Pow(a.Float64(), b.Float64())), nil
}
