// Package builtin holds the process-wide, read-only table of operators,
// functions, and constants the parser and evaluator recognize.
//
// It plays the role Kong's object.Builtins table plays for the Monkey
// language's len/first/rest/last/push/puts: a static slice walked by name
// at parse time and invoked by the evaluator via a stored index (see
// package instr's APPLY_BUILTIN encoding and object.GetBuiltinByName's
// linear lookup, which this package mirrors in ByName/ByOperName).
package builtin

import (
	"math"

	"github.com/afed-lang/afed/aferr"
	"github.com/afed-lang/afed/ptree"
	"github.com/afed-lang/afed/value"
)

// Kind classifies a Builtin entry per spec.md §3.
type Kind int

const (
	KindPrefixOp Kind = iota
	KindInfixOp
	KindFunction
	KindConstant
)

// Assoc is an infix operator's associativity.
type Assoc int

const (
	AssocLeft Assoc = iota
	AssocRight
)

// Fn is the implementation callback for a Builtin. It receives exactly
// Arity values and returns the result, or a backend-defined arithmetic
// error (spec.md §4.1, §7).
type Fn func(args []value.Value) (value.Value, error)

// Builtin is one entry in the static table: an operator, function, or
// constant known to the parser and callable by the evaluator.
type Builtin struct {
	Name  string
	Kind  Kind
	Prec  int // 0..127, meaningful only for KindPrefixOp/KindInfixOp
	Assoc Assoc
	Arity int // 1 for prefix-op, 2 for infix-op, per-function for KindFunction, 0 for KindConstant
	Fn    Fn
}

// ID is a Builtin's position in Table, the value APPLY_BUILTIN encodes.
type ID int

// Table is the static, process-wide registry of every recognized
// operator, function, and constant. Index order is part of the public
// encoding: once assigned, an ID must not change across a process's
// lifetime, the same constraint Kong's code.Opcode table places on
// opcode numbering.
var Table []Builtin

func init() {
	Table = []Builtin{
		{Name: "-", Kind: KindPrefixOp, Prec: 100, Arity: 1, Fn: func(a []value.Value) (value.Value, error) {
			return value.Neg(a[0]), nil
		}},

		{Name: "^", Kind: KindInfixOp, Prec: 112, Assoc: AssocRight, Arity: 2, Fn: func(a []value.Value) (value.Value, error) {
			return value.Pow(a[0], a[1])
		}},

		{Name: "*", Kind: KindInfixOp, Prec: 96, Assoc: AssocLeft, Arity: 2, Fn: func(a []value.Value) (value.Value, error) {
			return value.Mul(a[0], a[1]), nil
		}},
		{Name: "/", Kind: KindInfixOp, Prec: 96, Assoc: AssocLeft, Arity: 2, Fn: func(a []value.Value) (value.Value, error) {
			return value.Div(a[0], a[1])
		}},
		{Name: "//", Kind: KindInfixOp, Prec: 96, Assoc: AssocLeft, Arity: 2, Fn: func(a []value.Value) (value.Value, error) {
			return value.IntDiv(a[0], a[1])
		}},
		{Name: "%", Kind: KindInfixOp, Prec: 96, Assoc: AssocLeft, Arity: 2, Fn: func(a []value.Value) (value.Value, error) {
			return value.Mod(a[0], a[1])
		}},

		{Name: "+", Kind: KindInfixOp, Prec: 64, Assoc: AssocLeft, Arity: 2, Fn: func(a []value.Value) (value.Value, error) {
			return value.Add(a[0], a[1]), nil
		}},
		{Name: "-", Kind: KindInfixOp, Prec: 64, Assoc: AssocLeft, Arity: 2, Fn: func(a []value.Value) (value.Value, error) {
			return value.Sub(a[0], a[1]), nil
		}},

		{Name: "abs", Kind: KindFunction, Arity: 1, Fn: func(a []value.Value) (value.Value, error) {
			if a[0].Sign() < 0 {
				return value.Neg(a[0]), nil
			}
			return a[0], nil
		}},
		{Name: "floor", Kind: KindFunction, Arity: 1, Fn: unaryFloat(math.Floor)},
		{Name: "ceil", Kind: KindFunction, Arity: 1, Fn: unaryFloat(math.Ceil)},
		{Name: "sqrt", Kind: KindFunction, Arity: 1, Fn: func(a []value.Value) (value.Value, error) {
			if a[0].Sign() < 0 {
				return value.Value{}, aferr.NewArith(10, "square root of a negative number")
			}
			return value.FromFloat(math.Sqrt(a[0].Float64())), nil
		}},
		{Name: "ln", Kind: KindFunction, Arity: 1, Fn: func(a []value.Value) (value.Value, error) {
			if a[0].Sign() <= 0 {
				return value.Value{}, aferr.NewArith(11, "logarithm of a non-positive number")
			}
			return value.FromFloat(math.Log(a[0].Float64())), nil
		}},
		{Name: "log", Kind: KindFunction, Arity: 2, Fn: func(a []value.Value) (value.Value, error) {
			if a[0].Sign() <= 0 || a[1].Sign() <= 0 {
				return value.Value{}, aferr.NewArith(11, "logarithm of a non-positive number")
			}
			lnB := math.Log(a[1].Float64())
			if lnB == 0 {
				return value.Value{}, aferr.NewArith(12, "logarithm base of 1")
			}
			return value.FromFloat(math.Log(a[0].Float64()) / lnB), nil
		}},
		{Name: "sin", Kind: KindFunction, Arity: 1, Fn: unaryFloat(math.Sin)},
		{Name: "cos", Kind: KindFunction, Arity: 1, Fn: unaryFloat(math.Cos)},
		{Name: "tan", Kind: KindFunction, Arity: 1, Fn: unaryFloat(math.Tan)},

		{Name: "pi", Kind: KindConstant, Arity: 0, Fn: func([]value.Value) (value.Value, error) {
			return value.FromFloat(math.Pi), nil
		}},
		{Name: "e", Kind: KindConstant, Arity: 0, Fn: func([]value.Value) (value.Value, error) {
			return value.FromFloat(math.E), nil
		}},
	}

	// Two disjoint prefix trees, one per fixity, built once from Table
	// per spec.md §4.5: "two disjoint trees are built, one for unary and
	// one for binary operators."
	UnaryOperTree = ptree.New()
	BinaryOperTree = ptree.New()
	for i, b := range Table {
		switch b.Kind {
		case KindPrefixOp:
			UnaryOperTree.Put(b.Name, ID(i))
		case KindInfixOp:
			BinaryOperTree.Put(b.Name, ID(i))
		}
	}
}

// UnaryOperTree and BinaryOperTree are the process-wide, read-only prefix
// trees the lexer consults to find the longest matching operator token,
// selecting the unary or binary tree according to the parser's
// was-last-a-value state (spec.md §4.5).
var (
	UnaryOperTree  *ptree.Node
	BinaryOperTree *ptree.Node
)

func unaryFloat(f func(float64) float64) Fn {
	return func(a []value.Value) (value.Value, error) {
		return value.FromFloat(f(a[0].Float64())), nil
	}
}

// isOperatorByte reports whether r can appear in an operator-class token.
// The set is a fixed list of the punctuation bytes used by the operator
// names in Table; it is not recomputed from Table, so a new operator
// character has to be added here as well as to Table.
func isOperatorByte(r byte) bool {
	switch r {
	case '+', '-', '*', '/', '%', '^':
		return true
	default:
		return false
	}
}

// IsOperatorByte reports whether r can begin or continue an operator token.
func IsOperatorByte(r byte) bool { return isOperatorByte(r) }

// ByName looks up a word-class builtin (function or constant) by exact name.
func ByName(name string) (Builtin, ID, bool) {
	for i, b := range Table {
		if (b.Kind == KindFunction || b.Kind == KindConstant) && b.Name == name {
			return b, ID(i), true
		}
	}
	return Builtin{}, 0, false
}

// ByOperName looks up an operator builtin by exact name and unary/binary
// fixity.
func ByOperName(name string, unary bool) (Builtin, ID, bool) {
	for i, b := range Table {
		isUnary := b.Kind == KindPrefixOp
		isBinary := b.Kind == KindInfixOp
		if unary && isUnary && b.Name == name {
			return b, ID(i), true
		}
		if !unary && isBinary && b.Name == name {
			return b, ID(i), true
		}
	}
	return Builtin{}, 0, false
}

// Get returns the Builtin stored at id.
func Get(id ID) Builtin { return Table[id] }
