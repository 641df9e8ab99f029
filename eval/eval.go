// Package eval implements the stack-machine evaluator described in
// spec.md §4.4: it runs an *instr.Expression's instructions against a
// value stack, resolving LOAD_VAR/CALL_VAR through recursive, cacheable
// evaluation of the referenced Binding.
//
// Kong's vm package executes bytecode with an explicit Frame stack
// (vm/frame.go) shared across calls; this evaluator instead gives each
// Expression execution its own Go-stack frame and local value slice,
// trading Kong's single flat value stack for one that's scoped and freed
// automatically by Go's call stack and garbage collector — the "Scoped
// acquisition" spec.md §5 asks for falls out for free this way. Frame.go's
// shape (a closure/binding, an instruction pointer, a base pointer for
// local slots) reappears here as the (binding, args) pair passed down
// each recursive call instead of as a struct pushed onto a shared stack.
package eval

import (
	"github.com/afed-lang/afed/aferr"
	"github.com/afed-lang/afed/builtin"
	"github.com/afed-lang/afed/instr"
	"github.com/afed-lang/afed/value"
)

// maxDepth bounds recursive LOAD_VAR/CALL_VAR chains. Cycles among
// arity-0 bindings are already rejected by package ns at definition time,
// so this only guards against pathologically deep (but finite) function
// recursion; exceeding it is reported the same way as a parse-time
// too-deep expression.
const maxDepth = 4096

// Eval evaluates an arity-0 Binding, using and populating its cache.
func Eval(b *instr.Binding) (value.Value, error) {
	return evalDepth(b, 0)
}

func evalDepth(b *instr.Binding, depth int) (value.Value, error) {
	if v, err, ok := b.Cache(); ok {
		return v, err
	}
	if b.IsForward() {
		return value.Value{}, aferr.ErrNoExpr
	}
	v, err := run(b.Expr, nil, depth+1)
	if b.Arity == 0 {
		b.SetCache(v, err)
	}
	return v, err
}

// Call evaluates a Binding with arity>=1 against the given arguments.
// Function results are never cached (spec.md §4.4): each call may see
// different arguments.
func Call(b *instr.Binding, args []value.Value) (value.Value, error) {
	return callDepth(b, args, 0)
}

func callDepth(b *instr.Binding, args []value.Value, depth int) (value.Value, error) {
	if b.Arity < 1 {
		return value.Value{}, aferr.ErrNotFunction
	}
	if b.IsForward() {
		return value.Value{}, aferr.ErrNoExpr
	}
	return run(b.Expr, args, depth+1)
}

// run executes expr's instructions against a fresh value stack, using
// args for LOAD_ARG. It returns the single value the Expression must
// leave behind, or an evaluation error.
func run(expr *instr.Expression, args []value.Value, depth int) (value.Value, error) {
	if depth > maxDepth {
		return value.Value{}, aferr.ErrStackOverflow
	}

	stack := make([]value.Value, 0, expr.MaxStack+1)

	for _, w := range expr.Instructions {
		op, idx := w.Decode()
		switch op {
		case instr.OpLoadConst:
			if idx >= len(expr.Constants) {
				return value.Value{}, aferr.ErrStackUnderflow
			}
			stack = append(stack, expr.Constants[idx].Clone())

		case instr.OpLoadArg:
			if idx >= len(args) {
				return value.Value{}, aferr.ErrNoArgs
			}
			stack = append(stack, args[idx].Clone())

		case instr.OpLoadVar:
			if idx >= len(expr.Vars) {
				return value.Value{}, aferr.ErrStackUnderflow
			}
			v, err := evalDepth(expr.Vars[idx], depth)
			if err != nil {
				return value.Value{}, err
			}
			stack = append(stack, v)

		case instr.OpApplyBuiltin:
			bi := builtin.Get(builtin.ID(idx))
			if len(stack) < bi.Arity {
				return value.Value{}, aferr.ErrStackUnderflow
			}
			split := len(stack) - bi.Arity
			result, err := bi.Fn(stack[split:])
			if err != nil {
				return value.Value{}, err
			}
			stack = append(stack[:split], result)

		case instr.OpCallVar:
			if idx >= len(expr.Vars) {
				return value.Value{}, aferr.ErrStackUnderflow
			}
			callee := expr.Vars[idx]
			if len(stack) < callee.Arity {
				return value.Value{}, aferr.ErrStackUnderflow
			}
			split := len(stack) - callee.Arity
			callArgs := make([]value.Value, callee.Arity)
			copy(callArgs, stack[split:])
			result, err := callDepth(callee, callArgs, depth)
			if err != nil {
				return value.Value{}, err
			}
			stack = append(stack[:split], result)
		}
	}

	switch len(stack) {
	case 0:
		return value.Value{}, aferr.ErrStackUnderflow
	case 1:
		return stack[0], nil
	default:
		return value.Value{}, aferr.ErrStackSurplus
	}
}
