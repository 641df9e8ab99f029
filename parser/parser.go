// Package parser implements the single-pass shunting-yard driver that
// turns one expression's source text directly into an *instr.Expression,
// per the component design's operator-stack-of-tagged-elements approach.
//
// Kong's parser is a Pratt parser producing an AST that a later compiler
// pass turns into bytecode (compiler.Compile walking ast.Node). This
// parser collapses that into one pass: there is no AST, no separate
// compile step — shunting an operator directly emits instructions into
// the Expression under construction, the same way Kong's compiler emits
// opcodes while walking a tree, except the "tree" here is the live
// operator stack instead of a walked ast.Node.
package parser

import (
	"github.com/afed-lang/afed/aferr"
	"github.com/afed-lang/afed/builtin"
	"github.com/afed-lang/afed/instr"
	"github.com/afed-lang/afed/lexer"
	"github.com/afed-lang/afed/value"
)

// Resolver is the namespace operation the parser needs: turning a
// word-class name into the Binding it names, creating a forward
// declaration the first time the name is seen. Package ns implements
// this; the parser never imports package ns, breaking what would
// otherwise be an ns<->parser import cycle.
type Resolver interface {
	Get(name string) (*instr.Binding, bool)
	Declare(name string) *instr.Binding
}

// maxParenDepth bounds operator-stack nesting, reported as ErrTooDeep;
// distinct from package eval's recursion-depth bound, which guards call
// chains at evaluation time rather than parenthesis nesting at parse time.
const maxParenDepth = 4096

// elemKind discriminates an operator-stack entry. Using one tagged struct
// with a discriminator is the idiomatic-Go rendering of the five-variant
// union spec.md §9 asks for, in place of the afed source's bit-packed
// flags.
type elemKind int

const (
	elemOpenParen elemKind = iota
	elemComma
	elemFixity
	elemBuiltinCall
	elemUserCall
)

type stackElem struct {
	kind elemKind

	// elemFixity fields.
	id       builtin.ID
	prec     int
	assoc    builtin.Assoc
	isUnary  bool
	priority int // (prec << 1) | assoc-bit (no bit for unary), compared when a binary operator displaces

	// elemBuiltinCall fields.
	bfn builtin.Builtin

	// elemUserCall fields.
	callee *instr.Binding

	// argCount tracks commas seen since this element (or since the
	// matching open-paren) was pushed, for elemOpenParen/elemBuiltinCall/
	// elemUserCall.
	argCount int
}

// parser holds the transient state of one shunting-yard pass.
type parser struct {
	sc       *lexer.Scanner
	args     []string
	resolver Resolver
	exp      *instr.Expression

	opStack []stackElem
	height  int // current simulated value-stack height
	wasVal  bool
}

// Parse parses one expression starting at src, which may be the first of
// several physical lines (a newline inside an open parenthesis is
// whitespace, so the scanner may consume more than one line of src).
// args names the parameters in scope if this expression is a function
// body; startLine is src's first line number, used in any future
// line-aware diagnostics. It returns the built Expression, the unconsumed
// remainder of src (everything from the first byte the expression didn't
// need — typically a print-span or comment tail, or a syntax error
// position), and any parse error.
func Parse(src string, startLine int, args []string, r Resolver) (*instr.Expression, string, error) {
	p := &parser{
		sc:       lexer.New(src, startLine),
		args:     args,
		resolver: r,
		exp:      instr.NewExpression(),
	}
	if err := p.run(); err != nil {
		return nil, p.sc.Rest(), err
	}
	return p.exp, p.sc.Rest(), nil
}

func (p *parser) parenDepth() int {
	depth := 0
	for _, e := range p.opStack {
		if e.kind != elemFixity {
			depth++
		}
	}
	return depth
}

func (p *parser) run() error {
	for {
		if p.parenDepth() > 0 {
			p.sc.SkipBlanksAndNewlines()
		} else {
			p.sc.SkipBlanks()
		}

		if p.sc.SkipComment() {
			continue
		}

		ch := p.sc.Peek()

		switch {
		case ch == 0:
			if p.parenDepth() > 0 {
				return aferr.ErrParenMismatch
			}
			return p.finish()

		case ch == '\n':
			if p.parenDepth() > 0 {
				p.sc.Advance(1)
				continue
			}
			return p.finish()

		case ch == '=':
			if p.parenDepth() > 0 {
				return aferr.ErrParenMismatch
			}
			return p.finish()

		case ch == '(':
			if p.wasVal {
				return aferr.ErrMissingOpers
			}
			p.opStack = append(p.opStack, stackElem{kind: elemOpenParen})
			if p.parenDepth() > maxParenDepth {
				return aferr.ErrTooDeep
			}
			p.sc.Advance(1)
			p.wasVal = false

		case ch == ')':
			if !p.wasVal {
				return aferr.ErrMissingValues
			}
			p.sc.Advance(1)
			if err := p.closeParen(); err != nil {
				return err
			}
			p.wasVal = true

		case ch == ',':
			if p.parenDepth() == 0 {
				return aferr.ErrBadComma
			}
			if !p.wasVal {
				return aferr.ErrBadComma
			}
			p.sc.Advance(1)
			if err := p.comma(); err != nil {
				return err
			}
			p.wasVal = false

		case builtin.IsOperatorByte(ch):
			if err := p.operator(); err != nil {
				return err
			}

		case lexer.IsIdentStart(ch):
			if err := p.word(); err != nil {
				return err
			}

		case ch >= '0' && ch <= '9':
			if p.wasVal {
				return aferr.ErrMissingOpers
			}
			v, rest, ok := value.Parse(p.sc.Rest())
			if !ok {
				return aferr.ErrExtraContent
			}
			consumed := len(p.sc.Rest()) - len(rest)
			p.sc.Advance(consumed)
			idx := p.exp.AddConstant(v)
			p.emit(instr.MakeLoadConst(idx))
			p.pushHeight(1)
			p.wasVal = true

		default:
			// Blanks, comments, newlines and EOF were already consumed
			// above, so any byte reaching this point is leftover
			// garbage after (or inside) an otherwise complete
			// expression, at any paren depth.
			return aferr.ErrExtraContent
		}
	}
}

// emit appends w to the Expression under construction.
func (p *parser) emit(w instr.Word) {
	p.exp.Emit(w)
}

// pushHeight adjusts the simulated value-stack height by delta, tracking
// the Expression's MaxStack high-water mark.
func (p *parser) pushHeight(delta int) {
	p.height += delta
	if p.height > p.exp.MaxStack {
		p.exp.MaxStack = p.height
	}
}

// operator handles an operator-class token: selects the unary or binary
// prefix tree by the was-last-a-value flag, matches the longest prefix,
// and either shunts a binary operator (with displacement) or pushes a
// unary one (after the low-prec-unary check).
func (p *parser) operator() error {
	tree := builtin.UnaryOperTree
	if p.wasVal {
		tree = builtin.BinaryOperTree
	}
	val, length, ok := tree.LongestPrefix(p.sc.Rest())
	if !ok {
		// No match in the expected-fixity tree. If the other tree
		// matches, the operator exists but is wrong for this position.
		other := builtin.BinaryOperTree
		if p.wasVal {
			other = builtin.UnaryOperTree
		}
		if _, _, ok2 := other.LongestPrefix(p.sc.Rest()); ok2 {
			if p.wasVal {
				return aferr.ErrMissingOpers
			}
			return aferr.ErrMissingValues
		}
		return aferr.ErrExtraContent
	}

	id := val.(builtin.ID)
	bi := builtin.Get(id)
	p.sc.Advance(length)

	if bi.Kind == builtin.KindPrefixOp {
		if top, ok := p.topFixity(); ok && !top.isUnary && top.assoc == builtin.AssocLeft && top.prec >= bi.Prec {
			return aferr.ErrLowPrecUnary
		}
		p.opStack = append(p.opStack, stackElem{
			kind: elemFixity, id: id, prec: bi.Prec, isUnary: true, priority: bi.Prec << 1,
		})
		p.wasVal = false
		return nil
	}

	priority := bi.Prec << 1
	if bi.Assoc == builtin.AssocLeft {
		priority |= 1
	}
	boundary := bi.Prec<<1 | 1
	for {
		top, ok := p.topFixity()
		if !ok || top.priority < boundary {
			break
		}
		if err := p.applyTopFixity(); err != nil {
			return err
		}
	}
	p.opStack = append(p.opStack, stackElem{
		kind: elemFixity, id: id, prec: bi.Prec, assoc: bi.Assoc, priority: priority,
	})
	p.wasVal = false
	return nil
}

// topFixity returns the top-of-stack element if it is a fixity operator.
func (p *parser) topFixity() (stackElem, bool) {
	if len(p.opStack) == 0 {
		return stackElem{}, false
	}
	top := p.opStack[len(p.opStack)-1]
	if top.kind != elemFixity {
		return stackElem{}, false
	}
	return top, true
}

// applyTopFixity pops and applies the top-of-stack fixity operator,
// folding it into a constant if all of its operands are LOAD_CONST.
func (p *parser) applyTopFixity() error {
	top := p.opStack[len(p.opStack)-1]
	p.opStack = p.opStack[:len(p.opStack)-1]

	arity := 2
	if top.isUnary {
		arity = 1
	}
	return p.foldOrApply(top.id, arity)
}

// foldOrApply emits a builtin application, constant-folding it away if
// every operand instruction at the top of the stream is LOAD_CONST.
func (p *parser) foldOrApply(id builtin.ID, arity int) error {
	if p.canFold(arity) {
		args := make([]value.Value, arity)
		n := len(p.exp.Instructions)
		for i := 0; i < arity; i++ {
			_, idx := p.exp.Instructions[n-arity+i].Decode()
			args[i] = p.exp.Constants[idx]
		}
		p.exp.Instructions = p.exp.Instructions[:n-arity]

		result, err := builtin.Get(id).Fn(args)
		if err != nil {
			return err
		}
		idx := p.exp.AddConstant(result)
		p.emit(instr.MakeLoadConst(idx))
		p.pushHeight(1 - arity)
		return nil
	}

	p.emit(instr.MakeApplyBuiltin(id))
	p.pushHeight(1 - arity)
	return nil
}

// canFold reports whether the last n emitted instructions are all
// LOAD_CONST, making the pending application eligible for folding.
func (p *parser) canFold(n int) bool {
	total := len(p.exp.Instructions)
	if total < n {
		return false
	}
	for i := total - n; i < total; i++ {
		op, _ := p.exp.Instructions[i].Decode()
		if op != instr.OpLoadConst {
			return false
		}
	}
	return true
}

// word handles a word-class token: classify in the order argument,
// word-builtin, existing binding, new forward declaration; then decide
// whether it is immediately called (a following '(').
func (p *parser) word() error {
	if p.wasVal {
		return aferr.ErrMissingOpers
	}
	name, _ := p.sc.ScanWord()

	for i, a := range p.args {
		if a == name {
			p.emit(instr.MakeLoadArg(i))
			p.pushHeight(1)
			p.wasVal = true
			return nil
		}
	}

	if bi, id, ok := builtin.ByName(name); ok {
		if bi.Kind == builtin.KindConstant {
			return p.foldOrApplyConstant(id)
		}
		// Word-named function: must be immediately called.
		if !p.peekCallOpen() {
			return aferr.ErrFuncNoCall
		}
		p.consumeCallOpen()
		p.opStack = append(p.opStack, stackElem{kind: elemBuiltinCall, bfn: bi, id: id})
		p.wasVal = false
		return nil
	}

	b, ok := p.resolver.Get(name)
	if !ok {
		b = p.resolver.Declare(name)
	}

	if p.peekCallOpen() {
		p.consumeCallOpen()
		p.opStack = append(p.opStack, stackElem{kind: elemUserCall, callee: b})
		p.wasVal = false
		return nil
	}

	if b.Arity > 0 {
		return aferr.ErrFuncNoCall
	}
	idx := p.exp.AddVar(b)
	p.emit(instr.MakeLoadVar(idx))
	p.pushHeight(1)
	p.wasVal = true
	return nil
}

// foldOrApplyConstant emits (or folds) a zero-arity constant builtin.
func (p *parser) foldOrApplyConstant(id builtin.ID) error {
	result, err := builtin.Get(id).Fn(nil)
	if err != nil {
		return err
	}
	idx := p.exp.AddConstant(result)
	p.emit(instr.MakeLoadConst(idx))
	p.pushHeight(1)
	p.wasVal = true
	return nil
}

// peekCallOpen reports whether (ignoring blanks, not newlines) the next
// character is '(', without consuming anything.
func (p *parser) peekCallOpen() bool {
	rest := p.sc.Rest()
	i := 0
	for i < len(rest) && (rest[i] == ' ' || rest[i] == '\t') {
		i++
	}
	return i < len(rest) && rest[i] == '('
}

// consumeCallOpen consumes the blanks and '(' that peekCallOpen found.
func (p *parser) consumeCallOpen() {
	p.sc.SkipBlanks()
	p.sc.Advance(1) // '('
}

// comma pops and applies fixity operators down to the nearest open-
// paren/call/comma sentinel, then pushes a new comma sentinel and bumps
// the owning call/paren element's argument count.
func (p *parser) comma() error {
	for {
		_, ok := p.topFixity()
		if !ok {
			break
		}
		if err := p.applyTopFixity(); err != nil {
			return err
		}
	}
	if len(p.opStack) == 0 {
		return aferr.ErrBadComma
	}
	p.opStack = append(p.opStack, stackElem{kind: elemComma})
	for i := len(p.opStack) - 2; i >= 0; i-- {
		k := p.opStack[i].kind
		if k == elemOpenParen || k == elemBuiltinCall || k == elemUserCall {
			p.opStack[i].argCount++
			break
		}
		if k != elemComma {
			break
		}
	}
	return nil
}

// closeParen pops and applies fixity operators until the matching
// open-paren/call sentinel, counts the arguments via contiguous comma
// sentinels, pops the sentinel, and emits the call/group's effect.
func (p *parser) closeParen() error {
	for {
		_, ok := p.topFixity()
		if !ok {
			break
		}
		if err := p.applyTopFixity(); err != nil {
			return err
		}
	}

	if len(p.opStack) == 0 {
		return aferr.ErrParenMismatch
	}

	commas := 0
	for len(p.opStack) > 0 && p.opStack[len(p.opStack)-1].kind == elemComma {
		p.opStack = p.opStack[:len(p.opStack)-1]
		commas++
	}
	if len(p.opStack) == 0 {
		return aferr.ErrParenMismatch
	}

	sentinel := p.opStack[len(p.opStack)-1]
	p.opStack = p.opStack[:len(p.opStack)-1]

	k := sentinel.argCount + 1
	switch sentinel.kind {
	case elemOpenParen:
		if k != 1 {
			return aferr.ErrBadComma
		}
		return nil

	case elemBuiltinCall:
		if sentinel.bfn.Arity != k {
			return aferr.ErrArityMismatch
		}
		return p.foldOrApply(sentinel.id, k)

	case elemUserCall:
		b := sentinel.callee
		if b.Arity == -1 {
			b.Arity = k
		} else if b.Arity != k {
			return aferr.ErrArityMismatch
		}
		idx := p.exp.AddVar(b)
		p.emit(instr.MakeCallVar(idx))
		p.pushHeight(1 - k)
		return nil

	default:
		return aferr.ErrParenMismatch
	}
}

// finish pops and applies any remaining operators, rejects unmatched
// paren/call/comma sentinels, and validates the final stack height.
func (p *parser) finish() error {
	for {
		_, ok := p.topFixity()
		if !ok {
			break
		}
		if err := p.applyTopFixity(); err != nil {
			return err
		}
	}
	if len(p.opStack) > 0 {
		return aferr.ErrParenMismatch
	}
	switch {
	case p.height == 0:
		return aferr.ErrMissingValues
	case p.height > 1:
		return aferr.ErrMissingOpers
	default:
		return nil
	}
}
