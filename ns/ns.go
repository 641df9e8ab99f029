// Package ns implements the namespace: the name-to-binding map, the
// dependency graph it maintains, and the cycle check run on every
// definition.
//
// This plays the role Kong's compiler.SymbolTable plays for lexical
// scoping, but the graph here is a web of mutual references between
// named bindings rather than nested lexical scopes, so resolution
// (Get/Declare) and definition (Define) are namespace-wide operations
// instead of scope-chain walks.
package ns

import (
	"strings"

	"github.com/afed-lang/afed/aferr"
	"github.com/afed-lang/afed/instr"
	"github.com/afed-lang/afed/parser"
)

// Namespace owns every Binding created while parsing a document: named
// bindings reachable by Get/Declare, and anonymous ones returned directly
// to the caller of Define.
type Namespace struct {
	byName      map[string]*instr.Binding
	order       []*instr.Binding
	evalOnParse bool

	// redef and circRoot are diagnostic state set by the most recent
	// failing Define call, read by StrRedef/StrCirc.
	redef     *instr.Binding
	circRoot  *instr.Binding
	circChain []*instr.Binding
}

// New returns an empty namespace. evalOnParse asks Define to evaluate an
// arity-0 binding immediately after attaching it, so its value or
// evaluation error is computed and cached at definition time rather than
// on first use; Define itself does not report evaluation errors. It does
// not otherwise change the dependency graph or caching rules.
func New(evalOnParse bool) *Namespace {
	return &Namespace{
		byName:      make(map[string]*instr.Binding),
		evalOnParse: evalOnParse,
	}
}

// Get looks up an existing binding by name without creating one.
func (n *Namespace) Get(name string) (*instr.Binding, bool) {
	b, ok := n.byName[name]
	return b, ok
}

// Declare returns the binding named name, creating a forward declaration
// (no attached Expression, undetermined arity) if none exists yet. This
// implements parser.Resolver, so the parser can turn an unrecognized
// word-class token into a forward reference without importing this
// package.
func (n *Namespace) Declare(name string) *instr.Binding {
	if b, ok := n.byName[name]; ok {
		return b
	}
	b := instr.NewBinding(name)
	n.byName[name] = b
	n.order = append(n.order, b)
	return b
}

var _ parser.Resolver = (*Namespace)(nil)

// parseLabel recognizes an optional `ident [ '(' ident {',' ident} ')' ]
// ':'` prefix of src. If no label is present it returns ok=false and
// leaves src untouched for the caller to parse as an anonymous
// expression, matching the afed source's parse_label falling back to
// treating the whole line as unlabeled.
func parseLabel(src string) (name string, args []string, rest string, ok bool) {
	s := src
	skipBlanks := func() {
		for len(s) > 0 && (s[0] == ' ' || s[0] == '\t') {
			s = s[1:]
		}
	}

	isIdentStart := func(b byte) bool { return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
	isIdentPart := func(b byte) bool { return isIdentStart(b) || (b >= '0' && b <= '9') }

	if len(s) == 0 || !isIdentStart(s[0]) {
		return "", nil, src, false
	}
	i := 0
	for i < len(s) && isIdentPart(s[i]) {
		i++
	}
	name = s[:i]
	s = s[i:]

	skipBlanks()

	if len(s) > 0 && s[0] == '(' {
		s = s[1:]
		for {
			skipBlanks()
			j := 0
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			if j == 0 {
				return "", nil, src, false
			}
			args = append(args, s[:j])
			s = s[j:]
			skipBlanks()
			if len(s) == 0 {
				return "", nil, src, false
			}
			if s[0] == ',' {
				s = s[1:]
				continue
			}
			break
		}
		if len(s) == 0 || s[0] != ')' {
			return "", nil, src, false
		}
		s = s[1:]
		skipBlanks()
	}

	if len(s) == 0 || s[0] != ':' {
		return "", nil, src, false
	}
	s = s[1:]
	return name, args, s, true
}

// Define parses one document line's `[label ':'] expr` and attaches the
// resulting Expression to the namespace, following the afed source's
// nmsp_define: try a label first, parse the expression, then perform the
// redefinition/arity/cycle checks before attaching.
//
// On success it returns the (possibly newly created) Binding. On parse
// failure the namespace is left exactly as the parser left it: any
// forward declarations the parser created while failing remain, ready to
// be completed by a later Define. On a redefinition or cycle error the
// attempted attachment is reverted — the Binding (if pre-existing) stays
// forward-declared or keeps its previous Expression.
func (n *Namespace) Define(source string, line int) (*instr.Binding, string, error) {
	name, args, exprSrc, labeled := parseLabel(source)

	arity := len(args)
	exp, rest, err := parser.Parse(exprSrc, line, args, n)
	if err != nil {
		return nil, rest, err
	}

	if !labeled {
		b := &instr.Binding{Name: "", Arity: 0, Expr: exp}
		if n.evalOnParse {
			evalNow(b)
		}
		return b, rest, nil
	}

	existing, ok := n.byName[name]
	if !ok {
		b := instr.NewBinding(name)
		b.Arity = arity
		b.Expr = exp
		n.byName[name] = b
		n.order = append(n.order, b)
		if n.evalOnParse && arity == 0 {
			evalNow(b)
		}
		return b, rest, nil
	}

	if !existing.IsForward() {
		n.redef = existing
		return nil, rest, aferr.ErrRedef
	}

	// existing.Arity may still be undetermined (-1) if every prior
	// reference to this name was a plain mention rather than a call;
	// a successful define fixes it. A call site the parser already saw
	// fixed it to that call's argument count (>=1), which must match.
	if existing.Arity != -1 && existing.Arity != arity {
		return nil, rest, aferr.ErrArityMismatch
	}

	if root := n.findCirc(exp, existing); root != nil {
		n.circRoot = root
		return nil, rest, aferr.ErrCircular
	}

	existing.Arity = arity
	existing.Expr = exp
	existing.ClearCache()
	if n.evalOnParse && arity == 0 {
		evalNow(existing)
	}
	return existing, rest, nil
}

// evalNow is a narrow hook so Define can force evaluation without this
// package importing package eval, which would create an import cycle
// (eval already imports instr, and would need ns for nothing else).
// Callers that want eval-on-parse install it via SetEvaluator.
var evalNow = func(*instr.Binding) {}

// SetEvaluator installs the callback Define uses to force evaluation of
// a freshly attached arity-0 Binding when the namespace was created with
// evalOnParse. Package main wires this to eval.Eval at startup.
func SetEvaluator(f func(*instr.Binding)) { evalNow = f }

// findCirc performs a breadth-first search from exp's immediate
// dependencies looking for target, using an ephemeral parent side-table
// instead of a mutated Binding field (spec.md §9's design note). It
// returns target if a cycle was found (so callers can stash it for
// StrCirc) and nil otherwise.
func (n *Namespace) findCirc(exp *instr.Expression, target *instr.Binding) *instr.Binding {
	if exp == nil || target == nil || len(exp.Vars) == 0 {
		return nil
	}

	parent := make(map[*instr.Binding]*instr.Binding, len(n.order))
	queue := make([]*instr.Binding, 0, len(exp.Vars))
	for _, v := range exp.Vars {
		queue = append(queue, v)
		if _, seen := parent[v]; !seen {
			parent[v] = target
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur == target {
			n.circChain = chainFrom(parent, target)
			return target
		}

		if cur.Expr == nil || len(cur.Expr.Vars) == 0 {
			continue
		}
		for _, dep := range cur.Expr.Vars {
			if _, seen := parent[dep]; !seen {
				parent[dep] = cur
			}
			queue = append(queue, dep)
		}
	}
	return nil
}

// chainFrom walks parent pointers from target back to the root, closing
// the loop by repeating target at the end (StrCirc's "c <- a <- b <- c").
func chainFrom(parent map[*instr.Binding]*instr.Binding, target *instr.Binding) []*instr.Binding {
	chain := []*instr.Binding{target}
	cur := parent[target]
	for cur != nil && cur != target {
		chain = append(chain, cur)
		cur = parent[cur]
	}
	chain = append(chain, target)
	return chain
}

// StrCirc formats the cycle chain recorded by the most recent failing
// Define, e.g. "c <- a <- b <- c".
func (n *Namespace) StrCirc() string {
	if n.circRoot == nil || len(n.circChain) == 0 {
		return ""
	}
	names := make([]string, len(n.circChain))
	for i, b := range n.circChain {
		names[i] = b.Name
	}
	return strings.Join(names, " <- ")
}

// StrRedef returns the name of the binding targeted by the most recent
// redefinition error.
func (n *Namespace) StrRedef() string {
	if n.redef == nil {
		return ""
	}
	return n.redef.Name
}
