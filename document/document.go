// Package document implements the line-oriented splicer: it walks a
// document's lines, hands each one to a Namespace's Define, and rewrites
// any `=` print-span with the resulting value, leaving everything else
// byte-for-byte untouched.
//
// This is the "Driver -> Document splicer" collaborator spec.md places
// out of the core's scope; it plays the same outer-loop role Kong's
// repl.go plays for one-line-at-a-time evaluation, but against a whole
// file instead of a terminal, and rewriting in place instead of printing
// a result.
package document

import (
	"errors"
	"fmt"
	"strings"

	"github.com/afed-lang/afed/aferr"
	"github.com/afed-lang/afed/eval"
	"github.com/afed-lang/afed/ns"
)

// Result is the outcome of splicing one document.
type Result struct {
	// Output is the rewritten document text.
	Output string

	// Errors holds one formatted "(Line N) message[: detail]" entry per
	// offending line, in document order.
	Errors []string

	// ErrCount is len(Errors); kept separate so callers that only need
	// the exit-status count don't have to count a slice they discard.
	ErrCount int
}

// Splice walks src line by line, defining each labeled or anonymous
// expression against n and rewriting `=` print-spans with their
// evaluated values. A line that fails to parse or define is reported as
// an error and otherwise left untouched in the output; parsing continues
// with the next physical line.
func Splice(src string, n *ns.Namespace) Result {
	var out strings.Builder
	var res Result

	pos := 0
	line := 1

	for pos < len(src) {
		rest := src[pos:]
		lineEnd := strings.IndexByte(rest, '\n')
		var physicalLine string
		if lineEnd == -1 {
			physicalLine = rest
		} else {
			physicalLine = rest[:lineEnd]
		}

		trimmed := strings.TrimLeft(physicalLine, " \t\r")
		if trimmed == "" || trimmed[0] == '#' {
			out.WriteString(physicalLine)
			if lineEnd == -1 {
				pos = len(src)
				break
			}
			out.WriteByte('\n')
			pos += lineEnd + 1
			line++
			continue
		}

		b, tail, err := n.Define(rest, line)
		consumed := len(rest) - len(tail)
		exprText := rest[:consumed]
		linesConsumed := strings.Count(exprText, "\n")

		if err != nil {
			res.ErrCount++
			res.Errors = append(res.Errors, formatError(line+linesConsumed, err, n))

			nextNL := strings.IndexByte(rest, '\n')
			if nextNL == -1 {
				out.WriteString(rest)
				pos = len(src)
				break
			}
			out.WriteString(rest[:nextNL+1])
			pos += nextNL + 1
			line++
			continue
		}

		out.WriteString(exprText)
		pos += consumed
		line += linesConsumed

		nextNL := strings.IndexByte(tail, '\n')
		var lineTail string
		if nextNL == -1 {
			lineTail = tail
		} else {
			lineTail = tail[:nextNL]
		}

		eqIdx := strings.IndexByte(lineTail, '=')
		hashIdx := strings.IndexByte(lineTail, '#')
		if eqIdx != -1 && (hashIdx == -1 || eqIdx < hashIdx) {
			out.WriteString(lineTail[:eqIdx+1])
			out.WriteByte(' ')
			if v, evalErr := eval.Eval(b); evalErr != nil {
				out.WriteString(evalErr.Error())
				res.ErrCount++
				res.Errors = append(res.Errors, formatError(line, evalErr, n))
			} else {
				out.WriteString(v.String())
			}
			out.WriteByte(' ')
			out.WriteString(lineTail[eqIdx+1:])
		} else {
			out.WriteString(lineTail)
		}

		if nextNL == -1 {
			pos += len(lineTail)
		} else {
			out.WriteByte('\n')
			pos += nextNL + 1
			line++
		}
	}

	res.Output = out.String()
	return res
}

// formatError renders one diagnostic line, appending the cycle chain or
// redefined name n recorded for the failure that just occurred.
func formatError(line int, err error, n *ns.Namespace) string {
	msg := fmt.Sprintf("(Line %d) %s", line, err.Error())
	switch {
	case errors.Is(err, aferr.ErrCircular):
		if chain := n.StrCirc(); chain != "" {
			msg += ": " + chain
		}
	case errors.Is(err, aferr.ErrRedef):
		if name := n.StrRedef(); name != "" {
			msg += ": " + name
		}
	}
	return msg
}
