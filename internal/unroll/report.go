package unroll

import (
	"github.com/malphas-lang/malphas-unroll/internal/ast"
	"github.com/malphas-lang/malphas-unroll/internal/diag"
	"github.com/malphas-lang/malphas-unroll/internal/lexer"
)

// Reason explains why a loop was or was not unrolled.
type Reason int

const (
	// Unrolled means the loop was expanded.
	Unrolled Reason = iota
	ReasonRefBinding
	ReasonMutBinding
	ReasonSubpattern
	ReasonPattern
	ReasonNotRange
	ReasonNoUpperBound
	ReasonNonLiteralBound
	ReasonMalformedLiteral
	ReasonTooManyIterations
)

var reasonText = map[Reason]string{
	Unrolled:                "unrolled",
	ReasonRefBinding:        "loop variable is bound by reference",
	ReasonMutBinding:        "loop variable is mutable",
	ReasonSubpattern:        "loop variable has a subpattern",
	ReasonPattern:           "loop pattern is not a plain name",
	ReasonNotRange:          "loop source is not a range",
	ReasonNoUpperBound:      "range has no upper bound",
	ReasonNonLiteralBound:   "range bound is not an integer literal",
	ReasonMalformedLiteral:  "range bound does not fit in 64 bits",
	ReasonTooManyIterations: "iteration count exceeds the limit",
}

func (r Reason) String() string {
	if s, ok := reasonText[r]; ok {
		return s
	}
	return "unknown"
}

// Decision records what happened to one `for` loop.
type Decision struct {
	Span       lexer.Span
	Var        string // empty when the pattern is not a binding
	Iterations uint64 // number of iteration blocks emitted
	Reason     Reason
}

// Unrolled reports whether the loop was expanded.
func (d Decision) Unrolled() bool { return d.Reason == Unrolled }

// ToDiagnostic describes a loop that was left in place, labelled with the
// reason.
func (d Decision) ToDiagnostic() diag.Diagnostic {
	span := diag.Span{
		Filename: d.Span.Filename,
		Line:     d.Span.Line,
		Column:   d.Span.Column,
		Start:    d.Span.Start,
		End:      d.Span.End,
	}
	out := diag.Diagnostic{
		Stage:    diag.StageUnroll,
		Severity: diag.SeverityNote,
		Code:     diag.CodeUnrollSkipped,
		Message:  "loop left as is",
		Span:     span,
	}.WithPrimarySpan(span, d.Reason.String())

	switch d.Reason {
	case ReasonNonLiteralBound, ReasonNoUpperBound:
		out = out.WithHelp("only ranges with integer literal bounds are unrolled")
	case ReasonTooManyIterations:
		out = out.WithHelp("raise max_iterations to unroll this loop")
	case ReasonRefBinding, ReasonMutBinding, ReasonSubpattern, ReasonPattern:
		out = out.WithHelp("bind the loop variable to a plain name")
	}
	return out
}

// Report lists the decisions of one run in traversal order. Inner loops are
// recorded before the loop that contains them.
type Report struct {
	Decisions []Decision
}

// Unrolled returns the number of loops that were expanded.
func (r Report) Unrolled() int {
	n := 0
	for _, d := range r.Decisions {
		if d.Unrolled() {
			n++
		}
	}
	return n
}

// Skipped returns the number of loops left in place.
func (r Report) Skipped() int {
	return len(r.Decisions) - r.Unrolled()
}

func (r *Report) record(loop *ast.ForExpr, lp loopPlan) {
	d := Decision{
		Span:   loop.Span(),
		Var:    lp.name,
		Reason: lp.reason,
	}
	if lp.reason == Unrolled {
		d.Iterations = lp.iterations()
	}
	r.Decisions = append(r.Decisions, d)
}
