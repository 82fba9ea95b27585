// Package unroll expands bounded counting loops into straight-line code.
//
// A loop `for i in A..B { body }` whose bounds are integer literals and whose
// binding is a plain name becomes a block holding one iteration block per
// value of i:
//
//	{
//	    #[allow(non_upper_case_globals)]
//	    {
//	        const i: usize = A;
//	        body
//	    }
//	    ...
//	}
//
// Traversal only descends through the transparent expression kinds listed
// in transformExpr. Every other expression, including closures and match
// arms, is carried through untouched together with any loops inside it.
package unroll

import (
	"math"
	"strconv"

	"github.com/malphas-lang/malphas-unroll/internal/ast"
	"github.com/malphas-lang/malphas-unroll/internal/lexer"
	"github.com/malphas-lang/malphas-unroll/internal/parser"
	"github.com/malphas-lang/malphas-unroll/internal/printer"
)

// DefaultConstType is the type given to the loop constant when neither bound
// carries a type suffix.
const DefaultConstType = "usize"

// allowLowercaseConst silences the lint a lowercase const name would trigger.
const allowLowercaseConst = "allow(non_upper_case_globals)"

// Scope selects which expression kinds the traversal descends through.
type Scope int

const (
	// ScopeFull descends through for loops, if, if let and plain blocks.
	ScopeFull Scope = iota
	// ScopeLoops descends through for loops and plain blocks only.
	ScopeLoops
)

// String returns the configuration spelling of the scope.
func (s Scope) String() string {
	switch s {
	case ScopeLoops:
		return "loops"
	default:
		return "full"
	}
}

// ParseScope parses "full" or "loops".
func ParseScope(s string) (Scope, bool) {
	switch s {
	case "full", "":
		return ScopeFull, true
	case "loops":
		return ScopeLoops, true
	}
	return ScopeFull, false
}

type Option func(*Unroller)

// WithScope sets the traversal scope.
func WithScope(scope Scope) Option {
	return func(u *Unroller) {
		u.scope = scope
	}
}

// WithMaxIterations makes loops with more than n iterations ineligible.
// Zero means no limit.
func WithMaxIterations(n uint64) Option {
	return func(u *Unroller) {
		u.maxIterations = n
	}
}

// WithMarker parses generated blocks with parser.WithMarker(name), so nested
// functions are read back under the same rules as the source file.
func WithMarker(name string) Option {
	return func(u *Unroller) {
		u.marker = name
	}
}

// Unroller rewrites function bodies. An Unroller is not safe for concurrent
// use; create one per goroutine.
type Unroller struct {
	scope         Scope
	maxIterations uint64
	marker        string

	report Report
}

// New returns an Unroller configured by opts.
func New(opts ...Option) *Unroller {
	u := &Unroller{}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Transform unrolls every eligible loop in body using default options.
func Transform(body *ast.BlockExpr) (*ast.BlockExpr, error) {
	return New().Transform(body)
}

// Function unrolls the body of fn using default options.
func Function(fn *ast.FnDecl) (*ast.FnDecl, error) {
	return New().Function(fn)
}

// Report returns the decisions recorded by the most recent Transform or
// Function call.
func (u *Unroller) Report() Report {
	return u.report
}

// Transform returns a new body with every eligible loop expanded. The input
// is not modified. The only error is *SynthesisError.
func (u *Unroller) Transform(body *ast.BlockExpr) (*ast.BlockExpr, error) {
	u.report = Report{}
	return u.transformBlock(body)
}

// Function returns a copy of fn whose body has been transformed. Name,
// parameters, return type and attributes are carried over unchanged.
func (u *Unroller) Function(fn *ast.FnDecl) (*ast.FnDecl, error) {
	u.report = Report{}
	if fn.Body == nil {
		return fn, nil
	}

	body, err := u.transformBlock(fn.Body)
	if err != nil {
		return nil, err
	}

	out := *fn
	out.Body = body
	return &out, nil
}

// transformBlock rewrites each statement's expression and keeps the
// statement's tag. Let, const and item statements pass through.
func (u *Unroller) transformBlock(block *ast.BlockExpr) (*ast.BlockExpr, error) {
	out := ast.NewBlockExpr(make([]ast.Stmt, 0, len(block.Stmts)), block.Span())
	out.Attrs = block.Attrs

	for _, stmt := range block.Stmts {
		switch s := stmt.(type) {
		case *ast.ExprStmt:
			expr, err := u.transformExpr(s.Expr)
			if err != nil {
				return nil, err
			}
			out.Stmts = append(out.Stmts, ast.NewExprStmt(expr, s.Span()))
		case *ast.SemiStmt:
			expr, err := u.transformExpr(s.Expr)
			if err != nil {
				return nil, err
			}
			out.Stmts = append(out.Stmts, ast.NewSemiStmt(expr, s.Span()))
		default:
			out.Stmts = append(out.Stmts, stmt)
		}
	}

	return out, nil
}

// transformExpr dispatches over the transparent expression kinds: for
// loops, if, if let and blocks. Everything else is opaque.
func (u *Unroller) transformExpr(expr ast.Expr) (ast.Expr, error) {
	switch e := expr.(type) {
	case *ast.ForExpr:
		return u.transformFor(e)

	case *ast.IfExpr:
		if u.scope == ScopeLoops {
			return expr, nil
		}
		cond, err := u.transformExpr(e.Cond)
		if err != nil {
			return nil, err
		}
		then, err := u.transformBlock(e.Then)
		if err != nil {
			return nil, err
		}
		els, err := u.transformElse(e.Else)
		if err != nil {
			return nil, err
		}
		return ast.NewIfExpr(cond, then, els, e.Span()), nil

	case *ast.IfLetExpr:
		if u.scope == ScopeLoops {
			return expr, nil
		}
		value, err := u.transformExpr(e.Value)
		if err != nil {
			return nil, err
		}
		then, err := u.transformBlock(e.Then)
		if err != nil {
			return nil, err
		}
		els, err := u.transformElse(e.Else)
		if err != nil {
			return nil, err
		}
		return ast.NewIfLetExpr(e.Pattern, value, then, els, e.Span()), nil

	case *ast.BlockExpr:
		return u.transformBlock(e)

	default:
		return expr, nil
	}
}

func (u *Unroller) transformElse(els ast.Expr) (ast.Expr, error) {
	if els == nil {
		return nil, nil
	}
	return u.transformExpr(els)
}

// transformFor expands loop when it is eligible. Its body is transformed
// first either way, so inner loops unroll even when the outer one cannot.
func (u *Unroller) transformFor(loop *ast.ForExpr) (ast.Expr, error) {
	body, err := u.transformBlock(loop.Body)
	if err != nil {
		return nil, err
	}

	plan := u.plan(loop)
	u.report.record(loop, plan)
	if plan.reason != Unrolled {
		return ast.NewForExpr(loop.Pattern, loop.Iterable, body, loop.Span()), nil
	}

	stmts := make([]ast.Stmt, 0, plan.iterations())
	for v := plan.begin; v < plan.end; v++ {
		block, err := u.iterationBlock(plan, v, body, loop.Span())
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, ast.NewExprStmt(block, block.Span()))
	}

	return ast.NewBlockExpr(stmts, loop.Span()), nil
}

// loopPlan is the outcome of the eligibility check for one loop.
type loopPlan struct {
	name       string
	constType  string
	begin, end uint64
	reason     Reason
}

func (lp loopPlan) iterations() uint64 {
	if lp.end <= lp.begin {
		return 0
	}
	return lp.end - lp.begin
}

// plan evaluates eligibility and bounds for loop.
func (u *Unroller) plan(loop *ast.ForExpr) loopPlan {
	var lp loopPlan

	switch pat := loop.Pattern.(type) {
	case *ast.PatternIdent:
		switch {
		case pat.Mode != ast.BindingModeMove:
			lp.reason = ReasonRefBinding
		case pat.Mutable:
			lp.reason = ReasonMutBinding
		}
		lp.name = pat.Name.Name
	case *ast.PatternBinding:
		lp.reason = ReasonSubpattern
		lp.name = pat.Name.Name
	default:
		lp.reason = ReasonPattern
	}
	if lp.reason != Unrolled {
		return lp
	}

	rng, ok := loop.Iterable.(*ast.RangeExpr)
	if !ok {
		lp.reason = ReasonNotRange
		return lp
	}
	if rng.End == nil {
		lp.reason = ReasonNoUpperBound
		return lp
	}

	upper, ok := rng.End.(*ast.IntegerLit)
	if !ok {
		lp.reason = ReasonNonLiteralBound
		return lp
	}
	var lower *ast.IntegerLit
	if rng.Start != nil {
		if lower, ok = rng.Start.(*ast.IntegerLit); !ok {
			lp.reason = ReasonNonLiteralBound
			return lp
		}
	}

	rawEnd, err := upper.Value()
	if err != nil {
		lp.reason = ReasonMalformedLiteral
		return lp
	}
	if lower != nil {
		if lp.begin, err = lower.Value(); err != nil {
			lp.reason = ReasonMalformedLiteral
			return lp
		}
	}

	lp.end = rawEnd
	if rng.Inclusive {
		if rawEnd == math.MaxUint64 {
			lp.reason = ReasonTooManyIterations
			return lp
		}
		lp.end++
	}

	if u.maxIterations > 0 && lp.iterations() > u.maxIterations {
		lp.reason = ReasonTooManyIterations
		return lp
	}

	lp.constType = DefaultConstType
	if lower != nil && lower.Suffix() != "" {
		lp.constType = lower.Suffix()
	} else if upper.Suffix() != "" {
		lp.constType = upper.Suffix()
	}

	return lp
}

// iterationBlock builds `#[allow(...)] { const name: T = value; body... }`.
// The block is rendered and parsed back so that no node is shared with body
// or with any other iteration.
func (u *Unroller) iterationBlock(lp loopPlan, value uint64, body *ast.BlockExpr, span lexer.Span) (*ast.BlockExpr, error) {
	binding := ast.NewConstStmt(
		ast.NewIdent(lp.name, span),
		ast.NewPathType([]*ast.PathSegment{{Name: ast.NewIdent(lp.constType, span)}}, span),
		ast.NewIntegerLit(strconv.FormatUint(value, 10), span),
		span,
	)

	stmts := make([]ast.Stmt, 0, len(body.Stmts)+1)
	stmts = append(stmts, binding)
	stmts = append(stmts, body.Stmts...)

	synthesized := ast.NewBlockExpr(stmts, span)
	synthesized.Attrs = []*ast.Attribute{ast.NewAttribute(allowLowercaseConst, span)}

	fragment := printer.Stmt(ast.NewExprStmt(synthesized, span))

	var opts []parser.Option
	if u.marker != "" {
		opts = append(opts, parser.WithMarker(u.marker))
	}
	p := parser.New(fragment, opts...)
	stmt := p.ParseStmt()
	if diags := p.Diagnostics(); len(diags) > 0 {
		return nil, newSynthesisError(fragment, span, diags)
	}

	if es, ok := stmt.(*ast.ExprStmt); ok {
		if block, ok := es.Expr.(*ast.BlockExpr); ok {
			return block, nil
		}
	}
	return nil, &SynthesisError{Fragment: fragment, Span: span, Messages: []string{"fragment did not parse back to a block"}}
}
