package unroll

import (
	"errors"
	"testing"

	"github.com/malphas-lang/malphas-unroll/internal/ast"
	"github.com/malphas-lang/malphas-unroll/internal/diag"
	"github.com/malphas-lang/malphas-unroll/internal/lexer"
	"github.com/malphas-lang/malphas-unroll/internal/parser"
	"github.com/malphas-lang/malphas-unroll/internal/printer"
)

// ----------------------------------------------------------------------------
// Test Helpers
// ----------------------------------------------------------------------------

func parseBlock(t *testing.T, src string) *ast.BlockExpr {
	t.Helper()
	p := parser.New(src)
	block := p.ParseBlock()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	return block
}

func unrollBlock(t *testing.T, src string, opts ...Option) (*ast.BlockExpr, *ast.BlockExpr, Report) {
	t.Helper()
	in := parseBlock(t, src)
	u := New(opts...)
	out, err := u.Transform(in)
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	return in, out, u.Report()
}

func render(block *ast.BlockExpr) string {
	return printer.New(printer.Options{}).Block(block)
}

// expectUnrolled verifies the rendered result of transforming input.
func expectUnrolled(t *testing.T, input string, expected string) {
	t.Helper()
	t.Run(input, func(t *testing.T) {
		t.Helper()
		_, out, _ := unrollBlock(t, input)
		if actual := render(out); actual != expected {
			t.Errorf("\ninput:\n%s\nexpected:\n%s\nactual:\n%s", input, expected, actual)
		}
	})
}

// loopConsts returns the value and type of every `const name` in block, in
// source order.
func loopConsts(block *ast.BlockExpr, name string) (values, types []string) {
	ast.Walk(block, func(n ast.Node) bool {
		c, ok := n.(*ast.ConstStmt)
		if !ok || c.Name.Name != name {
			return true
		}
		values = append(values, printer.Expr(c.Value))
		if pt, ok := c.Type.(*ast.PathType); ok {
			types = append(types, pt.Segments[0].Name.Name)
		}
		return true
	})
	return values, types
}

func countFor(block *ast.BlockExpr) int {
	n := 0
	ast.Walk(block, func(node ast.Node) bool {
		if _, ok := node.(*ast.ForExpr); ok {
			n++
		}
		return true
	})
	return n
}

// ----------------------------------------------------------------------------
// Expansion
// ----------------------------------------------------------------------------

func TestUnrollShape(t *testing.T) {
	expectUnrolled(t, "{ for i in 0..2 { f(i); } }",
		"{\n"+
			"    {\n"+
			"        #[allow(non_upper_case_globals)]\n"+
			"        {\n"+
			"            const i: usize = 0;\n"+
			"            f(i);\n"+
			"        }\n"+
			"        #[allow(non_upper_case_globals)]\n"+
			"        {\n"+
			"            const i: usize = 1;\n"+
			"            f(i);\n"+
			"        }\n"+
			"    }\n"+
			"}")

	expectUnrolled(t, "{ for i in 5..2 { f(i); } }", "{\n    {}\n}")
	expectUnrolled(t, "{ for i in 0..1 {} }",
		"{\n"+
			"    {\n"+
			"        #[allow(non_upper_case_globals)]\n"+
			"        {\n"+
			"            const i: usize = 0;\n"+
			"        }\n"+
			"    }\n"+
			"}")
}

func TestIterationCount(t *testing.T) {
	tests := []struct {
		rng  string
		want int
	}{
		{"0..3", 3},
		{"0..=3", 4},
		{"..4", 4},
		{"..=0", 1},
		{"2..5", 3},
		{"5..5", 0},
		{"5..2", 0},
		{"3..=2", 0},
		{"0x10..0x12", 2},
		{"1_0..1_2", 2},
		{"0b11..=0b101", 3},
	}

	for _, tt := range tests {
		t.Run(tt.rng, func(t *testing.T) {
			_, out, report := unrollBlock(t, "{ for i in "+tt.rng+" { f(i); } }")

			values, _ := loopConsts(out, "i")
			if len(values) != tt.want {
				t.Fatalf("expected %d iterations, got %d", tt.want, len(values))
			}
			if len(report.Decisions) != 1 || !report.Decisions[0].Unrolled() {
				t.Fatalf("expected one unrolled decision, got %+v", report.Decisions)
			}
			if got := report.Decisions[0].Iterations; got != uint64(tt.want) {
				t.Fatalf("expected report to count %d iterations, got %d", tt.want, got)
			}
			if countFor(out) != 0 {
				t.Fatalf("expected no for loops left:\n%s", render(out))
			}
		})
	}
}

func TestIterationValues(t *testing.T) {
	_, out, _ := unrollBlock(t, "{ for k in 3..=6 { f(k); } }")

	values, _ := loopConsts(out, "k")
	want := []string{"3", "4", "5", "6"}
	if len(values) != len(want) {
		t.Fatalf("expected %v, got %v", want, values)
	}
	for i := range want {
		if values[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, values)
		}
	}
}

func TestConstTypeFollowsSuffix(t *testing.T) {
	tests := []struct {
		rng  string
		want string
	}{
		{"0..3", "usize"},
		{"0u8..3", "u8"},
		{"0..3i64", "i64"},
		{"1u16..=2u16", "u16"},
	}

	for _, tt := range tests {
		_, out, _ := unrollBlock(t, "{ for i in "+tt.rng+" { f(i); } }")
		_, types := loopConsts(out, "i")
		if len(types) == 0 {
			t.Fatalf("%s: no iterations", tt.rng)
		}
		for _, got := range types {
			if got != tt.want {
				t.Errorf("%s: expected const type %s, got %s", tt.rng, tt.want, got)
			}
		}
	}
}

func TestBodyOrderPreserved(t *testing.T) {
	_, out, _ := unrollBlock(t, "{ for i in 0..1 { a(i); let x = i; b(x); c } }")

	loop := out.Stmts[0].(*ast.ExprStmt).Expr.(*ast.BlockExpr)
	iter := loop.Stmts[0].(*ast.ExprStmt).Expr.(*ast.BlockExpr)

	want := []string{"const i: usize = 0;", "a(i);", "let x = i;", "b(x);", "c"}
	if len(iter.Stmts) != len(want) {
		t.Fatalf("expected %d statements, got %d", len(want), len(iter.Stmts))
	}
	for i, stmt := range iter.Stmts {
		if got := printer.Stmt(stmt); got != want[i] {
			t.Errorf("statement %d: expected %q, got %q", i, want[i], got)
		}
	}
}

func TestNestedLoops(t *testing.T) {
	_, out, report := unrollBlock(t, "{ for i in 0..2 { for j in 0..3 { f(i, j); } } }")

	is, _ := loopConsts(out, "i")
	js, _ := loopConsts(out, "j")
	if len(is) != 2 || len(js) != 6 {
		t.Fatalf("expected 2 i and 6 j iterations, got %d and %d", len(is), len(js))
	}

	if len(report.Decisions) != 2 {
		t.Fatalf("expected 2 decisions, got %d", len(report.Decisions))
	}
	if report.Decisions[0].Var != "j" || report.Decisions[1].Var != "i" {
		t.Fatalf("expected inner loop first, got %+v", report.Decisions)
	}
	if report.Unrolled() != 2 || report.Skipped() != 0 {
		t.Fatalf("unexpected counts: %d unrolled, %d skipped", report.Unrolled(), report.Skipped())
	}
}

func TestInnerLoopUnrollsInsideIneligibleOuter(t *testing.T) {
	_, out, report := unrollBlock(t, "{ for x in xs { for j in 0..2 { g(x, j); } } }")

	if countFor(out) != 1 {
		t.Fatalf("expected the outer loop to remain:\n%s", render(out))
	}
	js, _ := loopConsts(out, "j")
	if len(js) != 2 {
		t.Fatalf("expected 2 inner iterations, got %d", len(js))
	}
	if report.Unrolled() != 1 || report.Skipped() != 1 {
		t.Fatalf("unexpected counts: %d unrolled, %d skipped", report.Unrolled(), report.Skipped())
	}
}

// ----------------------------------------------------------------------------
// Eligibility
// ----------------------------------------------------------------------------

func TestIneligibleLoopsUnchanged(t *testing.T) {
	tests := []struct {
		name   string
		loop   string
		reason Reason
	}{
		{"by reference", "for ref i in 0..3 { f(i); }", ReasonRefBinding},
		{"by mutable reference", "for ref mut i in 0..3 { f(i); }", ReasonRefBinding},
		{"mutable", "for mut i in 0..3 { f(i); }", ReasonMutBinding},
		{"subpattern", "for i @ 0..=9 in 0..3 { f(i); }", ReasonSubpattern},
		{"tuple pattern", "for (a, b) in 0..3 { f(a); }", ReasonPattern},
		{"wildcard", "for _ in 0..3 { f(); }", ReasonPattern},
		{"iterator", "for i in xs.iter() { f(i); }", ReasonNotRange},
		{"open range", "for i in 0.. { f(i); }", ReasonNoUpperBound},
		{"variable upper", "for i in 0..n { f(i); }", ReasonNonLiteralBound},
		{"variable lower", "for i in n..4 { f(i); }", ReasonNonLiteralBound},
		{"parenthesised bound", "for i in 0..(4) { f(i); }", ReasonNonLiteralBound},
		{"negative bound", "for i in -2..2 { f(i); }", ReasonNonLiteralBound},
		{"oversized literal", "for i in 0..99999999999999999999999 { f(i); }", ReasonMalformedLiteral},
		{"inclusive at max", "for i in 0..=18446744073709551615 { f(i); }", ReasonTooManyIterations},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out, report := unrollBlock(t, "{ "+tt.loop+" }")

			if got, want := render(out), render(in); got != want {
				t.Fatalf("expected loop unchanged\nwant:\n%s\ngot:\n%s", want, got)
			}
			if len(report.Decisions) != 1 {
				t.Fatalf("expected 1 decision, got %d", len(report.Decisions))
			}
			if got := report.Decisions[0].Reason; got != tt.reason {
				t.Fatalf("expected reason %q, got %q", tt.reason, got)
			}
		})
	}
}

func TestMaxIterations(t *testing.T) {
	_, out, report := unrollBlock(t, "{ for i in 0..3 { f(i); } for j in 0..4 { f(j); } }", WithMaxIterations(3))

	if report.Unrolled() != 1 {
		t.Fatalf("expected 1 unrolled loop, got %d", report.Unrolled())
	}
	if got := report.Decisions[1].Reason; got != ReasonTooManyIterations {
		t.Fatalf("expected limit to reject the second loop, got %q", got)
	}
	if countFor(out) != 1 {
		t.Fatalf("expected one loop to remain:\n%s", render(out))
	}
}

// ----------------------------------------------------------------------------
// Traversal
// ----------------------------------------------------------------------------

func TestTransparentKindsAreEntered(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"if then", "{ if c { for i in 0..2 { f(i); } } }"},
		{"else", "{ if c { } else { for i in 0..2 { f(i); } } }"},
		{"else if", "{ if c { } else if d { for i in 0..2 { f(i); } } }"},
		{"if let", "{ if let Some(v) = o { for i in 0..2 { f(i); } } }"},
		{"if let else", "{ if let Some(v) = o { } else { for i in 0..2 { f(i); } } }"},
		{"block", "{ { for i in 0..2 { f(i); } } }"},
		{"semicolon statement", "{ for i in 0..2 { f(i); }; }"},
		{"let value block", "{ if c { { for i in 0..2 { f(i); } } } else { } }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, report := unrollBlock(t, tt.src)
			if report.Unrolled() != 1 {
				t.Fatalf("expected the loop to unroll, report %+v", report.Decisions)
			}
			if countFor(out) != 0 {
				t.Fatalf("expected no loops left:\n%s", render(out))
			}
		})
	}
}

func TestOpaqueKindsAreSkipped(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"closure", "{ let g = || { for i in 0..2 { f(i); } }; }"},
		{"closure statement", "{ run(|| { for i in 0..2 { f(i); } }); }"},
		{"match arm", "{ match x { _ => { for i in 0..2 { f(i); } } } }"},
		{"while", "{ while c { for i in 0..2 { f(i); } } }"},
		{"loop", "{ loop { for i in 0..2 { f(i); } } }"},
		{"unsafe", "{ unsafe { for i in 0..2 { f(i); } } }"},
		{"let initialiser", "{ let v = { for i in 0..2 { f(i); } }; }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out, report := unrollBlock(t, tt.src)
			if len(report.Decisions) != 0 {
				t.Fatalf("expected no decisions, got %+v", report.Decisions)
			}
			if got, want := render(out), render(in); got != want {
				t.Fatalf("expected no change\nwant:\n%s\ngot:\n%s", want, got)
			}
		})
	}
}

func TestScopeLoopsSkipsIf(t *testing.T) {
	src := "{ if c { for i in 0..2 { f(i); } } { for j in 0..2 { g(j); } } }"
	_, out, report := unrollBlock(t, src, WithScope(ScopeLoops))

	if report.Unrolled() != 1 || report.Decisions[0].Var != "j" {
		t.Fatalf("expected only j to unroll, got %+v", report.Decisions)
	}
	if countFor(out) != 1 {
		t.Fatalf("expected the loop under if to remain:\n%s", render(out))
	}
}

func TestStatementKindsPreserved(t *testing.T) {
	_, out, _ := unrollBlock(t, "{ let a = 1; fn helper() {} const K: u8 = 2; for i in 0..1 { f(i); }; a }")

	want := []string{"*ast.LetStmt", "*ast.ItemStmt", "*ast.ConstStmt", "*ast.SemiStmt", "*ast.ExprStmt"}
	if len(out.Stmts) != len(want) {
		t.Fatalf("expected %d statements, got %d", len(want), len(out.Stmts))
	}
	for i, stmt := range out.Stmts {
		var got string
		switch stmt.(type) {
		case *ast.LetStmt:
			got = "*ast.LetStmt"
		case *ast.ItemStmt:
			got = "*ast.ItemStmt"
		case *ast.ConstStmt:
			got = "*ast.ConstStmt"
		case *ast.SemiStmt:
			got = "*ast.SemiStmt"
		case *ast.ExprStmt:
			got = "*ast.ExprStmt"
		}
		if got != want[i] {
			t.Errorf("statement %d: expected %s, got %s", i, want[i], got)
		}
	}
}

func TestInputNotModified(t *testing.T) {
	in := parseBlock(t, "{ for i in 0..3 { if c { for j in 0..2 { f(i, j); } } } }")
	before := render(in)

	if _, err := Transform(in); err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if after := render(in); after != before {
		t.Fatalf("input was modified\nbefore:\n%s\nafter:\n%s", before, after)
	}
}

func TestIterationsShareNoNodes(t *testing.T) {
	_, out, _ := unrollBlock(t, "{ for i in 0..2 { f(i); } }")

	loop := out.Stmts[0].(*ast.ExprStmt).Expr.(*ast.BlockExpr)
	first := loop.Stmts[0].(*ast.ExprStmt).Expr.(*ast.BlockExpr)
	second := loop.Stmts[1].(*ast.ExprStmt).Expr.(*ast.BlockExpr)
	if first.Stmts[1] == second.Stmts[1] {
		t.Fatalf("expected each iteration to own its statements")
	}
}

func TestTransformIsStableOnResult(t *testing.T) {
	_, once, _ := unrollBlock(t, "{ for x in xs { f(x); } for i in 0..2 { g(i); } }")

	u := New()
	twice, err := u.Transform(once)
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if render(once) != render(twice) {
		t.Fatalf("second pass changed the output\nfirst:\n%s\nsecond:\n%s", render(once), render(twice))
	}
	if u.Report().Unrolled() != 0 {
		t.Fatalf("expected nothing left to unroll, got %+v", u.Report().Decisions)
	}
}

// ----------------------------------------------------------------------------
// Functions
// ----------------------------------------------------------------------------

func TestFunctionKeepsSignature(t *testing.T) {
	p := parser.New("#[unroll_for_loops]\n#[inline]\npub fn f(x: &mut [u8; 4]) -> u8 { for i in 0..4 { x[i] = 0; } x[0] }")
	file := p.ParseFile()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	fn := file.Items[0].(*ast.FnDecl)

	out, err := Function(fn)
	if err != nil {
		t.Fatalf("function failed: %v", err)
	}
	if out == fn {
		t.Fatalf("expected a new declaration")
	}
	if out.Name != fn.Name || out.ReturnType != fn.ReturnType || len(out.Params) != 1 || len(out.Attrs) != 2 {
		t.Fatalf("signature not carried over: %+v", out)
	}
	if out.Visibility != "pub" {
		t.Fatalf("expected visibility to be kept")
	}
	if countFor(out.Body) != 0 {
		t.Fatalf("expected body to be unrolled:\n%s", printer.Fn(out))
	}
	if countFor(fn.Body) != 1 {
		t.Fatalf("expected original body untouched")
	}
}

func TestFunctionWithoutBody(t *testing.T) {
	fn := ast.NewFnDecl(ast.NewIdent("f", lexer.Span{}), nil, nil, nil, lexer.Span{})

	out, err := Function(fn)
	if err != nil {
		t.Fatalf("function failed: %v", err)
	}
	if out != fn {
		t.Fatalf("expected declaration without body to be returned as is")
	}
}

// ----------------------------------------------------------------------------
// Errors
// ----------------------------------------------------------------------------

func TestSynthesisError(t *testing.T) {
	var span lexer.Span
	// Two trailing expressions in a row print as source that does not parse.
	body := ast.NewBlockExpr([]ast.Stmt{
		ast.NewExprStmt(ast.NewIdent("a", span), span),
		ast.NewExprStmt(ast.NewIdent("b", span), span),
	}, span)
	loop := ast.NewForExpr(
		ast.NewPatternIdent(ast.NewIdent("i", span), ast.BindingModeMove, false, span),
		ast.NewRangeExpr(ast.NewIntegerLit("0", span), ast.NewIntegerLit("1", span), false, span),
		body,
		span,
	)
	block := ast.NewBlockExpr([]ast.Stmt{ast.NewExprStmt(loop, span)}, span)

	_, err := Transform(block)
	if err == nil {
		t.Fatalf("expected synthesis error")
	}

	var synth *SynthesisError
	if !errors.As(err, &synth) {
		t.Fatalf("expected *SynthesisError, got %T", err)
	}
	if synth.Fragment == "" || len(synth.Messages) == 0 {
		t.Fatalf("expected fragment and messages, got %+v", synth)
	}
	if d := synth.ToDiagnostic(); d.Code != diag.CodeUnrollSynthesisFailed || d.Stage != diag.StageUnroll {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
}

func TestReasonString(t *testing.T) {
	if Unrolled.String() != "unrolled" {
		t.Fatalf("unexpected text %q", Unrolled.String())
	}
	if ReasonNotRange.String() != "loop source is not a range" {
		t.Fatalf("unexpected text %q", ReasonNotRange.String())
	}
	if Reason(99).String() != "unknown" {
		t.Fatalf("expected unknown for out of range reason")
	}
}

func TestSkippedDecisionDiagnostic(t *testing.T) {
	_, _, report := unrollBlock(t, "{ for i in 0..n { f(i); } for j in 0..2 { f(j); } }")
	if len(report.Decisions) != 2 {
		t.Fatalf("expected 2 decisions, got %d", len(report.Decisions))
	}

	skipped := report.Decisions[0]
	d := skipped.ToDiagnostic()
	if d.Stage != diag.StageUnroll || d.Severity != diag.SeverityNote || d.Code != diag.CodeUnrollSkipped {
		t.Fatalf("unexpected diagnostic header %+v", d)
	}
	if d.Span.Start != skipped.Span.Start || d.Span.End != skipped.Span.End {
		t.Fatalf("expected span %+v, got %+v", skipped.Span, d.Span)
	}
	if len(d.LabeledSpans) != 1 || d.LabeledSpans[0].Label != ReasonNonLiteralBound.String() {
		t.Fatalf("expected the reason as primary label, got %+v", d.LabeledSpans)
	}
	if d.Help == "" {
		t.Fatalf("expected help for a non-literal bound")
	}
}

func TestParseScope(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want Scope
		ok   bool
	}{
		{"full", ScopeFull, true},
		{"", ScopeFull, true},
		{"loops", ScopeLoops, true},
		{"everything", ScopeFull, false},
	} {
		got, ok := ParseScope(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseScope(%q) = %v, %v", tt.in, got, ok)
		}
		if ok && tt.in != "" && got.String() != tt.in {
			t.Errorf("expected %v to print as %q", got, tt.in)
		}
	}
}
